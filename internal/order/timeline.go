package order

import (
	"time"

	"ms-linkmarket/internal/models"
)

// Stage states as rendered by the order timeline.
const (
	StagePast    = "past"
	StageCurrent = "current"
	StageFuture  = "future"
)

var stageLabels = map[string]string{
	models.StatusRequested:       "Requested",
	models.StatusAccepted:        "Accepted",
	models.StatusContentReceived: "Content received",
	models.StatusPublished:       "Published",
	models.StatusVerified:        "Verified",
	models.StatusRejected:        "Rejected",
}

type TimelineStage struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	State  string `json:"state"`
}

type Timeline struct {
	Stages          []TimelineStage `json:"stages"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       *time.Time      `json:"updated_at,omitempty"`
	PublicationDate *time.Time      `json:"publication_date,omitempty"`
}

// BuildTimeline derives the five-stage progress view from the order's
// current status. It is a pure function: stages before the current status
// are past, after it future. A status outside the canonical sequence
// (rejected included) is appended as its own current stage and never
// panics, so stale or unexpected values still render.
func BuildTimeline(status string, createdAt time.Time, updatedAt time.Time, publicationDate *time.Time) Timeline {
	tl := Timeline{
		CreatedAt:       createdAt,
		PublicationDate: publicationDate,
	}
	if !updatedAt.IsZero() {
		tl.UpdatedAt = &updatedAt
	}

	current := models.StatusIndex(status)
	for i, s := range models.StatusSequence {
		state := StageFuture
		if current >= 0 {
			if i < current {
				state = StagePast
			} else if i == current {
				state = StageCurrent
			}
		}
		tl.Stages = append(tl.Stages, TimelineStage{
			Status: s,
			Label:  stageLabels[s],
			State:  state,
		})
	}

	if current == -1 {
		label, ok := stageLabels[status]
		if !ok {
			label = "Unknown stage"
		}
		tl.Stages = append(tl.Stages, TimelineStage{
			Status: status,
			Label:  label,
			State:  StageCurrent,
		})
	}

	return tl
}
