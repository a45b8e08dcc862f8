package importer

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"ms-linkmarket/internal/apperrors"
	"ms-linkmarket/internal/logger"
	"ms-linkmarket/internal/models"
)

// Construction defaults applied when optional columns are absent or invalid.
const (
	DefaultCurrency     = "EUR"
	DefaultLeadTimeDays = 7
)

type StoreLayer interface {
	FindOutletByDomain(domain string) (*models.MediaOutlet, error)
	CreateOutlet(outlet models.MediaOutlet) error
	DeleteOutlet(id string) error
	CreateMetrics(metrics models.OutletMetrics) error
	CreateListing(listing models.Listing) error
}

// DomainLocker guards the duplicate check-then-insert gap against a
// concurrent import run racing on the same domain.
type DomainLocker interface {
	LockDomain(domain, runID string) (bool, error)
	UnlockDomain(domain, runID string) error
}

type EventPublisher interface {
	PublishOutletSubmitted(outlet models.MediaOutlet) error
}

type Importer struct {
	Store  StoreLayer
	Locks  DomainLocker
	Kafka  EventPublisher
	logger *logger.Logger
}

func NewImporter(store StoreLayer, locks DomainLocker, kafka EventPublisher, log *logger.Logger) *Importer {
	return &Importer{Store: store, Locks: locks, Kafka: kafka, logger: log}
}

// Commit is the persistence phase. It re-validates every row independently
// of any earlier dry run, skips existing domains as duplicates, and creates
// outlet + metrics + listing per accepted row. Only the listing step rolls
// back (compensating outlet delete); the batch itself never aborts, so
// re-running after a partial success is safe: committed domains come back
// as skipped.
func (imp *Importer) Commit(actor models.Actor, source string, rows []Row) (*Summary, error) {
	if !actor.HasRole(models.RolePublisher) && !actor.IsAdmin() {
		return nil, fmt.Errorf("%w: import requires the publisher or admin role", apperrors.ErrPermissionDenied)
	}

	runID := uuid.NewString()
	summary := &Summary{}

	for _, row := range rows {
		summary.add(imp.commitRow(actor, source, runID, row))
	}

	imp.logger.LogImport("COMMIT", summary.Succeeded, summary.Failed, summary.Skipped)
	return summary, nil
}

func (imp *Importer) commitRow(actor models.Actor, source, runID string, row Row) RowResult {
	result := RowResult{Row: row.Line}

	domain, price, err := checkRow(row)
	result.Domain = domain
	if err != nil {
		result.Error = err.Error()
		return result
	}

	if imp.Locks != nil {
		locked, err := imp.Locks.LockDomain(domain, runID)
		if err != nil {
			imp.logger.Warn("IMPORT", fmt.Sprintf("lock for domain %s failed: %v", domain, err))
		} else if !locked {
			result.Error = fmt.Sprintf("domain %s is being imported by another run", domain)
			return result
		} else {
			defer func() {
				if err := imp.Locks.UnlockDomain(domain, runID); err != nil {
					imp.logger.Warn("IMPORT", fmt.Sprintf("unlock for domain %s failed: %v", domain, err))
				}
			}()
		}
	}

	existing, err := imp.Store.FindOutletByDomain(domain)
	if err != nil {
		result.Error = "database error"
		return result
	}
	if existing != nil {
		result.Skipped = true
		return result
	}

	outlet := buildOutlet(actor, source, domain, price, row)
	if err := imp.Store.CreateOutlet(outlet); err != nil {
		result.Error = err.Error()
		return result
	}

	metrics, warnings := ValidateMetrics(row)
	result.Warnings = append(result.Warnings, warnings...)
	if metrics.HasValues() {
		metrics.OutletID = outlet.OutletID
		metrics.UpdatedAt = time.Now()
		if err := imp.Store.CreateMetrics(metrics); err != nil {
			// Best effort: the outlet and listing still count as created.
			imp.logger.Warn("IMPORT", fmt.Sprintf("metrics for %s failed: %v", domain, err))
			result.Warnings = append(result.Warnings, "metrics could not be saved")
		}
	}

	listing := models.Listing{
		ListingID: uuid.NewString(),
		OutletID:  outlet.OutletID,
		IsActive:  false,
		CreatedAt: time.Now(),
	}
	if err := imp.Store.CreateListing(listing); err != nil {
		// The outlet must not survive without its listing.
		if delErr := imp.Store.DeleteOutlet(outlet.OutletID); delErr != nil {
			imp.logger.Error("IMPORT", fmt.Sprintf("compensating delete of outlet %s failed: %v", outlet.OutletID, delErr))
		}
		result.Error = "Failed to create listing"
		return result
	}

	if imp.Kafka != nil {
		if err := imp.Kafka.PublishOutletSubmitted(outlet); err != nil {
			imp.logger.Warn("KAFKA", fmt.Sprintf("publish outlet submitted failed: %v", err))
		}
	}

	result.Success = true
	result.OutletID = outlet.OutletID
	return result
}

func buildOutlet(actor models.Actor, source, domain string, price float64, row Row) models.MediaOutlet {
	license, ok := models.ParseEnum(row.Get("accepts_no_license_status"), models.LicenseValues)
	if !ok {
		license = models.LicenseNo
	}
	sponsorStatus, ok := models.ParseEnum(row.Get("sponsor_tag_status"), models.SponsorTagValues)
	if !ok {
		sponsorStatus = models.SponsorTagNo
	}
	sponsorType, ok := models.ParseEnum(row.Get("sponsor_tag_type"), models.SponsorTagTypeValues)
	if !ok {
		sponsorType = models.SponsorTagTypeText
	}

	currency := strings.ToUpper(strings.TrimSpace(row.Get("currency")))
	if currency == "" {
		currency = DefaultCurrency
	}

	leadTime := DefaultLeadTimeDays
	if raw := strings.TrimSpace(row.Get("lead_time")); raw != "" {
		if parsed, err := parseLeadTime(raw); err == nil {
			leadTime = parsed
		}
	}

	return models.MediaOutlet{
		OutletID:         uuid.NewString(),
		Domain:           domain,
		Price:            nil, // selling price set later by admin review
		PurchasePrice:    price,
		Currency:         currency,
		Country:          strings.TrimSpace(row.Get("country")),
		Language:         strings.TrimSpace(row.Get("language")),
		Category:         strings.TrimSpace(row.Get("category")),
		Niches:           parseNiches(row.Get("niches")),
		Guidelines:       strings.TrimSpace(row.Get("guidelines")),
		LeadTimeDays:     leadTime,
		AcceptsNoLicense: license,
		SponsorTagStatus: sponsorStatus,
		SponsorTagType:   sponsorType,
		Source:           source,
		PublisherID:      actor.ID,
		Status:           models.OutletStatusPending,
		SubmittedBy:      actor.ID,
		SubmittedAt:      time.Now(),
		IsActive:         false,
	}
}

func parseNiches(raw string) []string {
	var niches []string
	for _, entry := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(entry); trimmed != "" {
			niches = append(niches, trimmed)
		}
	}
	return niches
}

func parseLeadTime(raw string) (int, error) {
	var days int
	_, err := fmt.Sscanf(raw, "%d", &days)
	if err != nil || days < 0 {
		return 0, fmt.Errorf("invalid lead time %q", raw)
	}
	return days, nil
}
