package import_api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ms-linkmarket/internal/apperrors"
	"ms-linkmarket/internal/auth"
	"ms-linkmarket/internal/importer"
	"ms-linkmarket/internal/logger"
	"ms-linkmarket/internal/utils"
)

// failureDetailCap limits the per-row failure messages in API responses.
const failureDetailCap = 10

type Handler struct {
	Importer *importer.Importer
	Sheets   *importer.SheetFetcher
	Logger   *logger.Logger
}

func NewHandler(imp *importer.Importer, sheets *importer.SheetFetcher, log *logger.Logger) *Handler {
	return &Handler{Importer: imp, Sheets: sheets, Logger: log}
}

// RegisterRoutes registers the import routes on a chi router
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1/import", func(r chi.Router) {
		r.Post("/validate", h.Validate)
		r.Post("/commit", h.Commit)
		r.Post("/validate-xlsx", h.ValidateXLSX)
		r.Post("/commit-xlsx", h.CommitXLSX)
	})
}

// importRequest carries either raw CSV text or a shared spreadsheet URL.
type importRequest struct {
	CSV      string `json:"csv,omitempty"`
	SheetURL string `json:"sheet_url,omitempty"`
}

type importReport struct {
	Summary        *importer.Summary `json:"summary"`
	FailureDetails []string          `json:"failure_details,omitempty"`
	MoreFailures   int               `json:"more_failures,omitempty"`
}

func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	rows, source, ok := h.parseRequest(w, r)
	if !ok {
		return
	}

	summary := importer.Validate(rows)
	h.Logger.LogImport("VALIDATE", summary.Succeeded, summary.Failed, summary.Skipped)
	h.Logger.Debug("IMPORT", fmt.Sprintf("validated %d rows from %s", len(rows), source))

	sendJSON(w, http.StatusOK, utils.SuccessResponse("Validation complete", buildReport(summary)))
}

func (h *Handler) Commit(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	rows, source, reqOK := h.parseRequest(w, r)
	if !reqOK {
		return
	}

	summary, err := h.Importer.Commit(actor, source, rows)
	if err != nil {
		h.Logger.Error("API", fmt.Sprintf("Commit: %v", err))
		writeServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, utils.SuccessResponse("Import complete", buildReport(summary)))
}

// ValidateXLSX accepts a multipart workbook upload and dry-runs it.
func (h *Handler) ValidateXLSX(w http.ResponseWriter, r *http.Request) {
	rows, ok := h.parseXLSX(w, r)
	if !ok {
		return
	}

	summary := importer.Validate(rows)
	h.Logger.LogImport("VALIDATE", summary.Succeeded, summary.Failed, summary.Skipped)

	sendJSON(w, http.StatusOK, utils.SuccessResponse("Validation complete", buildReport(summary)))
}

func (h *Handler) CommitXLSX(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.ActorFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	rows, reqOK := h.parseXLSX(w, r)
	if !reqOK {
		return
	}

	summary, err := h.Importer.Commit(actor, "xlsx_upload", rows)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	sendJSON(w, http.StatusOK, utils.SuccessResponse("Import complete", buildReport(summary)))
}

// parseRequest resolves the request body into parsed rows, fetching the
// spreadsheet export when a sheet URL is given instead of raw CSV.
func (h *Handler) parseRequest(w http.ResponseWriter, r *http.Request) ([]importer.Row, string, bool) {
	var req importRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body: "+err.Error(), http.StatusBadRequest)
		return nil, "", false
	}

	csvText := req.CSV
	source := "csv_paste"

	if csvText == "" && req.SheetURL != "" {
		fetched, err := h.Sheets.FetchCSV(req.SheetURL)
		if err != nil {
			h.Logger.Error("IMPORT", fmt.Sprintf("sheet fetch failed: %v", err))
			sendJSON(w, http.StatusBadGateway, utils.ErrorResponse("Spreadsheet fetch failed", err.Error()))
			return nil, "", false
		}
		csvText = fetched
		source = "google_sheet"
	}

	if csvText == "" {
		http.Error(w, "csv or sheet_url is required", http.StatusBadRequest)
		return nil, "", false
	}

	rows, err := importer.ParseCSV(csvText)
	if err != nil {
		var missing *importer.MissingColumnsError
		if errors.As(err, &missing) {
			sendJSON(w, http.StatusUnprocessableEntity, utils.ErrorResponse("Missing required columns", missing.Error()))
			return nil, "", false
		}
		sendJSON(w, http.StatusBadRequest, utils.ErrorResponse("Parse failed", err.Error()))
		return nil, "", false
	}

	return rows, source, true
}

func (h *Handler) parseXLSX(w http.ResponseWriter, r *http.Request) ([]importer.Row, bool) {
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "file upload is required: "+err.Error(), http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	rows, err := importer.ParseXLSX(file)
	if err != nil {
		var missing *importer.MissingColumnsError
		if errors.As(err, &missing) {
			sendJSON(w, http.StatusUnprocessableEntity, utils.ErrorResponse("Missing required columns", missing.Error()))
			return nil, false
		}
		sendJSON(w, http.StatusBadRequest, utils.ErrorResponse("Parse failed", err.Error()))
		return nil, false
	}

	return rows, true
}

func buildReport(summary *importer.Summary) importReport {
	details, remainder := summary.FailureDetails(failureDetailCap)
	return importReport{
		Summary:        summary,
		FailureDetails: details,
		MoreFailures:   remainder,
	}
}

func sendJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		fmt.Printf("failed to encode response: %v\n", err)
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case apperrors.IsPermissionDenied(err):
		sendJSON(w, http.StatusForbidden, utils.ErrorResponse("Permission denied", err.Error()))
	default:
		sendJSON(w, http.StatusInternalServerError, utils.ErrorResponse("Operation failed", err.Error()))
	}
}
