package importer

import (
	"fmt"
	"io"
	"net/http"
	"regexp"

	"ms-linkmarket/internal/apperrors"
	"ms-linkmarket/internal/config"
)

// sheetURLPattern recovers the file id segment from a Google Sheets URL.
var sheetURLPattern = regexp.MustCompile(`docs\.google\.com/spreadsheets/d/([a-zA-Z0-9_-]+)`)

// SheetFetcher downloads the public CSV export of a shared spreadsheet.
type SheetFetcher struct {
	Client *http.Client
	Config config.SheetsConfig
}

func NewSheetFetcher(cfg config.SheetsConfig) *SheetFetcher {
	return &SheetFetcher{
		Client: &http.Client{Timeout: cfg.FetchTimeout},
		Config: cfg,
	}
}

// ExportURL derives the CSV export endpoint from a spreadsheet URL.
func (f *SheetFetcher) ExportURL(sheetURL string) (string, error) {
	match := sheetURLPattern.FindStringSubmatch(sheetURL)
	if match == nil {
		return "", fmt.Errorf("%w: not a recognizable spreadsheet url", apperrors.ErrFetch)
	}
	return fmt.Sprintf(f.Config.ExportURLTemplate, match[1], f.Config.SheetGID), nil
}

// FetchCSV performs an unauthenticated fetch of the sheet's CSV export.
// 403 means the sheet is not publicly shared; any other non-2xx status is
// a generic fetch failure carrying the status code.
func (f *SheetFetcher) FetchCSV(sheetURL string) (string, error) {
	exportURL, err := f.ExportURL(sheetURL)
	if err != nil {
		return "", err
	}

	resp, err := f.Client.Get(exportURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusForbidden {
		return "", fmt.Errorf("%w: spreadsheet is not publicly shared", apperrors.ErrFetch)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: spreadsheet fetch failed with status %d", apperrors.ErrFetch, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrFetch, err)
	}

	return string(body), nil
}
