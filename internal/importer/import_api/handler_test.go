package import_api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ms-linkmarket/internal/auth"
	"ms-linkmarket/internal/config"
	"ms-linkmarket/internal/importer"
	"ms-linkmarket/internal/importer/import_api"
	"ms-linkmarket/internal/logger"
	"ms-linkmarket/internal/models"
)

// fakeStore is an in-memory StoreLayer for handler round trips.
type fakeStore struct {
	outlets  map[string]models.MediaOutlet
	listings int
}

func newFakeStore() *fakeStore {
	return &fakeStore{outlets: make(map[string]models.MediaOutlet)}
}

func (s *fakeStore) FindOutletByDomain(domain string) (*models.MediaOutlet, error) {
	if o, ok := s.outlets[domain]; ok {
		return &o, nil
	}
	return nil, nil
}

func (s *fakeStore) CreateOutlet(outlet models.MediaOutlet) error {
	s.outlets[outlet.Domain] = outlet
	return nil
}

func (s *fakeStore) DeleteOutlet(id string) error {
	for domain, o := range s.outlets {
		if o.OutletID == id {
			delete(s.outlets, domain)
		}
	}
	return nil
}

func (s *fakeStore) CreateMetrics(models.OutletMetrics) error { return nil }

func (s *fakeStore) CreateListing(models.Listing) error {
	s.listings++
	return nil
}

func newTestRouter(store *fakeStore, sheets *importer.SheetFetcher) chi.Router {
	log := logger.NewLogger()
	imp := importer.NewImporter(store, nil, nil, log)
	handler := import_api.NewHandler(imp, sheets, log)

	r := chi.NewRouter()
	handler.RegisterRoutes(r)
	return r
}

func postJSON(t *testing.T, router chi.Router, path string, body interface{}, actor *models.Actor) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	if actor != nil {
		req = req.WithContext(auth.WithActor(req.Context(), *actor))
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

var publisherActor = models.Actor{ID: "pub123", Roles: []string{models.RolePublisher}}

const sampleCSV = "domain,price,country,language,category\n" +
	"techdaily.com,250,DE,en,Technology\n" +
	"bad-row,,DE,en,Technology\n"

func TestValidateEndpoint(t *testing.T) {
	router := newTestRouter(newFakeStore(), nil)

	rec := postJSON(t, router, "/api/v1/import/validate", map[string]string{"csv": sampleCSV}, nil)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Summary struct {
				Succeeded int `json:"succeeded"`
				Failed    int `json:"failed"`
			} `json:"summary"`
			FailureDetails []string `json:"failure_details"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Data.Summary.Succeeded)
	assert.Equal(t, 1, resp.Data.Summary.Failed)
	assert.Len(t, resp.Data.FailureDetails, 1)
}

func TestValidateMissingColumns(t *testing.T) {
	router := newTestRouter(newFakeStore(), nil)

	rec := postJSON(t, router, "/api/v1/import/validate",
		map[string]string{"csv": "domain,country\nexample.com,DE\n"}, nil)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(t, rec.Body.String(), "price")
}

func TestCommitRequiresAuth(t *testing.T) {
	router := newTestRouter(newFakeStore(), nil)

	rec := postJSON(t, router, "/api/v1/import/commit", map[string]string{"csv": sampleCSV}, nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCommitForbiddenForBuyer(t *testing.T) {
	router := newTestRouter(newFakeStore(), nil)
	buyer := models.Actor{ID: "buyer123", Roles: []string{models.RoleBuyer}}

	rec := postJSON(t, router, "/api/v1/import/commit", map[string]string{"csv": sampleCSV}, &buyer)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestCommitEndpoint(t *testing.T) {
	store := newFakeStore()
	router := newTestRouter(store, nil)

	rec := postJSON(t, router, "/api/v1/import/commit", map[string]string{"csv": sampleCSV}, &publisherActor)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, store.outlets, 1)
	assert.Equal(t, 1, store.listings)

	created := store.outlets["techdaily.com"]
	assert.Equal(t, "csv_paste", created.Source)
	assert.Equal(t, models.OutletStatusPending, created.Status)
}

func TestCommitFromSheetURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("domain,price,country,language,category\nsheet-outlet.com,300,NL,nl,News\n"))
	}))
	defer server.Close()

	sheets := importer.NewSheetFetcher(config.SheetsConfig{
		ExportURLTemplate: server.URL + "/%s/export?format=csv&gid=%s",
		SheetGID:          "0",
		FetchTimeout:      5 * time.Second,
	})

	store := newFakeStore()
	router := newTestRouter(store, sheets)

	rec := postJSON(t, router, "/api/v1/import/commit",
		map[string]string{"sheet_url": "https://docs.google.com/spreadsheets/d/abc123/edit"}, &publisherActor)

	assert.Equal(t, http.StatusOK, rec.Code)
	created, ok := store.outlets["sheet-outlet.com"]
	assert.True(t, ok)
	assert.Equal(t, "google_sheet", created.Source)
}

func TestSheetFetchFailureIsBadGateway(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	sheets := importer.NewSheetFetcher(config.SheetsConfig{
		ExportURLTemplate: server.URL + "/%s/export?format=csv&gid=%s",
		SheetGID:          "0",
		FetchTimeout:      5 * time.Second,
	})

	router := newTestRouter(newFakeStore(), sheets)

	rec := postJSON(t, router, "/api/v1/import/validate",
		map[string]string{"sheet_url": "https://docs.google.com/spreadsheets/d/abc123/edit"}, nil)

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Contains(t, rec.Body.String(), "not publicly shared")
}
