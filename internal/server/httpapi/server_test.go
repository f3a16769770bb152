package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lifeos/internal/common"
	"lifeos/internal/logging"
	"lifeos/internal/server/auth"
	"lifeos/internal/server/models"
	"lifeos/internal/server/services"
)

const testSecret = "http-test-secret"

// stubLogAPI records the arguments handlers pass down and plays back canned
// results.
type stubLogAPI struct {
	lastUserID string
	lastFilter models.LogFilter
	lastLimit  int
	lastOffset int
	lastID     string

	entry   *models.LogEntry
	entries []*models.LogEntry
	stats   []models.StatusCount
	err     error
}

func (s *stubLogAPI) Create(_ context.Context, userID string, _ services.CreateLogRequest) (*models.LogEntry, error) {
	s.lastUserID = userID
	return s.entry, s.err
}

func (s *stubLogAPI) List(_ context.Context, userID string, filter models.LogFilter, limit, offset int) ([]*models.LogEntry, error) {
	s.lastUserID, s.lastFilter, s.lastLimit, s.lastOffset = userID, filter, limit, offset
	return s.entries, s.err
}

func (s *stubLogAPI) Update(_ context.Context, userID, id string, _ services.UpdateLogRequest) (*models.LogEntry, error) {
	s.lastUserID, s.lastID = userID, id
	return s.entry, s.err
}

func (s *stubLogAPI) Delete(_ context.Context, userID, id string) (*models.LogEntry, error) {
	s.lastUserID, s.lastID = userID, id
	return s.entry, s.err
}

func (s *stubLogAPI) Stats(_ context.Context, userID string) ([]models.StatusCount, error) {
	s.lastUserID = userID
	return s.stats, s.err
}

func (s *stubLogAPI) Search(_ context.Context, userID, query string) ([]*models.LogEntry, error) {
	s.lastUserID, s.lastFilter.Search = userID, query
	return s.entries, s.err
}

type stubArchiveAPI struct{}

func (stubArchiveAPI) PresignUpload(_ context.Context, userID string) (string, string, error) {
	return "archives/" + userID + "/k", "http://put", nil
}

func (stubArchiveAPI) PresignDownload(_ context.Context, userID, key string) (string, error) {
	if !strings.HasPrefix(key, "archives/"+userID+"/") {
		return "", common.ErrUnauthorized
	}
	return "http://get/" + key, nil
}

func newTestServer(t *testing.T, logAPI *stubLogAPI) *Server {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, nil)))
	return NewServer(":0", logger, logAPI, stubArchiveAPI{}, testSecret, time.Second)
}

func bearer(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, []byte(testSecret), time.Minute)
	require.NoError(t, err)
	return "Bearer " + token
}

func doRequest(t *testing.T, srv *Server, method, target, authHeader string, body []byte) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	return rec
}

func TestAuth_MissingTokenRejected(t *testing.T) {
	srv := newTestServer(t, &stubLogAPI{})

	rec := doRequest(t, srv, http.MethodGet, "/api/logs", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_BadTokenRejected(t *testing.T) {
	srv := newTestServer(t, &stubLogAPI{})

	rec := doRequest(t, srv, http.MethodGet, "/api/logs", "Bearer garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestHealth_NoAuthRequired(t *testing.T) {
	srv := newTestServer(t, &stubLogAPI{})

	rec := doRequest(t, srv, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestListLogs_QueryParsing(t *testing.T) {
	api := &stubLogAPI{}
	srv := newTestServer(t, api)

	rec := doRequest(t, srv, http.MethodGet,
		"/api/logs?category=WORK&energy_level=40&energy_op=gt&search=sun&limit=5&offset=10",
		bearer(t, "u1"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "u1", api.lastUserID)
	assert.Equal(t, "WORK", api.lastFilter.Category)
	assert.Equal(t, "sun", api.lastFilter.Search)
	require.NotNil(t, api.lastFilter.EnergyLevel)
	assert.Equal(t, 40, *api.lastFilter.EnergyLevel)
	assert.Equal(t, models.EnergyGTE, api.lastFilter.EnergyOp)
	assert.Equal(t, 5, api.lastLimit)
	assert.Equal(t, 10, api.lastOffset)
}

func TestListLogs_InvalidEnergyDroppedSilently(t *testing.T) {
	api := &stubLogAPI{}
	srv := newTestServer(t, api)

	rec := doRequest(t, srv, http.MethodGet,
		"/api/logs?energy_level=high&energy_op=gt", bearer(t, "u1"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Nil(t, api.lastFilter.EnergyLevel)
}

func TestListLogs_DefaultsApplied(t *testing.T) {
	api := &stubLogAPI{}
	srv := newTestServer(t, api)

	rec := doRequest(t, srv, http.MethodGet, "/api/logs", bearer(t, "u1"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, services.DefaultLimit, api.lastLimit)
	assert.Equal(t, 0, api.lastOffset)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "success", resp.Status)
	assert.NotNil(t, resp.Data, "empty result must encode as [], not null")
}

func TestCreateLog_OwnerFromSession(t *testing.T) {
	api := &stubLogAPI{entry: &models.LogEntry{ID: "l1", UserID: "u1"}}
	srv := newTestServer(t, api)

	body := []byte(`{"content":"ran a diagnostics cycle","category":"HEALTH"}`)
	rec := doRequest(t, srv, http.MethodPost, "/api/logs", bearer(t, "u1"), body)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "u1", api.lastUserID)
}

func TestCreateLog_BadBody(t *testing.T) {
	srv := newTestServer(t, &stubLogAPI{})

	rec := doRequest(t, srv, http.MethodPost, "/api/logs", bearer(t, "u1"), []byte("{broken"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateLog_NotFound(t *testing.T) {
	api := &stubLogAPI{entry: nil}
	srv := newTestServer(t, api)

	rec := doRequest(t, srv, http.MethodPut, "/api/logs/nope", bearer(t, "u1"), []byte(`{}`))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "nope", api.lastID)
}

func TestDeleteLog_NotFound(t *testing.T) {
	api := &stubLogAPI{entry: nil}
	srv := newTestServer(t, api)

	rec := doRequest(t, srv, http.MethodDelete, "/api/logs/nope", bearer(t, "u1"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteLog_ReturnsDeleted(t *testing.T) {
	api := &stubLogAPI{entry: &models.LogEntry{ID: "l1"}}
	srv := newTestServer(t, api)

	rec := doRequest(t, srv, http.MethodDelete, "/api/logs/l1", bearer(t, "u1"), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSearch_RequiresQuery(t *testing.T) {
	srv := newTestServer(t, &stubLogAPI{})

	rec := doRequest(t, srv, http.MethodGet, "/api/logs/search", bearer(t, "u1"), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestArchive_UploadURL(t *testing.T) {
	srv := newTestServer(t, &stubLogAPI{})

	rec := doRequest(t, srv, http.MethodPost, "/api/archive/upload-url", bearer(t, "u1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, "archives/u1/k", data["key"])
	assert.Equal(t, "http://put", data["url"])
}

func TestArchive_DownloadURLOwnKey(t *testing.T) {
	srv := newTestServer(t, &stubLogAPI{})

	rec := doRequest(t, srv, http.MethodGet,
		"/api/archive/download-url?key=archives/u1/2026/02/abc", bearer(t, "u1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data := resp.Data.(map[string]any)
	assert.Equal(t, "http://get/archives/u1/2026/02/abc", data["url"])
}

func TestArchive_DownloadURLOtherUsersKey(t *testing.T) {
	srv := newTestServer(t, &stubLogAPI{})

	// a guessed (or leaked) key belonging to another user must not be signed
	rec := doRequest(t, srv, http.MethodGet,
		"/api/archive/download-url?key=archives/u2/2026/02/abc", bearer(t, "u1"), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
