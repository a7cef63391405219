package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"goprofile/app"
	"goprofile/internal/config"
	"goprofile/internal/testkit"
	"goprofile/ports"
)

func newTestServer(t *testing.T) (*Server, *testkit.ReportRepo) {
	t.Helper()
	repo := testkit.NewReportRepo()
	svc := app.NewProfileServiceWithRepo(config.Default(), repo)
	return NewServer(svc), repo
}

func profileBody(t *testing.T) *bytes.Buffer {
	t.Helper()
	body := map[string]any{
		"columns": []map[string]any{
			{"name": "x", "values": []any{1.0, 2.0, nil, 4.0}},
			{"name": "s", "values": []any{"a", "b", "a", "a"}},
		},
	}
	buf := &bytes.Buffer{}
	require.NoError(t, json.NewEncoder(buf).Encode(body))
	return buf
}

func TestHealth(t *testing.T) {
	server, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestProfileEndpointCreatesReport(t *testing.T) {
	server, repo := newTestServer(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/profile", profileBody(t))
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, 1, repo.Len())

	var payload map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.NotEmpty(t, payload["id"])
	table := payload["table"].(map[string]any)
	assert.Equal(t, float64(4), table["n"])
	variables := payload["variables"].(map[string]any)
	assert.Contains(t, variables, "x")
	assert.Contains(t, variables, "s")
}

func TestProfileEndpointRejectsEmptyTable(t *testing.T) {
	server, _ := newTestServer(t)

	body := bytes.NewBufferString(`{"columns": []}`)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/profile", body))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProfileEndpointRejectsBadJSON(t *testing.T) {
	server, _ := newTestServer(t)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec,
		httptest.NewRequest(http.MethodPost, "/profile", bytes.NewBufferString("{")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReportLifecycle(t *testing.T) {
	server, _ := newTestServer(t)

	// Create.
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/profile", profileBody(t)))
	require.Equal(t, http.StatusCreated, rec.Code)
	var created struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))

	// List.
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var summaries []ports.ReportSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summaries))
	require.Len(t, summaries, 1)

	// Fetch.
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/"+created.ID, nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// Delete, then fetch again.
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/reports/"+created.ID, nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/"+created.ID, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetUnknownReport(t *testing.T) {
	server, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
