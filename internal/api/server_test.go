package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arashi-Shisy/0124newsim/internal/engine"
	"github.com/Arashi-Shisy/0124newsim/internal/entropy"
	"github.com/Arashi-Shisy/0124newsim/internal/persistence"
	"github.com/Arashi-Shisy/0124newsim/internal/seed"
	"github.com/Arashi-Shisy/0124newsim/internal/state"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	db, err := persistence.Open(filepath.Join(t.TempDir(), "world.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	w := seed.NewWorld("api-test", entropy.NewSource(5))
	w.AddNews(1, state.NewsInfo, "world created")
	require.NoError(t, db.SaveWorld(w))

	return New(db, engine.New(5), nil)
}

func get(t *testing.T, s *Server, path string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec, body
}

func TestStateEndpoint(t *testing.T) {
	s := testServer(t)
	rec, body := get(t, s, "/api/v1/state")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "api-test", body["run_id"])
	assert.Equal(t, float64(1), body["week"])
	assert.Equal(t, false, body["game_over"])
	assert.Greater(t, body["companies"], float64(10))
}

func TestTickAdvancesWeek(t *testing.T) {
	s := testServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/tick", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(2), body["week"])

	_, stateBody := get(t, s, "/api/v1/state")
	assert.Equal(t, float64(2), stateBody["week"])
}

func TestCompaniesEndpoint(t *testing.T) {
	s := testServer(t)
	rec, body := get(t, s, "/api/v1/companies")

	assert.Equal(t, http.StatusOK, rec.Code)
	companies := body["companies"].([]any)
	require.NotEmpty(t, companies)
	first := companies[0].(map[string]any)
	assert.Equal(t, "Player Corp", first["name"])
	assert.Equal(t, true, first["active"])
}

func TestCapabilitiesEndpoint(t *testing.T) {
	s := testServer(t)
	rec, body := get(t, s, "/api/v1/company/1/capabilities")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, "skill")
	assert.Contains(t, body, "sufficiency")
	assert.Contains(t, body, "throughput")
}

func TestCapabilitiesUnknownCompany(t *testing.T) {
	s := testServer(t)
	rec, _ := get(t, s, "/api/v1/company/99999/capabilities")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReportValidation(t *testing.T) {
	s := testServer(t)

	rec, _ := get(t, s, "/api/v1/company/1/report?period=monthly")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = get(t, s, "/api/v1/company/1/report?period=quarterly")
	assert.Equal(t, http.StatusNotFound, rec.Code, "no quarter has closed yet")

	rec, _ = get(t, s, "/api/v1/company/abc/report")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestNewsEndpoint(t *testing.T) {
	s := testServer(t)
	rec, body := get(t, s, "/api/v1/news?limit=5")

	assert.Equal(t, http.StatusOK, rec.Code)
	news := body["news"].([]any)
	require.NotEmpty(t, news)
	line := news[0].(map[string]any)
	assert.Equal(t, "world created", line["message"])

	rec, _ = get(t, s, "/api/v1/news?limit=0")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
