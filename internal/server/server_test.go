package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halsokollen/ingredicheck/backend/config"
	"github.com/halsokollen/ingredicheck/backend/internal/testhelpers"
	"github.com/halsokollen/ingredicheck/backend/internal/types"
)

func testServer(t *testing.T, withDatasets bool) *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		cfg: &config.Config{
			ServerHost:       "localhost",
			ServerPort:       "8080",
			JWTSecret:            "test-secret",
			FuzzyConfidenceFloor: 60,
			AutoAcceptThreshold:  90,
			SessionCacheSize:     100,
			SemanticTopK:         8,
			MaxConcurrent:        2,
		},
		db: testhelpers.SetupMemoryDB(t),
	}
	if withDatasets {
		s.lib = testhelpers.LoadTestLibrary(t)
	}
	s.router = s.buildRouter()
	return s
}

func TestHealthEndpoint(t *testing.T) {
	t.Run("ok with datasets", func(t *testing.T) {
		s := testServer(t, true)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/health", nil)
		s.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("degraded without datasets", func(t *testing.T) {
		s := testServer(t, false)

		w := httptest.NewRecorder()
		req, _ := http.NewRequest("GET", "/health", nil)
		s.router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

func TestAnalyzeEndpoint(t *testing.T) {
	s := testServer(t, true)

	body := testhelpers.JSONMarshal(t, types.AnalyzeRequest{
		Ingredients: "NAC, Vitamin C, Melatonin",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp types.AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 3, resp.Count)

	assert.Equal(t, types.StatusSafe, resp.Results[0].Status)
	assert.Equal(t, types.StatusSafe, resp.Results[1].Status)
	assert.Equal(t, types.StatusDanger, resp.Results[2].Status)
}

func TestAnalyzeUnavailableWithoutDatasets(t *testing.T) {
	s := testServer(t, false)

	body := testhelpers.JSONMarshal(t, types.AnalyzeRequest{Ingredients: "NAC"})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest("POST", "/api/v1/analyze", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
