package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/halsokollen/ingredicheck/backend/internal/api"
	"github.com/halsokollen/ingredicheck/backend/internal/service"
	"github.com/halsokollen/ingredicheck/backend/internal/testhelpers"
	"github.com/halsokollen/ingredicheck/backend/internal/types"
)

// buildRouter wires the real services against SQLite and the fixture
// datasets, without the external collaborators.
func buildRouter(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupMemoryDB(t)
	lib := testhelpers.LoadTestLibrary(t)

	matchStore := service.NewUserMatchService(db)
	labelStore := service.NewLabelService(db)
	historyStore := service.NewHistoryService(db)
	authService := service.NewAuthService(db, "integration-secret")

	fuzzy := service.NewFuzzySearcher(lib)
	resolver := service.NewResolver(lib, fuzzy, nil, nil, matchStore)
	analyzer := service.NewAnalysisService(resolver, labelStore, historyStore, service.AnalyzerConfig{
		FuzzyConfidenceFloor: 60,
		AutoAcceptThreshold:  90,
		SessionCacheSize:     100,
		SemanticTopK:         8,
		MaxConcurrent:        2,
	})

	router := gin.New()
	v1 := router.Group("/api/v1")
	api.NewAnalysisHandler(analyzer, func() bool { return true }).RegisterRoutes(v1)
	api.NewLabelHandler(labelStore, authService).RegisterRoutes(v1)
	api.NewMatchHandler(matchStore).RegisterRoutes(v1)
	api.NewHistoryHandler(historyStore).RegisterRoutes(v1)
	api.NewAuthHandler(authService).RegisterRoutes(v1)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, _ := http.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAnalyzeLabelRefreshFlow(t *testing.T) {
	router := buildRouter(t)

	// Register an account for label authorship.
	w := doJSON(t, router, "POST", "/api/v1/auth/register", "", types.RegisterRequest{
		Username: "labeler",
		Email:    "labeler@example.com",
		Password: "supersecret1",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var auth types.AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))
	require.NotEmpty(t, auth.Token)

	// First analysis: Ashwagandha is a non-medicine guide entry, so it
	// classifies safe.
	w = doJSON(t, router, "POST", "/api/v1/analyze", "", types.AnalyzeRequest{
		Ingredients: "Ashwagandha, Cordyceps militaris",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp types.AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 2, resp.Count)
	require.Equal(t, types.StatusSafe, resp.Results[0].Status)
	require.Equal(t, types.StatusDanger, resp.Results[1].Status)

	// A community label flips Ashwagandha to danger.
	w = doJSON(t, router, "POST", "/api/v1/labels", auth.Token, types.CreateLabelRequest{
		IngredientName: "Ashwagandha",
		Status:         "danger",
		CustomText:     "Avoid during pregnancy",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	// Refresh uses retained evidence plus the new label, no re-resolution.
	w = doJSON(t, router, "POST", "/api/v1/analyze/refresh", "", types.RefreshRequest{
		Ingredient: "Ashwagandha",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var refreshed types.ClassificationResult
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &refreshed))
	require.Equal(t, types.StatusDanger, refreshed.Status)
	require.Equal(t, "Avoid during pregnancy", refreshed.StatusText)
	require.True(t, refreshed.HasManualLabel)
}

func TestLabelVotingFlow(t *testing.T) {
	router := buildRouter(t)

	tokens := make([]string, 2)
	for i := range tokens {
		w := doJSON(t, router, "POST", "/api/v1/auth/register", "", types.RegisterRequest{
			Username: fmt.Sprintf("voter%d", i),
			Email:    fmt.Sprintf("voter%d@example.com", i),
			Password: "supersecret1",
		})
		require.Equal(t, http.StatusCreated, w.Code)
		var auth types.AuthResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &auth))
		tokens[i] = auth.Token
	}

	w := doJSON(t, router, "POST", "/api/v1/labels", tokens[0], types.CreateLabelRequest{
		IngredientName: "Taurine",
		Status:         "safe",
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var label struct {
		ID string `json:"id"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &label))

	// Both users upvote; a revote by the same user must not double-count.
	for _, token := range tokens {
		w = doJSON(t, router, "POST", "/api/v1/labels/"+label.ID+"/vote", token, types.VoteRequest{Value: 1})
		require.Equal(t, http.StatusOK, w.Code)
	}
	w = doJSON(t, router, "POST", "/api/v1/labels/"+label.ID+"/vote", tokens[0], types.VoteRequest{Value: 1})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, "GET", "/api/v1/labels/Taurine", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var listed struct {
		Labels []struct {
			NetVotes int `json:"net_votes"`
		} `json:"labels"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listed))
	require.Len(t, listed.Labels, 1)
	require.Equal(t, 2, listed.Labels[0].NetVotes)
}

func TestUserMatchShortCircuit(t *testing.T) {
	router := buildRouter(t)

	// Store a confirmed selection for an otherwise unknown spelling.
	w := doJSON(t, router, "POST", "/api/v1/matches", "", types.SaveMatchRequest{
		Ingredient: "cordiceps extract",
		Dataset:    "novel_food",
		EntryID:    "NF-001",
		EntryName:  "Cannabidiol",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, "POST", "/api/v1/analyze", "", types.AnalyzeRequest{
		Ingredients: "cordiceps extract",
	})
	require.Equal(t, http.StatusOK, w.Code)
	var resp types.AnalyzeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, 1, resp.Count)

	result := resp.Results[0]
	require.Equal(t, types.StatusDanger, result.Status)
	require.Contains(t, result.StatusText, "User Selected")
}
