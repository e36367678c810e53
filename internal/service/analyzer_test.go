package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/halsokollen/ingredicheck/backend/internal/mocks"
	"github.com/halsokollen/ingredicheck/backend/internal/models"
	"github.com/halsokollen/ingredicheck/backend/internal/testhelpers"
	"github.com/halsokollen/ingredicheck/backend/internal/types"
)

func testAnalyzer(t *testing.T, labels ILabelStore, history IHistoryStore) *AnalysisService {
	lib := testhelpers.LoadTestLibrary(t)
	resolver := NewResolver(lib, NewFuzzySearcher(lib), nil, nil, nil)
	return NewAnalysisService(resolver, labels, history, AnalyzerConfig{
		FuzzyConfidenceFloor: 60,
		AutoAcceptThreshold:  90,
		SessionCacheSize:     100,
		SemanticTopK:         8,
		MaxConcurrent:        4,
	})
}

func TestAnalyzePreservesInputOrder(t *testing.T) {
	s := testAnalyzer(t, nil, nil)

	results, err := s.Analyze(context.Background(), "Zinc, Melatonin, N-Acetylcysteine", nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, "Zinc", results[0].Ingredient)
	assert.Equal(t, types.StatusSafe, results[0].Status)

	assert.Equal(t, "Melatonin", results[1].Ingredient)
	assert.Equal(t, types.StatusDanger, results[1].Status)

	assert.Equal(t, "N-Acetylcysteine", results[2].Ingredient)
	assert.Equal(t, types.StatusSafe, results[2].Status)
}

func TestAnalyzeEmptyInput(t *testing.T) {
	s := testAnalyzer(t, nil, nil)

	_, err := s.Analyze(context.Background(), "  ,; \n", nil, nil)
	assert.Error(t, err)
}

func TestAnalyzePerRequestOverrides(t *testing.T) {
	s := testAnalyzer(t, nil, nil)

	// Default threshold: the typo is ambiguous.
	results, err := s.Analyze(context.Background(), "melatonon", nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.StatusUnknown, results[0].Status)
	assert.Equal(t, "Unknown (Needs Selection)", results[0].StatusText)

	// Lowered threshold auto-accepts the 89% candidate.
	threshold := 89
	results, err = s.Analyze(context.Background(), "melatonon", &types.AnalysisOverrides{AutoAcceptThreshold: &threshold}, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.StatusDanger, results[0].Status)
	assert.Equal(t, "Non-Approved (Pharmaceutical Medicine) - 89% fuzzy match", results[0].StatusText)
}

func TestAnalyzeProgressCallback(t *testing.T) {
	s := testAnalyzer(t, nil, nil)

	var mu sync.Mutex
	var seen []types.Progress
	_, err := s.Analyze(context.Background(), "Zinc, Taurine, Creatine", nil, func(p types.Progress) {
		mu.Lock()
		seen = append(seen, p)
		mu.Unlock()
	})
	require.NoError(t, err)

	require.Len(t, seen, 3)
	for i, p := range seen {
		assert.Equal(t, i+1, p.Current)
		assert.Equal(t, 3, p.Total)
	}
}

func TestAnalyzeRecordsHistory(t *testing.T) {
	history := new(mocks.MockHistoryStore)
	history.On("Record", mock.Anything, mock.MatchedBy(func(r *models.SearchRecord) bool {
		return r.IngredientCount == 3 && r.DangerCount == 1 && r.UnknownCount == 1
	})).Return(nil).Once()

	s := testAnalyzer(t, nil, history)

	_, err := s.Analyze(context.Background(), "Melatonin, Zinc, zzzzzz", nil, nil)
	require.NoError(t, err)
	history.AssertExpectations(t)
}

func TestAnalyzeLabelStoreFailureIsNonFatal(t *testing.T) {
	labels := new(mocks.MockLabelStore)
	labels.On("Top", mock.Anything, mock.Anything).Return(nil, fmt.Errorf("db down"))

	s := testAnalyzer(t, labels, nil)

	results, err := s.Analyze(context.Background(), "Melatonin", nil, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, types.StatusDanger, results[0].Status)
	assert.False(t, results[0].HasManualLabel)
}

func TestRefreshClassificationPicksUpNewLabel(t *testing.T) {
	labels := new(mocks.MockLabelStore)
	labels.On("Top", mock.Anything, "taurine").Return(nil, nil).Once()
	labels.On("Top", mock.Anything, "taurine").Return(&models.CommunityLabel{
		ID:             uuid.New(),
		IngredientName: "taurine",
		Status:         string(types.StatusDanger),
		CustomText:     "Avoid with stimulants",
		NetVotes:       2,
	}, nil)

	s := testAnalyzer(t, labels, nil)

	results, err := s.Analyze(context.Background(), "Taurine", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, types.StatusSafe, results[0].Status)
	assert.False(t, results[0].HasManualLabel)

	refreshed, err := s.RefreshClassification(context.Background(), "Taurine")
	require.NoError(t, err)
	assert.Equal(t, types.StatusDanger, refreshed.Status)
	assert.Equal(t, "Avoid with stimulants", refreshed.StatusText)
	assert.True(t, refreshed.HasManualLabel)
	require.NotNil(t, refreshed.TopLabel)
	assert.Equal(t, 2, refreshed.TopLabel.NetVotes)
}

func TestRefreshClassificationUnknownIngredient(t *testing.T) {
	s := testAnalyzer(t, nil, nil)

	_, err := s.RefreshClassification(context.Background(), "Taurine")
	assert.Error(t, err)
}

func TestAnalyzeSupersedesRetainedEvidence(t *testing.T) {
	s := testAnalyzer(t, nil, nil)

	_, err := s.Analyze(context.Background(), "Taurine", nil, nil)
	require.NoError(t, err)
	_, err = s.Analyze(context.Background(), "Zinc", nil, nil)
	require.NoError(t, err)

	_, err = s.RefreshClassification(context.Background(), "Taurine")
	assert.Error(t, err)

	refreshed, err := s.RefreshClassification(context.Background(), "Zinc")
	require.NoError(t, err)
	assert.Equal(t, types.StatusSafe, refreshed.Status)
}
