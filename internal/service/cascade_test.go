package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/halsokollen/ingredicheck/backend/internal/ingredient"
	"github.com/halsokollen/ingredicheck/backend/internal/mocks"
	"github.com/halsokollen/ingredicheck/backend/internal/models"
	"github.com/halsokollen/ingredicheck/backend/internal/testhelpers"
	"github.com/halsokollen/ingredicheck/backend/internal/types"
)

func testResolverConfig() ResolverConfig {
	return ResolverConfig{
		EnableTranslation:    true,
		FuzzyConfidenceFloor: 60,
		AutoAcceptThreshold:  90,
		SemanticTopK:         8,
	}
}

func entryFor(t *testing.T, raw string) ingredient.Entry {
	entries := ingredient.Tokenize(raw)
	require.Len(t, entries, 1)
	return entries[0]
}

func newCache(t *testing.T) *SessionCache {
	cache, err := NewSessionCache(100)
	require.NoError(t, err)
	return cache
}

func TestResolveExactMatchShortCircuitsLaterTiers(t *testing.T) {
	lib := testhelpers.LoadTestLibrary(t)
	translator := new(mocks.MockTranslator)
	semantic := new(mocks.MockSemanticSearcher)
	matchStore := new(mocks.MockUserMatchStore)

	r := NewResolver(lib, NewFuzzySearcher(lib), translator, semantic, matchStore)

	res := r.Resolve(context.Background(), entryFor(t, "Melatonin"), newCache(t), false, testResolverConfig())

	require.Len(t, res.PharmaMatches, 1)
	assert.Equal(t, types.MatchExact, res.PharmaMatches[0].Kind)
	assert.True(t, res.PharmaMatches[0].IsMedicine)

	// None of the expensive tiers ran.
	translator.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything)
	semantic.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
	matchStore.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestResolveKnownSafeBackstop(t *testing.T) {
	lib := testhelpers.LoadTestLibrary(t)
	r := NewResolver(lib, NewFuzzySearcher(lib), nil, nil, nil)

	res := r.Resolve(context.Background(), entryFor(t, "Kalcium"), newCache(t), false, testResolverConfig())

	require.Len(t, res.PharmaMatches, 1)
	assert.Equal(t, types.MatchKnownSafe, res.PharmaMatches[0].Kind)
	assert.Equal(t, "Kalcium", res.PharmaMatches[0].EntryName)
}

func TestResolveTranslationAssistedExact(t *testing.T) {
	lib := testhelpers.LoadTestLibrary(t)
	translator := new(mocks.MockTranslator)
	translator.On("Translate", mock.Anything, "Chiafröolja").Return(&types.Translation{
		OriginalText:     "Chiafröolja",
		TranslatedText:   "Chia seed oil",
		DetectedLanguage: "sv",
	}, nil)

	r := NewResolver(lib, NewFuzzySearcher(lib), translator, nil, nil)

	res := r.Resolve(context.Background(), entryFor(t, "Chiafröolja"), newCache(t), false, testResolverConfig())

	require.Len(t, res.NovelMatches, 1)
	ev := res.NovelMatches[0]
	assert.Equal(t, types.MatchTranslatedExact, ev.Kind)
	assert.Equal(t, "Chia seed oil", ev.EntryName)
	assert.Equal(t, "Chiafröolja", ev.TranslatedFrom)
	translator.AssertExpectations(t)
}

func TestResolveTranslationRequiresSourceLanguageHint(t *testing.T) {
	lib := testhelpers.LoadTestLibrary(t)
	translator := new(mocks.MockTranslator)

	r := NewResolver(lib, NewFuzzySearcher(lib), translator, nil, nil)

	// No Swedish characters in the name, so the translator is never asked.
	r.Resolve(context.Background(), entryFor(t, "mystery powder"), newCache(t), false, testResolverConfig())
	translator.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything)
}

func TestResolveTranslationSuppressedByLabel(t *testing.T) {
	lib := testhelpers.LoadTestLibrary(t)
	translator := new(mocks.MockTranslator)

	r := NewResolver(lib, NewFuzzySearcher(lib), translator, nil, nil)

	r.Resolve(context.Background(), entryFor(t, "Blåbärsextrakt"), newCache(t), true, testResolverConfig())
	translator.AssertNotCalled(t, "Translate", mock.Anything, mock.Anything)
}

func TestResolveRecordsAttemptedTranslation(t *testing.T) {
	lib := testhelpers.LoadTestLibrary(t)
	translator := new(mocks.MockTranslator)
	translator.On("Translate", mock.Anything, "Blåbärsextrakt").Return(&types.Translation{
		OriginalText:   "Blåbärsextrakt",
		TranslatedText: "bilberry extract",
	}, nil)

	r := NewResolver(lib, NewFuzzySearcher(lib), translator, nil, nil)

	res := r.Resolve(context.Background(), entryFor(t, "Blåbärsextrakt"), newCache(t), false, testResolverConfig())

	assert.Empty(t, res.PharmaMatches)
	require.NotNil(t, res.AttemptedTranslation)
	assert.Equal(t, "bilberry extract", res.AttemptedTranslation.TranslatedText)
}

func TestResolveUserMatchShortCircuit(t *testing.T) {
	lib := testhelpers.LoadTestLibrary(t)
	semantic := new(mocks.MockSemanticSearcher)
	matchStore := new(mocks.MockUserMatchStore)
	matchStore.On("Get", mock.Anything, "cordiceps extract").Return(&models.UserMatch{
		Ingredient: "cordiceps extract",
		Dataset:    "novel_food",
		EntryID:    "NF-001",
		EntryName:  "Cannabidiol",
	}, nil)

	r := NewResolver(lib, NewFuzzySearcher(lib), nil, semantic, matchStore)

	res := r.Resolve(context.Background(), entryFor(t, "cordiceps extract"), newCache(t), false, testResolverConfig())

	require.Len(t, res.NovelMatches, 1)
	ev := res.NovelMatches[0]
	assert.Equal(t, types.MatchUserSelected, ev.Kind)
	// Re-hydrated from the current reference data, not the stored copy.
	assert.Equal(t, "Cannabidiol", ev.EntryName)
	assert.NotEmpty(t, ev.NovelFoodStatus)

	semantic.AssertNotCalled(t, "Search", mock.Anything, mock.Anything, mock.Anything)
}

func TestResolveSemanticAutoAccept(t *testing.T) {
	lib := testhelpers.LoadTestLibrary(t)
	matchStore := new(mocks.MockUserMatchStore)
	matchStore.On("Get", mock.Anything, mock.Anything).Return(nil, nil)
	semantic := new(mocks.MockSemanticSearcher)
	semantic.On("Search", mock.Anything, "hericium powder", 8).Return([]types.FuzzyCandidate{
		{Dataset: types.DatasetNovelFood, EntryID: "NF-003", EntryName: "Lion's mane", Confidence: 94},
	}, nil)

	r := NewResolver(lib, NewFuzzySearcher(lib), nil, semantic, matchStore)

	res := r.Resolve(context.Background(), entryFor(t, "hericium powder"), newCache(t), false, testResolverConfig())

	require.Len(t, res.NovelMatches, 1)
	assert.Equal(t, types.MatchSemantic, res.NovelMatches[0].Kind)
	assert.Equal(t, 94, res.NovelMatches[0].Confidence)
	assert.False(t, res.NeedsSelection)
}

func TestResolveFuzzyNeedsSelectionBelowThreshold(t *testing.T) {
	lib := testhelpers.LoadTestLibrary(t)
	r := NewResolver(lib, NewFuzzySearcher(lib), nil, nil, nil)

	// One edit away from Melatonin scores 89, just under the threshold.
	res := r.Resolve(context.Background(), entryFor(t, "melatonon"), newCache(t), false, testResolverConfig())

	assert.Empty(t, res.PharmaMatches)
	assert.True(t, res.NeedsSelection)
	require.NotEmpty(t, res.Candidates)
	assert.Equal(t, "Melatonin", res.Candidates[0].EntryName)
	assert.Equal(t, 89, res.Candidates[0].Confidence)
}

func TestResolveFuzzyAutoAcceptAtThreshold(t *testing.T) {
	lib := testhelpers.LoadTestLibrary(t)
	r := NewResolver(lib, NewFuzzySearcher(lib), nil, nil, nil)

	cfg := testResolverConfig()
	cfg.AutoAcceptThreshold = 89

	res := r.Resolve(context.Background(), entryFor(t, "melatonon"), newCache(t), false, cfg)

	require.Len(t, res.PharmaMatches, 1)
	assert.Equal(t, types.MatchFuzzyAuto, res.PharmaMatches[0].Kind)
	assert.Equal(t, "Melatonin", res.PharmaMatches[0].EntryName)
	assert.True(t, res.PharmaMatches[0].IsMedicine)
	assert.False(t, res.NeedsSelection)
}

func TestResolveSemanticFailureFallsBackToLocalFuzzy(t *testing.T) {
	lib := testhelpers.LoadTestLibrary(t)
	semantic := new(mocks.MockSemanticSearcher)
	semantic.On("Search", mock.Anything, mock.Anything, mock.Anything).Return(nil, fmt.Errorf("connection refused"))

	r := NewResolver(lib, NewFuzzySearcher(lib), nil, semantic, nil)

	res := r.Resolve(context.Background(), entryFor(t, "melatonon"), newCache(t), false, testResolverConfig())

	assert.True(t, res.NeedsSelection)
	require.NotEmpty(t, res.Candidates)
	assert.Equal(t, "Melatonin", res.Candidates[0].EntryName)
}

func TestSelectCandidatePersistsChoice(t *testing.T) {
	lib := testhelpers.LoadTestLibrary(t)
	matchStore := new(mocks.MockUserMatchStore)
	matchStore.On("Get", mock.Anything, "melatonon").Return(nil, nil)
	matchStore.On("Save", mock.Anything, mock.MatchedBy(func(m *models.UserMatch) bool {
		return m.Ingredient == "melatonon" && m.EntryName == "Melatonin"
	})).Return(nil)

	r := NewResolver(lib, NewFuzzySearcher(lib), nil, nil, matchStore)

	entry := entryFor(t, "melatonon")
	res := r.Resolve(context.Background(), entry, newCache(t), false, testResolverConfig())
	require.True(t, res.NeedsSelection)

	r.SelectCandidate(context.Background(), entry, res.Candidates[0], &res)

	assert.False(t, res.NeedsSelection)
	require.Len(t, res.PharmaMatches, 1)
	assert.Equal(t, types.MatchFuzzyManual, res.PharmaMatches[0].Kind)
	matchStore.AssertExpectations(t)
}

func TestResolveSessionCacheMemoizesLookups(t *testing.T) {
	lib := testhelpers.LoadTestLibrary(t)
	r := NewResolver(lib, NewFuzzySearcher(lib), nil, nil, nil)

	cache := newCache(t)
	r.Resolve(context.Background(), entryFor(t, "Melatonin"), cache, false, testResolverConfig())

	outcome, ok := cache.Get("melatonin")
	require.True(t, ok)
	require.NotNil(t, outcome.Pharma)
	assert.Equal(t, "Melatonin", outcome.Pharma.CanonicalName())
}
