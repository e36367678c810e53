package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/halsokollen/ingredicheck/backend/internal/ingredient"
	"github.com/halsokollen/ingredicheck/backend/internal/models"
	"github.com/halsokollen/ingredicheck/backend/internal/reference"
	"github.com/halsokollen/ingredicheck/backend/internal/types"
)

// AnalyzerConfig carries the tunable analysis knobs, normally sourced from
// the config package and overridable per request.
type AnalyzerConfig struct {
	EnableTranslation       bool
	FuzzyConfidenceFloor    int
	AutoAcceptThreshold     int
	SessionCacheSize        int
	SemanticTopK            int
	MaxConcurrent           int
	NovelOnlyAuthorisedSafe bool
}

// DefaultAnalyzerConfig returns the stock knob values.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		EnableTranslation:    true,
		FuzzyConfidenceFloor: 60,
		AutoAcceptThreshold:  90,
		SessionCacheSize:     1000,
		SemanticTopK:         8,
		MaxConcurrent:        4,
	}
}

// retained is the evidence kept per analyzed ingredient so a label change
// can be reclassified without re-running the cascade.
type retained struct {
	entry ingredient.Entry
	res   types.Resolution
}

// AnalysisService drives the full pipeline: tokenize, resolve each entry
// concurrently, classify, and assemble results in input order. It retains
// each run's evidence bundles so RefreshClassification can recompute a
// verdict when a community label changes. A new Analyze call supersedes any
// still-in-flight run: only the latest run's results are retained.
type AnalysisService struct {
	resolver *Resolver
	labels   ILabelStore
	history  IHistoryStore
	cfg      AnalyzerConfig

	mu       sync.Mutex
	runSeq   uint64
	evidence map[string]retained
}

func NewAnalysisService(resolver *Resolver, labels ILabelStore, history IHistoryStore, cfg AnalyzerConfig) *AnalysisService {
	if cfg.SessionCacheSize <= 0 {
		cfg.SessionCacheSize = 1000
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = 1
	}
	if cfg.SemanticTopK <= 0 {
		cfg.SemanticTopK = 8
	}
	return &AnalysisService{
		resolver: resolver,
		labels:   labels,
		history:  history,
		cfg:      cfg,
		evidence: make(map[string]retained),
	}
}

// Analyze classifies every ingredient in the raw list. The progress callback
// may be nil; when set it receives a coarse signal after each classified
// entry. Results preserve input order regardless of per-entry latency.
func (s *AnalysisService) Analyze(ctx context.Context, rawList string, overrides *types.AnalysisOverrides, progress func(types.Progress)) ([]types.ClassificationResult, error) {
	entries := ingredient.Tokenize(rawList)
	if len(entries) == 0 {
		return nil, fmt.Errorf("no ingredients found in input")
	}

	cfg := s.cfg
	if overrides != nil {
		if overrides.EnableTranslation != nil {
			cfg.EnableTranslation = *overrides.EnableTranslation
		}
		if overrides.FuzzyConfidenceFloor != nil {
			cfg.FuzzyConfidenceFloor = *overrides.FuzzyConfidenceFloor
		}
		if overrides.AutoAcceptThreshold != nil {
			cfg.AutoAcceptThreshold = *overrides.AutoAcceptThreshold
		}
	}

	cache, err := NewSessionCache(cfg.SessionCacheSize)
	if err != nil {
		return nil, fmt.Errorf("session cache: %w", err)
	}

	s.mu.Lock()
	s.runSeq++
	run := s.runSeq
	s.mu.Unlock()

	results := make([]types.ClassificationResult, len(entries))
	var done int
	var progressMu sync.Mutex

	sem := make(chan struct{}, cfg.MaxConcurrent)
	var wg sync.WaitGroup
	for i, entry := range entries {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, entry ingredient.Entry) {
			defer wg.Done()
			defer func() { <-sem }()

			results[i] = s.classifyEntry(ctx, entry, cache, cfg)

			if progress != nil {
				progressMu.Lock()
				done++
				progress(types.Progress{Current: done, Total: len(entries)})
				progressMu.Unlock()
			}
		}(i, entry)
	}
	wg.Wait()

	s.retain(run, entries, results)
	s.recordHistory(ctx, rawList, results)

	return results, nil
}

// classifyEntry resolves and classifies one ingredient entry.
func (s *AnalysisService) classifyEntry(ctx context.Context, entry ingredient.Entry, cache *SessionCache, cfg AnalyzerConfig) types.ClassificationResult {
	label := s.topLabel(ctx, entry)

	res := s.resolver.Resolve(ctx, entry, cache, label != nil, ResolverConfig{
		EnableTranslation:    cfg.EnableTranslation,
		FuzzyConfidenceFloor: cfg.FuzzyConfidenceFloor,
		AutoAcceptThreshold:  cfg.AutoAcceptThreshold,
		SemanticTopK:         cfg.SemanticTopK,
	})

	verdict := Classify(res, label, ClassifierOptions{NovelOnlyAuthorisedSafe: cfg.NovelOnlyAuthorisedSafe})

	return types.ClassificationResult{
		Ingredient:     entry.Raw,
		MainName:       entry.MainName,
		Parenthetical:  entry.Parenthetical,
		SearchTerms:    entry.SearchTerms,
		Status:         verdict.Status,
		StatusText:     verdict.StatusText,
		Rationale:      verdict.Rationale,
		Evidence:       res,
		HasManualLabel: label != nil,
		TopLabel:       label,
	}
}

// RefreshClassification recomputes one ingredient's verdict from its
// retained evidence and the current top community label, without re-running
// the cascade. Returns an error if the ingredient was not part of the last
// analysis run.
func (s *AnalysisService) RefreshClassification(ctx context.Context, ingredientName string) (*types.ClassificationResult, error) {
	key := reference.Normalize(ingredientName)

	s.mu.Lock()
	kept, ok := s.evidence[key]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("no retained evidence for %q", ingredientName)
	}

	label := s.topLabel(ctx, kept.entry)
	verdict := Classify(kept.res, label, ClassifierOptions{NovelOnlyAuthorisedSafe: s.cfg.NovelOnlyAuthorisedSafe})

	result := types.ClassificationResult{
		Ingredient:     kept.entry.Raw,
		MainName:       kept.entry.MainName,
		Parenthetical:  kept.entry.Parenthetical,
		SearchTerms:    kept.entry.SearchTerms,
		Status:         verdict.Status,
		StatusText:     verdict.StatusText,
		Rationale:      verdict.Rationale,
		Evidence:       kept.res,
		HasManualLabel: label != nil,
		TopLabel:       label,
	}
	return &result, nil
}

// topLabel fetches the effective community override for an entry.
// Best-effort: store failures classify as if no label exists.
func (s *AnalysisService) topLabel(ctx context.Context, entry ingredient.Entry) *types.LabelOverride {
	if s.labels == nil {
		return nil
	}
	label, err := s.labels.Top(ctx, reference.Normalize(entry.MainName))
	if err != nil {
		log.Printf("label store unavailable for %q: %v", entry.MainName, err)
		return nil
	}
	if label == nil {
		return nil
	}
	return &types.LabelOverride{
		ID:          label.ID,
		Status:      types.Status(label.Status),
		CustomText:  label.CustomText,
		CustomColor: label.CustomColor,
		NetVotes:    label.NetVotes,
	}
}

// retain stores the run's evidence bundles, unless a newer run already
// superseded this one.
func (s *AnalysisService) retain(run uint64, entries []ingredient.Entry, results []types.ClassificationResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if run != s.runSeq {
		// A newer Analyze call started while this one was running; its
		// results are the ones surfaced.
		return
	}
	s.evidence = make(map[string]retained, len(entries)*2)
	for i, entry := range entries {
		kept := retained{entry: entry, res: results[i].Evidence}
		s.evidence[reference.Normalize(entry.Raw)] = kept
		if key := reference.Normalize(entry.MainName); key != "" {
			s.evidence[key] = kept
		}
	}
}

// recordHistory persists the run summary, best-effort.
func (s *AnalysisService) recordHistory(ctx context.Context, rawList string, results []types.ClassificationResult) {
	if s.history == nil {
		return
	}
	record := &models.SearchRecord{
		Query:           rawList,
		IngredientCount: len(results),
	}
	for _, r := range results {
		switch r.Status {
		case types.StatusDanger:
			record.DangerCount++
		case types.StatusUnknown:
			record.UnknownCount++
		}
	}
	if err := s.history.Record(ctx, record); err != nil {
		log.Printf("failed to record analysis history: %v", err)
	}
}
