package service

import (
	"context"
	"log"
	"sort"
	"strings"

	"github.com/halsokollen/ingredicheck/backend/internal/ingredient"
	"github.com/halsokollen/ingredicheck/backend/internal/models"
	"github.com/halsokollen/ingredicheck/backend/internal/reference"
	"github.com/halsokollen/ingredicheck/backend/internal/types"
)

// ResolverConfig holds the per-run cascade knobs.
type ResolverConfig struct {
	EnableTranslation    bool
	FuzzyConfidenceFloor int
	AutoAcceptThreshold  int
	SemanticTopK         int
}

// Resolver runs the tiered resolution cascade for one ingredient entry:
// exact lookup (with the known-safe backstop), translation-assisted lookup,
// prior user selection, then semantic/fuzzy search. Cheaper tiers
// short-circuit the more expensive ones. The translator, semantic searcher,
// and user-match store are all optional and best-effort.
type Resolver struct {
	lib   *reference.Library
	fuzzy *FuzzySearcher

	translator ITranslator
	semantic   ISemanticSearcher
	matches    IUserMatchStore

	pharmaByID map[string]*reference.SubstanceGuideEntry
	novelByID  map[string]*reference.NovelFoodEntry
}

func NewResolver(lib *reference.Library, fuzzy *FuzzySearcher, translator ITranslator, semantic ISemanticSearcher, matches IUserMatchStore) *Resolver {
	r := &Resolver{
		lib:        lib,
		fuzzy:      fuzzy,
		translator: translator,
		semantic:   semantic,
		matches:    matches,
		pharmaByID: make(map[string]*reference.SubstanceGuideEntry, len(lib.SubstanceGuide)),
		novelByID:  make(map[string]*reference.NovelFoodEntry, len(lib.NovelFoods)),
	}
	for _, e := range lib.SubstanceGuide {
		r.pharmaByID[e.Identity()] = e
	}
	for _, e := range lib.NovelFoods {
		r.novelByID[e.Identity()] = e
	}
	return r
}

// Resolve produces the evidence bundle for one ingredient entry. hasLabel
// tells the cascade a community override exists, which suppresses the
// translation and user-selection tiers (the override decides the verdict
// anyway).
func (r *Resolver) Resolve(ctx context.Context, entry ingredient.Entry, cache *SessionCache, hasLabel bool, cfg ResolverConfig) types.Resolution {
	var res types.Resolution

	// Tier 1: exact lookup per search term, memoized by normalized term.
	for _, term := range entry.SearchTerms {
		r.exactLookup(term, cache, types.MatchExact, nil, &res)
	}

	// Tier 2: translation-assisted lookup, only for unmatched ingredients
	// whose main name looks like source-language text.
	var translated *types.Translation
	if r.noMatches(&res) && !hasLabel && cfg.EnableTranslation && r.translator != nil && looksLikeSourceLanguage(entry.MainName) {
		t, err := r.translator.Translate(ctx, entry.MainName)
		if err != nil {
			log.Printf("translation unavailable for %q: %v", entry.MainName, err)
		} else if !strings.EqualFold(t.TranslatedText, t.OriginalText) {
			translated = t
			r.exactLookup(t.TranslatedText, cache, types.MatchTranslatedExact, t, &res)
			if r.noMatches(&res) {
				// Surface the attempt in the rationale without
				// treating it as a match.
				res.AttemptedTranslation = t
			}
		}
	}

	// Tier 3: previously confirmed user selection for this exact raw text.
	if r.noMatches(&res) && !hasLabel && r.matches != nil {
		if match, err := r.matches.Get(ctx, entry.Raw); err != nil {
			log.Printf("user-match store unavailable for %q: %v", entry.Raw, err)
		} else if match != nil {
			r.applyUserMatch(entry, match, &res)
			return res
		}
	}

	// Tier 4: semantic search, then local fuzzy fallback.
	if r.noMatches(&res) {
		r.fuzzyTier(ctx, entry, translated, cfg, &res)
	}

	return res
}

// exactLookup runs one tier-1 style lookup for a term: session cache, both
// indices, and the known-safe allow-list. kind and translation distinguish
// the plain pass from the translation-assisted pass.
func (r *Resolver) exactLookup(term string, cache *SessionCache, kind types.MatchKind, translation *types.Translation, res *types.Resolution) {
	normalized := reference.Normalize(term)
	if normalized == "" {
		return
	}

	outcome, cached := cache.Get(normalized)
	if !cached {
		if e := r.lib.SubstanceIndex.First(normalized); e != nil {
			outcome.Pharma = e
		} else if name, ok := r.lib.KnownSafe(normalized); ok {
			outcome.KnownSafeName = name
		}
		if e := r.lib.NovelFoodIndex.First(normalized); e != nil {
			outcome.Novel = e
		}
		cache.Put(normalized, outcome)
	}

	if pharma, ok := outcome.Pharma.(*reference.SubstanceGuideEntry); ok {
		ev := types.MatchEvidence{
			Term:       term,
			Dataset:    types.DatasetSubstanceGuide,
			Kind:       kind,
			Confidence: 100,
			EntryID:    pharma.Identity(),
			EntryName:  pharma.Name,
			IsMedicine: pharma.IsMedicine,
			Comment:    pharma.Comment,
		}
		stampTranslation(&ev, translation)
		res.PharmaMatches = append(res.PharmaMatches, ev)
	} else if outcome.KnownSafeName != "" {
		ev := types.MatchEvidence{
			Term:       term,
			Dataset:    types.DatasetSubstanceGuide,
			Kind:       types.MatchKnownSafe,
			Confidence: 100,
			EntryID:    outcome.KnownSafeName,
			EntryName:  outcome.KnownSafeName,
			Comment:    "Common mineral/vitamin from the known-safe list",
		}
		stampTranslation(&ev, translation)
		res.PharmaMatches = append(res.PharmaMatches, ev)
	}

	if novel, ok := outcome.Novel.(*reference.NovelFoodEntry); ok {
		ev := types.MatchEvidence{
			Term:            term,
			Dataset:         types.DatasetNovelFood,
			Kind:            kind,
			Confidence:      100,
			EntryID:         novel.Identity(),
			EntryName:       novel.Name,
			NovelFoodStatus: novel.Status,
		}
		stampTranslation(&ev, translation)
		res.NovelMatches = append(res.NovelMatches, ev)
	}
}

// applyUserMatch synthesizes user_selected evidence from a stored selection,
// re-hydrating dataset attributes from the current reference data.
func (r *Resolver) applyUserMatch(entry ingredient.Entry, match *models.UserMatch, res *types.Resolution) {
	switch types.Dataset(match.Dataset) {
	case types.DatasetSubstanceGuide:
		ev := types.MatchEvidence{
			Term:       entry.MainName,
			Dataset:    types.DatasetSubstanceGuide,
			Kind:       types.MatchUserSelected,
			Confidence: 100,
			EntryID:    match.EntryID,
			EntryName:  match.EntryName,
		}
		if e, ok := r.pharmaByID[match.EntryID]; ok {
			ev.EntryName = e.Name
			ev.IsMedicine = e.IsMedicine
			ev.Comment = e.Comment
		}
		res.PharmaMatches = append(res.PharmaMatches, ev)
	case types.DatasetNovelFood:
		ev := types.MatchEvidence{
			Term:       entry.MainName,
			Dataset:    types.DatasetNovelFood,
			Kind:       types.MatchUserSelected,
			Confidence: 100,
			EntryID:    match.EntryID,
			EntryName:  match.EntryName,
		}
		if e, ok := r.novelByID[match.EntryID]; ok {
			ev.EntryName = e.Name
			ev.NovelFoodStatus = e.Status
		}
		res.NovelMatches = append(res.NovelMatches, ev)
	}
}

// fuzzyTier collects semantic or local fuzzy candidates, auto-accepts a
// sufficiently confident top candidate, and otherwise leaves the shortlist
// for user disambiguation.
func (r *Resolver) fuzzyTier(ctx context.Context, entry ingredient.Entry, translated *types.Translation, cfg ResolverConfig, res *types.Resolution) {
	kind := types.MatchFuzzyAuto
	var candidates []types.FuzzyCandidate

	if r.semantic != nil {
		found, err := r.semantic.Search(ctx, entry.MainName, cfg.SemanticTopK)
		if err != nil {
			log.Printf("semantic search unavailable for %q: %v", entry.MainName, err)
		}
		for _, c := range found {
			if c.Confidence >= cfg.FuzzyConfidenceFloor {
				candidates = append(candidates, c)
			}
		}
		if len(candidates) > 0 {
			kind = types.MatchSemantic
		}
	}

	if len(candidates) == 0 {
		queries := append([]string{}, entry.SearchTerms...)
		if translated != nil {
			queries = append(queries, translated.TranslatedText)
		}
		for _, q := range queries {
			candidates = append(candidates, r.fuzzy.Search(q, types.DatasetSubstanceGuide, cfg.FuzzyConfidenceFloor)...)
			candidates = append(candidates, r.fuzzy.Search(q, types.DatasetNovelFood, cfg.FuzzyConfidenceFloor)...)
		}
	}

	candidates = dedupeCandidates(candidates)
	if len(candidates) > fuzzyMaxResults {
		candidates = candidates[:fuzzyMaxResults]
	}
	if len(candidates) == 0 {
		return
	}

	if top := candidates[0]; top.Confidence >= cfg.AutoAcceptThreshold {
		r.acceptCandidate(entry, top, kind, res)
		res.Candidates = candidates
		return
	}

	res.Candidates = candidates
	res.NeedsSelection = true
}

// acceptCandidate turns a shortlist candidate into evidence without user
// interaction.
func (r *Resolver) acceptCandidate(entry ingredient.Entry, c types.FuzzyCandidate, kind types.MatchKind, res *types.Resolution) {
	ev := types.MatchEvidence{
		Term:       entry.MainName,
		Dataset:    c.Dataset,
		Kind:       kind,
		Confidence: c.Confidence,
		EntryID:    c.EntryID,
		EntryName:  c.EntryName,
	}
	switch c.Dataset {
	case types.DatasetSubstanceGuide:
		if e, ok := r.pharmaByID[c.EntryID]; ok {
			ev.IsMedicine = e.IsMedicine
			ev.Comment = e.Comment
		}
		res.PharmaMatches = append(res.PharmaMatches, ev)
	case types.DatasetNovelFood:
		if e, ok := r.novelByID[c.EntryID]; ok {
			ev.NovelFoodStatus = e.Status
		}
		res.NovelMatches = append(res.NovelMatches, ev)
	}
}

// SelectCandidate turns a user-picked shortlist candidate into evidence and
// persists the selection for future runs. Persistence is best-effort.
func (r *Resolver) SelectCandidate(ctx context.Context, entry ingredient.Entry, c types.FuzzyCandidate, res *types.Resolution) {
	r.acceptCandidate(entry, c, types.MatchFuzzyManual, res)
	res.NeedsSelection = false
	if r.matches == nil {
		return
	}
	err := r.matches.Save(ctx, &models.UserMatch{
		Ingredient: entry.Raw,
		Dataset:    string(c.Dataset),
		EntryID:    c.EntryID,
		EntryName:  c.EntryName,
	})
	if err != nil {
		log.Printf("failed to persist user match for %q: %v", entry.Raw, err)
	}
}

func (r *Resolver) noMatches(res *types.Resolution) bool {
	return len(res.PharmaMatches) == 0 && len(res.NovelMatches) == 0
}

func stampTranslation(ev *types.MatchEvidence, t *types.Translation) {
	if t == nil {
		return
	}
	ev.TranslatedFrom = t.OriginalText
	ev.TranslatedTo = t.TranslatedText
}

// dedupeCandidates merges candidates from multiple queries: best confidence
// per (dataset, entry), sorted descending.
func dedupeCandidates(candidates []types.FuzzyCandidate) []types.FuzzyCandidate {
	type key struct {
		dataset types.Dataset
		id      string
	}
	best := make(map[key]types.FuzzyCandidate, len(candidates))
	for _, c := range candidates {
		k := key{c.Dataset, c.EntryID}
		if prev, ok := best[k]; !ok || c.Confidence > prev.Confidence {
			best[k] = c
		}
	}
	out := make([]types.FuzzyCandidate, 0, len(best))
	for _, c := range best {
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].EntryName < out[j].EntryName
	})
	return out
}

// looksLikeSourceLanguage reports whether the text contains Swedish-specific
// accented characters, the trigger for the translation tier.
func looksLikeSourceLanguage(text string) bool {
	return strings.ContainsAny(text, "åäöÅÄÖéÉ")
}
