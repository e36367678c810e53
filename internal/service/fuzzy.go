package service

import (
	"math"
	"sort"

	"github.com/agnivade/levenshtein"
	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/halsokollen/ingredicheck/backend/internal/reference"
	"github.com/halsokollen/ingredicheck/backend/internal/types"
)

const (
	// fuzzyMinMatchChars filters out single- and two-character noise.
	fuzzyMinMatchChars = 3
	// fuzzyMaxResults caps the shortlist per query.
	fuzzyMaxResults = 8
)

type fuzzyTarget struct {
	text  string // normalized name or synonym
	entry reference.Entry
}

// FuzzySearcher runs local approximate string matching over the reference
// datasets. Scores follow the 0 (perfect) to 1 (no match) convention and are
// converted to a 0-100 confidence via a linear inverse mapping. Built once
// at startup; read-only afterwards.
type FuzzySearcher struct {
	pharma []fuzzyTarget
	novel  []fuzzyTarget
}

func NewFuzzySearcher(lib *reference.Library) *FuzzySearcher {
	f := &FuzzySearcher{}
	for _, e := range lib.SubstanceGuide {
		f.pharma = appendTargets(f.pharma, e)
	}
	for _, e := range lib.NovelFoods {
		f.novel = appendTargets(f.novel, e)
	}
	return f
}

func appendTargets(targets []fuzzyTarget, entry reference.Entry) []fuzzyTarget {
	add := func(name string) {
		n := reference.Normalize(name)
		if len(n) >= fuzzyMinMatchChars {
			targets = append(targets, fuzzyTarget{text: n, entry: entry})
		}
	}
	add(entry.CanonicalName())
	for _, syn := range entry.Synonyms() {
		add(syn)
	}
	return targets
}

// Search returns the best candidates for the query in one dataset, filtered
// by the confidence floor, deduplicated by entry identity, sorted by
// confidence descending, and capped.
func (f *FuzzySearcher) Search(query string, dataset types.Dataset, confidenceFloor int) []types.FuzzyCandidate {
	q := reference.Normalize(query)
	if len(q) < fuzzyMinMatchChars {
		return nil
	}

	targets := f.pharma
	if dataset == types.DatasetNovelFood {
		targets = f.novel
	}

	best := make(map[string]types.FuzzyCandidate)
	for _, t := range targets {
		conf := matchConfidence(q, t.text)
		if conf < confidenceFloor {
			continue
		}
		id := t.entry.Identity()
		if prev, ok := best[id]; ok && prev.Confidence >= conf {
			continue
		}
		best[id] = types.FuzzyCandidate{
			Dataset:     dataset,
			EntryID:     id,
			EntryName:   t.entry.CanonicalName(),
			MatchedText: t.text,
			Confidence:  conf,
		}
	}

	candidates := make([]types.FuzzyCandidate, 0, len(best))
	for _, c := range best {
		candidates = append(candidates, c)
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Confidence != candidates[j].Confidence {
			return candidates[i].Confidence > candidates[j].Confidence
		}
		return candidates[i].EntryName < candidates[j].EntryName
	})
	if len(candidates) > fuzzyMaxResults {
		candidates = candidates[:fuzzyMaxResults]
	}
	return candidates
}

// matchConfidence scores query against target on a 0-100 scale. Edit
// distance is the primary signal; a subsequence hit (query contained in
// order inside a longer target, e.g. a name embedded in a botanical synonym)
// is scored by length ratio and the better of the two wins.
func matchConfidence(query, target string) int {
	dist := levenshtein.ComputeDistance(query, target)
	longest := len(query)
	if len(target) > longest {
		longest = len(target)
	}
	if longest == 0 {
		return 0
	}
	score := float64(dist) / float64(longest)
	conf := int(math.Round((1 - score) * 100))

	if len(target) > len(query) && fuzzy.MatchNormalizedFold(query, target) {
		subConf := int(math.Round(float64(len(query)) / float64(len(target)) * 100))
		if subConf > conf {
			conf = subConf
		}
	}
	return conf
}
