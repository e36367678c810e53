package reference

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
)

// Library holds both loaded reference datasets, their indices, and the
// known-safe allow-list. It is immutable after Load returns.
type Library struct {
	SubstanceGuide []*SubstanceGuideEntry
	NovelFoods     []*NovelFoodEntry

	SubstanceIndex *Index
	NovelFoodIndex *Index

	// knownSafe maps normalized names from the allow-list to the raw
	// spelling they were listed under.
	knownSafe map[string]string
}

// KnownSafeList is the on-disk shape of the allow-list of uncontroversial
// minerals and vitamins. Versioned data, not code: extend the file, not the
// classifier.
type KnownSafeList struct {
	Version int      `json:"version"`
	Names   []string `json:"names"`
}

// Load reads both datasets and the allow-list from JSON files and builds the
// lookup indices. A missing or malformed dataset file is fatal to readiness;
// individual malformed rows are skipped with a logged count.
func Load(substanceGuidePath, novelFoodPath, knownSafePath string) (*Library, error) {
	lib := &Library{knownSafe: make(map[string]string)}

	guideRows, skipped, err := loadRows(substanceGuidePath)
	if err != nil {
		return nil, fmt.Errorf("substance guide: %w", err)
	}
	for _, raw := range guideRows {
		var entry SubstanceGuideEntry
		if err := json.Unmarshal(raw, &entry); err != nil || entry.Name == "" {
			skipped++
			continue
		}
		lib.SubstanceGuide = append(lib.SubstanceGuide, &entry)
	}
	if skipped > 0 {
		log.Printf("substance guide: skipped %d malformed entries", skipped)
	}

	novelRows, skipped, err := loadRows(novelFoodPath)
	if err != nil {
		return nil, fmt.Errorf("novel food catalogue: %w", err)
	}
	for _, raw := range novelRows {
		var entry NovelFoodEntry
		if err := json.Unmarshal(raw, &entry); err != nil || entry.Name == "" {
			skipped++
			continue
		}
		lib.NovelFoods = append(lib.NovelFoods, &entry)
	}
	if skipped > 0 {
		log.Printf("novel food catalogue: skipped %d malformed entries", skipped)
	}

	if knownSafePath != "" {
		data, err := os.ReadFile(knownSafePath)
		if err != nil {
			return nil, fmt.Errorf("known-safe list: %w", err)
		}
		var list KnownSafeList
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, fmt.Errorf("known-safe list: %w", err)
		}
		for _, name := range list.Names {
			if n := Normalize(name); n != "" {
				lib.knownSafe[n] = name
			}
		}
	}

	lib.SubstanceIndex = BuildIndex(substanceEntries(lib.SubstanceGuide))
	lib.NovelFoodIndex = BuildIndex(novelFoodEntries(lib.NovelFoods))

	log.Printf("reference data loaded: %d substance guide entries, %d novel food entries, %d known-safe names",
		len(lib.SubstanceGuide), len(lib.NovelFoods), len(lib.knownSafe))
	return lib, nil
}

// loadRows reads a JSON array file into raw rows so each row can be decoded
// and validated independently.
func loadRows(path string) ([]json.RawMessage, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read %s: %w", path, err)
	}
	var rows []json.RawMessage
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, 0, fmt.Errorf("parse %s: expected a JSON array: %w", path, err)
	}
	return rows, 0, nil
}

// KnownSafe reports whether the normalized term is on the allow-list, and the
// raw spelling it was listed under.
func (l *Library) KnownSafe(normalizedTerm string) (string, bool) {
	name, ok := l.knownSafe[normalizedTerm]
	return name, ok
}

func substanceEntries(entries []*SubstanceGuideEntry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e
	}
	return out
}

func novelFoodEntries(entries []*NovelFoodEntry) []Entry {
	out := make([]Entry, len(entries))
	for i, e := range entries {
		out[i] = e
	}
	return out
}
