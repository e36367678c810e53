package reference

// Index maps normalized name variants to the entries catalogued under them.
// Multiple entries can share a variant; insertion order is preserved so the
// first-inserted entry wins primary lookups. Built once at startup and
// read-only afterwards.
type Index struct {
	byVariant map[string][]Entry
}

// BuildIndex indexes every entry under the normalization variants of its
// canonical name and each synonym.
func BuildIndex(entries []Entry) *Index {
	idx := &Index{byVariant: make(map[string][]Entry, len(entries)*2)}
	for _, entry := range entries {
		idx.add(entry.CanonicalName(), entry)
		for _, syn := range entry.Synonyms() {
			idx.add(syn, entry)
		}
	}
	return idx
}

func (idx *Index) add(name string, entry Entry) {
	for _, variant := range IndexVariants(name) {
		existing := idx.byVariant[variant]
		if containsEntry(existing, entry) {
			continue
		}
		idx.byVariant[variant] = append(existing, entry)
	}
}

func containsEntry(list []Entry, entry Entry) bool {
	for _, e := range list {
		if e == entry {
			return true
		}
	}
	return false
}

// Lookup returns all entries indexed under the normalized term, or nil.
// The term must already be normalized; Lookup does not re-normalize.
func (idx *Index) Lookup(normalizedTerm string) []Entry {
	return idx.byVariant[normalizedTerm]
}

// First returns the first-inserted entry for the normalized term, or nil.
func (idx *Index) First(normalizedTerm string) Entry {
	if entries := idx.byVariant[normalizedTerm]; len(entries) > 0 {
		return entries[0]
	}
	return nil
}

// Len reports how many variant keys the index holds.
func (idx *Index) Len() int { return len(idx.byVariant) }
