package reference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func guideEntry(name string, synonyms ...string) *SubstanceGuideEntry {
	return &SubstanceGuideEntry{Name: name, SynonymNames: synonyms}
}

func TestIndexLookup(t *testing.T) {
	idx := BuildIndex([]Entry{
		guideEntry("N-Acetylcysteine", "NAC", "Acetylcysteine"),
		guideEntry("Melatonin"),
	})

	t.Run("canonical name", func(t *testing.T) {
		entries := idx.Lookup(Normalize("N-Acetylcysteine"))
		require.Len(t, entries, 1)
		assert.Equal(t, "N-Acetylcysteine", entries[0].CanonicalName())
	})

	t.Run("synonym", func(t *testing.T) {
		entries := idx.Lookup(Normalize("nac"))
		require.Len(t, entries, 1)
		assert.Equal(t, "N-Acetylcysteine", entries[0].CanonicalName())
	})

	t.Run("miss returns nil", func(t *testing.T) {
		assert.Nil(t, idx.Lookup(Normalize("vitamin q")))
	})
}

func TestIndexFirstInsertedWins(t *testing.T) {
	first := guideEntry("Ginseng", "Panax")
	second := guideEntry("Panax", "Asian ginseng")
	idx := BuildIndex([]Entry{first, second})

	// "panax" is a synonym of the first entry and the canonical name of the
	// second; the first-inserted entry stays primary.
	got := idx.First(Normalize("Panax"))
	require.NotNil(t, got)
	assert.Equal(t, "Ginseng", got.CanonicalName())

	all := idx.Lookup(Normalize("Panax"))
	assert.Len(t, all, 2)
}

func TestIndexSharedSynonymNoDuplicates(t *testing.T) {
	entry := guideEntry("Coenzyme Q10", "CoQ10", "coenzyme q10")
	idx := BuildIndex([]Entry{entry})

	// Canonical name and a case-variant synonym normalize to the same key;
	// the entry is indexed once under it.
	assert.Len(t, idx.Lookup("coenzyme q10"), 1)
}

func TestIndexVariantLookupThroughLangTag(t *testing.T) {
	idx := BuildIndex([]Entry{guideEntry("Nattljusolja (EN)")})

	got := idx.First("nattljusolja")
	require.NotNil(t, got)
	assert.Equal(t, "Nattljusolja (EN)", got.CanonicalName())
}
