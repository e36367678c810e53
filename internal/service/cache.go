package service

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/halsokollen/ingredicheck/backend/internal/reference"
)

// LookupOutcome is the cached result of one exact-lookup pass for a
// normalized term, including the negative outcome (all fields zero). Caching
// misses matters as much as hits: repeated unknown terms are common in long
// ingredient lists.
type LookupOutcome struct {
	// Pharma is the first substance-guide entry matched, or nil.
	Pharma reference.Entry
	// KnownSafeName is the allow-list spelling when the term was
	// backstopped by the known-safe list.
	KnownSafeName string
	// Novel is the first novel-food entry matched, or nil.
	Novel reference.Entry
}

// SessionCache memoizes per-term lookup outcomes for one analysis session.
// It is a hard-capacity LRU: inserts beyond capacity evict the oldest key,
// and the bound holds under concurrent writers. Owned by the analyzer, not a
// process-wide singleton.
type SessionCache struct {
	lru *lru.Cache[string, LookupOutcome]
}

// NewSessionCache creates a cache bounded to capacity entries. Capacity must
// be positive; the default used by the analyzer is 1000.
func NewSessionCache(capacity int) (*SessionCache, error) {
	c, err := lru.New[string, LookupOutcome](capacity)
	if err != nil {
		return nil, err
	}
	return &SessionCache{lru: c}, nil
}

// Get returns the cached outcome for a normalized term.
func (c *SessionCache) Get(normalizedTerm string) (LookupOutcome, bool) {
	return c.lru.Get(normalizedTerm)
}

// Put stores the outcome for a normalized term, evicting the least recently
// used entry if the cache is full.
func (c *SessionCache) Put(normalizedTerm string, outcome LookupOutcome) {
	c.lru.Add(normalizedTerm, outcome)
}

// Len reports the current number of cached terms.
func (c *SessionCache) Len() int { return c.lru.Len() }
