package service

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halsokollen/ingredicheck/backend/internal/reference"
)

func TestSessionCacheHitAndMiss(t *testing.T) {
	cache, err := NewSessionCache(10)
	require.NoError(t, err)

	_, ok := cache.Get("taurine")
	assert.False(t, ok)

	outcome := LookupOutcome{Pharma: &reference.SubstanceGuideEntry{Name: "Taurine"}}
	cache.Put("taurine", outcome)

	got, ok := cache.Get("taurine")
	require.True(t, ok)
	assert.Equal(t, "Taurine", got.Pharma.CanonicalName())
}

func TestSessionCacheCachesNegativeOutcomes(t *testing.T) {
	cache, err := NewSessionCache(10)
	require.NoError(t, err)

	cache.Put("unknownium", LookupOutcome{})
	got, ok := cache.Get("unknownium")
	require.True(t, ok)
	assert.Nil(t, got.Pharma)
	assert.Nil(t, got.Novel)
	assert.Empty(t, got.KnownSafeName)
}

func TestSessionCacheCapacityBound(t *testing.T) {
	const capacity = 8
	cache, err := NewSessionCache(capacity)
	require.NoError(t, err)

	for i := 0; i < capacity*3; i++ {
		cache.Put(fmt.Sprintf("term-%d", i), LookupOutcome{})
	}
	assert.Equal(t, capacity, cache.Len())

	// Oldest keys were evicted, newest survive.
	_, ok := cache.Get("term-0")
	assert.False(t, ok)
	_, ok = cache.Get(fmt.Sprintf("term-%d", capacity*3-1))
	assert.True(t, ok)
}

func TestSessionCacheBoundHoldsUnderConcurrency(t *testing.T) {
	const capacity = 16
	cache, err := NewSessionCache(capacity)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				cache.Put(fmt.Sprintf("w%d-t%d", w, i), LookupOutcome{})
				cache.Get(fmt.Sprintf("w%d-t%d", w, i/2))
			}
		}(w)
	}
	wg.Wait()

	assert.LessOrEqual(t, cache.Len(), capacity)
}

func TestSessionCacheRejectsNonPositiveCapacity(t *testing.T) {
	_, err := NewSessionCache(0)
	assert.Error(t, err)
}
