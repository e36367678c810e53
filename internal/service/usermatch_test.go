package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halsokollen/ingredicheck/backend/internal/models"
	"github.com/halsokollen/ingredicheck/backend/internal/testhelpers"
)

func TestUserMatchGetMissing(t *testing.T) {
	s := NewUserMatchService(testhelpers.SetupMemoryDB(t))

	match, err := s.Get(context.Background(), "cordiceps extract")
	require.NoError(t, err)
	assert.Nil(t, match)
}

func TestUserMatchSaveAndGet(t *testing.T) {
	s := NewUserMatchService(testhelpers.SetupMemoryDB(t))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &models.UserMatch{
		Ingredient: "cordiceps extract",
		Dataset:    "novel_food",
		EntryID:    "NF-007",
		EntryName:  "Cordyceps militaris",
	}))

	match, err := s.Get(ctx, "cordiceps extract")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "NF-007", match.EntryID)
	assert.Equal(t, "Cordyceps militaris", match.EntryName)
}

func TestUserMatchSaveUpserts(t *testing.T) {
	s := NewUserMatchService(testhelpers.SetupMemoryDB(t))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &models.UserMatch{
		Ingredient: "cordiceps extract",
		Dataset:    "novel_food",
		EntryID:    "NF-001",
		EntryName:  "Cannabidiol",
	}))
	require.NoError(t, s.Save(ctx, &models.UserMatch{
		Ingredient: "cordiceps extract",
		Dataset:    "novel_food",
		EntryID:    "NF-007",
		EntryName:  "Cordyceps militaris",
	}))

	match, err := s.Get(ctx, "cordiceps extract")
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "NF-007", match.EntryID)

	var count int64
	require.NoError(t, s.db.Model(&models.UserMatch{}).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestUserMatchDelete(t *testing.T) {
	s := NewUserMatchService(testhelpers.SetupMemoryDB(t))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &models.UserMatch{
		Ingredient: "cordiceps extract",
		Dataset:    "novel_food",
		EntryID:    "NF-007",
		EntryName:  "Cordyceps militaris",
	}))
	require.NoError(t, s.Delete(ctx, "cordiceps extract"))

	match, err := s.Get(ctx, "cordiceps extract")
	require.NoError(t, err)
	assert.Nil(t, match)
}
