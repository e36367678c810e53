package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/halsokollen/ingredicheck/backend/internal/models"
	"github.com/halsokollen/ingredicheck/backend/internal/testhelpers"
)

func TestSchemaRoundTrip(t *testing.T) {
	db := testhelpers.SetupMemoryDB(t)

	user := testhelpers.CreateTestUser(t, db, "schema-user")
	assert.NotZero(t, user.ID)

	label := &models.CommunityLabel{
		IngredientName: "taurine",
		Status:         "safe",
		UserID:         user.ID,
	}
	require.NoError(t, db.Create(label).Error)

	vote := &models.LabelVote{
		LabelID: label.ID,
		UserID:  user.ID,
		Value:   1,
	}
	require.NoError(t, db.Create(vote).Error)

	// One vote per (label, user) is enforced by the unique index.
	dup := &models.LabelVote{LabelID: label.ID, UserID: user.ID, Value: -1}
	assert.Error(t, db.Create(dup).Error)

	match := &models.UserMatch{
		Ingredient: "ginseng extract",
		Dataset:    "novel_food",
		EntryID:    "NF-010",
		EntryName:  "Panax ginseng",
	}
	require.NoError(t, db.Create(match).Error)

	var loaded models.CommunityLabel
	require.NoError(t, db.Preload("Votes").First(&loaded, "id = ?", label.ID).Error)
	assert.Equal(t, "taurine", loaded.IngredientName)
	assert.Len(t, loaded.Votes, 1)
}
