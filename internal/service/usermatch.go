package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/halsokollen/ingredicheck/backend/internal/models"
)

// UserMatchService persists confirmed fuzzy-search selections so the
// cascade can reuse them instead of re-asking the user.
type UserMatchService struct {
	db *gorm.DB
}

func NewUserMatchService(db *gorm.DB) *UserMatchService {
	return &UserMatchService{db: db}
}

// Get returns the stored selection for the exact raw ingredient string, or
// nil when none exists.
func (s *UserMatchService) Get(ctx context.Context, ingredientText string) (*models.UserMatch, error) {
	var match models.UserMatch
	err := s.db.WithContext(ctx).First(&match, "ingredient = ?", ingredientText).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user match: %w", err)
	}
	return &match, nil
}

// Save upserts the selection for the match's ingredient string.
func (s *UserMatchService) Save(ctx context.Context, match *models.UserMatch) error {
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "ingredient"}},
		DoUpdates: clause.AssignmentColumns([]string{"dataset", "entry_id", "entry_name", "updated_at"}),
	}).Create(match).Error
	if err != nil {
		return fmt.Errorf("failed to save user match: %w", err)
	}
	return nil
}

func (s *UserMatchService) Delete(ctx context.Context, ingredientText string) error {
	return s.db.WithContext(ctx).Delete(&models.UserMatch{}, "ingredient = ?", ingredientText).Error
}
