package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/halsokollen/ingredicheck/backend/internal/models"
)

var (
	ErrLabelNotFound = errors.New("label not found")
	ErrNotLabelOwner = errors.New("label belongs to another user")
)

// LabelService is the community-label store. Vote outcomes are computed
// here, never in the classifier: the analyzer only consumes the top-ranked
// label as an opaque override.
type LabelService struct {
	db *gorm.DB
}

func NewLabelService(db *gorm.DB) *LabelService {
	return &LabelService{db: db}
}

// List returns all labels for a normalized ingredient name, net votes
// computed and sorted descending (ties broken by recency).
func (s *LabelService) List(ctx context.Context, ingredientName string) ([]*models.CommunityLabel, error) {
	var labels []*models.CommunityLabel
	err := s.db.WithContext(ctx).
		Select("community_labels.*, COALESCE(SUM(label_votes.value), 0) AS net_votes").
		Joins("LEFT JOIN label_votes ON label_votes.label_id = community_labels.id").
		Where("community_labels.ingredient_name = ?", ingredientName).
		Group("community_labels.id").
		Order("net_votes DESC, community_labels.created_at DESC").
		Preload("User").
		Find(&labels).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list labels: %w", err)
	}
	return labels, nil
}

// Top returns the effective override for an ingredient: the highest
// net-voted label, or nil when none exists.
func (s *LabelService) Top(ctx context.Context, ingredientName string) (*models.CommunityLabel, error) {
	labels, err := s.List(ctx, ingredientName)
	if err != nil {
		return nil, err
	}
	if len(labels) == 0 {
		return nil, nil
	}
	return labels[0], nil
}

func (s *LabelService) Create(ctx context.Context, label *models.CommunityLabel) error {
	if err := s.db.WithContext(ctx).Create(label).Error; err != nil {
		return fmt.Errorf("failed to create label: %w", err)
	}
	return nil
}

// Update modifies a label's status and custom text. Only the authoring user
// may update it.
func (s *LabelService) Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, status, customText, customColor string) (*models.CommunityLabel, error) {
	var label models.CommunityLabel
	if err := s.db.WithContext(ctx).First(&label, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLabelNotFound
		}
		return nil, fmt.Errorf("failed to load label: %w", err)
	}
	if label.UserID != userID {
		return nil, ErrNotLabelOwner
	}

	label.Status = status
	label.CustomText = customText
	label.CustomColor = customColor
	if err := s.db.WithContext(ctx).Save(&label).Error; err != nil {
		return nil, fmt.Errorf("failed to update label: %w", err)
	}
	return &label, nil
}

func (s *LabelService) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	var label models.CommunityLabel
	if err := s.db.WithContext(ctx).First(&label, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrLabelNotFound
		}
		return fmt.Errorf("failed to load label: %w", err)
	}
	if label.UserID != userID {
		return ErrNotLabelOwner
	}
	return s.db.WithContext(ctx).Delete(&label).Error
}

// Vote records a user's +1/-1 on a label; a revote replaces the previous
// value. Returns the label with its recomputed net votes.
func (s *LabelService) Vote(ctx context.Context, labelID, userID uuid.UUID, value int) (*models.CommunityLabel, error) {
	if value != 1 && value != -1 {
		return nil, fmt.Errorf("vote value must be +1 or -1, got %d", value)
	}

	var label models.CommunityLabel
	if err := s.db.WithContext(ctx).First(&label, "id = ?", labelID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLabelNotFound
		}
		return nil, fmt.Errorf("failed to load label: %w", err)
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var vote models.LabelVote
		err := tx.Where("label_id = ? AND user_id = ?", labelID, userID).First(&vote).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(&models.LabelVote{LabelID: labelID, UserID: userID, Value: value}).Error
		case err != nil:
			return err
		default:
			vote.Value = value
			return tx.Save(&vote).Error
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to record vote: %w", err)
	}

	var net int
	if err := s.db.WithContext(ctx).Model(&models.LabelVote{}).
		Select("COALESCE(SUM(value), 0)").
		Where("label_id = ?", labelID).
		Scan(&net).Error; err != nil {
		return nil, fmt.Errorf("failed to tally votes: %w", err)
	}
	label.NetVotes = net
	return &label, nil
}
