package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/halsokollen/ingredicheck/backend/internal/models"
	"github.com/halsokollen/ingredicheck/backend/internal/types"
)

// MockTranslator is a testify mock for the translation collaborator.
type MockTranslator struct {
	mock.Mock
}

func (m *MockTranslator) Translate(ctx context.Context, text string) (*types.Translation, error) {
	args := m.Called(ctx, text)
	if t, ok := args.Get(0).(*types.Translation); ok {
		return t, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSemanticSearcher is a testify mock for the embedding-search collaborator.
type MockSemanticSearcher struct {
	mock.Mock
}

func (m *MockSemanticSearcher) Search(ctx context.Context, query string, topK int) ([]types.FuzzyCandidate, error) {
	args := m.Called(ctx, query, topK)
	if c, ok := args.Get(0).([]types.FuzzyCandidate); ok {
		return c, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockUserMatchStore is a testify mock for the user-match store.
type MockUserMatchStore struct {
	mock.Mock
}

func (m *MockUserMatchStore) Get(ctx context.Context, ingredient string) (*models.UserMatch, error) {
	args := m.Called(ctx, ingredient)
	if match, ok := args.Get(0).(*models.UserMatch); ok {
		return match, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockUserMatchStore) Save(ctx context.Context, match *models.UserMatch) error {
	args := m.Called(ctx, match)
	return args.Error(0)
}

func (m *MockUserMatchStore) Delete(ctx context.Context, ingredient string) error {
	args := m.Called(ctx, ingredient)
	return args.Error(0)
}

// MockLabelStore is a testify mock for the community-label store.
type MockLabelStore struct {
	mock.Mock
}

func (m *MockLabelStore) List(ctx context.Context, ingredientName string) ([]*models.CommunityLabel, error) {
	args := m.Called(ctx, ingredientName)
	if labels, ok := args.Get(0).([]*models.CommunityLabel); ok {
		return labels, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLabelStore) Top(ctx context.Context, ingredientName string) (*models.CommunityLabel, error) {
	args := m.Called(ctx, ingredientName)
	if label, ok := args.Get(0).(*models.CommunityLabel); ok {
		return label, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLabelStore) Create(ctx context.Context, label *models.CommunityLabel) error {
	args := m.Called(ctx, label)
	return args.Error(0)
}

func (m *MockLabelStore) Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, status, customText, customColor string) (*models.CommunityLabel, error) {
	args := m.Called(ctx, id, userID, status, customText, customColor)
	if label, ok := args.Get(0).(*models.CommunityLabel); ok {
		return label, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockLabelStore) Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	args := m.Called(ctx, id, userID)
	return args.Error(0)
}

func (m *MockLabelStore) Vote(ctx context.Context, labelID, userID uuid.UUID, value int) (*models.CommunityLabel, error) {
	args := m.Called(ctx, labelID, userID, value)
	if label, ok := args.Get(0).(*models.CommunityLabel); ok {
		return label, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockHistoryStore is a testify mock for the search-history store.
type MockHistoryStore struct {
	mock.Mock
}

func (m *MockHistoryStore) Record(ctx context.Context, record *models.SearchRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockHistoryStore) Recent(ctx context.Context, limit int) ([]*models.SearchRecord, error) {
	args := m.Called(ctx, limit)
	if records, ok := args.Get(0).([]*models.SearchRecord); ok {
		return records, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockHistoryStore) Similar(ctx context.Context, query string, limit int) ([]*models.SearchRecord, error) {
	args := m.Called(ctx, query, limit)
	if records, ok := args.Get(0).([]*models.SearchRecord); ok {
		return records, args.Error(1)
	}
	return nil, args.Error(1)
}
