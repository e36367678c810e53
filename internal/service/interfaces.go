package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/halsokollen/ingredicheck/backend/internal/models"
	"github.com/halsokollen/ingredicheck/backend/internal/types"
)

// ITranslator is the translation collaborator. Implementations are
// best-effort: any failure is returned as an error the caller degrades on.
type ITranslator interface {
	Translate(ctx context.Context, text string) (*types.Translation, error)
}

// ISemanticSearcher is the external embedding-based search collaborator.
type ISemanticSearcher interface {
	Search(ctx context.Context, query string, topK int) ([]types.FuzzyCandidate, error)
}

// IUserMatchStore persists confirmed fuzzy-search selections keyed by the
// raw ingredient string. All operations are best-effort for the analyzer.
type IUserMatchStore interface {
	Get(ctx context.Context, ingredient string) (*models.UserMatch, error)
	Save(ctx context.Context, match *models.UserMatch) error
	Delete(ctx context.Context, ingredient string) error
}

// ILabelStore reads and maintains community labels. List returns labels
// sorted by net votes descending; Top returns the effective override.
type ILabelStore interface {
	List(ctx context.Context, ingredientName string) ([]*models.CommunityLabel, error)
	Top(ctx context.Context, ingredientName string) (*models.CommunityLabel, error)
	Create(ctx context.Context, label *models.CommunityLabel) error
	Update(ctx context.Context, id uuid.UUID, userID uuid.UUID, status, customText, customColor string) (*models.CommunityLabel, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	Vote(ctx context.Context, labelID, userID uuid.UUID, value int) (*models.CommunityLabel, error)
}

// IHistoryStore records analysis runs and serves history queries.
type IHistoryStore interface {
	Record(ctx context.Context, record *models.SearchRecord) error
	Recent(ctx context.Context, limit int) ([]*models.SearchRecord, error)
	Similar(ctx context.Context, query string, limit int) ([]*models.SearchRecord, error)
}

// IAuthService validates and issues tokens for label authorship.
type IAuthService interface {
	Register(ctx context.Context, username, email, password string) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}
