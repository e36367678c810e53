package service

import (
	"context"
	"fmt"
	"strings"

	pgvector "github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/halsokollen/ingredicheck/backend/internal/models"
)

// HistoryService records analysis runs and serves recent/similar search
// queries. On PostgreSQL, similarity uses the pgvector embedding column;
// other dialects fall back to keyword matching.
type HistoryService struct {
	db *gorm.DB
}

func NewHistoryService(db *gorm.DB) *HistoryService {
	return &HistoryService{db: db}
}

// GenerateEmbedding returns a simple deterministic embedding for the given
// text: total length, vowels, and consonants. Crude, but stable across
// processes and good enough to cluster near-identical ingredient lists.
func GenerateEmbedding(text string) pgvector.Vector {
	text = strings.ToLower(text)
	var vowels, consonants float32
	for _, r := range text {
		if strings.ContainsRune("aeiou", r) {
			vowels++
		} else if r >= 'a' && r <= 'z' {
			consonants++
		}
	}
	return pgvector.NewVector([]float32{float32(len(text)), vowels, consonants})
}

// Record persists one analysis run summary.
func (s *HistoryService) Record(ctx context.Context, record *models.SearchRecord) error {
	if s.db.Dialector.Name() == "postgres" {
		record.Embedding = GenerateEmbedding(record.Query)
	}
	if err := s.db.WithContext(ctx).Create(record).Error; err != nil {
		return fmt.Errorf("failed to record search: %w", err)
	}
	return nil
}

// Recent returns the latest analysis runs, newest first.
func (s *HistoryService) Recent(ctx context.Context, limit int) ([]*models.SearchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	var records []*models.SearchRecord
	err := s.db.WithContext(ctx).Order("created_at DESC").Limit(limit).Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recent searches: %w", err)
	}
	return records, nil
}

// Similar returns past runs resembling the query, ordered by embedding
// distance on PostgreSQL and by keyword match elsewhere.
func (s *HistoryService) Similar(ctx context.Context, query string, limit int) ([]*models.SearchRecord, error) {
	if limit <= 0 {
		limit = 10
	}
	var records []*models.SearchRecord

	dbQuery := s.db.WithContext(ctx)
	if s.db.Dialector.Name() == "postgres" {
		vec := GenerateEmbedding(query)
		dbQuery = dbQuery.Clauses(clause.OrderBy{
			Expression: clause.Expr{SQL: "embedding <-> ?", Vars: []interface{}{vec}},
		})
	} else {
		like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
		dbQuery = dbQuery.Where("LOWER(query) LIKE ?", like).Order("created_at DESC")
	}

	if err := dbQuery.Limit(limit).Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to find similar searches: %w", err)
	}
	return records, nil
}
