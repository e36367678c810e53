package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"
)

// SearchRecord is one analyzed ingredient list, kept for the history and
// similar-search features. The embedding column backs vector ordering on
// PostgreSQL; other dialects fall back to keyword search.
type SearchRecord struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	Query           string `gorm:"type:text;not null" json:"query"`
	IngredientCount int    `gorm:"not null" json:"ingredient_count"`
	DangerCount     int    `gorm:"not null" json:"danger_count"`
	UnknownCount    int    `gorm:"not null" json:"unknown_count"`

	Embedding pgvector.Vector `gorm:"type:vector(3)" json:"-"`

	UserID *uuid.UUID `gorm:"type:varchar(36);index" json:"user_id,omitempty"`
}

func (SearchRecord) TableName() string {
	return "search_records"
}

func (r *SearchRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
