package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserMatch is a previously confirmed fuzzy-search selection for a raw
// ingredient string. When present it short-circuits the resolution cascade.
type UserMatch struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Ingredient is the raw ingredient text exactly as the user submitted it.
	Ingredient string `gorm:"size:255;not null;uniqueIndex" json:"ingredient"`
	// Dataset is substance_guide or novel_food.
	Dataset string `gorm:"size:32;not null" json:"dataset"`
	// EntryID is the matched entry's identity within its dataset.
	EntryID   string `gorm:"size:255;not null" json:"entry_id"`
	EntryName string `gorm:"size:255;not null" json:"entry_name"`

	UserID *uuid.UUID `gorm:"type:varchar(36)" json:"user_id,omitempty"`
}

func (UserMatch) TableName() string {
	return "user_matches"
}

func (m *UserMatch) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
