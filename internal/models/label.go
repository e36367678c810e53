package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CommunityLabel is a user-submitted override of the automated classification
// for one ingredient name. Labels are ranked by net votes; the top-ranked
// label is the effective override the classifier receives.
type CommunityLabel struct {
	ID        uuid.UUID      `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// IngredientName is the normalized ingredient the label applies to.
	IngredientName string `gorm:"size:255;not null;index" json:"ingredient_name"`
	// Status is one of safe, danger, unknown.
	Status string `gorm:"size:16;not null" json:"status"`
	// CustomText optionally replaces the templated status text.
	CustomText  string `gorm:"size:255" json:"custom_text,omitempty"`
	CustomColor string `gorm:"size:16" json:"custom_color,omitempty"`

	UserID uuid.UUID `gorm:"type:varchar(36);not null;index" json:"user_id"`
	User   *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Votes []LabelVote `gorm:"foreignKey:LabelID" json:"-"`

	// NetVotes is computed by the store when listing. Read-only: scanned
	// from the aggregate alias, never written or migrated as a column.
	NetVotes int `gorm:"->;-:migration" json:"net_votes"`
}

func (CommunityLabel) TableName() string {
	return "community_labels"
}

func (l *CommunityLabel) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// LabelVote is one user's vote on a label. One row per (label, user); a
// revote overwrites the previous value.
type LabelVote struct {
	ID        uuid.UUID `gorm:"type:varchar(36);primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	LabelID uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_label_voter" json:"label_id"`
	UserID  uuid.UUID `gorm:"type:varchar(36);not null;uniqueIndex:idx_label_voter" json:"user_id"`
	// Value is +1 or -1.
	Value int `gorm:"not null" json:"value"`
}

func (LabelVote) TableName() string {
	return "label_votes"
}

func (v *LabelVote) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}
