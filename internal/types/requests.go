package types

import (
	"github.com/google/uuid"
)

// AnalyzeRequest is the request body for POST /analyze.
type AnalyzeRequest struct {
	Ingredients string             `json:"ingredients" binding:"required"`
	Config      *AnalysisOverrides `json:"config,omitempty"`
}

// AnalyzeResponse wraps the ordered per-ingredient results.
type AnalyzeResponse struct {
	Results []ClassificationResult `json:"results"`
	Count   int                    `json:"count"`
}

// RefreshRequest recomputes one ingredient's verdict from retained evidence.
type RefreshRequest struct {
	Ingredient string `json:"ingredient" binding:"required"`
}

// Label API types
type CreateLabelRequest struct {
	IngredientName string `json:"ingredient_name" binding:"required,max=255"`
	Status         string `json:"status" binding:"required,oneof=safe danger unknown"`
	CustomText     string `json:"custom_text" binding:"max=255"`
	CustomColor    string `json:"custom_color" binding:"max=16"`
}

type UpdateLabelRequest struct {
	Status      string `json:"status" binding:"required,oneof=safe danger unknown"`
	CustomText  string `json:"custom_text" binding:"max=255"`
	CustomColor string `json:"custom_color" binding:"max=16"`
}

type VoteRequest struct {
	Value int `json:"value" binding:"required,oneof=1 -1"`
}

// User-match API types
type SaveMatchRequest struct {
	Ingredient string `json:"ingredient" binding:"required,max=255"`
	Dataset    string `json:"dataset" binding:"required,oneof=substance_guide novel_food"`
	EntryID    string `json:"entry_id" binding:"required,max=255"`
	EntryName  string `json:"entry_name" binding:"required,max=255"`
}

// Auth API types
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AuthResponse struct {
	UserID   uuid.UUID `json:"user_id"`
	Username string    `json:"username"`
	Token    string    `json:"token"`
}
