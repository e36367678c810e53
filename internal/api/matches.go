package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/halsokollen/ingredicheck/backend/internal/models"
	"github.com/halsokollen/ingredicheck/backend/internal/service"
	"github.com/halsokollen/ingredicheck/backend/internal/types"
)

// MatchHandler serves the user-match store: previously confirmed fuzzy
// selections keyed by the raw ingredient string.
type MatchHandler struct {
	matches service.IUserMatchStore
}

func NewMatchHandler(matches service.IUserMatchStore) *MatchHandler {
	return &MatchHandler{matches: matches}
}

func (h *MatchHandler) RegisterRoutes(router *gin.RouterGroup) {
	matches := router.Group("/matches")
	{
		matches.GET("/:ingredient", h.GetMatch)
		matches.POST("", h.SaveMatch)
		matches.DELETE("/:ingredient", h.DeleteMatch)
	}
}

func (h *MatchHandler) GetMatch(c *gin.Context) {
	match, err := h.matches.Get(c.Request.Context(), c.Param("ingredient"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch match"})
		return
	}
	if match == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "No stored match"})
		return
	}
	c.JSON(http.StatusOK, match)
}

func (h *MatchHandler) SaveMatch(c *gin.Context) {
	var req types.SaveMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	match := &models.UserMatch{
		Ingredient: req.Ingredient,
		Dataset:    req.Dataset,
		EntryID:    req.EntryID,
		EntryName:  req.EntryName,
	}
	if userID, ok := currentUserID(c); ok {
		match.UserID = &userID
	}

	if err := h.matches.Save(c.Request.Context(), match); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save match"})
		return
	}
	c.JSON(http.StatusCreated, match)
}

func (h *MatchHandler) DeleteMatch(c *gin.Context) {
	if err := h.matches.Delete(c.Request.Context(), c.Param("ingredient")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete match"})
		return
	}
	c.Status(http.StatusNoContent)
}
