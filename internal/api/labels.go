package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/halsokollen/ingredicheck/backend/internal/middleware"
	"github.com/halsokollen/ingredicheck/backend/internal/models"
	"github.com/halsokollen/ingredicheck/backend/internal/reference"
	"github.com/halsokollen/ingredicheck/backend/internal/service"
	"github.com/halsokollen/ingredicheck/backend/internal/types"
)

// LabelHandler serves community-label reads, writes, and votes. Reads are
// anonymous; writes require a token.
type LabelHandler struct {
	labels      service.ILabelStore
	authService service.IAuthService
}

func NewLabelHandler(labels service.ILabelStore, authService service.IAuthService) *LabelHandler {
	return &LabelHandler{
		labels:      labels,
		authService: authService,
	}
}

func (h *LabelHandler) RegisterRoutes(router *gin.RouterGroup) {
	labels := router.Group("/labels")
	{
		labels.GET("/:ingredient", h.ListLabels)
		labels.POST("", middleware.AuthMiddleware(h.authService), h.CreateLabel)
		labels.PUT("/:id", middleware.AuthMiddleware(h.authService), h.UpdateLabel)
		labels.DELETE("/:id", middleware.AuthMiddleware(h.authService), h.DeleteLabel)
		labels.POST("/:id/vote", middleware.AuthMiddleware(h.authService), h.Vote)
	}
}

// ListLabels returns all labels for an ingredient, net-vote sorted.
func (h *LabelHandler) ListLabels(c *gin.Context) {
	name := reference.Normalize(c.Param("ingredient"))
	labels, err := h.labels.List(c.Request.Context(), name)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch labels"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"labels": labels})
}

func (h *LabelHandler) CreateLabel(c *gin.Context) {
	var req types.CreateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	label := &models.CommunityLabel{
		IngredientName: reference.Normalize(req.IngredientName),
		Status:         req.Status,
		CustomText:     req.CustomText,
		CustomColor:    req.CustomColor,
		UserID:         userID,
	}
	if err := h.labels.Create(c.Request.Context(), label); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create label"})
		return
	}
	c.JSON(http.StatusCreated, label)
}

func (h *LabelHandler) UpdateLabel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid label id"})
		return
	}

	var req types.UpdateLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	label, err := h.labels.Update(c.Request.Context(), id, userID, req.Status, req.CustomText, req.CustomColor)
	if err != nil {
		writeLabelError(c, err)
		return
	}
	c.JSON(http.StatusOK, label)
}

func (h *LabelHandler) DeleteLabel(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid label id"})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	if err := h.labels.Delete(c.Request.Context(), id, userID); err != nil {
		writeLabelError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *LabelHandler) Vote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid label id"})
		return
	}

	var req types.VoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	label, err := h.labels.Vote(c.Request.Context(), id, userID, req.Value)
	if err != nil {
		writeLabelError(c, err)
		return
	}
	c.JSON(http.StatusOK, label)
}

func writeLabelError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrLabelNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Label not found"})
	case errors.Is(err, service.ErrNotLabelOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "Label belongs to another user"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// currentUserID extracts the authenticated user from the request context.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return uuid.Nil, false
	}
	id, ok := value.(uuid.UUID)
	return id, ok
}
