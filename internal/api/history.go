package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/halsokollen/ingredicheck/backend/internal/service"
)

// HistoryHandler serves past analysis runs.
type HistoryHandler struct {
	history service.IHistoryStore
}

func NewHistoryHandler(history service.IHistoryStore) *HistoryHandler {
	return &HistoryHandler{history: history}
}

func (h *HistoryHandler) RegisterRoutes(router *gin.RouterGroup) {
	history := router.Group("/history")
	{
		history.GET("/recent", h.Recent)
		history.GET("/similar", h.Similar)
	}
}

func (h *HistoryHandler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	records, err := h.history.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (h *HistoryHandler) Similar(c *gin.Context) {
	query := c.Query("q")
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter q is required"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	records, err := h.history.Similar(c.Request.Context(), query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}
