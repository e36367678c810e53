package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/halsokollen/ingredicheck/backend/internal/service"
	"github.com/halsokollen/ingredicheck/backend/internal/types"
)

// AnalysisHandler exposes the classification pipeline to the UI layer.
type AnalysisHandler struct {
	analyzer *service.AnalysisService
	ready    func() bool
}

// NewAnalysisHandler creates the handler. ready gates analysis on reference
// data having loaded successfully.
func NewAnalysisHandler(analyzer *service.AnalysisService, ready func() bool) *AnalysisHandler {
	return &AnalysisHandler{
		analyzer: analyzer,
		ready:    ready,
	}
}

func (h *AnalysisHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/analyze", h.Analyze)
	router.POST("/analyze/refresh", h.Refresh)
}

// Analyze classifies a raw ingredient list and returns per-ingredient
// results in input order.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	if h.ready != nil && !h.ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "reference data not loaded"})
		return
	}

	var req types.AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	results, err := h.analyzer.Analyze(c.Request.Context(), req.Ingredients, req.Config, nil)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, types.AnalyzeResponse{
		Results: results,
		Count:   len(results),
	})
}

// Refresh recomputes one ingredient's verdict from retained evidence plus
// the current top community label, without re-running resolution.
func (h *AnalysisHandler) Refresh(c *gin.Context) {
	if h.ready != nil && !h.ready() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "reference data not loaded"})
		return
	}

	var req types.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.analyzer.RefreshClassification(c.Request.Context(), req.Ingredient)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
