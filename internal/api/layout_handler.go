package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"slideforge/internal/layout"
)

// LayoutHandler serves the layout library and the ranked filter.
type LayoutHandler struct {
	Catalog *layout.Catalog
	Weights layout.ScoringWeights
}

func NewLayoutHandler(catalog *layout.Catalog, weights layout.ScoringWeights) *LayoutHandler {
	return &LayoutHandler{Catalog: catalog, Weights: weights}
}

func (h *LayoutHandler) List(c *gin.Context) {
	if c.Query("reload") == "true" {
		if err := h.Catalog.Reload(); err != nil {
			Internal(c, "failed to reload layout library")
			return
		}
	}
	c.JSON(http.StatusOK, h.Catalog.Library())
}

type filterRequest struct {
	Components struct {
		TextCount  int `json:"text_count"`
		ImageCount int `json:"image_count"`
	} `json:"components"`
	TopK int `json:"top_k"`
}

func (h *LayoutHandler) Filter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}
	if req.Components.TextCount < 0 || req.Components.ImageCount < 0 {
		BadRequest(c, "component counts must not be negative")
		return
	}

	lib := h.Catalog.Library()
	ids := layout.TopK(lib, req.Components.TextCount, req.Components.ImageCount, req.TopK, h.Weights)
	c.JSON(http.StatusOK, gin.H{"candidates": ids})
}
