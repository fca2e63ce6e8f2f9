package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"slideforge/internal/api/middleware"
	"slideforge/internal/outline"
)

// OutlineHandler exposes deck generation and per-slide regeneration.
type OutlineHandler struct {
	Service *outline.Service
}

func NewOutlineHandler(service *outline.Service) *OutlineHandler {
	return &OutlineHandler{Service: service}
}

func (h *OutlineHandler) Generate(c *gin.Context) {
	var req outline.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}
	if req.Topic == "" && req.Text == "" {
		BadRequest(c, "provide either 'text' or 'topic'")
		return
	}

	stop := middleware.Stage(c, "outline")
	d, err := h.Service.GenerateDeck(c.Request.Context(), req)
	stop()
	if err != nil {
		if errors.Is(err, outline.ErrMissingInput) {
			BadRequest(c, err.Error())
			return
		}
		middleware.LoggerFromContext(c).Error("generate outline", "error", err)
		Internal(c, "failed to generate outline")
		return
	}
	c.JSON(http.StatusOK, d)
}

func (h *OutlineHandler) Regenerate(c *gin.Context) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		BadRequest(c, "index must be an integer")
		return
	}

	var req outline.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}
	if req.Topic == "" && req.Text == "" {
		BadRequest(c, "provide either 'text' or 'topic'")
		return
	}

	stop := middleware.Stage(c, "outline")
	slide, err := h.Service.RegenerateSlide(c.Request.Context(), index, req)
	stop()
	if err != nil {
		if errors.Is(err, outline.ErrIndexOutOfRange) || errors.Is(err, outline.ErrMissingInput) {
			BadRequest(c, err.Error())
			return
		}
		middleware.LoggerFromContext(c).Error("regenerate slide", "index", index, "error", err)
		Internal(c, "failed to regenerate slide")
		return
	}
	c.JSON(http.StatusOK, slide)
}
