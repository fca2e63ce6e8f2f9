package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"slideforge/internal/api/middleware"
	"slideforge/internal/deck"
	"slideforge/internal/editor"
	"slideforge/internal/idempotency"
	"slideforge/internal/layout"
)

// EditorHandler composes positioned documents from decks and layout choices.
type EditorHandler struct {
	Catalog *layout.Catalog
	Weights layout.ScoringWeights
	Cache   idempotency.Store
	TTL     time.Duration
}

func NewEditorHandler(catalog *layout.Catalog, weights layout.ScoringWeights, cache idempotency.Store, ttl time.Duration) *EditorHandler {
	return &EditorHandler{Catalog: catalog, Weights: weights, Cache: cache, TTL: ttl}
}

type buildSelection struct {
	SlideID  string `json:"slide_id"`
	LayoutID string `json:"layout_id,omitempty"`
}

type buildRequest struct {
	Deck             deck.Deck        `json:"deck"`
	Selections       []buildSelection `json:"selections"`
	Theme            string           `json:"theme"`
	Page             editor.Page      `json:"page"`
	Policy           string           `json:"policy"`
	WarningsAsErrors bool             `json:"warnings_as_errors"`
}

type buildResponse struct {
	Editor   *editor.Doc       `json:"editor"`
	Warnings []layout.Warning  `json:"warnings"`
	Meta     map[string]string `json:"meta"`
}

// Build 组合幻灯片与布局选择；携带 Idempotency-Key 的重复请求在 TTL 窗口内
// 返回首次结果（仅 meta 标记不同）。
func (h *EditorHandler) Build(c *gin.Context) {
	key := c.GetHeader("Idempotency-Key")
	if key != "" && h.Cache != nil {
		cached, hit, err := h.Cache.Get(c.Request.Context(), key)
		if err != nil {
			middleware.LoggerFromContext(c).Warn("idempotency get failed", "error", err)
		} else if hit {
			var resp buildResponse
			if err := json.Unmarshal(cached, &resp); err == nil {
				resp.Meta["idempotency"] = "HIT"
				c.JSON(http.StatusOK, resp)
				return
			}
			middleware.LoggerFromContext(c).Warn("idempotency cache entry unreadable", "error", err)
		}
	}

	var req buildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}
	if len(req.Deck.Slides) == 0 {
		BadRequest(c, "deck has no slides")
		return
	}
	policy, err := layout.ParsePolicy(req.Policy)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	req.Deck.Normalize()
	selections := make(map[string]string, len(req.Selections))
	for _, sel := range req.Selections {
		if sel.LayoutID != "" {
			selections[sel.SlideID] = sel.LayoutID
		}
	}

	stop := middleware.Stage(c, "build")
	doc, warnings, err := editor.BuildDocument(&req.Deck, h.Catalog.Library(), editor.BuildRequestOptions{
		Selections: selections,
		Theme:      req.Theme,
		Page:       req.Page,
		Policy:     policy,
		Weights:    h.Weights,
	})
	stop()
	if err != nil {
		var ule *layout.UnknownLayoutError
		if errors.As(err, &ule) {
			UnknownLayout(c, err.Error())
			return
		}
		middleware.LoggerFromContext(c).Error("build editor doc", "error", err)
		Internal(c, "failed to build document")
		return
	}

	if warnings == nil {
		warnings = make([]layout.Warning, 0)
	}
	if req.WarningsAsErrors && len(warnings) > 0 {
		BadRequest(c, fmt.Sprintf("build produced %d substitution warnings", len(warnings)))
		return
	}

	resp := buildResponse{Editor: doc, Warnings: warnings, Meta: map[string]string{}}
	if key != "" && h.Cache != nil {
		if payload, err := json.Marshal(resp); err == nil {
			if err := h.Cache.Set(c.Request.Context(), key, payload, h.TTL); err != nil {
				middleware.LoggerFromContext(c).Warn("idempotency set failed", "error", err)
			}
		}
	}
	resp.Meta["idempotency"] = "MISS"
	c.JSON(http.StatusOK, resp)
}
