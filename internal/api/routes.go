package api

import (
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"

	"slideforge/internal/api/middleware"
	"slideforge/internal/config"
	"slideforge/internal/idempotency"
	"slideforge/internal/layout"
	"slideforge/internal/outline"
	"slideforge/internal/render"
	"slideforge/internal/storage"
)

// RegisterRoutes 注册 API 路由，不包含 /api 前缀。
func RegisterRoutes(
	router *gin.Engine,
	cfg *config.Config,
	store *storage.LocalStore,
	objects *storage.ObjectStore,
	catalog *layout.Catalog,
	outlineService *outline.Service,
	exporter *render.Exporter,
	cache idempotency.Store,
	logger *slog.Logger,
) {
	weights := layout.ScoringWeights{
		Underflow: cfg.Scoring.UnderflowWeight,
		Overflow:  cfg.Scoring.OverflowWeight,
		Tiebreak:  cfg.Scoring.TiebreakWeight,
	}

	uploadHandler := NewUploadHandler(store, logger, cfg.Clamd.Addr)
	outlineHandler := NewOutlineHandler(outlineService)
	layoutHandler := NewLayoutHandler(catalog, weights)
	editorHandler := NewEditorHandler(catalog, weights, cache, time.Duration(cfg.Idempotency.TTLSeconds)*time.Second)
	exportHandler := NewExportHandler(exporter, store)
	assetHandler := NewAssetHandler(objects, logger, cfg.Clamd.Addr)

	var guard gin.HandlerFunc
	if cfg.Auth.Enabled {
		guard = middleware.StaticTokenMiddleware(cfg.Auth.Token)
	} else {
		guard = func(c *gin.Context) { c.Next() }
	}

	v1 := router.Group("/v1")
	{
		v1.POST("/upload", guard, uploadHandler.Upload)

		v1.POST("/outline", guard, outlineHandler.Generate)
		v1.POST("/outline/:index/regenerate", guard, outlineHandler.Regenerate)

		v1.GET("/layouts", layoutHandler.List)
		v1.POST("/layouts/filter", layoutHandler.Filter)

		v1.POST("/editor/build", guard, editorHandler.Build)

		v1.POST("/export", guard, exportHandler.Export)
		v1.GET("/export/:filename", exportHandler.Download)

		v1.POST("/assets/upload", guard, assetHandler.UploadAsset)
	}
}
