package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"slideforge/internal/api/middleware"
	"slideforge/internal/errcode"
	"slideforge/internal/metrics"
)

// NewRouter 构建 Gin 路由引擎：关联 ID、结构化日志、阶段计时、指标采集，
// 以及不泄露内部细节的兜底恢复。
func NewRouter(logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}
	router := gin.New()
	router.Use(
		middleware.CorrelationIDMiddleware(),
		middleware.SlogLoggerMiddleware(logger),
		middleware.TimingMiddleware(),
		metrics.GinMiddleware(),
		gin.CustomRecovery(func(c *gin.Context, recovered any) {
			middleware.LoggerFromContext(c).Error("panic recovered", slog.Any("panic", recovered))
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":          "internal server error",
				"code":           errcode.SystemError,
				"correlation_id": middleware.GetCorrelationID(c),
			})
		}),
	)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
