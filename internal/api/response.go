package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"slideforge/internal/api/middleware"
	"slideforge/internal/errcode"
)

// Error 输出统一的错误响应信封，附带业务码与 Correlation ID。
func Error(c *gin.Context, status int, code int, msg string) {
	c.JSON(status, gin.H{
		"error":          msg,
		"code":           code,
		"correlation_id": middleware.GetCorrelationID(c),
	})
}

func BadRequest(c *gin.Context, msg string) {
	Error(c, http.StatusBadRequest, errcode.ValidationError, msg)
}

func UnknownLayout(c *gin.Context, msg string) {
	Error(c, http.StatusBadRequest, errcode.UnknownLayout, msg)
}

func InvalidPath(c *gin.Context, msg string) {
	Error(c, http.StatusBadRequest, errcode.InvalidPath, msg)
}

func NotFound(c *gin.Context, msg string) {
	Error(c, http.StatusNotFound, errcode.ResourceMissing, msg)
}

func PayloadTooLarge(c *gin.Context, msg string) {
	Error(c, http.StatusRequestEntityTooLarge, errcode.PayloadTooLarge, msg)
}

func Internal(c *gin.Context, msg string) {
	Error(c, http.StatusInternalServerError, errcode.SystemError, msg)
}

func NotImplemented(c *gin.Context, msg string) {
	Error(c, http.StatusNotImplemented, errcode.SystemError, msg)
}
