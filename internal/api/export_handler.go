package api

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"slideforge/internal/api/middleware"
	"slideforge/internal/deck"
	"slideforge/internal/editor"
	"slideforge/internal/metrics"
	"slideforge/internal/render"
	"slideforge/internal/storage"
)

const pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// ExportHandler renders decks/editor documents to files and serves them back.
type ExportHandler struct {
	Exporter *render.Exporter
	Store    *storage.LocalStore
}

func NewExportHandler(exporter *render.Exporter, store *storage.LocalStore) *ExportHandler {
	return &ExportHandler{Exporter: exporter, Store: store}
}

type exportRequest struct {
	Slides []deck.Slide `json:"slides"`
	Editor *editor.Doc  `json:"editor"`
	Theme  string       `json:"theme"`
}

// Export 接受 slides 或 editor 两种载荷之一（必须恰好一个），渲染并落盘。
func (h *ExportHandler) Export(c *gin.Context) {
	var req exportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "invalid request body")
		return
	}

	hasSlides := len(req.Slides) > 0
	hasEditor := req.Editor != nil
	if hasSlides == hasEditor {
		BadRequest(c, "provide exactly one of 'slides' or 'editor'")
		return
	}
	theme := req.Theme
	if theme == "" {
		theme = "default"
	}

	stop := middleware.Stage(c, "render")
	var (
		res *render.Result
		err error
	)
	if hasEditor {
		res, err = h.Exporter.ExportEditor(c.Request.Context(), req.Editor, theme)
	} else {
		res, err = h.Exporter.ExportSlides(c.Request.Context(), req.Slides, theme)
	}
	stop()
	if err != nil {
		middleware.LoggerFromContext(c).Error("export", "error", err)
		Internal(c, "failed to export presentation")
		return
	}

	metrics.CountExport(res.Format)
	c.JSON(http.StatusOK, res)
}

// Download 按文件名下载之前导出的产物。文件名模式与目录逃逸在任何文件系统
// 访问之前拒绝。
func (h *ExportHandler) Download(c *gin.Context) {
	name := c.Param("filename")

	path, err := h.Store.ResolveExport(name)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrInvalidPath):
			InvalidPath(c, "invalid export filename")
		case errors.Is(err, storage.ErrNotFound):
			NotFound(c, "export not found")
		default:
			middleware.LoggerFromContext(c).Error("resolve export", "error", err)
			Internal(c, "failed to resolve export")
		}
		return
	}

	contentType := "text/plain; charset=utf-8"
	if strings.HasSuffix(name, ".pptx") {
		contentType = pptxContentType
	}
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", `attachment; filename="`+filepath.Base(path)+`"`)
	c.File(path)
}
