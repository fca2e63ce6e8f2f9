package api

import (
	"errors"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/dutchcoders/go-clamd"
	"github.com/gin-gonic/gin"

	"slideforge/internal/api/middleware"
	"slideforge/internal/parse"
	"slideforge/internal/storage"
)

// UploadHandler stores a document and returns its parsed text preview.
type UploadHandler struct {
	Store     *storage.LocalStore
	Logger    *slog.Logger
	ClamdAddr string
}

func NewUploadHandler(store *storage.LocalStore, logger *slog.Logger, clamdAddr string) *UploadHandler {
	return &UploadHandler{Store: store, Logger: logger, ClamdAddr: clamdAddr}
}

// Upload 处理文档上传：可选病毒扫描，流式写盘并强制大小上限，随后解析预览。
func (h *UploadHandler) Upload(c *gin.Context) {
	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}

	if h.ClamdAddr != "" {
		clean, err := scanUpload(h.ClamdAddr, file)
		if err != nil {
			middleware.LoggerFromContext(c).Error("scan file", slog.String("error", err.Error()))
			Internal(c, "failed to scan file")
			return
		}
		if !clean {
			BadRequest(c, "malicious file detected")
			return
		}
	}

	reader, err := file.Open()
	if err != nil {
		Internal(c, "failed to open file")
		return
	}

	stop := middleware.Stage(c, "store")
	path, size, err := h.Store.SaveUpload(file.Filename, reader)
	reader.Close()
	stop()
	if err != nil {
		if errors.Is(err, storage.ErrTooLarge) {
			PayloadTooLarge(c, "file exceeds the upload size limit")
			return
		}
		middleware.LoggerFromContext(c).Error("save upload", slog.String("error", err.Error()))
		Internal(c, "failed to store file")
		return
	}

	stop = middleware.Stage(c, "parse")
	preview, err := parse.File(path, file.Header.Get("Content-Type"))
	stop()
	if err != nil {
		middleware.LoggerFromContext(c).Warn("parse upload", slog.String("error", err.Error()))
		// Preview is best effort; the stored file is still usable.
		preview = &parse.Result{Kind: "unknown"}
	}

	c.JSON(http.StatusOK, gin.H{
		"path":           path,
		"size":           size,
		"parsed_preview": preview,
	})
}

// scanUpload 通过 clamd 扫描上传内容，返回文件是否干净。
func scanUpload(addr string, file *multipart.FileHeader) (bool, error) {
	reader, err := file.Open()
	if err != nil {
		return false, err
	}

	clamdClient := clamd.NewClamd(addr)
	abortChan := make(chan bool)
	scanChan, err := clamdClient.ScanStream(reader, abortChan)
	reader.Close()
	if err != nil {
		return false, err
	}
	defer close(abortChan)

	for result := range scanChan {
		if result.Status != clamd.RES_OK {
			return false, nil
		}
	}
	return true, nil
}
