package api

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"slideforge/internal/api/middleware"
	"slideforge/internal/storage"
)

// AssetHandler 负责图片资产的上传；资产随后可被图片图层以 asset 引用。
type AssetHandler struct {
	Objects   *storage.ObjectStore
	Logger    *slog.Logger
	ClamdAddr string
}

func NewAssetHandler(objects *storage.ObjectStore, logger *slog.Logger, clamdAddr string) *AssetHandler {
	return &AssetHandler{Objects: objects, Logger: logger, ClamdAddr: clamdAddr}
}

// UploadAsset 处理资产上传，并在上传前按需扫描病毒。
func (h *AssetHandler) UploadAsset(c *gin.Context) {
	if h.Objects == nil {
		NotImplemented(c, "asset store is not configured")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		BadRequest(c, "missing file")
		return
	}

	if h.ClamdAddr != "" {
		clean, err := scanUpload(h.ClamdAddr, file)
		if err != nil {
			middleware.LoggerFromContext(c).Error("scan asset", slog.String("error", err.Error()))
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
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		Internal(c, "failed to read file")
		return
	}

	contentType := file.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	assetID := uuid.NewString()
	key, err := h.Objects.PutAsset(c.Request.Context(), assetID, data, contentType)
	if err != nil {
		middleware.LoggerFromContext(c).Error("upload asset", slog.String("error", err.Error()))
		Internal(c, "failed to upload asset")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"asset_id": assetID, "object_key": key})
}
