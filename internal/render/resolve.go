package render

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"io"
	"log/slog"
	"net/http"
	"time"

	// Decoders for the formats image providers actually serve.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"slideforge/internal/editor"
)

const maxImageBytes = 32 * 1024 * 1024

// AssetFetcher reads stored asset bytes by id.
type AssetFetcher interface {
	GetAsset(ctx context.Context, assetID string) ([]byte, error)
}

// Resolver turns an image layer's source reference into decoded pixels.
// Every failure path resolves to (nil, false): per the export contract an
// unresolvable image is skipped, never an error.
type Resolver struct {
	client *http.Client
	assets AssetFetcher
	logger *slog.Logger
}

func NewResolver(assets AssetFetcher, timeout time.Duration, logger *slog.Logger) *Resolver {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{
		client: &http.Client{Timeout: timeout},
		assets: assets,
		logger: logger,
	}
}

// Resolve fetches and decodes the layer source.
func (r *Resolver) Resolve(ctx context.Context, src *editor.Source) (image.Image, bool) {
	if src == nil {
		return nil, false
	}
	var (
		data []byte
		err  error
	)
	switch {
	case src.Type == "asset" && src.AssetID != "":
		if r.assets == nil {
			r.logger.Warn("asset source with no asset store configured", "asset_id", src.AssetID)
			return nil, false
		}
		data, err = r.assets.GetAsset(ctx, src.AssetID)
	case src.URL != "":
		data, err = r.fetch(ctx, src.URL)
	default:
		return nil, false
	}
	if err != nil {
		r.logger.Warn("image resolve failed", "url", src.URL, "asset_id", src.AssetID, "error", err)
		return nil, false
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		r.logger.Warn("image decode failed", "url", src.URL, "error", err)
		return nil, false
	}
	return img, true
}

func (r *Resolver) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "slideforge/1.0")
	req.Header.Set("Accept", "image/*,*/*;q=0.8")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
}
