package render

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"time"

	"slideforge/internal/deck"
	"slideforge/internal/editor"
	"slideforge/internal/storage"
)

var themeTagRe = regexp.MustCompile(`[^A-Za-z0-9_-]`)

// Result describes a stored export artifact.
type Result struct {
	Path   string `json:"path"`
	Format string `json:"format"`
	Theme  string `json:"theme"`
	Bytes  int64  `json:"bytes"`
}

// Exporter renders decks and editor documents to files under the export
// directory. Any pptx failure degrades to the plain-text rendering of the
// same content rather than failing the request.
type Exporter struct {
	store    *storage.LocalStore
	renderer *PPTXRenderer
	logger   *slog.Logger
	now      func() time.Time
}

func NewExporter(store *storage.LocalStore, renderer *PPTXRenderer, logger *slog.Logger) *Exporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Exporter{store: store, renderer: renderer, logger: logger, now: time.Now}
}

// stampName builds the deterministic artifact base name, UTC-stamped.
func (e *Exporter) stampName(theme string) string {
	tag := themeTagRe.ReplaceAllString(theme, "")
	if tag == "" {
		tag = "default"
	}
	return fmt.Sprintf("deck_%s_%s", e.now().UTC().Format("20060102_150405"), tag)
}

// ExportEditor renders a positioned document.
func (e *Exporter) ExportEditor(ctx context.Context, doc *editor.Doc, theme string) (*Result, error) {
	base := e.stampName(theme)
	data, err := e.renderer.RenderDoc(ctx, doc)
	if err != nil {
		e.logger.Warn("pptx render failed, degrading to text", "error", err)
		return e.writeArtifact(base+".txt", "txt", theme, TextFromDoc(doc))
	}
	return e.writeArtifact(base+".pptx", "pptx", theme, data)
}

// ExportSlides renders a bare slide list.
func (e *Exporter) ExportSlides(ctx context.Context, slides []deck.Slide, theme string) (*Result, error) {
	base := e.stampName(theme)
	title := "Presentation"
	if len(slides) > 0 {
		if t := stripSlidePrefix(slides[0].Title); t != "" {
			title = t
		}
	}
	data, err := e.renderer.RenderSlides(ctx, slides, title)
	if err != nil {
		e.logger.Warn("pptx render failed, degrading to text", "error", err)
		return e.writeArtifact(base+".txt", "txt", theme, TextFromSlides(slides))
	}
	return e.writeArtifact(base+".pptx", "pptx", theme, data)
}

func (e *Exporter) writeArtifact(name, format, theme string, data []byte) (*Result, error) {
	path, err := e.store.WriteExport(name, data)
	if err != nil {
		return nil, err
	}
	tag := themeTagRe.ReplaceAllString(theme, "")
	if tag == "" {
		tag = "default"
	}
	return &Result{Path: path, Format: format, Theme: tag, Bytes: int64(len(data))}, nil
}
