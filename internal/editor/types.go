// Package editor holds the positioned-layer intermediate document between
// semantic slides and the rendered presentation file.
package editor

import "slideforge/internal/layout"

// Layer kinds.
const (
	KindTextbox = "textbox"
	KindImage   = "image"
	KindShape   = "shape"
)

// Image fit modes.
const (
	FitCover   = "cover"
	FitContain = "contain"
	FitFill    = "fill"
)

// Style is the uniform text styling applied to every paragraph of a textbox
// layer. Size is in page pixels; Weight uses CSS numeric weights.
type Style struct {
	Font   string  `json:"font,omitempty"`
	Size   float64 `json:"size,omitempty"`
	Weight int     `json:"weight,omitempty"`
	Align  string  `json:"align,omitempty"`
	Color  string  `json:"color,omitempty"`
}

// Source points an image layer at its bytes: an external URL or a stored asset.
type Source struct {
	Type    string `json:"type,omitempty"`
	URL     string `json:"url,omitempty"`
	AssetID string `json:"asset_id,omitempty"`
}

// Layer is one positioned element on a slide. Higher Z paints on top.
type Layer struct {
	ID     string       `json:"id"`
	Kind   string       `json:"kind"`
	Frame  layout.Frame `json:"frame"`
	Text   string       `json:"text,omitempty"`
	Style  *Style       `json:"style,omitempty"`
	Source *Source      `json:"source,omitempty"`
	Fit    string       `json:"fit,omitempty"`
	Z      int          `json:"z"`
}

// Background is a solid fill for now.
type Background struct {
	Fill string `json:"fill"`
}

// Slide is one positioned slide. Meta records which layout id was actually
// applied, post-substitution, so downstream consumers stay consistent with
// what was chosen rather than what was requested.
type Slide struct {
	ID         string            `json:"id"`
	Name       string            `json:"name"`
	Background Background        `json:"background"`
	Layers     []Layer           `json:"layers"`
	Meta       map[string]string `json:"meta"`
}

// Page is the document canvas in pixels at 96 px/inch.
type Page struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	Unit   string  `json:"unit"`
}

// DefaultPage returns the standard 16:9 editor canvas.
func DefaultPage() Page {
	return Page{Width: 1280, Height: 720, Unit: "px"}
}

// Doc is the fully positioned, style-resolved document handed to the
// geometry/render engine.
type Doc struct {
	EditorID string  `json:"editor_id"`
	DeckID   string  `json:"deck_id"`
	Version  string  `json:"version"`
	Page     Page    `json:"page"`
	Theme    string  `json:"theme"`
	Slides   []Slide `json:"slides"`
}
