// Package deck holds the semantic slide model shared by the outline
// generator, the editor builder and the exporter.
package deck

import (
	"strings"
	"time"
)

// SchemaVersion is stamped into every generated deck.
const SchemaVersion = "1.0"

// Media source kinds. External media carries a URL, asset media an object key.
const (
	SourceExternal = "external"
	SourceAsset    = "asset"
)

// Media is a single image reference attached to a slide.
type Media struct {
	Type    string `json:"type"`
	URL     string `json:"url,omitempty"`
	Source  string `json:"source,omitempty"`
	AssetID string `json:"asset_id,omitempty"`
	Alt     string `json:"alt,omitempty"`
}

// Slide is one semantic slide: a title, ordered bullets and optional media.
// Layout is advisory only; actual placement happens during editor build.
type Slide struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Bullets []string `json:"bullets"`
	Notes   string   `json:"notes,omitempty"`
	Layout  string   `json:"layout,omitempty"`
	Media   []Media  `json:"media"`
}

// Deck is an ordered collection of slides plus bookkeeping.
type Deck struct {
	Version    string    `json:"version"`
	Topic      string    `json:"topic,omitempty"`
	SlideCount int       `json:"slide_count"`
	CreatedAt  time.Time `json:"created_at"`
	Slides     []Slide   `json:"slides"`
}

// ContentShape is the derived attribute the layout selector scores against.
type ContentShape struct {
	Bullets int
	Images  int
}

// Shape returns the slide's content shape.
func (s *Slide) Shape() ContentShape {
	return ContentShape{Bullets: len(s.Bullets), Images: len(s.Media)}
}

// Normalize trims bullets, drops empty ones and settles each media entry on
// a single explicit source kind. Call it once at every ingress boundary.
func (s *Slide) Normalize() {
	bullets := s.Bullets[:0]
	for _, b := range s.Bullets {
		b = strings.TrimSpace(b)
		if b == "" {
			continue
		}
		bullets = append(bullets, b)
	}
	s.Bullets = bullets
	s.Title = strings.TrimSpace(s.Title)

	for i := range s.Media {
		m := &s.Media[i]
		if m.Type == "" {
			m.Type = "image"
		}
		if m.Source == "" {
			if m.AssetID != "" {
				m.Source = SourceAsset
			} else {
				m.Source = SourceExternal
			}
		}
	}
}

// Normalize normalizes every slide and recomputes SlideCount.
// SlideCount is always derived, never trusted from the wire.
func (d *Deck) Normalize() {
	if d.Version == "" {
		d.Version = SchemaVersion
	}
	for i := range d.Slides {
		d.Slides[i].Normalize()
	}
	d.SlideCount = len(d.Slides)
}
