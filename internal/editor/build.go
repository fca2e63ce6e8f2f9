package editor

import (
	"github.com/google/uuid"

	"slideforge/internal/deck"
	"slideforge/internal/layout"
)

// BuildRequestOptions carries everything BuildDocument needs besides the deck.
type BuildRequestOptions struct {
	// Selections maps slide ids to explicitly requested layout ids.
	Selections map[string]string
	Theme      string
	Page       Page
	Policy     layout.Policy
	Weights    layout.ScoringWeights
}

// BuildDocument selects a layout for every slide and composes the positioned
// document. Substitution warnings are collected across slides; under the
// strict policy the first unresolvable explicit selection aborts the build.
func BuildDocument(d *deck.Deck, lib *layout.Library, opts BuildRequestOptions) (*Doc, []layout.Warning, error) {
	theme := opts.Theme
	if theme == "" {
		theme = "default"
	}
	page := opts.Page
	if page.Width <= 0 || page.Height <= 0 {
		page = DefaultPage()
	}
	if page.Unit == "" {
		page.Unit = "px"
	}

	doc := &Doc{
		EditorID: uuid.NewString(),
		DeckID:   uuid.NewString(),
		Version:  deck.SchemaVersion,
		Page:     page,
		Theme:    theme,
		Slides:   make([]Slide, 0, len(d.Slides)),
	}

	var warnings []layout.Warning
	for i := range d.Slides {
		s := &d.Slides[i]
		preferred := opts.Selections[s.ID]
		if preferred == "" {
			preferred = s.Layout // advisory hint from the deck itself
		}

		item, warning, err := layout.Select(s.ID, layout.ContentShape{
			Bullets: len(s.Bullets),
			Images:  len(s.Media),
		}, preferred, lib, opts.Policy, opts.Weights)
		if err != nil {
			return nil, warnings, err
		}
		if warning != nil {
			warnings = append(warnings, *warning)
		}

		doc.Slides = append(doc.Slides, Compose(s, item))
	}

	return doc, warnings, nil
}
