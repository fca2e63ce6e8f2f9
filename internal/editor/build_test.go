package editor

import (
	"errors"
	"testing"

	"slideforge/internal/deck"
	"slideforge/internal/layout"
)

func buildLibrary() *layout.Library {
	return &layout.Library{
		Items: []layout.Item{
			{
				ID:       "text",
				Supports: layout.Supports{TextMin: 1, TextMax: 12},
				Weight:   1.0,
				Frames: map[string]layout.FrameList{
					"title":   {{X: 64, Y: 48, W: 1152, H: 96}},
					"bullets": {{X: 64, Y: 180, W: 1152, H: 460}},
				},
			},
			{
				ID:       "split",
				Supports: layout.Supports{TextMin: 0, TextMax: 6, ImagesMin: 1, ImagesMax: 1},
				Weight:   0.9,
				Frames: map[string]layout.FrameList{
					"title":  {{X: 64, Y: 48, W: 1152, H: 96}},
					"images": {{X: 660, Y: 180, W: 556, H: 460}},
				},
			},
		},
		Total: 2,
	}
}

func sampleDeck() *deck.Deck {
	return &deck.Deck{
		Version: deck.SchemaVersion,
		Topic:   "Q3 Review",
		Slides: []deck.Slide{
			{ID: "s1", Title: "Agenda", Bullets: []string{"Numbers", "Plans"}},
			{ID: "s2", Title: "Team", Media: []deck.Media{{Type: "image", URL: "https://example.com/t.png", Source: deck.SourceExternal}}},
		},
	}
}

func TestBuildDocumentDefaults(t *testing.T) {
	doc, warnings, err := BuildDocument(sampleDeck(), buildLibrary(), BuildRequestOptions{
		Policy:  layout.PolicyBestFit,
		Weights: layout.DefaultScoringWeights(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %+v", warnings)
	}
	if doc.EditorID == "" || doc.DeckID == "" {
		t.Error("ids must be populated")
	}
	if doc.Theme != "default" {
		t.Errorf("theme = %q", doc.Theme)
	}
	if doc.Page != DefaultPage() {
		t.Errorf("page = %+v", doc.Page)
	}
	if len(doc.Slides) != 2 {
		t.Fatalf("got %d slides", len(doc.Slides))
	}
	if doc.Slides[0].Meta["layout_id"] != "text" {
		t.Errorf("slide 1 layout = %q", doc.Slides[0].Meta["layout_id"])
	}
	if doc.Slides[1].Meta["layout_id"] != "split" {
		t.Errorf("slide 2 layout = %q", doc.Slides[1].Meta["layout_id"])
	}
}

func TestBuildDocumentExplicitSelectionWins(t *testing.T) {
	doc, _, err := BuildDocument(sampleDeck(), buildLibrary(), BuildRequestOptions{
		Selections: map[string]string{"s1": "split"},
		Policy:     layout.PolicyStrict,
		Weights:    layout.DefaultScoringWeights(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Slides[0].Meta["layout_id"] != "split" {
		t.Errorf("explicit selection ignored, got %q", doc.Slides[0].Meta["layout_id"])
	}
}

func TestBuildDocumentStrictUnknownAborts(t *testing.T) {
	_, _, err := BuildDocument(sampleDeck(), buildLibrary(), BuildRequestOptions{
		Selections: map[string]string{"s2": "nope"},
		Policy:     layout.PolicyStrict,
		Weights:    layout.DefaultScoringWeights(),
	})
	var ule *layout.UnknownLayoutError
	if !errors.As(err, &ule) {
		t.Fatalf("error = %v, want UnknownLayoutError", err)
	}
}

func TestBuildDocumentBestFitWarnsAndContinues(t *testing.T) {
	doc, warnings, err := BuildDocument(sampleDeck(), buildLibrary(), BuildRequestOptions{
		Selections: map[string]string{"s2": "nope"},
		Policy:     layout.PolicyBestFit,
		Weights:    layout.DefaultScoringWeights(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 1 || warnings[0].SlideID != "s2" {
		t.Fatalf("warnings = %+v", warnings)
	}
	if len(doc.Slides) != 2 {
		t.Errorf("all slides must still be composed")
	}
}

func TestBuildDocumentDeckLayoutHint(t *testing.T) {
	d := sampleDeck()
	d.Slides[0].Layout = "split"
	doc, _, err := BuildDocument(d, buildLibrary(), BuildRequestOptions{
		Policy:  layout.PolicyBestFit,
		Weights: layout.DefaultScoringWeights(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Slides[0].Meta["layout_id"] != "split" {
		t.Errorf("deck hint ignored, got %q", doc.Slides[0].Meta["layout_id"])
	}
}
