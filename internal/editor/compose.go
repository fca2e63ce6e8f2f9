package editor

import (
	"fmt"
	"strings"

	"slideforge/internal/deck"
	"slideforge/internal/layout"
)

// Layer stacking: the title always sits on top of the bullets, images sit
// beneath both.
const (
	titleZ   = 10
	bulletsZ = 9
	imageZ   = 6
)

// Compose maps one slide's content into positioned layers within the chosen
// layout's frames. Any frame/content combination that cannot be satisfied is
// silently omitted; composition never fails.
func Compose(s *deck.Slide, li *layout.Item) Slide {
	out := Slide{
		ID:         s.ID,
		Name:       s.Title,
		Background: Background{Fill: "#FFFFFF"},
		Meta:       map[string]string{"layout_id": li.ID},
	}

	if frame, ok := li.FirstFrame("title"); ok && !frame.Empty() {
		out.Layers = append(out.Layers, Layer{
			ID:    fmt.Sprintf("ly_%s_title", s.ID),
			Kind:  KindTextbox,
			Frame: frame,
			Text:  s.Title,
			Style: &Style{Font: "Inter", Size: 36, Weight: 700, Align: "left", Color: "#111111"},
			Z:     titleZ,
		})
	}

	if frame, ok := li.FirstFrame("bullets"); ok && len(s.Bullets) > 0 {
		lines := make([]string, 0, len(s.Bullets))
		for _, b := range s.Bullets {
			lines = append(lines, "- "+b)
		}
		out.Layers = append(out.Layers, Layer{
			ID:    fmt.Sprintf("ly_%s_bullets", s.ID),
			Kind:  KindTextbox,
			Frame: frame,
			Text:  strings.Join(lines, "\n"),
			Style: &Style{Font: "Inter", Size: 20, Color: "#111111"},
			Z:     bulletsZ,
		})
	}

	if frame, ok := li.FirstFrame("images"); ok && len(s.Media) > 0 {
		m := s.Media[0]
		out.Layers = append(out.Layers, Layer{
			ID:    fmt.Sprintf("ly_%s_img0", s.ID),
			Kind:  KindImage,
			Frame: frame,
			Source: &Source{
				Type:    m.Source,
				URL:     m.URL,
				AssetID: m.AssetID,
			},
			Fit: FitCover,
			Z:   imageZ,
		})
	}

	return out
}
