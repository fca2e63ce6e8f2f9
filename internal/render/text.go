package render

import (
	"fmt"
	"strings"

	"slideforge/internal/deck"
	"slideforge/internal/editor"
)

// TextFromSlides is the degraded export: the same content as the pptx path,
// as plain text.
func TextFromSlides(slides []deck.Slide) []byte {
	var sb strings.Builder
	for i := range slides {
		s := &slides[i]
		title := stripSlidePrefix(s.Title)
		if title == "" {
			title = fmt.Sprintf("Slide %d", i+1)
		}
		sb.WriteString(title)
		sb.WriteByte('\n')
		for _, b := range s.Bullets {
			sb.WriteString("  - ")
			sb.WriteString(b)
			sb.WriteByte('\n')
		}
		if s.Notes != "" {
			sb.WriteString("  [notes] ")
			sb.WriteString(s.Notes)
			sb.WriteByte('\n')
		}
		for _, m := range s.Media {
			typ := m.Type
			if typ == "" {
				typ = "image"
			}
			sb.WriteString("  [media] ")
			sb.WriteString(typ)
			sb.WriteByte(' ')
			sb.WriteString(m.URL)
			if m.Alt != "" {
				sb.WriteString(" — ")
				sb.WriteString(m.Alt)
			}
			sb.WriteByte('\n')
		}
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

// TextFromDoc flattens a positioned document back into readable text.
func TextFromDoc(doc *editor.Doc) []byte {
	var sb strings.Builder
	for i := range doc.Slides {
		s := &doc.Slides[i]
		title := stripSlidePrefix(s.Name)
		if title == "" {
			title = fmt.Sprintf("Slide %d", i+1)
		}
		sb.WriteString(title)
		sb.WriteByte('\n')
		for j := range s.Layers {
			ly := &s.Layers[j]
			switch ly.Kind {
			case editor.KindTextbox:
				if strings.TrimSpace(ly.Text) == stripSlidePrefix(strings.TrimSpace(s.Name)) || strings.TrimSpace(ly.Text) == strings.TrimSpace(s.Name) {
					continue // the title layer repeats the slide name
				}
				for _, line := range strings.Split(ly.Text, "\n") {
					sb.WriteString("  ")
					sb.WriteString(line)
					sb.WriteByte('\n')
				}
			case editor.KindImage:
				if ly.Source == nil {
					continue
				}
				ref := ly.Source.URL
				if ref == "" {
					ref = "asset:" + ly.Source.AssetID
				}
				sb.WriteString("  [media] image ")
				sb.WriteString(ref)
				sb.WriteByte('\n')
			}
		}
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}
