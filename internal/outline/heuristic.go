// Package outline turns a topic or raw document text into a slide deck. Two
// strategies exist behind one interface: a local heuristic and a remote agent
// delegate, orchestrated with fallback by Service.
package outline

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"slideforge/internal/deck"
)

// Request is the shared input to both strategies. At least one of Topic or
// Text must be present.
type Request struct {
	Topic      string `json:"topic,omitempty"`
	Text       string `json:"text,omitempty"`
	SlideCount int    `json:"slide_count"`
}

// Validation failures surfaced to callers as client errors.
var (
	ErrMissingInput    = errors.New("provide either 'text' or 'topic'")
	ErrIndexOutOfRange = errors.New("slide index out of range")
)

// Strategy generates full decks and single replacement slides.
type Strategy interface {
	GenerateDeck(ctx context.Context, req Request) (*deck.Deck, error)
	RegenerateSlide(ctx context.Context, index int, req Request) (*deck.Slide, error)
}

var (
	artifactRe = regexp.MustCompile(`\(cid:\d+\)`)
	bulletRe   = regexp.MustCompile(`^(\s*[-*\x{2022}\x{00B7}]\s*)+`)
	leadNumRe  = regexp.MustCompile(`(?i)^\s*(?:\d+[.)]|[IVXLCM]+\.)\s+`)
	wsRe       = regexp.MustCompile(`\s+`)
)

var badLines = map[string]struct{}{
	"n":                 {},
	"contents":          {},
	"table of contents": {},
	"toc":               {},
	"index":             {},
}

var defaultHeadings = []string{
	"Overview", "Goals", "Key Points", "Approach", "Timeline",
	"Milestones", "Risks & Mitigations", "Resources", "Metrics", "Next Steps",
}

// seedLines cleans raw document text into candidate title lines. PDF
// extraction leaves page artifacts, bullet glyphs and outline numbering that
// would otherwise surface verbatim in slide titles.
func seedLines(txt string) []string {
	var seeds []string
	for _, ln := range strings.Split(txt, "\n") {
		s := strings.TrimSpace(ln)
		if s == "" {
			continue
		}
		s = artifactRe.ReplaceAllString(s, "")
		s = bulletRe.ReplaceAllString(s, "")
		s = leadNumRe.ReplaceAllString(s, "")
		s = strings.Trim(wsRe.ReplaceAllString(s, " "), " -—•·")
		if len([]rune(s)) < 4 {
			continue
		}
		if _, bad := badLines[strings.ToLower(s)]; bad {
			continue
		}
		seeds = append(seeds, s)
	}
	return seeds
}

func clip(s string, n int) string {
	s = strings.TrimSpace(s)
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return strings.TrimRight(string(r[:n-1]), " ") + "…"
}

// keywordFromTitle pulls the descriptive part out of a "Slide N: ..." title
// for image lookups.
func keywordFromTitle(title, topicFallback string) string {
	t := strings.TrimSpace(title)
	if i := strings.Index(t, ":"); i >= 0 {
		t = strings.TrimSpace(t[i+1:])
	}
	if t != "" {
		return t
	}
	if topicFallback != "" {
		return topicFallback
	}
	return "Presentation"
}

func clampSlideCount(n int) int {
	if n < 1 {
		return 1
	}
	if n > 15 {
		return 15
	}
	return n
}

// HeuristicStrategy derives slide titles from cleaned text lines, or cycles a
// fixed heading list when the input has no usable lines.
type HeuristicStrategy struct{}

func (h *HeuristicStrategy) titleBase(i int, topic string, seeds []string) string {
	if len(seeds) > 0 {
		return clip(seeds[i%len(seeds)], 80)
	}
	return fmt.Sprintf("%s — %s", clip(topic, 80), defaultHeadings[i%len(defaultHeadings)])
}

func (h *HeuristicStrategy) resolveTopic(req Request, seeds []string) string {
	if t := strings.TrimSpace(req.Topic); t != "" {
		return t
	}
	if len(seeds) > 0 {
		return seeds[0]
	}
	return "Untitled"
}

func (h *HeuristicStrategy) GenerateDeck(_ context.Context, req Request) (*deck.Deck, error) {
	if strings.TrimSpace(req.Topic) == "" && strings.TrimSpace(req.Text) == "" {
		return nil, ErrMissingInput
	}

	n := clampSlideCount(req.SlideCount)
	seeds := seedLines(strings.TrimSpace(req.Text))
	topic := h.resolveTopic(req, seeds)

	d := &deck.Deck{
		Version:   deck.SchemaVersion,
		Topic:     topic,
		CreatedAt: time.Now().UTC(),
		Slides:    make([]deck.Slide, 0, n),
	}
	for i := 0; i < n; i++ {
		d.Slides = append(d.Slides, deck.Slide{
			ID:      uuid.NewString(),
			Title:   fmt.Sprintf("Slide %d: %s", i+1, h.titleBase(i, topic, seeds)),
			Bullets: []string{"placeholder bullet"},
			Layout:  "title-bullets",
		})
	}
	d.Normalize()
	return d, nil
}

func (h *HeuristicStrategy) RegenerateSlide(_ context.Context, index int, req Request) (*deck.Slide, error) {
	n := clampSlideCount(req.SlideCount)
	if index < 0 || index >= n {
		return nil, fmt.Errorf("index %d out of range for slide_count=%d: %w", index, n, ErrIndexOutOfRange)
	}

	seeds := seedLines(strings.TrimSpace(req.Text))
	topic := h.resolveTopic(req, seeds)
	return &deck.Slide{
		ID:      uuid.NewString(),
		Title:   fmt.Sprintf("Slide %d: %s", index+1, h.titleBase(index, topic, seeds)),
		Bullets: []string{"placeholder bullet"},
		Layout:  "title-bullets",
	}, nil
}
