package layout

import (
	"fmt"
	"math"
	"sort"
)

// Policy controls how an unresolvable explicit layout request is handled.
type Policy string

const (
	PolicyBestFit Policy = "best_fit"
	PolicyStrict  Policy = "strict"
)

// ParsePolicy maps a wire string onto a Policy, defaulting to best_fit.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", string(PolicyBestFit):
		return PolicyBestFit, nil
	case string(PolicyStrict):
		return PolicyStrict, nil
	default:
		return "", fmt.Errorf("unknown layout policy %q", s)
	}
}

// ScoringWeights tunes the fit score. The defaults are hand-tuned constants
// carried over from the original catalog; underflow is penalized harder than
// overflow because a layout can usually absorb a little extra text before
// truncation while an empty region looks broken.
type ScoringWeights struct {
	Underflow float64
	Overflow  float64
	Tiebreak  float64
}

// DefaultScoringWeights returns the tuned defaults.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{Underflow: 2.0, Overflow: 1.5, Tiebreak: 0.5}
}

// ContentShape is what a slide looks like to the selector.
type ContentShape struct {
	Bullets int
	Images  int
}

// Warning records a best-fit substitution for an unresolvable explicit
// layout request.
type Warning struct {
	SlideID  string `json:"slide_id"`
	Reason   string `json:"reason"`
	LayoutID string `json:"layout_id"`
}

// ReasonSubstitution is the only warning reason the selector emits.
const ReasonSubstitution = "unknown_layout_best_fit_substitution"

// UnknownLayoutError is returned under the strict policy when the requested
// layout id is absent from the catalog.
type UnknownLayoutError struct {
	SlideID  string
	LayoutID string
}

func (e *UnknownLayoutError) Error() string {
	return fmt.Sprintf("unknown layout %q for slide %q", e.LayoutID, e.SlideID)
}

// Score rates how well an item fits a content shape; lower is better. A zero
// penalty means the shape sits inside both capacity ranges; in that case a
// small midpoint-distance tiebreak separates otherwise perfect candidates.
func Score(it *Item, shape ContentShape, w ScoringWeights) float64 {
	textPenalty := capacityPenalty(shape.Bullets, it.Supports.TextMin, it.Supports.TextMax, w)
	imagePenalty := capacityPenalty(shape.Images, it.Supports.ImagesMin, it.Supports.ImagesMax, w)

	score := textPenalty + imagePenalty
	if textPenalty == 0 && imagePenalty == 0 {
		score += w.Tiebreak * (midpointDistance(shape.Bullets, it.Supports.TextMin, it.Supports.TextMax) +
			midpointDistance(shape.Images, it.Supports.ImagesMin, it.Supports.ImagesMax))
	}
	return score / math.Max(0.1, it.Weight)
}

func capacityPenalty(v, lo, hi int, w ScoringWeights) float64 {
	if v < lo {
		return float64(lo-v) * w.Underflow
	}
	if v > hi {
		return float64(v-hi) * w.Overflow
	}
	return 0
}

// midpointDistance is the distance of v from the bounds' midpoint,
// normalized by the span. A degenerate span contributes nothing.
func midpointDistance(v, lo, hi int) float64 {
	span := float64(hi - lo)
	if span <= 0 {
		return 0
	}
	mid := (float64(lo) + float64(hi)) / 2
	return math.Abs(float64(v)-mid) / span
}

// Select picks the layout for one slide. An explicit preferred id that
// resolves is used unconditionally. Otherwise best_fit scores the whole
// library and picks the minimum (catalog order breaks ties); if the explicit
// id did not resolve, the substitution is reported as a warning. Under
// strict, an unresolvable explicit id is an error instead.
func Select(slideID string, shape ContentShape, preferredID string, lib *Library, policy Policy, w ScoringWeights) (*Item, *Warning, error) {
	if it := lib.Find(preferredID); it != nil {
		return it, nil, nil
	}

	if preferredID != "" && policy == PolicyStrict {
		return nil, nil, &UnknownLayoutError{SlideID: slideID, LayoutID: preferredID}
	}

	if len(lib.Items) == 0 {
		return nil, nil, fmt.Errorf("layout library is empty")
	}

	best := bestFit(lib, shape, w)

	var warning *Warning
	if preferredID != "" {
		warning = &Warning{SlideID: slideID, Reason: ReasonSubstitution, LayoutID: best.ID}
	}
	return best, warning, nil
}

func bestFit(lib *Library, shape ContentShape, w ScoringWeights) *Item {
	best := &lib.Items[0]
	bestScore := Score(best, shape, w)
	for i := 1; i < len(lib.Items); i++ {
		it := &lib.Items[i]
		if s := Score(it, shape, w); s < bestScore {
			best, bestScore = it, s
		}
	}
	return best
}

// TopK ranks the whole library against a desired content shape and returns
// the best k ids. k is clamped to [1, 50].
func TopK(lib *Library, textCount, imageCount, k int, w ScoringWeights) []string {
	if k < 1 {
		k = 1
	}
	if k > 50 {
		k = 50
	}
	if textCount < 0 {
		textCount = 0
	}
	if imageCount < 0 {
		imageCount = 0
	}

	shape := ContentShape{Bullets: textCount, Images: imageCount}

	type scored struct {
		id    string
		score float64
	}
	ranked := make([]scored, 0, len(lib.Items))
	for i := range lib.Items {
		ranked = append(ranked, scored{
			id:    lib.Items[i].ID,
			score: Score(&lib.Items[i], shape, w),
		})
	}
	// Stable sort keeps catalog order on equal scores.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score < ranked[j].score
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	ids := make([]string, 0, k)
	for _, r := range ranked[:k] {
		ids = append(ids, r.id)
	}
	return ids
}
