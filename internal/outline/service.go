package outline

import (
	"context"
	"log/slog"
	"time"

	"slideforge/internal/config"
	"slideforge/internal/deck"
	"slideforge/internal/images"
)

// Service orchestrates a primary strategy with a local fallback, then runs
// image enrichment over the result. Primary failures are absorbed; fallback
// failures propagate to the caller.
type Service struct {
	primary  Strategy
	fallback Strategy
	provider images.Provider
	logger   *slog.Logger
}

// NewService wires strategies from configuration. The agent strategy is only
// used when the feature flag is on and a URL is configured; the heuristic is
// always the fallback.
func NewService(cfg config.OutlineConfig, provider images.Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	heuristic := &HeuristicStrategy{}
	var primary Strategy = heuristic
	if cfg.UseAgent {
		if cfg.AgentURL != "" {
			primary = NewAgentStrategy(cfg.AgentURL, time.Duration(cfg.AgentTimeoutMS)*time.Millisecond)
		} else {
			logger.Error("outline agent enabled but agent url empty, using heuristic")
		}
	}
	return &Service{primary: primary, fallback: heuristic, provider: provider, logger: logger}
}

// NewServiceWith builds a service from explicit strategies, for tests.
func NewServiceWith(primary, fallback Strategy, provider images.Provider, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{primary: primary, fallback: fallback, provider: provider, logger: logger}
}

func (s *Service) GenerateDeck(ctx context.Context, req Request) (*deck.Deck, error) {
	d, err := s.primary.GenerateDeck(ctx, req)
	if err != nil {
		s.logger.Warn("outline primary failed, using fallback", "error", err)
		d, err = s.fallback.GenerateDeck(ctx, req)
		if err != nil {
			return nil, err
		}
	}
	s.enrichDeck(ctx, d)
	return d, nil
}

func (s *Service) RegenerateSlide(ctx context.Context, index int, req Request) (*deck.Slide, error) {
	slide, err := s.primary.RegenerateSlide(ctx, index, req)
	if err != nil {
		s.logger.Warn("outline regenerate primary failed, using fallback", "index", index, "error", err)
		slide, err = s.fallback.RegenerateSlide(ctx, index, req)
		if err != nil {
			return nil, err
		}
	}
	s.enrichSlide(ctx, slide, index, req.Topic)
	return slide, nil
}

func (s *Service) enrichDeck(ctx context.Context, d *deck.Deck) {
	if s.provider == nil {
		return
	}
	for i := range d.Slides {
		s.enrichSlide(ctx, &d.Slides[i], i, d.Topic)
	}
}

// enrichSlide attaches one representative image to a slide that has none.
// Misses and provider errors leave the slide as-is.
func (s *Service) enrichSlide(ctx context.Context, slide *deck.Slide, index int, topic string) {
	if s.provider == nil || len(slide.Media) > 0 {
		return
	}
	kw := keywordFromTitle(slide.Title, topic)
	res, err := s.provider.Fetch(ctx, kw, index)
	if err != nil {
		s.logger.Warn("image enrichment failed", "index", index, "keyword", kw, "error", err)
		return
	}
	if res == nil || res.URL == "" {
		return
	}
	slide.Media = []deck.Media{{
		Type:   "image",
		URL:    res.URL,
		Source: deck.SourceExternal,
		Alt:    res.Alt,
	}}
}
