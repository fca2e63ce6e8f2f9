package outline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"slideforge/internal/deck"
	"slideforge/internal/images"
)

type failingStrategy struct{ err error }

func (f *failingStrategy) GenerateDeck(context.Context, Request) (*deck.Deck, error) {
	return nil, f.err
}

func (f *failingStrategy) RegenerateSlide(context.Context, int, Request) (*deck.Slide, error) {
	return nil, f.err
}

type fakeProvider struct {
	result *images.Result
	err    error
	calls  int
}

func (f *fakeProvider) Fetch(_ context.Context, keyword string, _ int) (*images.Result, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func TestServiceFallsBackOnPrimaryFailure(t *testing.T) {
	primary := &failingStrategy{err: errors.New("agent down")}
	svc := NewServiceWith(primary, &HeuristicStrategy{}, nil, nil)

	d, err := svc.GenerateDeck(context.Background(), Request{Topic: "Plan", SlideCount: 2})
	if err != nil {
		t.Fatalf("fallback should have recovered: %v", err)
	}
	if len(d.Slides) != 2 {
		t.Errorf("slides = %d", len(d.Slides))
	}
}

func TestServiceFallbackErrorPropagates(t *testing.T) {
	primary := &failingStrategy{err: errors.New("agent down")}
	svc := NewServiceWith(primary, &HeuristicStrategy{}, nil, nil)

	// Neither topic nor text fails the heuristic too; that error must surface.
	_, err := svc.GenerateDeck(context.Background(), Request{SlideCount: 2})
	if !errors.Is(err, ErrMissingInput) {
		t.Errorf("err = %v, want ErrMissingInput", err)
	}
}

func TestServiceEnrichmentAttachesMedia(t *testing.T) {
	p := &fakeProvider{result: &images.Result{URL: "https://img/x.jpg", Alt: "x"}}
	svc := NewServiceWith(&HeuristicStrategy{}, &HeuristicStrategy{}, p, nil)

	d, err := svc.GenerateDeck(context.Background(), Request{Topic: "Plan", SlideCount: 3})
	if err != nil {
		t.Fatal(err)
	}
	if p.calls != 3 {
		t.Errorf("provider called %d times, want 3", p.calls)
	}
	for i, s := range d.Slides {
		if len(s.Media) != 1 {
			t.Fatalf("slide %d media = %d", i, len(s.Media))
		}
		m := s.Media[0]
		if m.URL != "https://img/x.jpg" || m.Source != deck.SourceExternal || m.Type != "image" {
			t.Errorf("slide %d media = %+v", i, m)
		}
	}
}

func TestServiceEnrichmentFailureNonFatal(t *testing.T) {
	p := &fakeProvider{err: errors.New("provider down")}
	svc := NewServiceWith(&HeuristicStrategy{}, &HeuristicStrategy{}, p, nil)

	d, err := svc.GenerateDeck(context.Background(), Request{Topic: "Plan", SlideCount: 2})
	if err != nil {
		t.Fatalf("enrichment errors must not fail generation: %v", err)
	}
	for i, s := range d.Slides {
		if len(s.Media) != 0 {
			t.Errorf("slide %d unexpectedly has media", i)
		}
	}
}

func TestServiceRegenerateEnriches(t *testing.T) {
	p := &fakeProvider{result: &images.Result{URL: "https://img/r.jpg"}}
	svc := NewServiceWith(&HeuristicStrategy{}, &HeuristicStrategy{}, p, nil)

	s, err := svc.RegenerateSlide(context.Background(), 0, Request{Topic: "Plan", SlideCount: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Media) != 1 || s.Media[0].URL != "https://img/r.jpg" {
		t.Errorf("media = %+v", s.Media)
	}
}

func TestAgentStrategyGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/outline" || r.Method != http.MethodPost {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"version": "1.0", "topic": "Remote", "slides": [{"id": "r1", "title": "Slide 1: Remote", "bullets": ["a", ""]}]}`))
	}))
	defer srv.Close()

	a := NewAgentStrategy(srv.URL, time.Second)
	d, err := a.GenerateDeck(context.Background(), Request{Topic: "Remote", SlideCount: 1})
	if err != nil {
		t.Fatal(err)
	}
	if d.Topic != "Remote" || d.SlideCount != 1 {
		t.Errorf("deck = %+v", d)
	}
	// Normalization drops the empty bullet from the remote payload.
	if len(d.Slides[0].Bullets) != 1 {
		t.Errorf("bullets = %v", d.Slides[0].Bullets)
	}
}

func TestAgentStrategyErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	a := NewAgentStrategy(srv.URL, time.Second)
	if _, err := a.GenerateDeck(context.Background(), Request{Topic: "x", SlideCount: 1}); err == nil {
		t.Error("expected error on non-200 status")
	}
}

func TestAgentStrategyRegeneratePath(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"id": "r2", "title": "Slide 3: Remote", "bullets": ["b"]}`))
	}))
	defer srv.Close()

	a := NewAgentStrategy(srv.URL, time.Second)
	s, err := a.RegenerateSlide(context.Background(), 2, Request{Topic: "x", SlideCount: 5})
	if err != nil {
		t.Fatal(err)
	}
	if gotPath != "/outline/2/regenerate" {
		t.Errorf("path = %q", gotPath)
	}
	if s.ID != "r2" {
		t.Errorf("slide = %+v", s)
	}
}
