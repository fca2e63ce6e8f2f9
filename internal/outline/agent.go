package outline

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"slideforge/internal/deck"
)

// AgentStrategy delegates deck generation to an external service speaking the
// same Deck/Slide schema. No retries: a single failure hands control back to
// the orchestrator's fallback.
type AgentStrategy struct {
	BaseURL string
	Client  *http.Client
}

func NewAgentStrategy(baseURL string, timeout time.Duration) *AgentStrategy {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AgentStrategy{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Client:  &http.Client{Timeout: timeout},
	}
}

func (a *AgentStrategy) post(ctx context.Context, path string, req Request, out interface{}) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.Client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("agent %s: %w", path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("agent %s: status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("agent %s: decode: %w", path, err)
	}
	return nil
}

func (a *AgentStrategy) GenerateDeck(ctx context.Context, req Request) (*deck.Deck, error) {
	var d deck.Deck
	if err := a.post(ctx, "/outline", req, &d); err != nil {
		return nil, err
	}
	d.Normalize()
	if len(d.Slides) == 0 {
		return nil, fmt.Errorf("agent /outline: empty deck")
	}
	return &d, nil
}

func (a *AgentStrategy) RegenerateSlide(ctx context.Context, index int, req Request) (*deck.Slide, error) {
	var s deck.Slide
	path := fmt.Sprintf("/outline/%d/regenerate", index)
	if err := a.post(ctx, path, req, &s); err != nil {
		return nil, err
	}
	s.Normalize()
	if s.Title == "" {
		return nil, fmt.Errorf("agent %s: slide missing title", path)
	}
	return &s, nil
}
