// Package images resolves illustrative image URLs for slide keywords.
package images

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"slideforge/internal/config"
)

// Result is one resolved image suggestion.
type Result struct {
	URL string
	Alt string
}

// Provider looks up an image for a keyword. The index varies results when the
// same keyword is queried for several slides.
type Provider interface {
	Fetch(ctx context.Context, keyword string, index int) (*Result, error)
}

// NewProvider wires the configured provider, or nil when image enrichment is
// switched off.
func NewProvider(cfg config.ImagesConfig, logger *slog.Logger) Provider {
	if !cfg.Enabled {
		return nil
	}
	timeout := time.Duration(cfg.TimeoutMS) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if cfg.Provider == "pexels" && cfg.PexelsAPIKey != "" {
		return &PexelsProvider{
			APIKey:  cfg.PexelsAPIKey,
			BaseURL: "https://api.pexels.com",
			Client:  &http.Client{Timeout: timeout},
			Logger:  logger,
		}
	}
	if cfg.Provider == "pexels" && logger != nil {
		logger.Warn("pexels provider requested without api key, using stub")
	}
	return &StubProvider{}
}

// StubProvider returns deterministic placeholder URLs. The seed hash keeps the
// same keyword/index pair stable across runs without any network dependency.
type StubProvider struct{}

func (s *StubProvider) Fetch(_ context.Context, keyword string, index int) (*Result, error) {
	sum := sha1.Sum([]byte(keyword + "|" + strconv.Itoa(index)))
	seed := hex.EncodeToString(sum[:])[:16]
	return &Result{
		URL: "https://picsum.photos/seed/" + seed + "/800/500",
		Alt: keyword,
	}, nil
}

// PexelsProvider queries the Pexels search API.
type PexelsProvider struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
	Logger  *slog.Logger
}

type pexelsResponse struct {
	Photos []struct {
		Alt string `json:"alt"`
		Src struct {
			Landscape string `json:"landscape"`
			Large     string `json:"large"`
			Original  string `json:"original"`
		} `json:"src"`
	} `json:"photos"`
}

func (p *PexelsProvider) Fetch(ctx context.Context, keyword string, index int) (*Result, error) {
	q := url.Values{}
	q.Set("query", keyword)
	q.Set("per_page", "1")
	q.Set("page", strconv.Itoa(index%10+1))
	q.Set("orientation", "landscape")
	q.Set("size", "large")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.BaseURL+"/v1/search?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", p.APIKey)

	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("pexels search: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("pexels search: status %d", resp.StatusCode)
	}

	var body pexelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("pexels search: decode: %w", err)
	}
	if len(body.Photos) == 0 {
		return nil, fmt.Errorf("pexels search: no results for %q", keyword)
	}

	photo := body.Photos[0]
	u := photo.Src.Landscape
	if u == "" {
		u = photo.Src.Large
	}
	if u == "" {
		u = photo.Src.Original
	}
	if u == "" {
		return nil, fmt.Errorf("pexels search: result has no usable source url")
	}

	alt := photo.Alt
	if runes := []rune(alt); len(runes) > 160 {
		alt = string(runes[:160])
	}
	return &Result{URL: u, Alt: alt}, nil
}
