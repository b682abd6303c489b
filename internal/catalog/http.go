package catalog

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// HTTPSource fetches a catalog over HTTP(S).
type HTTPSource struct {
	URL    string
	client *http.Client
}

// NewHTTPSource returns a source for rawURL with the given client timeout
// (30s when zero).
func NewHTTPSource(rawURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &HTTPSource{
		URL:    rawURL,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *HTTPSource) Fetch(ctx context.Context) ([]Plant, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "herbal/0.1")
	req.Header.Set("Accept", "application/json, application/yaml;q=0.9, text/html;q=0.5, */*;q=0.1")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch catalog: HTTP %d", resp.StatusCode)
	}

	name := s.URL
	if u, err := url.Parse(s.URL); err == nil {
		name = u.Path
	}
	return Decode(resp.Body, FormatFor(name, resp.Header.Get("Content-Type")))
}

func (s *HTTPSource) String() string { return s.URL }
