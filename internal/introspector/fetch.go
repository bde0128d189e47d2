package introspector

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	"ctxprobe/internal/errdefs"
)

const defaultUserAgent = "ctxprobe"

// Fetcher retrieves the raw body at url.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// HTTPFetcher is a Fetcher with a fixed per-request timeout. It never retries.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

func NewHTTPFetcher(timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client: &http.Client{
			Timeout: timeout,
		},
		userAgent: defaultUserAgent,
	}
}

func (f *HTTPFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errdefs.Transport(err, "GET %s", url)
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errdefs.Transport(err, "GET %s", url)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errdefs.Transport(err, "GET %s: reading body", url)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errdefs.Transport(nil, "GET %s: status %d: %s", url, resp.StatusCode, snippet(raw))
	}
	return raw, nil
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 120 {
		s = s[:120] + "..."
	}
	return s
}
