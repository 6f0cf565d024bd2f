// Package fetch provides the HTTP page fetcher used by the web acquirer.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
)

// Ensure HTTPFetcher implements the interface.
var _ driven.Fetcher = (*HTTPFetcher)(nil)

const (
	// DefaultUserAgent identifies requests to remote sites.
	DefaultUserAgent = "sercha-rag/1.0 (+https://github.com/custodia-labs/sercha-rag)"

	// MaxBodySize caps the bytes read from one page.
	MaxBodySize = 10 << 20
)

// HTTPFetcher performs GET requests with a per-call timeout.
type HTTPFetcher struct {
	client    *http.Client
	userAgent string
}

// NewHTTPFetcher creates a fetcher. A nil client uses a fresh default client.
func NewHTTPFetcher(client *http.Client) *HTTPFetcher {
	if client == nil {
		client = &http.Client{}
	}
	return &HTTPFetcher{client: client, userAgent: DefaultUserAgent}
}

// Get fetches url. Any completed response is returned whatever its status;
// only transport failures and timeouts are errors.
func (f *HTTPFetcher) Get(ctx context.Context, url string, timeout time.Duration) (*driven.FetchResponse, error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,text/plain;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &driven.FetchResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}
