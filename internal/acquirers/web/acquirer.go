// Package web acquires documents by fetching pages and stripping their markup.
package web

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/html"
)

// Ensure Acquirer implements the interface.
var _ driven.Acquirer = (*Acquirer)(nil)

// Acquirer fetches every URL of a web descriptor in order.
// A failing URL is skipped; the rest of the batch continues.
type Acquirer struct {
	fetcher    driven.Fetcher
	normaliser *html.Normaliser
	timeout    time.Duration
	limiter    *rate.Limiter
}

// Option configures an Acquirer.
type Option func(*Acquirer)

// WithTimeout bounds each page request.
func WithTimeout(d time.Duration) Option {
	return func(a *Acquirer) {
		a.timeout = d
	}
}

// WithRate limits requests per second. Zero or less disables pacing.
func WithRate(perSecond float64) Option {
	return func(a *Acquirer) {
		if perSecond <= 0 {
			a.limiter = nil
			return
		}
		a.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// New creates a web acquirer with the default timeout and no pacing.
func New(fetcher driven.Fetcher, opts ...Option) *Acquirer {
	a := &Acquirer{
		fetcher:    fetcher,
		normaliser: html.New(),
		timeout:    domain.DefaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Kind returns the web source kind.
func (a *Acquirer) Kind() domain.SourceKind {
	return domain.SourceKindWeb
}

// Acquire fetches each URL. It only fails on invalid input or cancellation;
// a batch where every URL failed is a valid, empty acquisition.
func (a *Acquirer) Acquire(ctx context.Context, desc domain.SourceDescriptor) (driven.Acquisition, error) {
	if desc.Kind != domain.SourceKindWeb {
		return nil, fmt.Errorf("%w: web acquirer cannot handle %q", domain.ErrInvalidInput, desc.Kind)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	items := make([]domain.ItemResult, 0, len(desc.URLs))
	for i, url := range desc.URLs {
		if a.limiter != nil {
			if err := a.limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		url = strings.TrimSpace(url)
		logger.Debug("fetching %d/%d: %s", i+1, len(desc.URLs), url)

		doc, err := a.fetch(ctx, url)
		if err != nil {
			logger.Warn("skipping %s: %v", url, err)
			items = append(items, domain.ItemResult{Locator: url, Err: err})
			continue
		}
		items = append(items, domain.ItemResult{Locator: url, Document: doc})
	}

	report := domain.AcquisitionReport{Items: items}
	logger.Debug("fetched %d of %d pages", len(report.Documents()), len(desc.URLs))
	return &acquisition{report: report}, nil
}

func (a *Acquirer) fetch(ctx context.Context, url string) (*domain.Document, error) {
	resp, err := a.fetcher.Get(ctx, url, a.timeout)
	if err != nil {
		return nil, &domain.FetchError{Locator: url, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &domain.FetchError{
			Locator:    url,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	doc := a.normaliser.Normalise(url, resp.ContentType, resp.Body)
	doc.Metadata = domain.MergeMetadata(doc.Metadata, map[string]any{
		domain.MetaSourceKind: string(domain.SourceKindWeb),
		domain.MetaOriginURL:  url,
	})
	return &doc, nil
}

type acquisition struct {
	report domain.AcquisitionReport
}

func (a *acquisition) Report() domain.AcquisitionReport {
	return a.report
}

// Close is a no-op: pages are held in memory only.
func (a *acquisition) Close() error {
	return nil
}
