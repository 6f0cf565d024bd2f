package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Acquisition is the product of one acquirer call.
// Close releases the working area and must be called on every exit path.
type Acquisition interface {
	// Report returns per-item outcomes.
	Report() domain.AcquisitionReport

	// Close releases working-area resources. Safe to call more than once.
	Close() error
}

// Acquirer produces documents for one source descriptor.
type Acquirer interface {
	// Kind returns the source kind this acquirer handles.
	Kind() domain.SourceKind

	// Acquire obtains the documents. An error means no content could be
	// obtained at all; individual item failures are reported on the
	// returned Acquisition instead.
	Acquire(ctx context.Context, desc domain.SourceDescriptor) (Acquisition, error)
}

// Cloner copies a remote repository into dest, which must already exist and be empty.
type Cloner interface {
	Clone(ctx context.Context, url, dest string) error
}

// FetchResponse is the raw outcome of a page request.
type FetchResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Fetcher retrieves one URL within timeout.
type Fetcher interface {
	Get(ctx context.Context, url string, timeout time.Duration) (*FetchResponse, error)
}
