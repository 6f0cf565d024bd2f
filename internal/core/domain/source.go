package domain

import (
	"fmt"
	"strings"
	"time"
)

// SourceKind identifies how a source's content is acquired.
type SourceKind string

// Supported source kinds.
const (
	// SourceKindRepository is a remote repository that is cloned and walked.
	SourceKindRepository SourceKind = "repository"

	// SourceKindWeb is a named batch of web pages that are fetched and stripped.
	SourceKindWeb SourceKind = "web"
)

// IsValid returns true if the kind is recognised.
func (k SourceKind) IsValid() bool {
	return k == SourceKindRepository || k == SourceKindWeb
}

// String returns the string representation.
func (k SourceKind) String() string {
	return string(k)
}

// SourceStatus is the lifecycle state of a source.
//
// The only legal transitions are:
//
//	pending -> processing -> completed
//	                      -> failed
type SourceStatus string

// Lifecycle states.
const (
	SourceStatusPending    SourceStatus = "pending"
	SourceStatusProcessing SourceStatus = "processing"
	SourceStatusCompleted  SourceStatus = "completed"
	SourceStatusFailed     SourceStatus = "failed"
)

// IsValid returns true if the status is recognised.
func (s SourceStatus) IsValid() bool {
	switch s {
	case SourceStatusPending, SourceStatusProcessing, SourceStatusCompleted, SourceStatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal returns true once no further transition is allowed.
func (s SourceStatus) IsTerminal() bool {
	return s == SourceStatusCompleted || s == SourceStatusFailed
}

// CanTransitionTo reports whether moving from s to next is legal.
func (s SourceStatus) CanTransitionTo(next SourceStatus) bool {
	switch s {
	case SourceStatusPending:
		return next == SourceStatusProcessing
	case SourceStatusProcessing:
		return next == SourceStatusCompleted || next == SourceStatusFailed
	default:
		return false
	}
}

// String returns the string representation.
func (s SourceStatus) String() string {
	return string(s)
}

// AllSourceStatuses returns every lifecycle state in transition order.
func AllSourceStatuses() []SourceStatus {
	return []SourceStatus{
		SourceStatusPending,
		SourceStatusProcessing,
		SourceStatusCompleted,
		SourceStatusFailed,
	}
}

// Source represents one ingestion unit.
// A source exclusively owns its chunks; deleting it deletes them.
type Source struct {
	// ID is the unique identifier for the source.
	ID string

	// Name is the human-readable name for this source.
	Name string

	// Kind identifies how content is acquired.
	Kind SourceKind

	// Origin is the repository URL. Empty for web batches.
	Origin string

	// Status is the lifecycle state.
	Status SourceStatus

	// ChunkCount is the number of persisted chunks once completed.
	ChunkCount int

	// Metadata contains free-form key-value pairs.
	Metadata map[string]string

	// CreatedAt is when the source was created.
	CreatedAt time.Time

	// UpdatedAt is when the source was last updated.
	UpdatedAt time.Time
}

// Transition moves the source to next, rejecting illegal transitions.
func (s *Source) Transition(next SourceStatus) error {
	if !s.Status.CanTransitionTo(next) {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.Status, next)
	}
	s.Status = next
	s.UpdatedAt = time.Now()
	return nil
}

// Label returns the name used when presenting the source to users.
func (s *Source) Label() string {
	if s.Name != "" {
		return s.Name
	}
	if s.Origin != "" {
		return s.Origin
	}
	return s.ID
}

// SourceDescriptor identifies what an ingestion request should acquire.
type SourceDescriptor struct {
	// Kind selects the acquirer.
	Kind SourceKind `yaml:"type" json:"type"`

	// Name is the display name. Derived from the locator when empty.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// URL is the repository URL (repository kind).
	URL string `yaml:"url,omitempty" json:"url,omitempty"`

	// URLs is the list of pages to fetch (web kind).
	URLs []string `yaml:"urls,omitempty" json:"urls,omitempty"`
}

// Validate checks the descriptor carries a locator for its kind.
func (d SourceDescriptor) Validate() error {
	switch d.Kind {
	case SourceKindRepository:
		if strings.TrimSpace(d.URL) == "" {
			return fmt.Errorf("%w: repository URL is required", ErrInvalidInput)
		}
	case SourceKindWeb:
		if len(d.URLs) == 0 {
			return fmt.Errorf("%w: at least one URL is required", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown source kind %q", ErrInvalidInput, d.Kind)
	}
	return nil
}

// DisplayName returns Name, or a name derived from the locator.
// Repositories take the last path segment without ".git";
// web batches are named after their URL count.
func (d SourceDescriptor) DisplayName() string {
	if name := strings.TrimSpace(d.Name); name != "" {
		return name
	}
	switch d.Kind {
	case SourceKindRepository:
		return RepositoryName(d.URL)
	case SourceKindWeb:
		return fmt.Sprintf("Web docs (%d URLs)", len(d.URLs))
	default:
		return ""
	}
}

// Origin returns the locator stored on the Source record.
func (d SourceDescriptor) Origin() string {
	if d.Kind == SourceKindRepository {
		return strings.TrimSpace(d.URL)
	}
	return ""
}

// RepositoryName derives a repository name from its URL.
func RepositoryName(url string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(url), "/")
	if i := strings.LastIndexAny(trimmed, "/:"); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return strings.TrimSuffix(trimmed, ".git")
}
