// Package githubarchive clones GitHub repositories by downloading their
// tarball through the REST API, so ingestion works without a git install.
package githubarchive

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Cloner implements the interface.
var _ driven.Cloner = (*Cloner)(nil)

const (
	// DefaultTimeout bounds the API call and the download.
	DefaultTimeout = 5 * time.Minute

	// maxRedirects is passed to GetArchiveLink.
	maxRedirects = 3
)

// ErrNotGitHub indicates the URL does not name a github.com repository.
var ErrNotGitHub = errors.New("not a GitHub repository URL")

// Cloner downloads and unpacks repository tarballs.
type Cloner struct {
	gh          *gh.Client
	http        *http.Client
	rateLimiter *RateLimiter
}

// Option configures a Cloner.
type Option func(*Cloner) error

// WithBaseURL points the API client at another host, such as a test server.
func WithBaseURL(base string) Option {
	return func(c *Cloner) error {
		if !strings.HasSuffix(base, "/") {
			base += "/"
		}
		u, err := url.Parse(base)
		if err != nil {
			return fmt.Errorf("parse base URL: %w", err)
		}
		c.gh.BaseURL = u
		return nil
	}
}

// New creates an archive cloner. An empty token makes unauthenticated
// requests, which only reach public repositories.
func New(token string, opts ...Option) (*Cloner, error) {
	var hc *http.Client
	if token != "" {
		ts := oauth2.StaticTokenSource(
			&oauth2.Token{AccessToken: token},
		)
		hc = oauth2.NewClient(context.Background(), ts)
	} else {
		hc = &http.Client{Transport: http.DefaultTransport}
	}
	hc.Timeout = DefaultTimeout

	c := &Cloner{
		gh:          gh.NewClient(hc),
		http:        hc,
		rateLimiter: NewRateLimiter(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Clone downloads the default-branch tarball of repoURL and extracts it into dest.
func (c *Cloner) Clone(ctx context.Context, repoURL, dest string) error {
	owner, repo, err := ParseRepositoryURL(repoURL)
	if err != nil {
		return err
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	link, resp, err := c.gh.Repositories.GetArchiveLink(ctx, owner, repo, gh.Tarball, nil, maxRedirects)
	if resp != nil {
		c.rateLimiter.UpdateFromResponse(resp.Response)
	}
	if err != nil {
		return fmt.Errorf("get archive link for %s/%s: %w", owner, repo, err)
	}

	logger.Debug("downloading archive for %s/%s", owner, repo)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link.String(), http.NoBody)
	if err != nil {
		return fmt.Errorf("create download request: %w", err)
	}
	download, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("download archive: %w", err)
	}
	defer download.Body.Close()

	if download.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(download.Body, 512))
		return fmt.Errorf("download archive: status %d: %s", download.StatusCode, strings.TrimSpace(string(body)))
	}

	n, err := ExtractTarGz(download.Body, dest)
	if err != nil {
		return fmt.Errorf("extract archive: %w", err)
	}
	logger.Debug("extracted %d files from %s/%s", n, owner, repo)
	return nil
}

// ParseRepositoryURL extracts owner and repository name from a GitHub URL.
// Accepts https URLs with or without ".git" and scp-style git@github.com:owner/repo.
func ParseRepositoryURL(raw string) (owner, repo string, err error) {
	s := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(s, "git@github.com:"); ok {
		s = "https://github.com/" + rest
	}

	u, err := url.Parse(s)
	if err != nil || !strings.EqualFold(strings.TrimPrefix(u.Host, "www."), "github.com") {
		return "", "", fmt.Errorf("%w: %s", ErrNotGitHub, raw)
	}

	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("%w: %s", ErrNotGitHub, raw)
	}
	return parts[0], strings.TrimSuffix(parts[1], ".git"), nil
}
