// Package repository acquires documents from a cloned source repository.
package repository

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
	"github.com/custodia-labs/sercha-rag/internal/normalisers/markdown"
)

// Ensure Acquirer implements the interface.
var _ driven.Acquirer = (*Acquirer)(nil)

// MaxFileSize skips files larger than this many bytes.
const MaxFileSize = 1 << 20

// Directories never walked.
var skipDirs = map[string]bool{
	".git":         true,
	"node_modules": true,
	"vendor":       true,
	"__pycache__":  true,
	".venv":        true,
}

// Acquirer clones a repository and reads every allow-listed text file.
type Acquirer struct {
	cloner     driven.Cloner
	workDir    string
	extensions map[string]bool
}

// Option configures an Acquirer.
type Option func(*Acquirer)

// WithWorkDir sets the parent of run-scoped working directories.
// Empty uses the system temp directory.
func WithWorkDir(dir string) Option {
	return func(a *Acquirer) {
		a.workDir = dir
	}
}

// WithExtensions replaces the allow-list. Leading dots are optional.
func WithExtensions(exts []string) Option {
	return func(a *Acquirer) {
		a.extensions = extensionSet(exts)
	}
}

// New creates a repository acquirer with the default extension allow-list.
func New(cloner driven.Cloner, opts ...Option) *Acquirer {
	a := &Acquirer{
		cloner:     cloner,
		extensions: extensionSet(domain.DefaultExtensions()),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Kind returns the repository source kind.
func (a *Acquirer) Kind() domain.SourceKind {
	return domain.SourceKindRepository
}

// Acquire clones desc.URL into a fresh working directory and reads its files.
// The working directory is removed on failure here, otherwise by Close.
func (a *Acquirer) Acquire(ctx context.Context, desc domain.SourceDescriptor) (driven.Acquisition, error) {
	if desc.Kind != domain.SourceKindRepository {
		return nil, fmt.Errorf("%w: repository acquirer cannot handle %q", domain.ErrInvalidInput, desc.Kind)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}

	repoName := domain.RepositoryName(desc.URL)
	dir, err := os.MkdirTemp(a.workDir, "sercha-rag-"+sanitize(repoName)+"-")
	if err != nil {
		return nil, fmt.Errorf("%w: create working directory: %w", domain.ErrAcquisition, err)
	}
	acq := &acquisition{dir: dir}

	dest := filepath.Join(dir, "repo")
	if err := os.Mkdir(dest, 0o750); err != nil {
		acq.Close()
		return nil, fmt.Errorf("%w: create clone directory: %w", domain.ErrAcquisition, err)
	}

	logger.Info("cloning %s", desc.URL)
	if err := a.cloner.Clone(ctx, desc.URL, dest); err != nil {
		acq.Close()
		return nil, fmt.Errorf("%w: %w", domain.ErrAcquisition, err)
	}

	base := map[string]any{
		domain.MetaSourceKind: string(domain.SourceKindRepository),
		domain.MetaOriginURL:  desc.URL,
		domain.MetaRepoName:   repoName,
	}
	items, err := a.walk(ctx, dest, desc.URL, base)
	if err != nil {
		acq.Close()
		return nil, err
	}
	acq.report = domain.AcquisitionReport{Items: items}

	logger.Debug("read %d files from %s (%d skipped)", len(acq.report.Documents()), repoName, len(acq.report.Skipped()))
	return acq, nil
}

func (a *Acquirer) walk(ctx context.Context, root, origin string, base map[string]any) ([]domain.ItemResult, error) {
	var items []domain.ItemResult

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if err != nil {
			if path == root {
				return err
			}
			logger.Warn("skipping %s: %v", path, err)
			return nil
		}
		if d.IsDir() {
			if path != root && skipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || !a.allowed(d.Name()) {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		doc, err := readDocument(path, rel, origin, base)
		if err != nil {
			logger.Warn("skipping %s: %v", rel, err)
			items = append(items, domain.ItemResult{
				Locator: rel,
				Err:     &domain.FetchError{Locator: rel, Err: err},
			})
			return nil
		}
		items = append(items, domain.ItemResult{Locator: rel, Document: doc})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: walk repository: %w", domain.ErrAcquisition, err)
	}
	return items, nil
}

func readDocument(path, rel, origin string, base map[string]any) (*domain.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if info.Size() > MaxFileSize {
		return nil, fmt.Errorf("file is %d bytes, limit %d", info.Size(), MaxFileSize)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(content) {
		return nil, fmt.Errorf("not UTF-8 text")
	}

	title := markdown.TitleOrPath(rel, string(content))
	return &domain.Document{
		URI:      strings.TrimSuffix(origin, "/") + "/" + rel,
		Title:    title,
		Content:  string(content),
		Metadata: domain.MergeMetadata(base, map[string]any{
			domain.MetaPath:  rel,
			domain.MetaTitle: title,
		}),
	}, nil
}

func (a *Acquirer) allowed(name string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), ".")
	return ext != "" && a.extensions[ext]
}

func extensionSet(exts []string) map[string]bool {
	set := make(map[string]bool, len(exts))
	for _, e := range exts {
		e = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(e)), ".")
		if e != "" {
			set[e] = true
		}
	}
	return set
}

// sanitize makes name safe for use in a temp directory pattern.
func sanitize(name string) string {
	out := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '-'
		}
	}, name)
	if out == "" {
		return "repo"
	}
	return out
}

type acquisition struct {
	dir    string
	report domain.AcquisitionReport
	once   sync.Once
	err    error
}

func (a *acquisition) Report() domain.AcquisitionReport {
	return a.report
}

// Close removes the working directory.
func (a *acquisition) Close() error {
	a.once.Do(func() {
		a.err = os.RemoveAll(a.dir)
		if a.err != nil {
			logger.Warn("failed to remove %s: %v", a.dir, a.err)
		}
	})
	return a.err
}
