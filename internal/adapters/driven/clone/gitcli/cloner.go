// Package gitcli clones repositories with the git executable.
package gitcli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-rag/internal/logger"
)

// Ensure Cloner implements the interface.
var _ driven.Cloner = (*Cloner)(nil)

// DefaultBinary is the git executable looked up on PATH.
const DefaultBinary = "git"

// Cloner performs shallow clones of a single branch.
type Cloner struct {
	binary string
	depth  int
}

// Option configures a Cloner.
type Option func(*Cloner)

// WithBinary overrides the git executable.
func WithBinary(path string) Option {
	return func(c *Cloner) {
		c.binary = path
	}
}

// WithDepth sets the history depth. Zero clones the full history.
func WithDepth(depth int) Option {
	return func(c *Cloner) {
		c.depth = depth
	}
}

// New creates a git CLI cloner with depth 1.
func New(opts ...Option) *Cloner {
	c := &Cloner{binary: DefaultBinary, depth: 1}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Clone runs git clone into dest. Credential prompts are disabled so a
// private repository fails instead of blocking.
func (c *Cloner) Clone(ctx context.Context, url, dest string) error {
	args := []string{"clone", "--quiet", "--single-branch"}
	if c.depth > 0 {
		args = append(args, "--depth", fmt.Sprint(c.depth))
	}
	args = append(args, "--", url, dest)

	logger.Debug("running %s %s", c.binary, strings.Join(args, " "))

	cmd := exec.CommandContext(ctx, c.binary, args...)
	cmd.Env = append(os.Environ(), "GIT_TERMINAL_PROMPT=0")
	out, err := cmd.CombinedOutput()
	if err != nil {
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("git clone %s: %w: %s", url, err, msg)
		}
		return fmt.Errorf("git clone %s: %w", url, err)
	}
	return nil
}
