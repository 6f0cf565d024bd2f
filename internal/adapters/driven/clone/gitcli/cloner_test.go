package gitcli

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not installed")
	}
}

func runGit(t *testing.T, dir string, args ...string) {
	t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=test", "GIT_AUTHOR_EMAIL=test@example.com",
		"GIT_COMMITTER_NAME=test", "GIT_COMMITTER_EMAIL=test@example.com",
	)
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, string(out))
}

func TestNew_Defaults(t *testing.T) {
	c := New()
	assert.Equal(t, DefaultBinary, c.binary)
	assert.Equal(t, 1, c.depth)

	c = New(WithBinary("/usr/local/bin/git"), WithDepth(0))
	assert.Equal(t, "/usr/local/bin/git", c.binary)
	assert.Equal(t, 0, c.depth)
}

func TestClone_LocalRepository(t *testing.T) {
	requireGit(t)

	origin := t.TempDir()
	runGit(t, origin, "init", "--quiet")
	require.NoError(t, os.WriteFile(filepath.Join(origin, "README.md"), []byte("# hello"), 0o600))
	runGit(t, origin, "add", "README.md")
	runGit(t, origin, "commit", "--quiet", "-m", "initial")

	dest := filepath.Join(t.TempDir(), "clone")
	err := New().Clone(context.Background(), "file://"+origin, dest)
	require.NoError(t, err)

	content, err := os.ReadFile(filepath.Join(dest, "README.md"))
	require.NoError(t, err)
	assert.Equal(t, "# hello", string(content))
}

func TestClone_MissingRepository(t *testing.T) {
	requireGit(t)

	dest := filepath.Join(t.TempDir(), "clone")
	err := New().Clone(context.Background(), "file://"+filepath.Join(t.TempDir(), "missing"), dest)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "git clone")
}

func TestClone_MissingBinary(t *testing.T) {
	err := New(WithBinary("sercha-rag-no-such-git")).Clone(context.Background(), "https://example.com/x.git", t.TempDir())
	require.Error(t, err)
}
