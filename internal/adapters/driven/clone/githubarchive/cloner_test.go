package githubarchive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tarEntry struct {
	name     string
	body     string
	typeflag byte
}

func buildTarGz(t *testing.T, entries []tarEntry) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gz)
	for _, e := range entries {
		hdr := &tar.Header{Name: e.name, Mode: 0o644, Typeflag: e.typeflag}
		if e.typeflag == tar.TypeReg {
			hdr.Size = int64(len(e.body))
		}
		if e.typeflag == tar.TypeSymlink {
			hdr.Linkname = e.body
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if e.typeflag == tar.TypeReg {
			_, err := tw.Write([]byte(e.body))
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gz.Close())
	return buf.Bytes()
}

func TestParseRepositoryURL(t *testing.T) {
	tests := []struct {
		url       string
		owner     string
		repo      string
		wantError bool
	}{
		{url: "https://github.com/octo/hello", owner: "octo", repo: "hello"},
		{url: "https://github.com/octo/hello.git", owner: "octo", repo: "hello"},
		{url: "https://www.github.com/octo/hello/tree/main", owner: "octo", repo: "hello"},
		{url: "git@github.com:octo/hello.git", owner: "octo", repo: "hello"},
		{url: "https://gitlab.com/octo/hello", wantError: true},
		{url: "https://github.com/octo", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			owner, repo, err := ParseRepositoryURL(tt.url)
			if tt.wantError {
				assert.True(t, errors.Is(err, ErrNotGitHub))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.owner, owner)
			assert.Equal(t, tt.repo, repo)
		})
	}
}

func TestExtractTarGz(t *testing.T) {
	archive := buildTarGz(t, []tarEntry{
		{name: "octo-hello-abc123/", typeflag: tar.TypeDir},
		{name: "octo-hello-abc123/README.md", body: "# hello", typeflag: tar.TypeReg},
		{name: "octo-hello-abc123/src/", typeflag: tar.TypeDir},
		{name: "octo-hello-abc123/src/main.py", body: "print(1)", typeflag: tar.TypeReg},
		{name: "octo-hello-abc123/link", body: "/etc/passwd", typeflag: tar.TypeSymlink},
	})

	dest := t.TempDir()
	n, err := ExtractTarGz(bytes.NewReader(archive), dest)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	content, err := os.ReadFile(filepath.Join(dest, "src", "main.py"))
	require.NoError(t, err)
	assert.Equal(t, "print(1)", string(content))

	_, err = os.Lstat(filepath.Join(dest, "link"))
	assert.True(t, os.IsNotExist(err))
}

func TestExtractTarGz_RejectsTraversal(t *testing.T) {
	archive := buildTarGz(t, []tarEntry{
		{name: "top/../../evil.txt", body: "x", typeflag: tar.TypeReg},
	})

	_, err := ExtractTarGz(bytes.NewReader(archive), t.TempDir())
	assert.True(t, errors.Is(err, ErrUnsafePath))
}

func TestExtractTarGz_NotGzip(t *testing.T) {
	_, err := ExtractTarGz(bytes.NewReader([]byte("plain")), t.TempDir())
	assert.Error(t, err)
}

func TestClone(t *testing.T) {
	archive := buildTarGz(t, []tarEntry{
		{name: "octo-hello-abc123/docs/guide.md", body: "guide", typeflag: tar.TypeReg},
	})

	mux := http.NewServeMux()
	server := httptest.NewServer(mux)
	defer server.Close()

	mux.HandleFunc("/repos/octo/hello/tarball", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(HeaderRateRemaining, "59")
		http.Redirect(w, r, server.URL+"/download/hello.tar.gz", http.StatusFound)
	})
	mux.HandleFunc("/download/hello.tar.gz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(archive)
	})

	c, err := New("", WithBaseURL(server.URL))
	require.NoError(t, err)

	dest := t.TempDir()
	require.NoError(t, c.Clone(context.Background(), "https://github.com/octo/hello", dest))

	content, err := os.ReadFile(filepath.Join(dest, "docs", "guide.md"))
	require.NoError(t, err)
	assert.Equal(t, "guide", string(content))
	assert.Equal(t, 59, c.rateLimiter.Remaining())
}

func TestClone_NotFound(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	c, err := New("", WithBaseURL(server.URL))
	require.NoError(t, err)

	err = c.Clone(context.Background(), "https://github.com/octo/missing", t.TempDir())
	assert.Error(t, err)
}

func TestClone_NotGitHub(t *testing.T) {
	c, err := New("token")
	require.NoError(t, err)

	err = c.Clone(context.Background(), "https://example.com/octo/hello", t.TempDir())
	assert.True(t, errors.Is(err, ErrNotGitHub))
}

func TestRateLimiter(t *testing.T) {
	r := NewRateLimiter()
	assert.Equal(t, -1, r.Remaining())

	resp := &http.Response{Header: http.Header{}}
	resp.Header.Set(HeaderRateRemaining, "42")
	resp.Header.Set(HeaderRateReset, "1700000000")
	r.UpdateFromResponse(resp)
	r.UpdateFromResponse(nil)

	assert.Equal(t, 42, r.Remaining())
	assert.NoError(t, r.Wait(context.Background()))
}
