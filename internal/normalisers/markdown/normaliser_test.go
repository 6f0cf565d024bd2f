package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMarkdown(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"README.md", true},
		{"docs/Guide.MD", true},
		{"notes.markdown", true},
		{"page.mdx", true},
		{"main.go", false},
		{"md", false},
		{"Makefile", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsMarkdown(tt.path))
		})
	}
}

func TestTitle(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{"atx heading", "# Hello World\n\nThis is a test.", "Hello World"},
		{"closing hashes", "# Hello World ##\n", "Hello World"},
		{"after preamble", "Intro line\n\n# Install\n", "Install"},
		{"indented", "   # Spaced  \n", "Spaced"},
		{"setext heading", "Project Name\n============\n\nBody", "Project Name"},
		{"second level only", "## Usage\nRun it.", ""},
		{"fenced heading ignored", "```sh\n# not a title\n```\n# Real Title\n", "Real Title"},
		{"tilde fence", "~~~\n# hidden\n~~~\n", ""},
		{"empty", "", ""},
		{"hash without space", "#hashtag\n", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Title(tt.content))
		})
	}
}

func TestTitleOrPath(t *testing.T) {
	assert.Equal(t, "Widgets", TitleOrPath("README.md", "# Widgets\n"))
	assert.Equal(t, "docs/usage.md", TitleOrPath("docs/usage.md", "no heading here"))
	assert.Equal(t, "main.go", TitleOrPath("main.go", "# comment in a script"))
}
