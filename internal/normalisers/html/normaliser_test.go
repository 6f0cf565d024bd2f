package html

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

func TestSupportedMIMETypes(t *testing.T) {
	mimeTypes := New().SupportedMIMETypes()
	assert.Contains(t, mimeTypes, "text/html")
	assert.Contains(t, mimeTypes, "application/xhtml+xml")
}

func TestIsMarkup(t *testing.T) {
	n := New()
	tests := []struct {
		name        string
		contentType string
		body        string
		want        bool
	}{
		{"html with charset", "text/html; charset=utf-8", "", true},
		{"xhtml", "application/xhtml+xml", "", true},
		{"plain text", "text/plain", "<html>", false},
		{"markdown", "text/markdown", "# Title", false},
		{"missing header sniffed", "", "<!DOCTYPE html><html></html>", true},
		{"octet stream sniffed", "application/octet-stream", "  <html lang=en>", true},
		{"missing header plain", "", "just text", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, n.IsMarkup(tt.contentType, []byte(tt.body)))
		})
	}
}

func TestNormalise_HTML(t *testing.T) {
	body := []byte(`<html><head><title>  Getting
	Started </title><style>body{}</style></head>
	<body><script>alert("x")</script><h1>Intro</h1><p>Hello&nbsp;&amp;   welcome</p></body></html>`)

	doc := New().Normalise("https://docs.example.com/start", "text/html", body)

	assert.Equal(t, "https://docs.example.com/start", doc.URI)
	assert.Equal(t, "Getting Started", doc.Title)
	assert.Equal(t, "Intro\nHello & welcome", doc.Content)
	assert.Equal(t, "html", doc.Metadata["format"])
	assert.Equal(t, "Getting Started", doc.Metadata[domain.MetaTitle])
}

func TestNormalise_PlainText(t *testing.T) {
	doc := New().Normalise("https://example.com/notes/release-notes.txt", "text/plain", []byte("  v1.0\t\tshipped  \n"))

	assert.Equal(t, "v1.0 shipped", doc.Content)
	assert.Equal(t, "release notes", doc.Title)
	assert.Equal(t, "text", doc.Metadata["format"])
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "hello", "hello"},
		{"script removed", "<p>a</p><script type=\"x\">var b;</script><p>c</p>", "a\nc"},
		{"style removed", "<style>.x{}</style>text", "text"},
		{"noscript removed", "<noscript>enable js</noscript>ok", "ok"},
		{"comments removed", "a<!-- hidden -->b", "ab"},
		{"br becomes newline", "one<br/>two<br>three", "one\ntwo\nthree"},
		{"entities decoded", "&lt;tag&gt; &quot;q&quot;", "<tag> \"q\""},
		{"whitespace collapsed", "<div>  lots   of\t space </div>", "lots of space"},
		{"blank lines dropped", "<p>a</p>\n\n\n<p>b</p>", "a\nb"},
		{"inline tags stripped", "<p>a <b>bold</b> <a href=\"/x\">link</a></p>", "a bold link"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripHTML(tt.input))
		})
	}
}

func TestExtractTitle_Fallback(t *testing.T) {
	require.Equal(t, "my page", ExtractTitle("<p>no title</p>", "https://x.io/docs/my_page.html"))
	assert.Equal(t, "x.io", ExtractTitle("<title> </title>", "https://x.io/"))
}

func TestStripHTML_NestedBlocks(t *testing.T) {
	input := `<ul><li>first <em>item</em></li><li>second</li></ul><svg><text>icon</text></svg>`
	assert.Equal(t, "first item\nsecond", StripHTML(input))
}
