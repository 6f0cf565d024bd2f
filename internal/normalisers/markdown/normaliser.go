// Package markdown reads document titles from Markdown files.
//
// Repository files are ingested verbatim so code samples stay searchable;
// only the title is derived from the Markdown structure.
package markdown

import (
	"path/filepath"
	"strings"
)

// Extensions are the file extensions treated as Markdown.
var Extensions = []string{"md", "markdown", "mdx"}

// IsMarkdown reports whether path names a Markdown file.
func IsMarkdown(path string) bool {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range Extensions {
		if ext == e {
			return true
		}
	}
	return false
}

// Title returns the text of the first level-one heading in content, or ""
// when there is none. Headings inside fenced code blocks are ignored.
func Title(content string) string {
	inFence := false
	var previous string
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			previous = ""
			continue
		}
		if inFence {
			continue
		}

		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimRight(strings.TrimPrefix(trimmed, "# "), "#"))
		}
		// Setext heading: a text line underlined with "=".
		if previous != "" && trimmed != "" && strings.Trim(trimmed, "=") == "" {
			return previous
		}
		previous = trimmed
	}
	return ""
}

// TitleOrPath returns the Markdown title of content when path is a Markdown
// file that has one, and path otherwise.
func TitleOrPath(path, content string) string {
	if !IsMarkdown(path) {
		return path
	}
	if title := Title(content); title != "" {
		return title
	}
	return path
}
