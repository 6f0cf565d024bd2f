package html

import (
	"mime"
	"net/url"
	"path"
	"strings"

	xhtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// Normaliser converts web pages into documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser strips.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// IsMarkup reports whether a response should be stripped.
// An empty or unparsable content type is sniffed from the body.
func (n *Normaliser) IsMarkup(contentType string, body []byte) bool {
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil {
		for _, t := range n.SupportedMIMETypes() {
			if mediaType == t {
				return true
			}
		}
		if mediaType != "application/octet-stream" {
			return false
		}
	}
	head := strings.ToLower(strings.TrimSpace(string(body[:min(len(body), 512)])))
	return strings.HasPrefix(head, "<!doctype html") || strings.Contains(head, "<html")
}

// Normalise converts a fetched page into a document.
// Non-markup bodies are kept verbatim apart from whitespace collapsing.
func (n *Normaliser) Normalise(uri, contentType string, body []byte) domain.Document {
	raw := string(body)

	var content, title, format string
	if n.IsMarkup(contentType, body) {
		content = StripHTML(raw)
		title = ExtractTitle(raw, uri)
		format = "html"
	} else {
		content = collapseLines(raw)
		title = titleFromURI(uri)
		format = "text"
	}

	return domain.Document{
		URI:     uri,
		Title:   title,
		Content: content,
		Metadata: map[string]any{
			domain.MetaTitle: title,
			"format":         format,
		},
	}
}

// Elements whose content is never readable text.
var dropped = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Style:    true,
	atom.Noscript: true,
	atom.Head:     true,
	atom.Svg:      true,
	atom.Template: true,
	atom.Iframe:   true,
}

// Elements rendered on their own line.
var blocks = map[atom.Atom]bool{
	atom.P: true, atom.Div: true, atom.Li: true, atom.Tr: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Blockquote: true, atom.Pre: true, atom.Table: true, atom.Section: true,
	atom.Article: true, atom.Header: true, atom.Footer: true, atom.Nav: true, atom.Main: true,
	atom.Br: true, atom.Hr: true, atom.Ul: true, atom.Ol: true, atom.Dt: true, atom.Dd: true,
}

// ExtractTitle returns the page <title>, falling back to the last URL path segment.
func ExtractTitle(content, uri string) string {
	doc, err := xhtml.Parse(strings.NewReader(content))
	if err == nil {
		if node := findFirst(doc, atom.Title); node != nil {
			var sb strings.Builder
			writeText(&sb, node, false)
			if title := strings.Join(strings.Fields(sb.String()), " "); title != "" {
				return title
			}
		}
	}
	return titleFromURI(uri)
}

func findFirst(n *xhtml.Node, a atom.Atom) *xhtml.Node {
	if n.Type == xhtml.ElementNode && n.DataAtom == a {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, a); found != nil {
			return found
		}
	}
	return nil
}

func titleFromURI(uri string) string {
	p := uri
	if u, err := url.Parse(uri); err == nil {
		p = u.Path
		if strings.Trim(p, "/") == "" {
			return u.Host
		}
	}
	name := path.Base(strings.TrimRight(p, "/"))
	name = strings.TrimSuffix(name, path.Ext(name))
	return strings.NewReplacer("_", " ", "-", " ").Replace(name)
}

// StripHTML removes markup and returns readable text.
// Lines are trimmed, blank lines dropped, and block elements become line breaks.
func StripHTML(content string) string {
	doc, err := xhtml.Parse(strings.NewReader(content))
	if err != nil {
		return collapseLines(content)
	}

	var sb strings.Builder
	writeText(&sb, doc, true)
	return collapseLines(sb.String())
}

func writeText(sb *strings.Builder, n *xhtml.Node, skipDropped bool) {
	switch n.Type {
	case xhtml.TextNode:
		sb.WriteString(n.Data)
		return
	case xhtml.CommentNode, xhtml.DoctypeNode:
		return
	case xhtml.ElementNode:
		if skipDropped && dropped[n.DataAtom] {
			return
		}
	}

	block := n.Type == xhtml.ElementNode && blocks[n.DataAtom]
	if block {
		sb.WriteByte('\n')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		writeText(sb, c, skipDropped)
	}
	if block {
		sb.WriteByte('\n')
	}
}

// collapseLines trims every line, collapses runs of whitespace, and drops blank lines.
func collapseLines(s string) string {
	lines := strings.Split(s, "\n")
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			result = append(result, line)
		}
	}
	return strings.Join(result, "\n")
}
