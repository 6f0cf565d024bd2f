package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-rag/internal/core/domain"
)

// InsufficientKnowledge is returned verbatim when no chunk qualifies.
const InsufficientKnowledge = "I don't have enough information in my knowledge base to answer that question. " +
	"Please add some documents or repositories first."

const responseHeader = "Based on the available documents, here's what I found relevant to your question:"

// ResponseComposer assembles a deterministic answer from ranked chunks.
type ResponseComposer struct {
	excerptChars int
}

// NewResponseComposer creates a composer that truncates excerpts to
// excerptChars characters. Non-positive values use the default.
func NewResponseComposer(excerptChars int) *ResponseComposer {
	if excerptChars <= 0 {
		excerptChars = domain.DefaultExcerptChars
	}
	return &ResponseComposer{excerptChars: excerptChars}
}

// Compose returns the sentinel for no results; otherwise one labelled
// excerpt per result in rank order, followed by a summary footer.
func (c *ResponseComposer) Compose(query string, results []domain.RetrievalResult) string {
	if len(results) == 0 {
		return InsufficientKnowledge
	}

	var sb strings.Builder
	sb.WriteString(responseHeader)
	sb.WriteString("\n\n")

	low, high := results[0].SimilarityScore(), results[0].SimilarityScore()
	for i, r := range results {
		score := r.SimilarityScore()
		low = min(low, score)
		high = max(high, score)

		if i > 0 {
			sb.WriteString("\n\n")
		}
		fmt.Fprintf(&sb, "[Source %d - %s (%s), similarity %.2f]: %s",
			i+1, resultLabel(r), resultKind(r), score, Truncate(r.Chunk.Content, c.excerptChars))
	}

	fmt.Fprintf(&sb, "\n\n**Summary**: The information above should help answer your question about: \"%s\"", query)
	fmt.Fprintf(&sb, "\n\n**Sources**: Found %d relevant document sections from your knowledge base "+
		"(similarity %.2f to %.2f).", len(results), low, high)
	return sb.String()
}

// Truncate returns the first limit characters of s without splitting a
// multi-byte character.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	i := 0
	for pos := range s {
		if i == limit {
			return s[:pos]
		}
		i++
	}
	return s
}

func resultLabel(r domain.RetrievalResult) string {
	if r.SourceName != "" {
		if path, ok := r.Chunk.Metadata[domain.MetaPath].(string); ok && path != "" {
			return r.SourceName + "/" + path
		}
		return r.SourceName
	}
	if origin, ok := r.Chunk.Metadata[domain.MetaOriginURL].(string); ok && origin != "" {
		return origin
	}
	return "unknown"
}

func resultKind(r domain.RetrievalResult) string {
	if r.SourceKind != "" {
		return string(r.SourceKind)
	}
	if kind, ok := r.Chunk.Metadata[domain.MetaSourceKind].(string); ok && kind != "" {
		return kind
	}
	return "unknown"
}
