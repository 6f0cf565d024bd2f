package domain

import "time"

// Metadata keys attached to documents and chunks.
const (
	MetaSourceKind    = "source_kind"
	MetaOriginURL     = "origin_url"
	MetaRepoName      = "repo_name"
	MetaPath          = "path"
	MetaTitle         = "title"
	MetaDocumentIndex = "document_index"
	MetaChunkIndex    = "chunk_index"
)

// Document is plain text produced by a content acquirer, before chunking.
type Document struct {
	// SourceID links to the Source this document is being ingested for.
	SourceID string

	// URI is the original location (repository path, URL).
	URI string

	// Title is the human-readable title.
	Title string

	// Content is the full plain-text content.
	Content string

	// Metadata contains acquirer-specific key-value pairs.
	Metadata map[string]any
}

// Chunk is one embedded passage of text.
// Chunks are immutable once persisted.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// SourceID links to the owning Source.
	SourceID string

	// Content is the text of this passage.
	Content string

	// Embedding is the vector representation. Its length is the corpus dimension.
	Embedding []float32

	// Position is the 0-based ordinal within the source. (SourceID, Position) is unique.
	Position int

	// Metadata is the document metadata merged with the source-kind tag.
	Metadata map[string]any

	// CreatedAt is when the chunk was persisted.
	CreatedAt time.Time
}

// ChunkSpec is a staged chunk awaiting persistence.
type ChunkSpec struct {
	SourceID  string
	Content   string
	Embedding []float32
	Metadata  map[string]any
	Position  int
}

// MergeMetadata returns a new map holding base overlaid by extra.
func MergeMetadata(base, extra map[string]any) map[string]any {
	merged := make(map[string]any, len(base)+len(extra))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}
