package domain

// SourceChunkCount is the number of chunks stored for one source.
type SourceChunkCount struct {
	SourceID string
	Name     string
	Count    int
}

// CorpusStats summarises the knowledge base.
type CorpusStats struct {
	TotalChunks        int
	TotalSources       int
	PerSource          []SourceChunkCount
	EmbeddingDimension int
	ByKind             map[SourceKind]int
	ByStatus           map[SourceStatus]int
}

// Health reports whether the core's collaborators are reachable.
type Health struct {
	Healthy      bool
	StoreError   string
	EmbedderName string
	EmbedError   string
}
