package domain

import "math"

// Retrieval defaults.
const (
	// DefaultSearchK is the number of results returned when none is requested.
	DefaultSearchK = 3

	// DefaultDistanceThreshold is the maximum L2 distance for a match.
	DefaultDistanceThreshold = 0.7
)

// SearchOptions configures a retrieval query.
type SearchOptions struct {
	// K is the maximum number of results. Zero uses the configured default.
	K int

	// DistanceThreshold excludes chunks at or beyond this distance.
	// Zero uses the configured default.
	DistanceThreshold float64
}

// RetrievalResult is one ranked chunk. It is shared by ingestion (via Chunk)
// and retrieval so callers never need to improvise a result shape.
type RetrievalResult struct {
	// Chunk is the matched passage.
	Chunk Chunk

	// Distance is the L2 distance to the query embedding. Not persisted.
	Distance float64

	// SourceName is the label of the owning source.
	SourceName string

	// SourceKind is the kind of the owning source.
	SourceKind SourceKind
}

// SimilarityScore returns 1 - Distance. It is advisory only:
// it is not clamped and is negative for distant matches.
func (r RetrievalResult) SimilarityScore() float64 {
	return 1 - r.Distance
}

// Metadata returns the chunk metadata merged with the source label and kind.
func (r RetrievalResult) Metadata() map[string]any {
	extra := map[string]any{
		"distance":         r.Distance,
		"similarity_score": r.SimilarityScore(),
	}
	if r.SourceName != "" {
		extra["source_name"] = r.SourceName
	}
	if r.SourceKind != "" {
		extra[MetaSourceKind] = string(r.SourceKind)
	}
	return MergeMetadata(r.Chunk.Metadata, extra)
}

// L2Distance returns the Euclidean distance between two vectors.
// Vectors of different length have no distance; ok is false.
func L2Distance(a, b []float32) (distance float64, ok bool) {
	if len(a) != len(b) {
		return 0, false
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum), true
}
