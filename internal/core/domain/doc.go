// Package domain defines the core business entities for sercha-rag.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Source: One ingestion unit (a repository or a named batch of URLs)
//   - Chunk: One embedded, positionally-ordered passage belonging to a Source
//   - Document: Raw text produced by a content acquirer, before chunking
//   - RetrievalResult: A ranked chunk with its computed distance
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
