// Package file provides the TOML-backed configuration store.
//
// Configuration lives in ~/.sercha-rag/config.toml:
//
//	[chunking]
//	chunk_size = 1000
//	overlap = 200
//
//	[retrieval]
//	k = 3
//	distance_threshold = 0.7
//
//	[embedding]
//	provider = "ollama"
//	model = "all-minilm"
package file
