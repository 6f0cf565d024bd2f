// Package mcp provides a Model Context Protocol server for sercha-rag.
// It lets AI assistants search the knowledge base, ask questions and add sources.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// ErrIngestionDisabled is returned by the ingest tools when no ingestion service is set.
var ErrIngestionDisabled = errors.New("mcp: ingestion is not enabled on this server")
