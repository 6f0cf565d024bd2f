package mcp

import (
	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

// Ports aggregates the driving ports used by the MCP server.
type Ports struct {
	// Retrieval answers search and ask calls.
	Retrieval driving.RetrievalService

	// Ingestion adds sources. Optional; the ingest tools fail without it.
	Ingestion driving.IngestionService

	// Source serves the sources and stats resources. Optional.
	Source driving.SourceService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Retrieval == nil {
		return ErrMissingRetrievalService
	}
	return nil
}
