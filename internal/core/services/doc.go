// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Ingestion runs acquire, chunk, embed and persist for one source at a
// time, tracking the source through its status state machine. Retrieval
// embeds a query, ranks stored chunks by distance and composes a templated
// answer without any language-model call.
package services
