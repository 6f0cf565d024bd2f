// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - ChunkStore: Chunk persistence and nearest-neighbour queries
//   - SourceStore: Source registry with lifecycle status tracking
//   - EmbeddingService: Maps text to fixed-length vectors
//   - Acquirer: Produces documents for one source descriptor
//   - Cloner: Copies a remote repository into a local directory
//   - Fetcher: Retrieves one web page
//   - PostProcessorPipeline: Splits documents into chunks
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, acquirer, or normaliser package
package driven
