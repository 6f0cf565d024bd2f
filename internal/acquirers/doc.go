// Package acquirers holds the content acquirers that turn a source
// descriptor into documents.
//
//   - repository: clones into a run-scoped working area and reads allow-listed files
//   - web: fetches pages and strips markup, skipping pages that fail
//
// Per-item failures are reported as skipped items on the acquisition and
// never abort it. An acquirer only returns an error when no content could
// be obtained at all.
package acquirers
