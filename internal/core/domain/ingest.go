package domain

// ItemResult is the outcome of acquiring one document in a batch.
// Exactly one of Document and Err is set.
type ItemResult struct {
	// Locator is the URL or path of the item.
	Locator string

	// Document is the acquired document, nil when the item was skipped.
	Document *Document

	// Err is why the item was skipped.
	Err error
}

// Skipped reports whether the item failed and was left out.
func (r ItemResult) Skipped() bool {
	return r.Document == nil
}

// AcquisitionReport collects per-item outcomes for one acquisition.
type AcquisitionReport struct {
	Items []ItemResult
}

// Documents returns the successfully acquired documents in order.
func (r AcquisitionReport) Documents() []Document {
	docs := make([]Document, 0, len(r.Items))
	for _, item := range r.Items {
		if !item.Skipped() {
			docs = append(docs, *item.Document)
		}
	}
	return docs
}

// Skipped returns the items that failed.
func (r AcquisitionReport) Skipped() []ItemResult {
	var skipped []ItemResult
	for _, item := range r.Items {
		if item.Skipped() {
			skipped = append(skipped, item)
		}
	}
	return skipped
}

// IngestResult is the outcome of one successful ingest call.
type IngestResult struct {
	// SourceID identifies the created source.
	SourceID string

	// Name is the source display name.
	Name string

	// DocumentCount is the number of documents acquired.
	DocumentCount int

	// ChunkCount is the number of persisted chunks.
	ChunkCount int

	// Skipped lists items left out during acquisition.
	Skipped []ItemResult
}

// BatchItemStatus is the outcome of one batch entry.
type BatchItemStatus string

// Batch entry outcomes.
const (
	BatchItemSuccess BatchItemStatus = "success"
	BatchItemFailed  BatchItemStatus = "failed"
)

// BatchItemResult is the outcome of ingesting one descriptor of a batch.
type BatchItemResult struct {
	Descriptor SourceDescriptor
	Status     BatchItemStatus
	SourceID   string
	ChunkCount int
	Err        error
}

// BatchOutcome collects per-source outcomes of a batch ingest.
type BatchOutcome struct {
	Results []BatchItemResult
}

// Succeeded returns the number of successful entries.
func (o BatchOutcome) Succeeded() int {
	n := 0
	for _, r := range o.Results {
		if r.Status == BatchItemSuccess {
			n++
		}
	}
	return n
}

// Failed returns the number of failed entries.
func (o BatchOutcome) Failed() int {
	return len(o.Results) - o.Succeeded()
}
