package domain

import "time"

// FileInfo describes one candidate object in the review bucket.
type FileInfo struct {
	Key          string
	LastModified time.Time
	Size         int64
}

// ProcessedFile is the ledger entry written once after a file's processing
// attempt completes, even when zero valid records were found. Entries are
// immutable; presence alone marks the file as done.
type ProcessedFile struct {
	ID                   int64
	Filename             string
	ProcessedAt          time.Time
	RecordsProcessed     int
	ProcessingDurationMs int64
}

// ProcessingResult is the per-file outcome returned to the orchestrator.
// Never persisted.
type ProcessingResult struct {
	Filename         string
	RecordsProcessed int
	Duration         time.Duration
	Success          bool
	Error            string
}

// RunSummary aggregates one end-to-end processing run.
type RunSummary struct {
	RunID            string
	FilesListed      int
	FilesSkipped     int
	FilesDispatched  int
	FilesSucceeded   int
	FilesFailed      int
	RecordsProcessed int
	Duration         time.Duration
}
