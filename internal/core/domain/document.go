package domain

import "time"

// DocumentStatus tracks a user document through the import pipeline.
type DocumentStatus string

// Document statuses.
const (
	DocumentStatusPending    DocumentStatus = "pending"
	DocumentStatusProcessing DocumentStatus = "processing"
	DocumentStatusReady      DocumentStatus = "ready"
	DocumentStatusError      DocumentStatus = "error"
)

// Document is a user-imported document that groups a set of chunks.
// When Status is ready, exactly ChunkCount chunks exist with this
// document's ID, each with a correctly set ChunkIndex/TotalChunks.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Name is the user-visible file name.
	Name string

	// Type is the original file type (txt, pdf, docx, epub).
	Type string

	// Size is the original file size in bytes.
	Size int64

	// ChunkCount is the number of chunks produced by the import.
	ChunkCount int

	// Status is the import pipeline state.
	Status DocumentStatus

	// Error holds the failure reason when Status is error.
	Error string

	// CreatedAt is when the document was registered.
	CreatedAt time.Time

	// ProcessedAt is when the import finished. Zero until then.
	ProcessedAt time.Time
}
