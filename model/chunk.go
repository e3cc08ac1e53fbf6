package model

import (
	"time"

	"github.com/google/uuid"
)

// Chunk represents one stored slice of a document's extracted text.
// Chunks of a document are indexed contiguously from zero and are replaced
// as a whole when the document is reprocessed.
type Chunk struct {
	ID         uuid.UUID `json:"id"`
	DocumentID uuid.UUID `json:"document_id"`
	ChunkIndex int       `json:"chunk_index"`
	Text       string    `json:"chunk_text"`
	// Embedding is nil when the embedding provider failed for this batch;
	// the chunk is then only reachable through the lexical search path.
	Embedding []float32     `json:"embedding,omitempty"`
	Metadata  ChunkMetadata `json:"metadata"`
	CreatedAt time.Time     `json:"created_at"`
}
