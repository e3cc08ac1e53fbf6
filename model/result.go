package model

import "github.com/google/uuid"

// RankedResult is a chunk retrieved by a query, carrying the rank signal
// of whichever search path returned it plus the fused score. It only lives
// for the duration of one query and is never persisted.
type RankedResult struct {
	ID         uuid.UUID     `json:"id"`
	DocumentID uuid.UUID     `json:"document_id"`
	ChunkIndex int           `json:"chunk_index"`
	ChunkText  string        `json:"chunk_text"`
	Metadata   ChunkMetadata `json:"metadata"`
	// Similarity is set for results from the dense (vector) path
	Similarity *float64 `json:"similarity,omitempty"`
	// LexicalRank is the 1-based position in the sparse (full-text) result
	// list, set for results from that path
	LexicalRank *int `json:"lexical_rank,omitempty"`
	// Score is the reciprocal-rank-fusion score after merging
	Score float64 `json:"score"`
}

// Source describes one chunk that was handed to the language model to
// produce an answer. This is the provenance contract callers rely on for
// citation display and audit logging.
type Source struct {
	DocumentID     uuid.UUID      `json:"document_id"`
	DocumentTitle  string         `json:"document_title"`
	DocumentStatus DocumentStatus `json:"document_status"`
	ChunkIndex     int            `json:"chunk_index"`
	ChunkText      string         `json:"chunk_text"`
	Similarity     *float64       `json:"similarity,omitempty"`
}

// Answer is the response to one question: the generated answer and the
// ordered list of source chunks actually used to produce it.
type Answer struct {
	Answer  string   `json:"answer"`
	Sources []Source `json:"sources"`
}
