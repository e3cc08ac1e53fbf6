package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/alexphommasathit/policyqa/helper"
	"github.com/alexphommasathit/policyqa/model"
	loadSql "github.com/alexphommasathit/policyqa/sql"
)

// ChunksDBHandlerFunctions defines the interface for Chunks database operations.
type ChunksDBHandlerFunctions interface {
	ReplaceDocumentChunks(ctx context.Context, documentID uuid.UUID, chunks []*model.Chunk) error
	SelectChunksByDocument(documentID uuid.UUID) ([]*model.Chunk, error)
	CountChunksByDocument(documentID uuid.UUID) (int, error)
	SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*model.RankedResult, error)
	SelectChunksByText(ctx context.Context, query string, limit int) ([]*model.RankedResult, error)
}

// ChunksDBHandler handles chunk-related database operations
type ChunksDBHandler struct {
	db *helper.Database
}

// NewChunksDBHandler creates a new chunks database handler.
// It initializes the database connection and loads chunk-related SQL functions.
// If force is true, it will reload the SQL functions even if they already exist.
func NewChunksDBHandler(db *helper.Database, embeddingDim int, force bool) (*ChunksDBHandler, error) {
	if db == nil {
		return nil, helper.NewError("database connection validation", fmt.Errorf("database connection is nil"))
	}

	chunksDbHandler := &ChunksDBHandler{
		db: db,
	}

	err := loadSql.LoadChunksSql(chunksDbHandler.db.Instance, force)
	if err != nil {
		return nil, helper.NewError("load chunks sql", err)
	}

	err = chunksDbHandler.CreateTable(embeddingDim)
	if err != nil {
		return nil, helper.NewError("create table", err)
	}

	db.Logger.Info("Initialized ChunksDBHandler")

	return chunksDbHandler, nil
}

// CreateTable creates the 'chunks' table in the database.
// If the table already exists, it does not create it again.
// It also creates the full-text and vector indexes.
func (h *ChunksDBHandler) CreateTable(embeddingDim int) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := h.db.Instance.ExecContext(ctx, `SELECT init_chunks($1);`, embeddingDim)
	if err != nil {
		return helper.NewError("initialize chunks table", err)
	}

	h.db.Logger.Info("Checked/created table chunks")

	return nil
}

// ReplaceDocumentChunks atomically replaces all chunks of a document with the
// given set. It runs in a single transaction holding a per-document advisory
// lock, so a concurrent re-ingestion of the same document serializes behind
// this one instead of deleting rows it just inserted. On any failure the
// transaction rolls back and the prior chunk set stays intact.
func (h *ChunksDBHandler) ReplaceDocumentChunks(ctx context.Context, documentID uuid.UUID, chunks []*model.Chunk) error {
	tx, err := h.db.Instance.BeginTx(ctx, nil)
	if err != nil {
		return helper.NewError("begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0));`, documentID.String())
	if err != nil {
		return helper.NewError("acquire document lock", err)
	}

	var deleted int
	err = tx.QueryRowContext(ctx, `SELECT delete_chunks_by_document($1)`, documentID).Scan(&deleted)
	if err != nil {
		return helper.NewError("delete chunks", err)
	}

	for i, chunk := range chunks {
		chunk.DocumentID = documentID
		chunk.ChunkIndex = i

		var embedding interface{}
		if chunk.Embedding != nil {
			embedding = pgvector.NewVector(chunk.Embedding)
		}

		row := tx.QueryRowContext(ctx,
			`SELECT * FROM insert_chunk($1, $2, $3, $4, $5)`,
			chunk.DocumentID,
			chunk.ChunkIndex,
			chunk.Text,
			embedding,
			chunk.Metadata,
		)

		if err := scanChunk(row, chunk); err != nil {
			// The delete already ran inside this transaction; rolling back
			// restores the prior chunk set rather than leaving the document
			// empty.
			return helper.NewError(fmt.Sprintf("insert chunk %d after delete", i), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return helper.NewError("commit transaction", err)
	}

	h.db.Logger.Info("Replaced document chunks",
		slog.String("document_id", documentID.String()),
		slog.Int("deleted", deleted),
		slog.Int("inserted", len(chunks)))

	return nil
}

// SelectChunksByDocument retrieves all chunks for a document ordered by index
func (h *ChunksDBHandler) SelectChunksByDocument(documentID uuid.UUID) ([]*model.Chunk, error) {
	rows, err := h.db.Instance.Query(
		`SELECT * FROM select_chunks_by_document($1)`,
		documentID,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var chunks []*model.Chunk
	for rows.Next() {
		chunk := &model.Chunk{}
		if err := scanChunk(rows, chunk); err != nil {
			return nil, helper.NewError("scan", err)
		}
		chunks = append(chunks, chunk)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return chunks, nil
}

// CountChunksByDocument returns the number of stored chunks for a document
func (h *ChunksDBHandler) CountChunksByDocument(documentID uuid.UUID) (int, error) {
	var count int
	err := h.db.Instance.QueryRow(
		`SELECT count_chunks_by_document($1)`,
		documentID,
	).Scan(&count)
	if err != nil {
		return 0, helper.NewError("scan", err)
	}
	return count, nil
}

// SelectChunksBySimilarity performs the dense retrieval path: cosine
// similarity over chunk embeddings, bounded by limit and threshold.
// Results are ordered most-similar first.
func (h *ChunksDBHandler) SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*model.RankedResult, error) {
	embeddingVector := pgvector.NewVector(embedding)

	rows, err := h.db.Instance.QueryContext(ctx,
		`SELECT * FROM select_chunks_by_similarity($1, $2, $3)`,
		embeddingVector,
		limit,
		threshold,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var results []*model.RankedResult
	for rows.Next() {
		result := &model.RankedResult{}
		var similarity float64
		err := rows.Scan(
			&result.ID,
			&result.DocumentID,
			&result.ChunkIndex,
			&result.ChunkText,
			&result.Metadata,
			&similarity,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		result.Similarity = &similarity
		results = append(results, result)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}

// SelectChunksByText performs the sparse retrieval path: full-text search
// over the raw chunk text, ranked by the search engine. The returned order
// is the rank signal; callers must not re-sort.
func (h *ChunksDBHandler) SelectChunksByText(ctx context.Context, query string, limit int) ([]*model.RankedResult, error) {
	rows, err := h.db.Instance.QueryContext(ctx,
		`SELECT * FROM select_chunks_by_text($1, $2)`,
		query,
		limit,
	)
	if err != nil {
		return nil, helper.NewError("query", err)
	}
	defer rows.Close()

	var results []*model.RankedResult
	rank := 0
	for rows.Next() {
		result := &model.RankedResult{}
		var tsRank float64
		err := rows.Scan(
			&result.ID,
			&result.DocumentID,
			&result.ChunkIndex,
			&result.ChunkText,
			&result.Metadata,
			&tsRank,
		)
		if err != nil {
			return nil, helper.NewError("scan", err)
		}

		rank++
		lexicalRank := rank
		result.LexicalRank = &lexicalRank
		results = append(results, result)
	}

	err = rows.Err()
	if err != nil {
		return nil, helper.NewError("rows error", err)
	}

	return results, nil
}

func scanChunk(row rowScanner, chunk *model.Chunk) error {
	var embedding sql.NullString
	err := row.Scan(
		&chunk.ID,
		&chunk.DocumentID,
		&chunk.ChunkIndex,
		&chunk.Text,
		&embedding,
		&chunk.Metadata,
		&chunk.CreatedAt,
	)
	if err != nil {
		return err
	}

	if embedding.Valid {
		var vec pgvector.Vector
		if err := vec.Scan(embedding.String); err != nil {
			return fmt.Errorf("parse embedding: %w", err)
		}
		chunk.Embedding = vec.Slice()
	} else {
		chunk.Embedding = nil
	}

	return nil
}
