// Package retrieval finds the chunks most relevant to a query by fusing
// vector similarity search with Postgres full-text search.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alexphommasathit/policyqa/helper"
	"github.com/alexphommasathit/policyqa/model"
)

// ErrNoResults marks retrieval runs where both search paths worked but
// neither matched anything. Callers use it to tell an empty corpus apart
// from infrastructure failure.
var ErrNoResults = errors.New("no chunks matched the query")

// ChunkSearcher is the part of the chunk store the engine reads from.
type ChunkSearcher interface {
	SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*model.RankedResult, error)
	SelectChunksByText(ctx context.Context, query string, limit int) ([]*model.RankedResult, error)
}

// Engine runs the dense and sparse retrieval paths.
type Engine struct {
	chunks ChunkSearcher
	logger *slog.Logger
}

// NewEngine creates a new retrieval engine.
func NewEngine(chunks ChunkSearcher, logger *slog.Logger) *Engine {
	return &Engine{
		chunks: chunks,
		logger: logger,
	}
}

// Retrieve issues the dense and sparse searches concurrently and returns both
// result lists. A failure in one path only degrades the result set. Retrieval
// fails as a whole when both paths fail or both come back empty, with an
// error naming each cause.
func (e *Engine) Retrieve(ctx context.Context, query string, embedding []float32, config *model.RetrievalConfig) (dense []*model.RankedResult, sparse []*model.RankedResult, err error) {
	var denseErr, sparseErr error
	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		dense, denseErr = e.chunks.SelectChunksBySimilarity(ctx, embedding, config.DenseCount, config.SimilarityThreshold)
	}()
	go func() {
		defer wg.Done()
		sparse, sparseErr = e.chunks.SelectChunksByText(ctx, query, config.SparseCount)
	}()
	wg.Wait()

	if denseErr != nil && sparseErr != nil {
		return nil, nil, helper.NewError("Retrieve", fmt.Errorf("dense search failed: %v, sparse search failed: %v", denseErr, sparseErr))
	}
	if denseErr != nil {
		e.logger.Warn("Dense search failed, continuing with sparse results only", slog.Any("error", denseErr))
		dense = nil
	}
	if sparseErr != nil {
		e.logger.Warn("Sparse search failed, continuing with dense results only", slog.Any("error", sparseErr))
		sparse = nil
	}

	if len(dense) == 0 && len(sparse) == 0 {
		if denseErr != nil || sparseErr != nil {
			return nil, nil, helper.NewError("Retrieve", fmt.Errorf("no usable results: dense err: %v, sparse err: %v", denseErr, sparseErr))
		}
		return nil, nil, fmt.Errorf("%w: dense and sparse search both returned zero chunks", ErrNoResults)
	}

	return dense, sparse, nil
}
