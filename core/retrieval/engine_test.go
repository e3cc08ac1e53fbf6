package retrieval

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexphommasathit/policyqa/database"
	"github.com/alexphommasathit/policyqa/helper"
	"github.com/alexphommasathit/policyqa/model"
)

func testLogger() *slog.Logger {
	return slog.New(helper.NewPrettyHandler(os.Stdout, helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: slog.LevelError},
	}))
}

func seedDocument(t *testing.T, documents *database.DocumentsDBHandler, chunks *database.ChunksDBHandler, texts []string, embeddings [][]float32) *model.Document {
	t.Helper()
	doc := &model.Document{
		Title:    "Working Hours Policy",
		Status:   model.StatusPublished,
		FilePath: "policies/working-hours.pdf",
		FileType: model.FileTypePDF,
	}
	require.NoError(t, documents.InsertDocument(doc))
	t.Cleanup(func() {
		documents.DeleteDocument(doc.ID)
	})

	seeded := make([]*model.Chunk, len(texts))
	for i, text := range texts {
		seeded[i] = &model.Chunk{
			Text:      text,
			Embedding: embeddings[i],
			Metadata:  model.ChunkMetadata{DocumentTitle: doc.Title, ChunkNumber: i + 1, TotalChunks: len(texts)},
		}
	}
	require.NoError(t, chunks.ReplaceDocumentChunks(context.Background(), doc.ID, seeded))
	return doc
}

func TestRetrieve(t *testing.T) {
	documents, chunks := initHandlers(t)
	ctx := context.Background()
	defaultConfig := model.DefaultRetrievalConfig()
	config := &defaultConfig

	t.Run("Both paths return ranked results", func(t *testing.T) {
		seedDocument(t, documents, chunks,
			[]string{
				"core working hours are nine to five",
				"overtime needs written approval",
				"breaks are unpaid after six hours",
			},
			[][]float32{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}},
		)

		dense, sparse, err := engineUnderTest(chunks).Retrieve(ctx, "overtime approval", []float32{0, 1, 0}, config)

		require.NoError(t, err)
		require.NotEmpty(t, dense)
		assert.Equal(t, "overtime needs written approval", dense[0].ChunkText)
		require.NotNil(t, dense[0].Similarity)
		require.NotEmpty(t, sparse)
		assert.Equal(t, "overtime needs written approval", sparse[0].ChunkText)
		require.NotNil(t, sparse[0].LexicalRank)
		assert.Equal(t, 1, *sparse[0].LexicalRank)
	})

	t.Run("Sparse path still finds chunks without embeddings", func(t *testing.T) {
		seedDocument(t, documents, chunks,
			[]string{"sabbatical requests are reviewed quarterly"},
			[][]float32{nil},
		)

		dense, sparse, err := engineUnderTest(chunks).Retrieve(ctx, "sabbatical", []float32{1, 0, 0}, config)

		require.NoError(t, err)
		require.NotEmpty(t, sparse)
		assert.Equal(t, "sabbatical requests are reviewed quarterly", sparse[0].ChunkText)
		for _, result := range dense {
			assert.NotEqual(t, "sabbatical requests are reviewed quarterly", result.ChunkText)
		}
	})

	t.Run("No matching chunks fails retrieval", func(t *testing.T) {
		_, _, err := engineUnderTest(chunks).Retrieve(ctx, "zeppelin maintenance", []float32{1, 0, 0}, &model.RetrievalConfig{
			DenseCount:          5,
			SparseCount:         5,
			SimilarityThreshold: 0.99,
			RRFK:                60,
			ContextCount:        5,
		})

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoResults)
	})
}

func engineUnderTest(chunks ChunkSearcher) *Engine {
	return NewEngine(chunks, testLogger())
}

// fakeSearcher lets the degraded paths run without a failing database.
type fakeSearcher struct {
	dense     []*model.RankedResult
	denseErr  error
	sparse    []*model.RankedResult
	sparseErr error
}

func (f *fakeSearcher) SelectChunksBySimilarity(ctx context.Context, embedding []float32, limit int, threshold float64) ([]*model.RankedResult, error) {
	return f.dense, f.denseErr
}

func (f *fakeSearcher) SelectChunksByText(ctx context.Context, query string, limit int) ([]*model.RankedResult, error) {
	return f.sparse, f.sparseErr
}

func TestRetrieveDegraded(t *testing.T) {
	ctx := context.Background()
	defaultConfig := model.DefaultRetrievalConfig()
	config := &defaultConfig
	someResult := &model.RankedResult{ChunkText: "notice periods are four weeks"}

	t.Run("Dense failure degrades to sparse only", func(t *testing.T) {
		searcher := &fakeSearcher{
			denseErr: errors.New("index rebuild in progress"),
			sparse:   []*model.RankedResult{someResult},
		}

		dense, sparse, err := engineUnderTest(searcher).Retrieve(ctx, "notice period", []float32{1}, config)

		require.NoError(t, err)
		assert.Empty(t, dense)
		require.Len(t, sparse, 1)
		assert.Equal(t, someResult.ChunkText, sparse[0].ChunkText)
	})

	t.Run("Sparse failure degrades to dense only", func(t *testing.T) {
		searcher := &fakeSearcher{
			dense:     []*model.RankedResult{someResult},
			sparseErr: errors.New("tsquery syntax error"),
		}

		dense, sparse, err := engineUnderTest(searcher).Retrieve(ctx, "notice period", []float32{1}, config)

		require.NoError(t, err)
		require.Len(t, dense, 1)
		assert.Empty(t, sparse)
	})

	t.Run("Both failures aggregate into one error", func(t *testing.T) {
		searcher := &fakeSearcher{
			denseErr:  errors.New("index rebuild in progress"),
			sparseErr: errors.New("tsquery syntax error"),
		}

		_, _, err := engineUnderTest(searcher).Retrieve(ctx, "notice period", []float32{1}, config)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "index rebuild in progress")
		assert.Contains(t, err.Error(), "tsquery syntax error")
	})

	t.Run("Both empty results fail retrieval", func(t *testing.T) {
		_, _, err := engineUnderTest(&fakeSearcher{}).Retrieve(ctx, "notice period", []float32{1}, config)

		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoResults)
	})
}
