package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/alexphommasathit/policyqa/helper"
)

// EmbedBatchFunc generates one embedding per input text in a single batched
// provider call, preserving input order.
type EmbedBatchFunc func(ctx context.Context, texts []string) ([][]float32, error)

// Embedder wraps a batch embedding backend with the degrade semantics of the
// ingestion path and the hard-failure semantics of the query path.
type Embedder struct {
	embed  EmbedBatchFunc
	logger *slog.Logger
}

// NewEmbedder wraps a batch backend. Tests inject deterministic backends here.
func NewEmbedder(embed EmbedBatchFunc, logger *slog.Logger) *Embedder {
	return &Embedder{embed: embed, logger: logger}
}

// NewOpenAIEmbedder creates an Embedder backed by the OpenAI embeddings API.
func NewOpenAIEmbedder(apiKey string, model string, logger *slog.Logger) *Embedder {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	return NewEmbedder(func(ctx context.Context, texts []string) ([][]float32, error) {
		response, err := client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts},
			Model: openai.EmbeddingModel(model),
		})
		if err != nil {
			return nil, helper.NewError("Embeddings.New", err)
		}

		embeddings := make([][]float32, len(response.Data))
		for i, data := range response.Data {
			vector := make([]float32, len(data.Embedding))
			for j, value := range data.Embedding {
				vector[j] = float32(value)
			}
			embeddings[i] = vector
		}
		return embeddings, nil
	}, logger)
}

// EmbedAll embeds every text in one batched call. The result always has the
// same length and order as texts. On provider failure, or when the provider
// returns a different number of embeddings than requested, every position is
// nil so ingestion can continue with embedding-less chunks.
func (e *Embedder) EmbedAll(ctx context.Context, texts []string) [][]float32 {
	embeddings := make([][]float32, len(texts))
	if len(texts) == 0 {
		return embeddings
	}

	result, err := e.embed(ctx, texts)
	if err != nil {
		e.logger.Warn("Embedding batch failed, continuing without embeddings", slog.Int("texts", len(texts)), slog.Any("error", err))
		return embeddings
	}
	if len(result) != len(texts) {
		e.logger.Warn("Embedding count mismatch, continuing without embeddings", slog.Int("expected", len(texts)), slog.Int("got", len(result)))
		return embeddings
	}

	copy(embeddings, result)
	return embeddings
}

// EmbedQuery embeds a single query string. Unlike EmbedAll this fails hard,
// retrieval cannot run without a query vector.
func (e *Embedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	result, err := e.embed(ctx, []string{text})
	if err != nil {
		return nil, helper.NewError("EmbedQuery", err)
	}
	if len(result) != 1 || result[0] == nil {
		return nil, helper.NewError("EmbedQuery", fmt.Errorf("expected 1 embedding, got %d", len(result)))
	}
	return result[0], nil
}
