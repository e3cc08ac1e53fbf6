package model

import (
	"os"
	"strconv"
)

// RetrievalConfig controls the hybrid retrieval and fusion behaviour
type RetrievalConfig struct {
	// DenseCount is the maximum number of vector-search results
	DenseCount int `json:"dense_count"`
	// SparseCount is the maximum number of full-text-search results
	SparseCount int `json:"sparse_count"`
	// SimilarityThreshold is the minimum cosine similarity for dense results
	SimilarityThreshold float64 `json:"similarity_threshold"`
	// RRFK is the reciprocal-rank-fusion constant
	RRFK int `json:"rrf_k"`
	// ContextCount is the number of fused chunks handed to the model
	ContextCount int `json:"context_count"`
}

// DefaultRetrievalConfig returns the standard retrieval configuration
func DefaultRetrievalConfig() RetrievalConfig {
	return RetrievalConfig{
		DenseCount:          5,
		SparseCount:         5,
		SimilarityThreshold: 0.3,
		RRFK:                60,
		ContextCount:        5,
	}
}

// NewRetrievalConfigFromEnv reads POLICYQA_* environment overrides on top
// of the defaults
func NewRetrievalConfigFromEnv() RetrievalConfig {
	config := DefaultRetrievalConfig()
	config.DenseCount = envInt("POLICYQA_DENSE_COUNT", config.DenseCount)
	config.SparseCount = envInt("POLICYQA_SPARSE_COUNT", config.SparseCount)
	config.SimilarityThreshold = envFloat("POLICYQA_SIMILARITY_THRESHOLD", config.SimilarityThreshold)
	config.RRFK = envInt("POLICYQA_RRF_K", config.RRFK)
	config.ContextCount = envInt("POLICYQA_CONTEXT_COUNT", config.ContextCount)
	return config
}

// ChunkingConfig controls how extracted text is sliced into chunks
type ChunkingConfig struct {
	// Size is the chunk window in characters
	Size int `json:"size"`
	// Overlap is the number of characters shared with the previous chunk
	Overlap int `json:"overlap"`
}

// DefaultChunkingConfig returns the standard chunking configuration
func DefaultChunkingConfig() ChunkingConfig {
	return ChunkingConfig{
		Size:    1000,
		Overlap: 200,
	}
}

// NewChunkingConfigFromEnv reads POLICYQA_* environment overrides on top
// of the defaults
func NewChunkingConfigFromEnv() ChunkingConfig {
	config := DefaultChunkingConfig()
	config.Size = envInt("POLICYQA_CHUNK_SIZE", config.Size)
	config.Overlap = envInt("POLICYQA_CHUNK_OVERLAP", config.Overlap)
	return config
}

// ModelConfig identifies the provider models used by the pipeline
type ModelConfig struct {
	EmbeddingModel string `json:"embedding_model"`
	// EmbeddingDim must match the model; the chunks table column is
	// created with this dimensionality
	EmbeddingDim int    `json:"embedding_dim"`
	ChatModel    string `json:"chat_model"`
}

// DefaultModelConfig returns the standard model configuration
func DefaultModelConfig() ModelConfig {
	return ModelConfig{
		EmbeddingModel: "text-embedding-3-small",
		EmbeddingDim:   1536,
		ChatModel:      "gpt-4o-mini",
	}
}

// NewModelConfigFromEnv reads POLICYQA_* environment overrides on top of
// the defaults
func NewModelConfigFromEnv() ModelConfig {
	config := DefaultModelConfig()
	if v := os.Getenv("POLICYQA_EMBEDDING_MODEL"); v != "" {
		config.EmbeddingModel = v
	}
	config.EmbeddingDim = envInt("POLICYQA_EMBEDDING_DIM", config.EmbeddingDim)
	if v := os.Getenv("POLICYQA_CHAT_MODEL"); v != "" {
		config.ChatModel = v
	}
	return config
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}
