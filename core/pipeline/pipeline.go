// Package pipeline turns extracted document text into embedded chunks ready
// for storage.
package pipeline

import (
	"context"

	"github.com/alexphommasathit/policyqa/helper"
	"github.com/alexphommasathit/policyqa/model"
)

// Pipeline combines section chunking and batched embedding.
type Pipeline struct {
	Chunker  ChunkFunc
	Embedder *Embedder
}

// NewPipeline creates a new processing pipeline.
func NewPipeline(chunker ChunkFunc, embedder *Embedder) *Pipeline {
	return &Pipeline{
		Chunker:  chunker,
		Embedder: embedder,
	}
}

// Process chunks the document text and embeds every chunk in one batch.
// Embedding positions line up with chunk positions, a nil embedding marks a
// chunk the provider could not embed. Chunk metadata carries the document
// title and status, the 1-based position, the total count and the detected
// section title.
func (p *Pipeline) Process(ctx context.Context, document *model.Document, text string) ([]*model.Chunk, error) {
	sectionChunks, err := p.Chunker(text, document.Title)
	if err != nil {
		return nil, helper.NewError("Chunker", err)
	}

	texts := make([]string, len(sectionChunks))
	for i, sectionChunk := range sectionChunks {
		texts[i] = sectionChunk.Text
	}
	embeddings := p.Embedder.EmbedAll(ctx, texts)

	chunks := make([]*model.Chunk, 0, len(sectionChunks))
	for i, sectionChunk := range sectionChunks {
		sectionTitle := sectionChunk.SectionTitle
		chunks = append(chunks, &model.Chunk{
			DocumentID: document.ID,
			ChunkIndex: i,
			Text:       sectionChunk.Text,
			Embedding:  embeddings[i],
			Metadata: model.ChunkMetadata{
				DocumentTitle:  document.Title,
				DocumentStatus: document.Status,
				ChunkNumber:    i + 1,
				TotalChunks:    len(sectionChunks),
				SectionTitle:   &sectionTitle,
			},
		})
	}
	return chunks, nil
}
