// Package policyqa answers questions about internal policy documents. It
// ingests PDF and DOCX files into embedded, searchable chunks and serves
// grounded answers with source provenance over hybrid retrieval.
package policyqa

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/alexphommasathit/policyqa/core/answer"
	"github.com/alexphommasathit/policyqa/core/extract"
	"github.com/alexphommasathit/policyqa/core/pipeline"
	"github.com/alexphommasathit/policyqa/core/retrieval"
	"github.com/alexphommasathit/policyqa/database"
	"github.com/alexphommasathit/policyqa/helper"
	"github.com/alexphommasathit/policyqa/model"
	loadSql "github.com/alexphommasathit/policyqa/sql"
	"github.com/alexphommasathit/policyqa/storage"
)

// PolicyQA bundles the document store, the ingestion pipeline and the query
// path behind one interface.
type PolicyQA struct {
	DB        *helper.Database
	Documents *database.DocumentsDBHandler
	Chunks    *database.ChunksDBHandler
	Pipeline  *pipeline.Pipeline
	Engine    *retrieval.Engine
	Answerer  *answer.Answerer
	Blobs     storage.BlobStore
	Retrieval model.RetrievalConfig
	// Logging
	log *slog.Logger
}

// New creates a PolicyQA instance with all handlers initialized. The chunks
// table is created with the embedding dimensionality of the configured model.
func New(dbConfig *helper.DatabaseConfiguration, blobs storage.BlobStore, embedder *pipeline.Embedder, answerer *answer.Answerer) (*PolicyQA, error) {
	opts := helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{
			Level: slog.LevelInfo,
		},
	}
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, opts))

	db := helper.NewDatabase("policyqa", dbConfig, logger)
	err := loadSql.Init(db.Instance)
	if err != nil {
		return nil, helper.NewError("initialize database extensions", err)
	}

	modelConfig := model.NewModelConfigFromEnv()

	// force=false to not reload if functions already exist
	documents, err := database.NewDocumentsDBHandler(db, false)
	if err != nil {
		return nil, helper.NewError("create documents handler", err)
	}

	chunks, err := database.NewChunksDBHandler(db, modelConfig.EmbeddingDim, false)
	if err != nil {
		return nil, helper.NewError("create chunks handler", err)
	}

	chunkingConfig := model.NewChunkingConfigFromEnv()

	return &PolicyQA{
		DB:        db,
		Documents: documents,
		Chunks:    chunks,
		Pipeline:  pipeline.NewPipeline(pipeline.SectionChunker(chunkingConfig.Size, chunkingConfig.Overlap), embedder),
		Engine:    retrieval.NewEngine(chunks, logger),
		Answerer:  answerer,
		Blobs:     blobs,
		Retrieval: model.NewRetrievalConfigFromEnv(),
		log:       logger,
	}, nil
}

// Close closes the database connection.
func (p *PolicyQA) Close() error {
	if p.DB != nil && p.DB.Instance != nil {
		return p.DB.Instance.Close()
	}
	return nil
}

// ProcessDocument runs the full ingestion path for one registered document:
// metadata lookup, blob download, text extraction, section chunking, batched
// embedding and atomic chunk replacement. Reprocessing a document replaces
// all of its chunks. Returns the number of chunks stored.
func (p *PolicyQA) ProcessDocument(ctx context.Context, documentID uuid.UUID) (int, error) {
	doc, err := p.Documents.SelectDocument(documentID)
	if err != nil {
		return 0, helper.NewError("select document", err)
	}

	// Reject before the blob download, extraction could only fail later.
	if doc.FileType == model.FileTypeDOC {
		return 0, helper.NewError("process document", fmt.Errorf("%w: legacy .doc files are not supported, convert the document to .docx or .pdf first", extract.ErrUnsupportedFormat))
	}
	if doc.FileType == model.FileTypeUnsupported {
		return 0, helper.NewError("process document", fmt.Errorf("%w: %s", extract.ErrUnsupportedFormat, doc.FileType))
	}

	data, err := p.Blobs.Download(ctx, doc.FilePath)
	if err != nil {
		return 0, helper.NewError("download blob", err)
	}

	text, err := extract.Extract(data, doc.FileType.MIMEType())
	if err != nil {
		return 0, helper.NewError("extract text", err)
	}

	chunks, err := p.Pipeline.Process(ctx, doc, text)
	if err != nil {
		return 0, helper.NewError("process chunks", err)
	}

	p.log.Info("Processed document into chunks",
		slog.String("document_id", doc.ID.String()),
		slog.String("title", doc.Title),
		slog.Int("num_chunks", len(chunks)))

	if err := p.Chunks.ReplaceDocumentChunks(ctx, doc.ID, chunks); err != nil {
		return 0, helper.NewError("replace chunks", err)
	}

	return len(chunks), nil
}

// Ask answers a question about the stored policy documents. The query is
// embedded (a failure here is fatal, retrieval needs the vector), dense and
// sparse retrieval run concurrently, the result lists are fused with
// reciprocal rank fusion and the top chunks ground the chat completion.
func (p *PolicyQA) Ask(ctx context.Context, query string) (*model.Answer, error) {
	embedding, err := p.Pipeline.Embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, helper.NewError("embed query", err)
	}

	dense, sparse, err := p.Engine.Retrieve(ctx, query, embedding, &p.Retrieval)
	if errors.Is(err, retrieval.ErrNoResults) {
		p.log.Info("Retrieval found no relevant chunks", slog.String("query", query))
		return p.Answerer.Answer(ctx, query, nil)
	}
	if err != nil {
		return nil, helper.NewError("retrieve chunks", err)
	}

	fused := retrieval.ReciprocalRankFusion(dense, sparse, p.Retrieval.RRFK, p.Retrieval.ContextCount)
	return p.Answerer.Answer(ctx, query, fused)
}

// ChangeIndexType changes the vector index type between HNSW and IVFFlat.
func (p *PolicyQA) ChangeIndexType(ctx context.Context, indexType string, params map[string]interface{}) error {
	return p.Chunks.ChangeIndexType(ctx, indexType, params)
}
