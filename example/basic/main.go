package main

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"

	"github.com/alexphommasathit/policyqa"
	"github.com/alexphommasathit/policyqa/core/answer"
	"github.com/alexphommasathit/policyqa/core/pipeline"
	"github.com/alexphommasathit/policyqa/helper"
	"github.com/alexphommasathit/policyqa/model"
	"github.com/alexphommasathit/policyqa/storage"
)

// samplePolicyDOCX builds a small .docx in memory so the example needs no
// files on disk.
func samplePolicyDOCX() []byte {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	doc, _ := w.Create("word/document.xml")
	doc.Write([]byte(`<?xml version="1.0"?>
<w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">
<w:body>
<w:p><w:r><w:t>REMOTE WORK</w:t></w:r></w:p>
<w:p><w:r><w:t>Employees may work remotely up to three days per week.</w:t></w:r></w:p>
<w:p><w:r><w:t>Remote days need team lead approval.</w:t></w:r></w:p>
</w:body>
</w:document>`))
	w.Close()
	return buf.Bytes()
}

// The example runs fully self-contained: a throwaway Postgres container, an
// in-process blob server and deterministic stand-ins for the embedding and
// chat models. Swap in NewOpenAIEmbedder / NewOpenAIAnswerer and a real blob
// store for production use.
func main() {
	teardown, dbPort, err := helper.MustStartPostgresContainer()
	if err != nil {
		log.Fatalf("Failed to start PostgreSQL container: %v", err)
	}
	defer teardown(context.Background())

	dbConfig := &helper.DatabaseConfiguration{
		Host:     "localhost",
		Port:     dbPort,
		Database: "database",
		Username: "user",
		Password: "password",
		Schema:   "public",
		SSLMode:  "disable",
	}

	// The default chunks table is sized for text-embedding-3-small (1536);
	// the fake embedder below uses 3 dimensions.
	os.Setenv("POLICYQA_EMBEDDING_DIM", "3")

	docx := samplePolicyDOCX()
	blobServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(docx)
	}))
	defer blobServer.Close()

	logger := slog.New(helper.NewPrettyHandler(os.Stdout, helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: slog.LevelInfo},
	}))
	embedder := pipeline.NewEmbedder(func(ctx context.Context, texts []string) ([][]float32, error) {
		embeddings := make([][]float32, len(texts))
		for i := range texts {
			embeddings[i] = []float32{1, 0, 0}
		}
		return embeddings, nil
	}, logger)
	answerer := answer.NewAnswerer(func(ctx context.Context, systemPrompt string, userPrompt string) (string, error) {
		return "According to the Remote Work Policy, you may work remotely up to three days per week.", nil
	})

	qa, err := policyqa.New(dbConfig, storage.NewHTTPBlobStore(blobServer.URL), embedder, answerer)
	if err != nil {
		log.Fatalf("Failed to create policyqa: %v", err)
	}
	defer qa.Close()

	ctx := context.Background()

	doc := &model.Document{
		Title:    "Remote Work Policy",
		Status:   model.StatusPublished,
		FilePath: "policies/remote-work.docx",
		FileType: model.FileTypeDOCX,
	}
	if err := qa.Documents.InsertDocument(doc); err != nil {
		log.Fatalf("Failed to insert document: %v", err)
	}

	count, err := qa.ProcessDocument(ctx, doc.ID)
	if err != nil {
		log.Fatalf("Failed to process document: %v", err)
	}
	fmt.Printf("Stored %d chunks for %q\n", count, doc.Title)

	result, err := qa.Ask(ctx, "how many days can I work from home")
	if err != nil {
		log.Fatalf("Failed to answer question: %v", err)
	}

	fmt.Printf("\nAnswer: %s\n\nSources:\n", result.Answer)
	for _, source := range result.Sources {
		fmt.Printf("- %s (chunk %d): %s\n", source.DocumentTitle, source.ChunkIndex, source.ChunkText)
	}
}
