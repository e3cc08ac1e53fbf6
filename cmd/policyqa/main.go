// Command policyqa runs the policy question-answering service and its
// ingestion tooling.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/alexphommasathit/policyqa"
	"github.com/alexphommasathit/policyqa/core/answer"
	"github.com/alexphommasathit/policyqa/core/pipeline"
	"github.com/alexphommasathit/policyqa/helper"
	"github.com/alexphommasathit/policyqa/model"
	"github.com/alexphommasathit/policyqa/server"
	"github.com/alexphommasathit/policyqa/storage"
)

var rootCmd = &cobra.Command{
	Use:   "policyqa",
	Short: "policyqa provides grounded question answering over internal policy documents",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		qa, logger, err := buildPolicyQA()
		if err != nil {
			return err
		}
		defer qa.Close()

		addr, err := cmd.Flags().GetString("addr")
		if err != nil {
			return err
		}

		handler := server.NewServer(qa, os.Getenv("POLICYQA_API_TOKEN"), logger).Handler()
		logger.Info("Starting policyqa server", slog.String("addr", addr))
		return http.ListenAndServe(addr, handler)
	},
}

var ingestCmd = &cobra.Command{
	Use:   "ingest <document-id>",
	Short: "Process one registered document into searchable chunks",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		documentID, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("document-id must be a valid UUID: %w", err)
		}

		qa, logger, err := buildPolicyQA()
		if err != nil {
			return err
		}
		defer qa.Close()

		count, err := qa.ProcessDocument(cmd.Context(), documentID)
		if err != nil {
			return err
		}
		logger.Info("Document processed", slog.String("document_id", documentID.String()), slog.Int("num_chunks", count))
		return nil
	},
}

func buildPolicyQA() (*policyqa.PolicyQA, *slog.Logger, error) {
	logger := slog.New(helper.NewPrettyHandler(os.Stdout, helper.PrettyHandlerOptions{
		SlogOpts: slog.HandlerOptions{Level: slog.LevelInfo},
	}))

	dbConfig, err := helper.NewDatabaseConfiguration()
	if err != nil {
		return nil, nil, fmt.Errorf("database configuration: %w", err)
	}

	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		logger.Warn("OPENAI_API_KEY is not set, embedding and answering will fail")
	}
	blobBaseURL := os.Getenv("POLICYQA_BLOB_BASE_URL")
	if blobBaseURL == "" {
		return nil, nil, fmt.Errorf("POLICYQA_BLOB_BASE_URL must be set")
	}

	modelConfig := model.NewModelConfigFromEnv()
	embedder := pipeline.NewOpenAIEmbedder(apiKey, modelConfig.EmbeddingModel, logger)
	answerer := answer.NewOpenAIAnswerer(apiKey, modelConfig.ChatModel)

	qa, err := policyqa.New(dbConfig, storage.NewHTTPBlobStore(blobBaseURL), embedder, answerer)
	if err != nil {
		return nil, nil, err
	}
	return qa, logger, nil
}

func main() {
	// Missing .env is fine, deployments configure the environment directly.
	_ = godotenv.Load()

	serveCmd.Flags().String("addr", ":8080", "listen address for the HTTP API")
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(ingestCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
