package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/clinicboard/medassist/internal/debug"
	"github.com/clinicboard/medassist/internal/rag"
)

var ragCmd = &cobra.Command{
	Use:   "rag",
	Short: "Start the assistant API server",
	Long: `Start the assistant API server: a small HTTP service exposing the
retrieval-augmented answering pipeline. The chat widget posts user
messages to POST /get and receives plain-text answers.

Requires OPENAI_API_KEY (and ANTHROPIC_API_KEY for the anthropic
provider). Retrieval needs PINECONE_API_KEY and PINECONE_HOST; without
them the assistant answers from the model alone.`,
	RunE: runRAG,
}

func init() {
	rootCmd.AddCommand(ragCmd)
}

func runRAG(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	generator, err := rag.NewGenerator(cfg.RAG)
	if err != nil {
		return err
	}

	retriever, err := rag.NewPineconeRetriever(cfg.RAG)
	if err != nil {
		// The pipeline degrades to generation without context
		debug.Warn("rag", "retrieval disabled: %v", err)
		retriever = nil
	}

	pipeline := rag.NewPipeline(retriever, generator, cfg.RAG.TopK)

	addr := fmt.Sprintf("%s:%d", cfg.RAG.Host, cfg.RAG.Port)
	server := rag.NewServer(addr, pipeline)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx)
}
