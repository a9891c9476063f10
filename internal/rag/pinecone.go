package rag

import (
	"context"
	"fmt"
	"os"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/vectorstores/pinecone"

	"github.com/clinicboard/medassist/internal/config"
)

// NewPineconeRetriever connects to the hosted Pinecone index named by
// PINECONE_API_KEY and PINECONE_HOST, embedding queries with OpenAI.
func NewPineconeRetriever(cfg *config.RAGConfig) (Retriever, error) {
	apiKey := os.Getenv("PINECONE_API_KEY")
	host := os.Getenv("PINECONE_HOST")
	if apiKey == "" || host == "" {
		return nil, fmt.Errorf("PINECONE_API_KEY and PINECONE_HOST must be set")
	}

	embedLLM, err := openai.New(openai.WithEmbeddingModel(cfg.EmbeddingModel))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	embedder, err := embeddings.NewEmbedder(embedLLM)
	if err != nil {
		return nil, fmt.Errorf("failed to create embedder: %w", err)
	}

	store, err := pinecone.New(
		pinecone.WithAPIKey(apiKey),
		pinecone.WithHost(host),
		pinecone.WithEmbedder(embedder),
		pinecone.WithNameSpace(cfg.Namespace),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to pinecone: %w", err)
	}

	return &pineconeRetriever{store: store}, nil
}

type pineconeRetriever struct {
	store pinecone.Store
}

func (r *pineconeRetriever) Retrieve(ctx context.Context, query string, k int) ([]string, error) {
	docs, err := r.store.SimilaritySearch(ctx, query, k)
	if err != nil {
		return nil, err
	}

	snippets := make([]string, 0, len(docs))
	for _, doc := range docs {
		if doc.PageContent != "" {
			snippets = append(snippets, doc.PageContent)
		}
	}
	return snippets, nil
}
