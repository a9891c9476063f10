// Package rag implements the clinic assistant's retrieval-augmented
// answering pipeline: a hosted vector index supplies context snippets and
// a hosted chat-completion API generates the answer. Both sides are
// opaque external services reached through their client libraries.
package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/clinicboard/medassist/internal/debug"
)

// systemPrompt frames every generation call.
const systemPrompt = `You are a helpful assistant for a medical clinic.
Answer questions about clinic hours, appointments, and general health
topics using the provided context when it is relevant. If the user
describes a medical emergency, tell them to call 911 or go to the nearest
emergency room. Keep answers short and do not invent clinic policies that
are not in the context.`

// Retriever returns context snippets relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]string, error)
}

// Generator produces a chat completion.
type Generator interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// Pipeline combines retrieval and generation.
type Pipeline struct {
	retriever Retriever
	generator Generator
	topK      int
}

// NewPipeline creates a pipeline. retriever may be nil, in which case
// answers are generated without retrieved context.
func NewPipeline(retriever Retriever, generator Generator, topK int) *Pipeline {
	if topK <= 0 {
		topK = 4
	}
	return &Pipeline{
		retriever: retriever,
		generator: generator,
		topK:      topK,
	}
}

// Answer responds to a user question. Retrieval failures degrade to an
// answer without context; generation failures are returned to the caller.
func (p *Pipeline) Answer(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("empty question")
	}

	var snippets []string
	if p.retriever != nil {
		var err error
		snippets, err = p.retriever.Retrieve(ctx, question, p.topK)
		if err != nil {
			debug.Warn("rag", "retrieval failed, answering without context: %v", err)
			snippets = nil
		}
	}

	answer, err := p.generator.Generate(ctx, systemPrompt, buildPrompt(snippets, question))
	if err != nil {
		return "", fmt.Errorf("generation failed: %w", err)
	}

	return strings.TrimSpace(answer), nil
}

// buildPrompt assembles the user-side prompt from retrieved context and
// the question.
func buildPrompt(snippets []string, question string) string {
	if len(snippets) == 0 {
		return question
	}

	var b strings.Builder
	b.WriteString("Context:\n")
	for _, s := range snippets {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(s)
		b.WriteString("\n")
	}
	b.WriteString("\nQuestion: ")
	b.WriteString(question)
	return b.String()
}
