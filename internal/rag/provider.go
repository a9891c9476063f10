package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"github.com/clinicboard/medassist/internal/config"
)

// NewGenerator builds the chat-completion backend selected in the config.
// API keys come from the environment (OPENAI_API_KEY, ANTHROPIC_API_KEY).
func NewGenerator(cfg *config.RAGConfig) (Generator, error) {
	switch cfg.Provider {
	case "openai":
		llm, err := openai.New(openai.WithModel(cfg.Model))
		if err != nil {
			return nil, fmt.Errorf("failed to create openai client: %w", err)
		}
		return &openAIGenerator{llm: llm}, nil
	case "anthropic":
		return &anthropicGenerator{
			client: anthropic.NewClient(),
			model:  anthropic.Model(cfg.Model),
		}, nil
	default:
		return nil, fmt.Errorf("unknown provider %q (use openai or anthropic)", cfg.Provider)
	}
}

type openAIGenerator struct {
	llm *openai.LLM
}

func (g *openAIGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	resp, err := g.llm.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai returned no choices")
	}
	return resp.Choices[0].Content, nil
}

type anthropicGenerator struct {
	client anthropic.Client
	model  anthropic.Model
}

func (g *anthropicGenerator) Generate(ctx context.Context, system, prompt string) (string, error) {
	msg, err := g.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     g.model,
		MaxTokens: 1024,
		System: []anthropic.TextBlockParam{
			{Text: system},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			b.WriteString(block.Text)
		}
	}
	return b.String(), nil
}
