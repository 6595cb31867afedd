package collab

import (
	"context"
	"errors"
	"log/slog"

	"github.com/andyjacy/aicommonplatform/qa/llm"
)

// ErrEmptyGeneration reports that the generator succeeded at the transport
// level but produced no text. Empty output is treated as a generator fault.
var ErrEmptyGeneration = errors.New("generator returned empty text")

// Generator is the answer generation interface consumed by the synthesizer.
type Generator interface {
	// Generate produces answer text from a system instruction and the
	// verbatim user question. A successful call never returns empty text.
	Generate(ctx context.Context, systemInstruction, question string) (string, error)

	// Info returns the configured provider and model.
	Info() llm.Info
}

// GeneratorClient adapts the llm.Service to the Generator contract.
type GeneratorClient struct {
	service llm.Service
}

// NewGeneratorClient creates the answer generator adapter.
func NewGeneratorClient(service llm.Service) *GeneratorClient {
	return &GeneratorClient{service: service}
}

func (g *GeneratorClient) Info() llm.Info {
	return g.service.Info()
}

func (g *GeneratorClient) Generate(ctx context.Context, systemInstruction, question string) (string, error) {
	messages := []llm.Message{
		llm.SystemPrompt(systemInstruction),
		llm.UserMessage(question),
	}

	text, stats, err := g.service.Chat(ctx, messages)
	if err != nil {
		return "", err
	}
	if text == "" {
		return "", ErrEmptyGeneration
	}

	if stats != nil {
		slog.Debug("generator: answer produced",
			"length", len(text),
			"total_tokens", stats.TotalTokens,
			"duration_ms", stats.TotalDurationMs,
		)
	}
	return text, nil
}
