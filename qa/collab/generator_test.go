package collab

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andyjacy/aicommonplatform/qa/llm"
)

// fakeLLMService implements llm.Service for testing without network calls.
type fakeLLMService struct {
	reply    string
	err      error
	messages []llm.Message
}

func (f *fakeLLMService) Chat(_ context.Context, messages []llm.Message) (string, *llm.CallStats, error) {
	f.messages = messages
	if f.err != nil {
		return "", nil, f.err
	}
	return f.reply, &llm.CallStats{}, nil
}

func (f *fakeLLMService) Info() llm.Info {
	return llm.Info{Provider: "fake", Model: "fake-model", Configured: true}
}

// TestGeneratorClient_Generate tests message assembly and text passthrough.
func TestGeneratorClient_Generate(t *testing.T) {
	service := &fakeLLMService{reply: "Q1销售额为5000万元。"}
	generator := NewGeneratorClient(service)

	text, err := generator.Generate(context.Background(), "你是一个企业AI助手。", "今年Q1的销售额是多少?")

	require.NoError(t, err)
	assert.Equal(t, "Q1销售额为5000万元。", text)

	require.Len(t, service.messages, 2)
	assert.Equal(t, "system", service.messages[0].Role)
	assert.Equal(t, "你是一个企业AI助手。", service.messages[0].Content)
	assert.Equal(t, "user", service.messages[1].Role)
	assert.Equal(t, "今年Q1的销售额是多少?", service.messages[1].Content)
}

// TestGeneratorClient_EmptyText tests that empty output is a generator fault.
func TestGeneratorClient_EmptyText(t *testing.T) {
	generator := NewGeneratorClient(&fakeLLMService{reply: ""})

	_, err := generator.Generate(context.Background(), "sys", "q")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyGeneration)
}

// TestGeneratorClient_ServiceError tests error propagation.
func TestGeneratorClient_ServiceError(t *testing.T) {
	serviceErr := errors.New("rate limited")
	generator := NewGeneratorClient(&fakeLLMService{err: serviceErr})

	_, err := generator.Generate(context.Background(), "sys", "q")

	assert.ErrorIs(t, err, serviceErr)
}

// TestGeneratorClient_Info tests provider info passthrough.
func TestGeneratorClient_Info(t *testing.T) {
	generator := NewGeneratorClient(&fakeLLMService{})

	info := generator.Info()
	assert.Equal(t, "fake", info.Provider)
	assert.Equal(t, "fake-model", info.Model)
	assert.True(t, info.Configured)
}
