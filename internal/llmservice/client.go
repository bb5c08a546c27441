package llmservice

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"entra-guide-rag/internal/config"
)

// Generator is the single-turn text generation collaborator. Each call is
// stateless; there is no server-side conversation memory.
type Generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent) (string, error)
}

// Client wraps a langchaingo model. Construct one per process and inject it
// into the answer pipeline.
type Client struct {
	llm llms.Model
}

// NewAzureClient builds a generation client for an Azure OpenAI chat
// deployment.
func NewAzureClient(cfg *config.AzureOpenAIConfig) (*Client, error) {
	llm, err := openai.New(
		openai.WithAPIType(openai.APITypeAzure),
		openai.WithBaseURL(cfg.Endpoint),
		openai.WithToken(cfg.APIKey),
		openai.WithAPIVersion(cfg.APIVersion),
		openai.WithModel(cfg.Deployment),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing azure openai client: %w", err)
	}
	return &Client{llm: llm}, nil
}

// NewOllamaClient builds a generation client for a local ollama server.
func NewOllamaClient(cfg *config.LLMConfig) (*Client, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing ollama client: %w", err)
	}
	return &Client{llm: llm}, nil
}

// GenerateContent runs one generation call, retrying once on failure before
// giving up.
func (c *Client) GenerateContent(ctx context.Context, messages []llms.MessageContent) (string, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			log.Warn().Err(lastErr).Msg("retrying generation call")
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}
		res, err := c.llm.GenerateContent(ctx, messages)
		if err != nil {
			lastErr = err
			continue
		}
		if len(res.Choices) == 0 {
			return "", errors.New("generation returned no choices")
		}
		return res.Choices[0].Content, nil
	}
	return "", lastErr
}
