package embedding

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"

	"entra-guide-rag/internal/config"
	"entra-guide-rag/internal/models"
)

// Embedder computes a dense vector for a single text. Both constructors
// below return implementations of it; tests substitute their own.
type Embedder interface {
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// NewAzureEmbedder creates an embedder backed by an Azure OpenAI embedding
// deployment.
func NewAzureEmbedder(cfg *config.AzureOpenAIConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := openai.New(
		openai.WithAPIType(openai.APITypeAzure),
		openai.WithBaseURL(cfg.Endpoint),
		openai.WithToken(cfg.APIKey),
		openai.WithAPIVersion(cfg.APIVersion),
		openai.WithModel(cfg.EmbedDeployment),
		openai.WithEmbeddingModel(cfg.EmbedDeployment),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing azure openai client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	log.Debug().Str("endpoint", cfg.Endpoint).Str("deployment", cfg.EmbedDeployment).Msg("azure embedder ready")
	return embedder, nil
}

// NewOllamaEmbedder creates an embedder backed by a local ollama server, for
// use with the local index backend.
func NewOllamaEmbedder(cfg *config.LLMConfig) (*embeddings.EmbedderImpl, error) {
	llm, err := ollama.New(
		ollama.WithServerURL(cfg.BaseURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("initializing ollama client: %w", err)
	}
	embedder, err := embeddings.NewEmbedder(llm)
	if err != nil {
		return nil, fmt.Errorf("creating embedder: %w", err)
	}
	log.Debug().Str("base_url", cfg.BaseURL).Str("model", cfg.Model).Msg("ollama embedder ready")
	return embedder, nil
}

// GenerateEmbeddings embeds every chunk of one source file, one call per
// chunk.
func GenerateEmbeddings(ctx context.Context, embedder Embedder, filename string, chunks []models.Chunk) ([]models.ChunkEmbedding, error) {
	if len(chunks) == 0 {
		log.Info().Msg("no chunks to embed")
		return nil, nil
	}

	chunkEmbeddings := make([]models.ChunkEmbedding, 0, len(chunks))
	for _, chunk := range chunks {
		vector, err := embedder.EmbedQuery(ctx, chunk.Content)
		if err != nil {
			return nil, fmt.Errorf("embedding chunk %d: %w", chunk.ChunkID, err)
		}
		chunkEmbeddings = append(chunkEmbeddings, models.ChunkEmbedding{
			Content:        chunk.Content,
			Embedding:      vector,
			SourceFilename: filename,
			PageNumber:     chunk.PageNumber,
			ChunkID:        chunk.ChunkID,
		})
	}
	return chunkEmbeddings, nil
}
