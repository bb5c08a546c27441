package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"entra-guide-rag/internal/chunker"
	"entra-guide-rag/internal/config"
	"entra-guide-rag/internal/embedding"
	"entra-guide-rag/internal/helper"
	"entra-guide-rag/internal/parser"
	"entra-guide-rag/internal/search"
)

const configFilePath = "./configs/config.yaml"

// search index keys only allow letters, digits, underscore, dash and equals
var keyCharsRe = regexp.MustCompile(`[^A-Za-z0-9_\-=]`)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	dryRun := flag.Bool("dry-run", false, "Parse and chunk only, do not call external services")
	flag.Parse()

	if flag.NArg() != 1 {
		log.Fatal().Msg("Usage: ingest [-config path] [-dry-run] <document file>")
	}
	filePath := flag.Arg(0)

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if !*dryRun {
		if err := cfg.Validate(); err != nil {
			log.Fatal().Err(err).Msg("Invalid configuration")
		}
	}

	if err := ingest(context.Background(), cfg, filePath, *dryRun); err != nil {
		// batch failures are logged, not turned into distinct exit codes
		log.Error().Err(err).Str("file", filePath).Msg("Indexing failed")
		fmt.Printf("indexing failed: %s\n", err)
		return
	}
}

func ingest(ctx context.Context, cfg *config.Config, filePath string, dryRun bool) error {
	pages, err := parser.LoadPages(filePath)
	if err != nil {
		return err
	}

	chunks, err := chunker.ChunkDocument(pages, cfg.RAG.ChunkSize, cfg.RAG.ChunkOverlap)
	if err != nil {
		return err
	}

	if dryRun {
		helper.PrettyPrint(chunks)
		fmt.Printf("dry run: %d chunks from %s\n", len(chunks), filePath)
		return nil
	}

	embedder, index, err := buildBackend(cfg)
	if err != nil {
		return err
	}

	docName := strings.TrimSuffix(filepath.Base(filePath), filepath.Ext(filePath))
	chunkEmbeddings, err := embedding.GenerateEmbeddings(ctx, embedder, docName, chunks)
	if err != nil {
		return err
	}

	docs := make([]search.Document, 0, len(chunkEmbeddings))
	for i, ce := range chunkEmbeddings {
		docs = append(docs, search.Document{
			ChunkID:  fmt.Sprintf("%s_%d", sanitizeKey(docName), i),
			ParentID: docName,
			Chunk:    ce.Content,
			Title:    docName,
			Vector:   ce.Embedding,
		})
	}

	if err := index.Upload(ctx, docs); err != nil {
		return err
	}

	fmt.Printf("indexed %d chunks from %s\n", len(docs), filePath)
	return nil
}

func buildBackend(cfg *config.Config) (embedding.Embedder, search.Index, error) {
	switch cfg.Backend {
	case config.BackendLocal:
		embedder, err := embedding.NewOllamaEmbedder(&cfg.EmbedLLM)
		if err != nil {
			return nil, nil, err
		}
		index, err := search.NewLocalIndex(cfg.Local.Path, cfg.Local.Collection)
		if err != nil {
			return nil, nil, err
		}
		return embedder, index, nil
	default:
		embedder, err := embedding.NewAzureEmbedder(&cfg.AOAI)
		if err != nil {
			return nil, nil, err
		}
		return embedder, search.NewAzureClient(cfg.Search.Endpoint, cfg.Search.Index, cfg.Search.APIKey), nil
	}
}

func sanitizeKey(name string) string {
	return keyCharsRe.ReplaceAllString(name, "_")
}
