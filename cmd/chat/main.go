package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/uptrace/bun"

	"entra-guide-rag/internal/config"
	"entra-guide-rag/internal/db"
	"entra-guide-rag/internal/embedding"
	"entra-guide-rag/internal/helper"
	"entra-guide-rag/internal/history"
	"entra-guide-rag/internal/llmservice"
	"entra-guide-rag/internal/query"
	"entra-guide-rag/internal/rag"
	"entra-guide-rag/internal/search"
)

const (
	configFilePath = "./configs/config.yaml"
	queryTimeout   = 2 * time.Minute
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).With().Caller().Logger()

	configPath := flag.String("config", configFilePath, "Path to the config file")
	topK := flag.Int("top-k", 0, "Number of documents to retrieve per question")
	question := flag.String("query", "", "Ask a single question and exit")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}
	if *topK > 0 {
		cfg.RAG.TopK = *topK
	}

	pipeline, err := buildPipeline(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Error building pipeline")
	}

	logDB := connectLogStore(cfg)
	if logDB != nil {
		defer logDB.Close()
	}

	ctx := context.Background()

	if *question != "" {
		answerOne(ctx, pipeline, logDB, history.New(), *question)
		return
	}

	runREPL(ctx, pipeline, logDB)
}

func buildPipeline(cfg *config.Config) (*rag.Pipeline, error) {
	var (
		embedder  embedding.Embedder
		index     search.Index
		generator llmservice.Generator
		err       error
	)
	switch cfg.Backend {
	case config.BackendLocal:
		if embedder, err = embedding.NewOllamaEmbedder(&cfg.EmbedLLM); err != nil {
			return nil, err
		}
		if index, err = search.NewLocalIndex(cfg.Local.Path, cfg.Local.Collection); err != nil {
			return nil, err
		}
		if generator, err = llmservice.NewOllamaClient(&cfg.EmbedLLM); err != nil {
			return nil, err
		}
	default:
		if embedder, err = embedding.NewAzureEmbedder(&cfg.AOAI); err != nil {
			return nil, err
		}
		index = search.NewAzureClient(cfg.Search.Endpoint, cfg.Search.Index, cfg.Search.APIKey)
		if generator, err = llmservice.NewAzureClient(&cfg.AOAI); err != nil {
			return nil, err
		}
	}

	retriever := rag.NewRetriever(index, embedder, query.DefaultTables())
	return rag.NewPipeline(retriever, generator, cfg.RAG.TopK), nil
}

// connectLogStore connects the Postgres log store when configured; without a
// DSN the chat still works, just without persistent logging.
func connectLogStore(cfg *config.Config) *bun.DB {
	if cfg.Database.DSN == "" {
		log.Warn().Msg("PG_DSN not set, conversation logging disabled")
		return nil
	}
	sqldb, err := db.ConnectDB(&cfg.Database)
	if err != nil {
		log.Error().Err(err).Msg("Error connecting to log store, logging disabled")
		return nil
	}
	logDB := db.NewDB(sqldb, cfg.Database.Debug)
	if err := db.InitDB(context.Background(), logDB); err != nil {
		log.Error().Err(err).Msg("Error initializing log store, logging disabled")
		logDB.Close()
		return nil
	}
	return logDB
}

func runREPL(ctx context.Context, pipeline *rag.Pipeline, logDB *bun.DB) {
	hist := history.New()
	fmt.Println("Entra ID App Guide Chatbot")
	fmt.Println("질문을 입력하세요. /reset /recent /faq /exit")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		switch line {
		case "/exit", "/quit":
			return
		case "/reset":
			hist.Reset()
			fmt.Println("새 대화를 시작합니다.")
			continue
		case "/recent":
			showRecent(ctx, logDB)
			continue
		case "/faq":
			showTopQuestions(ctx, logDB)
			continue
		}

		answerOne(ctx, pipeline, logDB, hist, line)
	}
}

func answerOne(ctx context.Context, pipeline *rag.Pipeline, logDB *bun.DB, hist *history.History, question string) {
	queryCtx, cancel := context.WithTimeout(ctx, queryTimeout)
	resp := pipeline.Answer(queryCtx, question)
	cancel()

	answer := strings.TrimSpace(resp.Answer)
	if answer == "" {
		answer = "죄송해요, 응답을 생성하지 못했어요."
	}
	fmt.Printf("\n%s\n", answer)
	if resp.Route == rag.RouteGuide && len(resp.Sources) > 0 {
		fmt.Println("\n참고 문서:")
		for _, doc := range resp.Sources {
			fmt.Printf("  - %s (%s, score %.3f)\n", doc.Title, doc.ChunkID, doc.Score)
		}
	}
	fmt.Println()

	turnID, err := helper.GenerateUUID()
	if err != nil {
		log.Warn().Err(err).Msg("failed to generate turn id")
	}
	hist.Append(history.Turn{
		ID:         turnID,
		Question:   question,
		Answer:     answer,
		Route:      resp.Route,
		Context:    resp.Context,
		Sources:    resp.Sources,
		SearchMeta: resp.SearchMeta,
	})

	if logDB != nil {
		if err := db.InsertLog(ctx, logDB, question, answer); err != nil {
			log.Error().Err(err).Msg("failed to insert conversation log")
		}
	}
}

func showRecent(ctx context.Context, logDB *bun.DB) {
	if logDB == nil {
		fmt.Println("로그 저장소가 설정되지 않았습니다.")
		return
	}
	logs, err := db.RecentLogs(ctx, logDB, 10)
	if err != nil {
		log.Error().Err(err).Msg("failed to read recent logs")
		return
	}
	for _, entry := range logs {
		fmt.Printf("[%s] Q: %s\n", entry.CreatedAt.Format("2006-01-02 15:04"), entry.Question)
	}
}

func showTopQuestions(ctx context.Context, logDB *bun.DB) {
	if logDB == nil {
		fmt.Println("로그 저장소가 설정되지 않았습니다.")
		return
	}
	counts, err := db.TopQuestions(ctx, logDB, 5)
	if err != nil {
		log.Error().Err(err).Msg("failed to read top questions")
		return
	}
	for i, qc := range counts {
		fmt.Printf("%d. %s (%d회)\n", i+1, qc.Question, qc.Count)
	}
}
