package rag

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"entra-guide-rag/internal/llmservice"
	"entra-guide-rag/internal/query"
	"entra-guide-rag/internal/search"
)

// Response is the structured answer returned to the front end. Context and
// Sources are populated only for the guide route; every other route carries
// no retrieved evidence.
type Response struct {
	Question   string            `json:"question"`
	Answer     string            `json:"answer"`
	Route      Route             `json:"route"`
	Context    string            `json:"context"`
	Sources    []search.Document `json:"sources"`
	SearchMeta query.Plan        `json:"search_meta"`
}

// Pipeline composes retrieval, routing and generation into the single
// answer entry point.
type Pipeline struct {
	retriever *Retriever
	generator llmservice.Generator
	topK      int
}

func NewPipeline(retriever *Retriever, generator llmservice.Generator, topK int) *Pipeline {
	return &Pipeline{retriever: retriever, generator: generator, topK: topK}
}

// Answer runs the full pipeline for one question. It always returns a
// response with a user-facing answer string; generation failures surface as
// a friendly error message with the route forced to "error", never as a
// propagated error.
func (p *Pipeline) Answer(ctx context.Context, question string) Response {
	out := p.retriever.SearchTopK(ctx, question, p.topK)
	contextText := buildContextText(out.Docs)
	route := RouteQuestion(question)

	if route == RouteGuide && contextText == "" {
		log.Warn().Msg("retrieval context is empty, calling the model with an empty context")
	}

	answer, err := p.generator.GenerateContent(ctx, p.messagesFor(route, question, contextText))
	if err != nil {
		log.Error().Err(err).Str("route", string(route)).Msg("generation failed")
		return Response{
			Question:   question,
			Answer:     fmt.Sprintf("오류가 발생했습니다: %s", err),
			Route:      RouteError,
			Context:    "",
			Sources:    []search.Document{},
			SearchMeta: out.Meta,
		}
	}

	resp := Response{
		Question:   question,
		Answer:     answer,
		Route:      route,
		Context:    "",
		Sources:    []search.Document{},
		SearchMeta: out.Meta,
	}
	if route == RouteGuide {
		resp.Context = contextText
		resp.Sources = out.Docs
	}

	log.Info().Str("route", string(route)).Int("context_docs", len(out.Docs)).Msg("rag response generated")
	return resp
}

// messagesFor selects the prompt for a route. Only the guide route sees
// retrieved context; the other routes get the bare question.
func (p *Pipeline) messagesFor(route Route, question, contextText string) []llms.MessageContent {
	switch route {
	case RouteGreeting:
		return []llms.MessageContent{
			llms.TextParts(schema.ChatMessageTypeHuman, greetingPrompt(question)),
		}
	case RouteGuide:
		userPrompt := buildContextBlock(contextText) + "\n\n질문: " + strings.TrimSpace(question)
		return []llms.MessageContent{
			llms.TextParts(schema.ChatMessageTypeSystem, SystemPrompt),
			llms.TextParts(schema.ChatMessageTypeHuman, userPrompt),
		}
	default:
		return []llms.MessageContent{
			llms.TextParts(schema.ChatMessageTypeHuman, defaultPrompt(question)),
		}
	}
}

// buildContextText joins the primary text of each retrieved document with a
// blank line, preserving retrieval order.
func buildContextText(docs []search.Document) string {
	chunks := make([]string, 0, len(docs))
	for _, doc := range docs {
		if text := strings.TrimSpace(doc.Chunk); text != "" {
			chunks = append(chunks, text)
		}
	}
	return strings.Join(chunks, "\n\n")
}
