package rag

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"

	"entra-guide-rag/internal/query"
	"entra-guide-rag/internal/search"
)

type fakeGenerator struct {
	answer      string
	err         error
	gotMessages []llms.MessageContent
}

func (f *fakeGenerator) GenerateContent(_ context.Context, messages []llms.MessageContent) (string, error) {
	f.gotMessages = messages
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

func newTestPipeline(docs []search.Document, gen *fakeGenerator) *Pipeline {
	embedder := &fakeEmbedder{vector: []float32{0.5}}
	index := &fakeIndex{docs: docs}
	retriever := NewRetriever(index, embedder, query.DefaultTables())
	return NewPipeline(retriever, gen, 3)
}

func messageText(m llms.MessageContent) string {
	var parts []string
	for _, p := range m.Parts {
		if t, ok := p.(llms.TextContent); ok {
			parts = append(parts, t.Text)
		}
	}
	return strings.Join(parts, "")
}

func TestAnswer_Greeting(t *testing.T) {
	gen := &fakeGenerator{answer: "안녕하세요! 무엇을 도와드릴까요?"}
	p := newTestPipeline([]search.Document{{ChunkID: "x", Chunk: "ignored"}}, gen)

	resp := p.Answer(context.Background(), "안녕하세요")

	assert.Equal(t, RouteGreeting, resp.Route)
	assert.Equal(t, "안녕하세요! 무엇을 도와드릴까요?", resp.Answer)
	assert.Empty(t, resp.Context)
	assert.Empty(t, resp.Sources)

	// greeting prompt carries only the question, no retrieved context
	require.Len(t, gen.gotMessages, 1)
	text := messageText(gen.gotMessages[0])
	assert.Contains(t, text, "안녕하세요")
	assert.NotContains(t, text, "<<CONTEXT_START>>")
}

func TestAnswer_GuideWithDocuments(t *testing.T) {
	gen := &fakeGenerator{answer: "가이드 내용입니다."}
	docs := []search.Document{
		{ChunkID: "g_0", Title: "guide", Chunk: "A", Score: 0.9},
		{ChunkID: "g_1", Title: "guide", Chunk: "B", Score: 0.8},
	}
	p := newTestPipeline(docs, gen)

	resp := p.Answer(context.Background(), "entra 가이드 알려줘")

	assert.Equal(t, RouteGuide, resp.Route)
	assert.Equal(t, "A\n\nB", resp.Context)
	require.Len(t, resp.Sources, 2)
	assert.Equal(t, "g_0", resp.Sources[0].ChunkID)

	require.Len(t, gen.gotMessages, 2)
	assert.Equal(t, schema.ChatMessageTypeSystem, gen.gotMessages[0].Role)
	assert.Contains(t, messageText(gen.gotMessages[0]), "출처 정보가 없습니다")
	userText := messageText(gen.gotMessages[1])
	assert.Contains(t, userText, "<<CONTEXT_START>>\nA\n\nB\n<<CONTEXT_END>>")
	assert.Contains(t, userText, "질문: entra 가이드 알려줘")
}

func TestAnswer_GuideWithoutDocuments(t *testing.T) {
	gen := &fakeGenerator{answer: "출처 정보가 없습니다."}
	p := newTestPipeline(nil, gen)

	resp := p.Answer(context.Background(), "entra 가이드 알려줘")

	assert.Equal(t, RouteGuide, resp.Route)
	assert.NotEmpty(t, resp.Answer)
	assert.Empty(t, resp.Context)
	assert.Empty(t, resp.Sources)

	// the call still proceeds, with an explicit empty-context marker
	require.Len(t, gen.gotMessages, 2)
	assert.Contains(t, messageText(gen.gotMessages[1]), "/* 컨텍스트 없음 */")
}

func TestAnswer_Default(t *testing.T) {
	gen := &fakeGenerator{answer: "Entra ID App 관련 질문을 해주세요."}
	p := newTestPipeline([]search.Document{{ChunkID: "x", Chunk: "ignored"}}, gen)

	resp := p.Answer(context.Background(), "오늘 날씨 어때?")

	assert.Equal(t, RouteDefault, resp.Route)
	assert.Empty(t, resp.Context)
	assert.Empty(t, resp.Sources)
}

func TestAnswer_GenerationFailure(t *testing.T) {
	gen := &fakeGenerator{err: errors.New("model unavailable")}
	p := newTestPipeline(nil, gen)

	resp := p.Answer(context.Background(), "entra 가이드 알려줘")

	assert.Equal(t, RouteError, resp.Route)
	assert.Contains(t, resp.Answer, "오류가 발생했습니다")
	assert.Contains(t, resp.Answer, "model unavailable")
	assert.Empty(t, resp.Context)
	assert.Empty(t, resp.Sources)
}

func TestAnswer_RetrievalFailureStillAnswers(t *testing.T) {
	gen := &fakeGenerator{answer: "출처 정보가 없습니다."}
	embedder := &fakeEmbedder{err: errors.New("embedding down")}
	index := &fakeIndex{}
	retriever := NewRetriever(index, embedder, query.DefaultTables())
	p := NewPipeline(retriever, gen, 3)

	resp := p.Answer(context.Background(), "entra 가이드 알려줘")

	// retrieval errors degrade to an empty context, the user still gets text
	assert.Equal(t, RouteGuide, resp.Route)
	assert.NotEmpty(t, resp.Answer)
	assert.Equal(t, "embedding down", resp.SearchMeta.Error)
	assert.Empty(t, resp.Sources)
}

func TestAnswer_MetadataCarriesPlan(t *testing.T) {
	gen := &fakeGenerator{answer: "ok"}
	p := newTestPipeline([]search.Document{{ChunkID: "g", Chunk: "A"}}, gen)

	resp := p.Answer(context.Background(), "entraapp신청가이드 알려줘")

	assert.Equal(t, "entraapp 신청 가이드 알려줘", resp.SearchMeta.NormalizedQuery)
	assert.NotEmpty(t, resp.SearchMeta.ExpansionTerms)
	assert.Equal(t, 1, resp.SearchMeta.ReturnedDocs)
}
