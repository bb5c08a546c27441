package rag

import (
	"context"
	"strings"

	"github.com/rs/zerolog/log"

	"entra-guide-rag/internal/embedding"
	"entra-guide-rag/internal/query"
	"entra-guide-rag/internal/search"
)

// SearchOutput carries the retrieved documents together with the query plan
// metadata. A failed retrieval is not an error to the caller: the documents
// are empty and Meta.Error holds the reason.
type SearchOutput struct {
	Docs []search.Document
	Meta query.Plan
}

// Retriever runs the hybrid retrieval pipeline: query plan, embedding, one
// combined keyword + vector search call. Clients are injected once at
// construction.
type Retriever struct {
	index    search.Index
	embedder embedding.Embedder
	tables   query.Tables
}

func NewRetriever(index search.Index, embedder embedding.Embedder, tables query.Tables) *Retriever {
	return &Retriever{index: index, embedder: embedder, tables: tables}
}

// SearchTopK retrieves at most topK documents for a raw question. An empty
// query short-circuits before any external call. Embedding and search
// failures are logged and downgraded into an empty result with the error
// recorded in the plan metadata; they never propagate.
func (r *Retriever) SearchTopK(ctx context.Context, question string, topK int) SearchOutput {
	plan := r.tables.BuildPlan(question)

	if strings.TrimSpace(plan.VectorQueryText) == "" {
		log.Warn().Msg("empty query received, returning empty result")
		plan.Warning = "empty query"
		return SearchOutput{Docs: []search.Document{}, Meta: plan}
	}

	vector, err := r.embedder.EmbedQuery(ctx, plan.VectorQueryText)
	if err != nil {
		log.Error().Err(err).Str("query", plan.VectorQueryText).Msg("embedding failed")
		plan.Error = err.Error()
		return SearchOutput{Docs: []search.Document{}, Meta: plan}
	}

	results, err := r.index.Search(ctx, plan.SearchText, vector, topK, search.DefaultSelectFields)
	if err != nil {
		log.Error().Err(err).Str("search_text", plan.SearchText).Msg("search failed")
		plan.Error = err.Error()
		return SearchOutput{Docs: []search.Document{}, Meta: plan}
	}

	docs := make([]search.Document, 0, len(results))
	for _, doc := range results {
		if doc.Chunk == "" {
			log.Debug().Str("chunk_id", doc.ChunkID).Msg("skipping document with empty chunk")
			continue
		}
		docs = append(docs, doc)
	}

	plan.ReturnedDocs = len(docs)
	log.Info().
		Str("raw", plan.OriginalQuery).
		Str("normalized", plan.NormalizedQuery).
		Strs("expanded", plan.ExpansionTerms).
		Int("returned", len(docs)).
		Msg("search complete")
	return SearchOutput{Docs: docs, Meta: plan}
}
