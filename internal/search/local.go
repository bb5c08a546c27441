package search

import (
	"context"
	"fmt"
	"runtime"

	"github.com/philippgille/chromem-go"
	"github.com/rs/zerolog/log"
)

// LocalIndex is a chromem-go backed stand-in for the managed search index,
// used for offline and development runs. Only the vector half of the hybrid
// query applies; the keyword text is ignored because chromem-go ranks by
// embedding similarity alone.
type LocalIndex struct {
	db         *chromem.DB
	collection *chromem.Collection
}

// NewLocalIndex opens (or creates) a persistent collection under path.
func NewLocalIndex(path, collectionName string) (*LocalIndex, error) {
	db, err := chromem.NewPersistentDB(path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to create local index: %w", err)
	}
	collection, err := db.GetOrCreateCollection(collectionName, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create/get collection: %w", err)
	}
	return &LocalIndex{db: db, collection: collection}, nil
}

// Search runs a vector nearest-neighbor query. selectFields is accepted for
// interface parity; the local index always returns every stored field.
func (l *LocalIndex) Search(ctx context.Context, keywordText string, vector []float32, k int, selectFields []string) ([]Document, error) {
	count := l.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if k > count {
		k = count
	}

	results, err := l.collection.QueryWithOptions(ctx, chromem.QueryOptions{
		QueryEmbedding: vector,
		NResults:       k,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query by similarity: %w", err)
	}

	docs := make([]Document, 0, len(results))
	for _, r := range results {
		docs = append(docs, Document{
			ChunkID:  r.ID,
			ParentID: r.Metadata["parent_id"],
			Chunk:    r.Content,
			Title:    r.Metadata["title"],
			Score:    float64(r.Similarity),
		})
	}
	return docs, nil
}

// Upload stores documents with their precomputed embeddings.
func (l *LocalIndex) Upload(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	chromemDocs := make([]chromem.Document, 0, len(docs))
	for _, d := range docs {
		chromemDocs = append(chromemDocs, chromem.Document{
			ID:      d.ChunkID,
			Content: d.Chunk,
			Metadata: map[string]string{
				"parent_id": d.ParentID,
				"title":     d.Title,
			},
			Embedding: d.Vector,
		})
	}
	if err := l.collection.AddDocuments(ctx, chromemDocs, runtime.NumCPU()); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}
	log.Info().Int("documents", len(chromemDocs)).Msg("stored documents in local index")
	return nil
}
