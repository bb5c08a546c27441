package search

import "context"

// Document is one indexed chunk as stored in and returned by the search
// index. Chunk carries the primary text; Vector is only populated on upload.
type Document struct {
	ChunkID       string    `json:"chunk_id"`
	ParentID      string    `json:"parent_id"`
	Chunk         string    `json:"chunk"`
	Title         string    `json:"title"`
	Content       string    `json:"content,omitempty"`
	Vector        []float32 `json:"-"`
	Score         float64   `json:"score"`
	RerankerScore *float64  `json:"reranker_score,omitempty"`
}

// DefaultSelectFields are the fields requested from the index on every
// search.
var DefaultSelectFields = []string{"chunk_id", "parent_id", "chunk", "title", "content"}

// Index is the external search index collaborator. Search issues one hybrid
// request combining free-text keyword search with a vector nearest-neighbor
// query; ranking and fusion are owned by the index, results come back in
// descending relevance order.
type Index interface {
	Search(ctx context.Context, keywordText string, vector []float32, k int, selectFields []string) ([]Document, error)
	Upload(ctx context.Context, docs []Document) error
}
