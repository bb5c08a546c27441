package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const azureAPIVersion = "2024-07-01"

// AzureClient talks to an Azure AI Search index over its REST API. Construct
// it once per process and inject it into the retriever and the ingest
// pipeline.
type AzureClient struct {
	endpoint   string
	index      string
	apiKey     string
	apiVersion string
	client     *http.Client
}

// NewAzureClient builds a client for the given index. The endpoint is the
// service URL without a trailing slash.
func NewAzureClient(endpoint, index, apiKey string) *AzureClient {
	return &AzureClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		index:      index,
		apiKey:     apiKey,
		apiVersion: azureAPIVersion,
		client:     &http.Client{Timeout: 60 * time.Second},
	}
}

type vectorQuery struct {
	Kind   string    `json:"kind"`
	Vector []float32 `json:"vector"`
	K      int       `json:"k"`
	Fields string    `json:"fields"`
}

type searchRequest struct {
	Search        string        `json:"search"`
	Select        string        `json:"select,omitempty"`
	Top           int           `json:"top"`
	VectorQueries []vectorQuery `json:"vectorQueries"`
}

type searchResultDoc struct {
	Score         float64  `json:"@search.score"`
	RerankerScore *float64 `json:"@search.rerankerScore"`
	ChunkID       string   `json:"chunk_id"`
	ParentID      string   `json:"parent_id"`
	Chunk         string   `json:"chunk"`
	Title         string   `json:"title"`
	Content       string   `json:"content"`
}

type searchResponse struct {
	Value []searchResultDoc `json:"value"`
}

// Search issues one combined keyword + vector request against the index.
func (c *AzureClient) Search(ctx context.Context, keywordText string, vector []float32, k int, selectFields []string) ([]Document, error) {
	body := searchRequest{
		Search: keywordText,
		Select: strings.Join(selectFields, ","),
		Top:    k,
		VectorQueries: []vectorQuery{{
			Kind:   "vector",
			Vector: vector,
			K:      k,
			Fields: "text_vector",
		}},
	}

	url := fmt.Sprintf("%s/indexes/%s/docs/search?api-version=%s", c.endpoint, c.index, c.apiVersion)
	data, err := c.post(ctx, url, body)
	if err != nil {
		return nil, err
	}

	var parsed searchResponse
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	docs := make([]Document, 0, len(parsed.Value))
	for _, v := range parsed.Value {
		docs = append(docs, Document{
			ChunkID:       v.ChunkID,
			ParentID:      v.ParentID,
			Chunk:         v.Chunk,
			Title:         v.Title,
			Content:       v.Content,
			Score:         v.Score,
			RerankerScore: v.RerankerScore,
		})
	}
	return docs, nil
}

type uploadAction struct {
	Action   string    `json:"@search.action"`
	ChunkID  string    `json:"chunk_id"`
	ParentID string    `json:"parent_id"`
	Chunk    string    `json:"chunk"`
	Title    string    `json:"title"`
	Vector   []float32 `json:"text_vector"`
}

// Upload pushes documents into the index as upload actions, replacing any
// existing documents with the same chunk_id.
func (c *AzureClient) Upload(ctx context.Context, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}
	actions := make([]uploadAction, 0, len(docs))
	for _, d := range docs {
		actions = append(actions, uploadAction{
			Action:   "upload",
			ChunkID:  d.ChunkID,
			ParentID: d.ParentID,
			Chunk:    d.Chunk,
			Title:    d.Title,
			Vector:   d.Vector,
		})
	}

	url := fmt.Sprintf("%s/indexes/%s/docs/index?api-version=%s", c.endpoint, c.index, c.apiVersion)
	if _, err := c.post(ctx, url, map[string]any{"value": actions}); err != nil {
		return err
	}
	log.Info().Int("documents", len(actions)).Str("index", c.index).Msg("uploaded documents")
	return nil
}

// post sends one JSON request, retrying once on a transport-level failure.
// HTTP error statuses are not retried.
func (c *AzureClient) post(ctx context.Context, url string, payload any) ([]byte, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			log.Warn().Err(lastErr).Str("url", url).Msg("retrying search request after transport failure")
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonData))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("api-key", c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			// transport failures get one more attempt, HTTP errors do not
			lastErr = err
			if ctx.Err() == nil {
				continue
			}
			return nil, err
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return nil, fmt.Errorf("search request failed: %d, %s", resp.StatusCode, string(data))
		}
		return data, nil
	}
	return nil, lastErr
}
