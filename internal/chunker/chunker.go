package chunker

import (
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"entra-guide-rag/internal/models"
)

// ErrInvalidChunkParams is returned when the overlap is not strictly
// smaller than the chunk size.
var ErrInvalidChunkParams = errors.New("chunk overlap must be smaller than chunk size")

// ChunkPages splits each page text into word-window chunks of at most
// chunkSize words, consecutive windows sharing overlap words. Windows never
// cross page boundaries. Empty pages are skipped with a warning; an empty
// input produces an empty result.
func ChunkPages(pages []string, chunkSize, overlap int) ([]string, error) {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk_size=%d overlap=%d", ErrInvalidChunkParams, chunkSize, overlap)
	}
	if len(pages) == 0 {
		log.Warn().Msg("no page texts to chunk, returning empty result")
		return []string{}, nil
	}

	step := chunkSize - overlap
	var chunks []string
	for idx, page := range pages {
		words := strings.Fields(page)
		if len(words) == 0 {
			log.Warn().Int("page", idx).Msg("skipping empty page text")
			continue
		}
		for start := 0; ; start += step {
			end := min(start+chunkSize, len(words))
			chunk := strings.Join(words[start:end], " ")
			if chunk != "" {
				chunks = append(chunks, chunk)
			}
			if end >= len(words) {
				break
			}
		}
	}

	log.Info().Int("chunks", len(chunks)).Msg("chunking complete")
	return chunks, nil
}

// ChunkDocument chunks each page separately and tags every chunk with its
// 1-based page number and a document-wide chunk id.
func ChunkDocument(pages []string, chunkSize, overlap int) ([]models.Chunk, error) {
	if chunkSize <= 0 || overlap < 0 || overlap >= chunkSize {
		return nil, fmt.Errorf("%w: chunk_size=%d overlap=%d", ErrInvalidChunkParams, chunkSize, overlap)
	}

	var chunks []models.Chunk
	for pageIdx, page := range pages {
		pageChunks, err := ChunkPages([]string{page}, chunkSize, overlap)
		if err != nil {
			return nil, err
		}
		for _, content := range pageChunks {
			chunks = append(chunks, models.Chunk{
				Content:    content,
				PageNumber: pageIdx + 1,
				ChunkID:    len(chunks) + 1,
			})
		}
	}
	return chunks, nil
}
