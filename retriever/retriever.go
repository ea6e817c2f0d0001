package retriever

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mentalbloom/mentalbloom/models"
)

const (
	defaultChunkSize    = 1000
	defaultChunkOverlap = 200
	snippetLength       = 200
)

// Retriever chunks and indexes documents and answers filtered similarity
// queries with a relevance cutoff. A nil index disables retrieval: queries
// return an empty set and the turn proceeds ungrounded.
type Retriever struct {
	index        VectorIndex
	embedder     Embedder
	threshold    float64
	chunkSize    int
	chunkOverlap int
	logger       *zap.Logger
}

func New(index VectorIndex, embedder Embedder, threshold float64, logger *zap.Logger) *Retriever {
	return &Retriever{
		index:        index,
		embedder:     embedder,
		threshold:    threshold,
		chunkSize:    defaultChunkSize,
		chunkOverlap: defaultChunkOverlap,
		logger:       logger,
	}
}

// Ingest splits the content into overlapping chunks and upserts one vector
// per chunk. Ingesting the same content twice produces two independent
// documents; chunk ids are "<documentID>_<ordinal>".
func (r *Retriever) Ingest(ctx context.Context, title, content, url string, metadata map[string]interface{}) (string, int, error) {
	if r.index == nil || r.embedder == nil {
		return "", 0, fmt.Errorf("vector index is not configured")
	}

	documentID := uuid.NewString()

	meta := map[string]interface{}{
		"document_id": documentID,
		"title":       title,
		"timestamp":   float64(time.Now().Unix()),
	}
	if url != "" {
		meta["url"] = url
	}
	for k, v := range metadata {
		meta[k] = v
	}

	chunks := chunkDocument(documentID, content, r.chunkSize, r.chunkOverlap, meta)
	vectors := make([]IndexVector, 0, len(chunks))
	for _, chunk := range chunks {
		values, err := r.embedder.Embed(ctx, chunk.Text)
		if err != nil {
			return "", 0, fmt.Errorf("failed to embed chunk %d: %w", chunk.ChunkIndex, err)
		}
		vectors = append(vectors, IndexVector{
			ID:       fmt.Sprintf("%s_%d", chunk.DocumentID, chunk.ChunkIndex),
			Values:   values,
			Metadata: chunk.Metadata,
		})
	}

	if err := r.index.Upsert(ctx, vectors); err != nil {
		return "", 0, err
	}

	r.logger.Info("document ingested",
		zap.String("document_id", documentID),
		zap.String("title", title),
		zap.Int("chunk_count", len(chunks)))

	return documentID, len(chunks), nil
}

// chunkDocument splits the content and materializes one chunk per
// segment, each carrying the parent metadata plus its own text and
// ordinal.
func chunkDocument(documentID, content string, size, overlap int, meta map[string]interface{}) []models.DocumentChunk {
	segments := Split(content, size, overlap)
	chunks := make([]models.DocumentChunk, 0, len(segments))
	for i, segment := range segments {
		chunkMeta := make(map[string]interface{}, len(meta)+2)
		for k, v := range meta {
			chunkMeta[k] = v
		}
		chunkMeta["text"] = segment
		chunkMeta["chunk_index"] = float64(i)

		chunks = append(chunks, models.DocumentChunk{
			DocumentID: documentID,
			ChunkIndex: i,
			Text:       segment,
			Metadata:   chunkMeta,
		})
	}
	return chunks
}

// Query returns the documents above the similarity threshold, highest
// relevance first. Metadata filters are applied by the index, not in
// memory. Any index or embedding failure degrades to an empty result.
func (r *Retriever) Query(ctx context.Context, query string, topK int, filter map[string]interface{}) []models.RetrievedDocument {
	if r.index == nil || r.embedder == nil || topK <= 0 {
		return nil
	}

	vector, err := r.embedder.Embed(ctx, query)
	if err != nil {
		r.logger.Warn("failed to embed query, retrieval degraded", zap.Error(err))
		return nil
	}

	matches, err := r.index.Query(ctx, vector, topK, filter)
	if err != nil {
		r.logger.Warn("vector index unreachable, retrieval degraded", zap.Error(err))
		return nil
	}

	results := make([]models.RetrievedDocument, 0, len(matches))
	for _, match := range matches {
		similarity := 1 - match.Distance
		if similarity < r.threshold {
			continue
		}
		results = append(results, documentFromMatch(match, similarity))
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].RelevanceScore > results[j].RelevanceScore
	})
	return results
}

func documentFromMatch(match VectorMatch, similarity float64) models.RetrievedDocument {
	title := "Untitled"
	if t, ok := match.Metadata["title"].(string); ok && t != "" {
		title = t
	}
	url, _ := match.Metadata["url"].(string)
	content, _ := match.Metadata["text"].(string)

	snippet := content
	if len(snippet) > snippetLength {
		snippet = snippet[:snippetLength] + "..."
	}

	return models.RetrievedDocument{
		Title:          title,
		URL:            url,
		Content:        content,
		ContentSnippet: snippet,
		RelevanceScore: similarity,
		Metadata:       match.Metadata,
	}
}
