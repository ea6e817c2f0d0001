package retriever

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeIndex struct {
	matches    []VectorMatch
	queryErr   error
	upserted   []IndexVector
	lastTopK   int
	lastFilter map[string]interface{}
}

func (f *fakeIndex) Upsert(_ context.Context, vectors []IndexVector) error {
	f.upserted = append(f.upserted, vectors...)
	return nil
}

func (f *fakeIndex) Query(_ context.Context, _ []float32, topK int, filter map[string]interface{}) ([]VectorMatch, error) {
	f.lastTopK = topK
	f.lastFilter = filter
	return f.matches, f.queryErr
}

func TestQueryDropsBelowThresholdAndOrders(t *testing.T) {
	index := &fakeIndex{matches: []VectorMatch{
		{ID: "a_0", Distance: 0.1, Metadata: map[string]interface{}{"title": "A", "text": "alpha"}},
		{ID: "b_0", Distance: 0.4, Metadata: map[string]interface{}{"title": "B", "text": "bravo"}},
		{ID: "c_0", Distance: 0.25, Metadata: map[string]interface{}{"title": "C", "text": "charlie"}},
	}}
	r := New(index, &fakeEmbedder{}, 0.7, zap.NewNop())

	docs := r.Query(context.Background(), "query", 3, nil)

	require.Len(t, docs, 2)
	assert.Equal(t, "A", docs[0].Title)
	assert.InDelta(t, 0.9, docs[0].RelevanceScore, 1e-9)
	assert.Equal(t, "C", docs[1].Title)
	assert.InDelta(t, 0.75, docs[1].RelevanceScore, 1e-9)
}

func TestQueryPassesFilterThrough(t *testing.T) {
	index := &fakeIndex{}
	r := New(index, &fakeEmbedder{}, 0.7, zap.NewNop())

	filter := map[string]interface{}{"user_id": "u-1", "type": "journal_entry"}
	r.Query(context.Background(), "query", 2, filter)

	assert.Equal(t, 2, index.lastTopK)
	assert.Equal(t, filter, index.lastFilter)
}

func TestQuerySnippetTruncation(t *testing.T) {
	long := strings.Repeat("a", 500)
	index := &fakeIndex{matches: []VectorMatch{
		{ID: "a_0", Distance: 0.0, Metadata: map[string]interface{}{"text": long}},
	}}
	r := New(index, &fakeEmbedder{}, 0.7, zap.NewNop())

	docs := r.Query(context.Background(), "query", 1, nil)

	require.Len(t, docs, 1)
	assert.Equal(t, "Untitled", docs[0].Title)
	assert.Equal(t, long[:200]+"...", docs[0].ContentSnippet)
	assert.Equal(t, long, docs[0].Content)
}

func TestQueryDegradesOnErrors(t *testing.T) {
	r := New(&fakeIndex{queryErr: errors.New("unreachable")}, &fakeEmbedder{}, 0.7, zap.NewNop())
	assert.Empty(t, r.Query(context.Background(), "query", 3, nil))

	r = New(&fakeIndex{}, &fakeEmbedder{err: errors.New("unreachable")}, 0.7, zap.NewNop())
	assert.Empty(t, r.Query(context.Background(), "query", 3, nil))

	r = New(nil, &fakeEmbedder{}, 0.7, zap.NewNop())
	assert.Empty(t, r.Query(context.Background(), "query", 3, nil))
}

func TestIngestChunksAndUpserts(t *testing.T) {
	index := &fakeIndex{}
	embedder := &fakeEmbedder{}
	r := New(index, embedder, 0.7, zap.NewNop())

	content := strings.Repeat("Coping with stress takes practice. ", 80)
	documentID, chunkCount, err := r.Ingest(context.Background(), "Stress Guide", content, "https://example.org/stress", map[string]interface{}{"type": "article"})
	require.NoError(t, err)

	assert.NotEmpty(t, documentID)
	assert.Greater(t, chunkCount, 1)
	require.Len(t, index.upserted, chunkCount)
	assert.Equal(t, chunkCount, embedder.calls)

	for i, vector := range index.upserted {
		assert.Equal(t, fmt.Sprintf("%s_%d", documentID, i), vector.ID)
		assert.Equal(t, documentID, vector.Metadata["document_id"])
		assert.Equal(t, "Stress Guide", vector.Metadata["title"])
		assert.Equal(t, "https://example.org/stress", vector.Metadata["url"])
		assert.Equal(t, "article", vector.Metadata["type"])
		assert.Equal(t, float64(i), vector.Metadata["chunk_index"])
		assert.NotEmpty(t, vector.Metadata["text"])
	}
}

func TestIngestTwiceProducesIndependentDocuments(t *testing.T) {
	index := &fakeIndex{}
	r := New(index, &fakeEmbedder{}, 0.7, zap.NewNop())

	first, _, err := r.Ingest(context.Background(), "T", "same content", "", nil)
	require.NoError(t, err)
	second, _, err := r.Ingest(context.Background(), "T", "same content", "", nil)
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
