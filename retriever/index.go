package retriever

import "context"

// IndexVector is one embedded chunk bound for the vector index.
type IndexVector struct {
	ID       string
	Values   []float32
	Metadata map[string]interface{}
}

// VectorMatch is one raw index hit. Distance is converted to similarity
// (1 - distance) by the retriever before thresholding.
type VectorMatch struct {
	ID       string
	Distance float64
	Metadata map[string]interface{}
}

// VectorIndex is the vector store capability.
type VectorIndex interface {
	Upsert(ctx context.Context, vectors []IndexVector) error
	Query(ctx context.Context, vector []float32, topK int, filter map[string]interface{}) ([]VectorMatch, error)
}

// Embedder turns text into a fixed-dimension vector matching the index
// configuration.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
