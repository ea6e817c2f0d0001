package retriever

import (
	"context"
	"fmt"

	"github.com/pinecone-io/go-pinecone/pinecone"
	"google.golang.org/protobuf/types/known/structpb"
)

// PineconeIndex adapts a Pinecone index connection to the VectorIndex
// capability.
type PineconeIndex struct {
	conn *pinecone.IndexConnection
}

// NewPineconeIndex connects to a named index inside a namespace.
func NewPineconeIndex(ctx context.Context, apiKey, indexName, namespace string) (*PineconeIndex, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("pinecone API key is not set")
	}
	if indexName == "" {
		return nil, fmt.Errorf("pinecone index name is not set")
	}

	client, err := pinecone.NewClient(pinecone.NewClientParams{ApiKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Pinecone client: %w", err)
	}

	idx, err := client.DescribeIndex(ctx, indexName)
	if err != nil {
		return nil, fmt.Errorf("failed to describe index %q: %w", indexName, err)
	}

	conn, err := client.Index(pinecone.NewIndexConnParams{Host: idx.Host, Namespace: namespace})
	if err != nil {
		return nil, fmt.Errorf("failed to create IndexConnection for host %v: %w", idx.Host, err)
	}

	return &PineconeIndex{conn: conn}, nil
}

func (p *PineconeIndex) Upsert(ctx context.Context, vectors []IndexVector) error {
	upserts := make([]*pinecone.Vector, 0, len(vectors))
	for _, v := range vectors {
		metadata, err := structpb.NewStruct(v.Metadata)
		if err != nil {
			return fmt.Errorf("failed to build metadata for vector %s: %w", v.ID, err)
		}
		upserts = append(upserts, &pinecone.Vector{
			Id:       v.ID,
			Values:   v.Values,
			Metadata: metadata,
		})
	}

	if _, err := p.conn.UpsertVectors(ctx, upserts); err != nil {
		return fmt.Errorf("failed to upsert vectors: %w", err)
	}
	return nil
}

func (p *PineconeIndex) Query(ctx context.Context, vector []float32, topK int, filter map[string]interface{}) ([]VectorMatch, error) {
	request := &pinecone.QueryByVectorValuesRequest{
		Vector:          vector,
		TopK:            uint32(topK),
		IncludeValues:   false,
		IncludeMetadata: true,
	}
	if len(filter) > 0 {
		metadataFilter, err := structpb.NewStruct(filter)
		if err != nil {
			return nil, fmt.Errorf("failed to build metadata filter: %w", err)
		}
		request.MetadataFilter = metadataFilter
	}

	response, err := p.conn.QueryByVectorValues(ctx, request)
	if err != nil {
		return nil, fmt.Errorf("error querying Pinecone index: %w", err)
	}

	matches := make([]VectorMatch, 0, len(response.Matches))
	for _, match := range response.Matches {
		if match.Vector == nil {
			continue
		}
		var metadata map[string]interface{}
		if match.Vector.Metadata != nil {
			metadata = match.Vector.Metadata.AsMap()
		}
		// Pinecone reports cosine similarity; the capability carries
		// distance.
		matches = append(matches, VectorMatch{
			ID:       match.Vector.Id,
			Distance: 1 - float64(match.Score),
			Metadata: metadata,
		})
	}
	return matches, nil
}
