// Package retrieval provides ranked text-snippet lookup over embedded
// document collections, backed by a local SQLite store.
package retrieval

import (
	"context"
	"fmt"
)

// Snippet is one retrieved document fragment.
type Snippet struct {
	Text       string
	SupplierID string
}

// Retriever maps a free-text query to an ordered sequence of snippets. It may
// return fewer than k results; an empty result is not an error.
type Retriever interface {
	Retrieve(ctx context.Context, query string, k int) ([]Snippet, error)
}

// Embedder encodes texts into dense vectors.
type Embedder interface {
	Embed(ctx context.Context, inputs []string) ([][]float32, error)
}

// VectorRetriever answers queries by embedding them and running a similarity
// search over one store collection.
type VectorRetriever struct {
	Store      *Store
	Embedder   Embedder
	Collection string
}

func (r VectorRetriever) Retrieve(ctx context.Context, query string, k int) ([]Snippet, error) {
	vectors, embedErr := r.Embedder.Embed(ctx, []string{query})
	if embedErr != nil {
		return nil, fmt.Errorf("embed query: %w", embedErr)
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("embedder returned no vectors for query")
	}
	return r.Store.Search(ctx, r.Collection, vectors[0], k)
}
