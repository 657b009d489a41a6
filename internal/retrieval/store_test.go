package retrieval_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/temirov/procurement-flow/internal/retrieval"
)

func openTestStore(t *testing.T) *retrieval.Store {
	t.Helper()
	return openDimensionedStore(t, 0)
}

func openDimensionedStore(t *testing.T, dimensions int) *retrieval.Store {
	t.Helper()
	store, err := retrieval.Open(filepath.Join(t.TempDir(), "vectors.db"), dimensions)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestOpen_RejectsEmptyPath(t *testing.T) {
	if _, err := retrieval.Open("  ", 0); err == nil {
		t.Fatalf("expected an error for an empty path")
	}
}

func TestStore_SearchRanksByCosineSimilarity(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	documents := []retrieval.Document{
		{SupplierID: "SUP-1001", Text: "palm oil trader", Vector: []float32{1, 0, 0}},
		{SupplierID: "SUP-1002", Text: "fragrance house", Vector: []float32{0, 1, 0}},
		{SupplierID: "SUP-1003", Text: "mixed portfolio", Vector: []float32{1, 1, 0}},
	}
	if err := store.Insert(ctx, "suppliers_demo", documents); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	snippets, err := store.Search(ctx, "suppliers_demo", []float32{1, 0, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(snippets) != 2 {
		t.Fatalf("expected 2 snippets, got %d", len(snippets))
	}
	if snippets[0].SupplierID != "SUP-1001" {
		t.Fatalf("expected the aligned vector first, got %q", snippets[0].SupplierID)
	}
	if snippets[1].SupplierID != "SUP-1003" {
		t.Fatalf("expected the partially aligned vector second, got %q", snippets[1].SupplierID)
	}
}

func TestStore_SearchTiesKeepInsertionOrder(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	documents := []retrieval.Document{
		{SupplierID: "SUP-1001", Text: "first", Vector: []float32{1, 0}},
		{SupplierID: "SUP-1002", Text: "second identical", Vector: []float32{1, 0}},
	}
	if err := store.Insert(ctx, "suppliers_demo", documents); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	snippets, err := store.Search(ctx, "suppliers_demo", []float32{1, 0}, 2)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if snippets[0].SupplierID != "SUP-1001" || snippets[1].SupplierID != "SUP-1002" {
		t.Fatalf("tied scores must keep insertion order, got %+v", snippets)
	}
}

func TestStore_SearchFewerThanK(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, "contracts_demo", []retrieval.Document{
		{SupplierID: "SUP-1001", Text: "msa", Vector: []float32{1}},
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	snippets, err := store.Search(ctx, "contracts_demo", []float32{1}, 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(snippets) != 1 {
		t.Fatalf("expected 1 snippet, got %d", len(snippets))
	}
}

func TestStore_SearchEmptyCollection(t *testing.T) {
	store := openTestStore(t)

	snippets, err := store.Search(context.Background(), "audits_demo", []float32{1, 2}, 3)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(snippets) != 0 {
		t.Fatalf("expected no snippets, got %d", len(snippets))
	}
}

func TestStore_SearchNonPositiveK(t *testing.T) {
	store := openTestStore(t)

	snippets, err := store.Search(context.Background(), "suppliers_demo", []float32{1}, 0)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if snippets != nil {
		t.Fatalf("k <= 0 must return nothing, got %+v", snippets)
	}
}

func TestStore_SearchRejectsQueryDimensionMismatch(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, "suppliers_demo", []retrieval.Document{
		{SupplierID: "SUP-1001", Text: "a", Vector: []float32{1, 0, 0, 0}},
		{SupplierID: "SUP-1002", Text: "b", Vector: []float32{0, 1, 0, 0}},
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	// A narrower query must fail outright, not rank on a truncated prefix.
	if _, err := store.Search(ctx, "suppliers_demo", []float32{0, 1}, 2); err == nil {
		t.Fatalf("expected an error for a query narrower than the stored embeddings")
	}
}

func TestStore_EnforcesConfiguredDimensions(t *testing.T) {
	store := openDimensionedStore(t, 3)
	ctx := context.Background()

	if err := store.Insert(ctx, "suppliers_demo", []retrieval.Document{
		{SupplierID: "SUP-1001", Text: "wrong width", Vector: []float32{1, 0}},
	}); err == nil {
		t.Fatalf("expected an error for a document narrower than the configured dimension")
	}

	if err := store.Insert(ctx, "suppliers_demo", []retrieval.Document{
		{SupplierID: "SUP-1001", Text: "right width", Vector: []float32{1, 0, 0}},
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	if _, err := store.Search(ctx, "suppliers_demo", []float32{1, 0}, 1); err == nil {
		t.Fatalf("expected an error for a query narrower than the configured dimension")
	}
	snippets, err := store.Search(ctx, "suppliers_demo", []float32{1, 0, 0}, 1)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(snippets) != 1 || snippets[0].SupplierID != "SUP-1001" {
		t.Fatalf("unexpected result for a well-formed query: %+v", snippets)
	}
}

func TestStore_InsertRejectsEmptyVector(t *testing.T) {
	store := openTestStore(t)

	err := store.Insert(context.Background(), "suppliers_demo", []retrieval.Document{
		{SupplierID: "SUP-1001", Text: "no embedding"},
	})
	if err == nil {
		t.Fatalf("expected an error for a document without an embedding")
	}
}

func TestStore_ResetClearsOnlyTargetCollection(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, "suppliers_demo", []retrieval.Document{
		{SupplierID: "SUP-1001", Text: "supplier", Vector: []float32{1}},
	}); err != nil {
		t.Fatalf("Insert suppliers: %v", err)
	}
	if err := store.Insert(ctx, "contracts_demo", []retrieval.Document{
		{SupplierID: "SUP-1001", Text: "contract", Vector: []float32{1}},
	}); err != nil {
		t.Fatalf("Insert contracts: %v", err)
	}

	if err := store.Reset(ctx, "suppliers_demo"); err != nil {
		t.Fatalf("Reset: %v", err)
	}

	infos, err := store.Collections(ctx)
	if err != nil {
		t.Fatalf("Collections: %v", err)
	}
	if len(infos) != 1 || infos[0].Name != "contracts_demo" || infos[0].Count != 1 {
		t.Fatalf("unexpected collections after reset: %+v", infos)
	}
}

func TestStore_Collections(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, "suppliers_demo", []retrieval.Document{
		{SupplierID: "SUP-1001", Text: "a", Vector: []float32{1}},
		{SupplierID: "SUP-1002", Text: "b", Vector: []float32{1}},
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if err := store.Insert(ctx, "audits_demo", []retrieval.Document{
		{SupplierID: "SUP-1001", Text: "c", Vector: []float32{1}},
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	infos, err := store.Collections(ctx)
	if err != nil {
		t.Fatalf("Collections: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("expected 2 collections, got %+v", infos)
	}
	if infos[0].Name != "audits_demo" || infos[0].Count != 1 {
		t.Fatalf("unexpected first collection: %+v", infos[0])
	}
	if infos[1].Name != "suppliers_demo" || infos[1].Count != 2 {
		t.Fatalf("unexpected second collection: %+v", infos[1])
	}
}

type fixedEmbedder struct {
	vector []float32
	err    error
}

func (f fixedEmbedder) Embed(ctx context.Context, inputs []string) ([][]float32, error) {
	if f.err != nil {
		return nil, f.err
	}
	vectors := make([][]float32, len(inputs))
	for i := range inputs {
		vectors[i] = f.vector
	}
	return vectors, nil
}

func TestVectorRetriever_Retrieve(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Insert(ctx, "suppliers_demo", []retrieval.Document{
		{SupplierID: "SUP-1001", Text: "close match", Vector: []float32{1, 0}},
		{SupplierID: "SUP-1002", Text: "far match", Vector: []float32{0, 1}},
	}); err != nil {
		t.Fatalf("Insert: %v", err)
	}

	retriever := retrieval.VectorRetriever{
		Store:      store,
		Embedder:   fixedEmbedder{vector: []float32{1, 0}},
		Collection: "suppliers_demo",
	}
	snippets, err := retriever.Retrieve(ctx, "palm oil", 1)
	if err != nil {
		t.Fatalf("Retrieve: %v", err)
	}
	if len(snippets) != 1 || snippets[0].SupplierID != "SUP-1001" {
		t.Fatalf("unexpected retrieval result: %+v", snippets)
	}
}

func TestVectorRetriever_EmbedderFailure(t *testing.T) {
	store := openTestStore(t)

	retriever := retrieval.VectorRetriever{
		Store:      store,
		Embedder:   fixedEmbedder{err: errors.New("quota exceeded")},
		Collection: "suppliers_demo",
	}
	if _, err := retriever.Retrieve(context.Background(), "query", 3); err == nil {
		t.Fatalf("expected the embedder failure to propagate")
	}
}
