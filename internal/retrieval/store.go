package retrieval

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// Store is a local SQLite-backed vector store. Documents carry their
// embedding as a little-endian float32 blob; similarity search scans the
// collection and ranks by cosine similarity in-process, which is plenty for
// the demo-scale corpora this pipeline works with.
type Store struct {
	db *sql.DB
	// dimensions is the expected embedding width; 0 leaves it unchecked.
	dimensions int
}

// Document is one embedded text unit inside a collection.
type Document struct {
	SupplierID string
	Text       string
	Vector     []float32
}

// CollectionInfo reports a collection name and its document count.
type CollectionInfo struct {
	Name  string
	Count int
}

// Open prepares the store at path. A positive dimensions pins the embedding
// width every inserted document and query vector must match; pass 0 to leave
// it unchecked.
func Open(path string, dimensions int) (*Store, error) {
	cleaned := filepath.Clean(strings.TrimSpace(path))
	if cleaned == "" || cleaned == "." {
		return nil, errors.New("missing store path")
	}
	if dir := filepath.Dir(cleaned); dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, err
		}
	}

	db, openErr := sql.Open("sqlite", cleaned)
	if openErr != nil {
		return nil, openErr
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return &Store{db: db, dimensions: dimensions}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS documents (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	collection TEXT NOT NULL,
	supplier_id TEXT NOT NULL,
	text TEXT NOT NULL,
	embedding BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_collection ON documents(collection);
`)
	return err
}

// Reset drops every document in the collection so a seed run is idempotent.
func (s *Store) Reset(ctx context.Context, collection string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ?`, collection)
	if err != nil {
		return fmt.Errorf("reset collection %s: %w", collection, err)
	}
	return nil
}

func (s *Store) Insert(ctx context.Context, collection string, documents []Document) error {
	tx, beginErr := s.db.BeginTx(ctx, nil)
	if beginErr != nil {
		return beginErr
	}
	for _, document := range documents {
		if len(document.Vector) == 0 {
			_ = tx.Rollback()
			return fmt.Errorf("document for supplier %s has no embedding", document.SupplierID)
		}
		if s.dimensions > 0 && len(document.Vector) != s.dimensions {
			_ = tx.Rollback()
			return fmt.Errorf("document for supplier %s has embedding dimension %d, store expects %d",
				document.SupplierID, len(document.Vector), s.dimensions)
		}
		_, execErr := tx.ExecContext(ctx,
			`INSERT INTO documents (collection, supplier_id, text, embedding) VALUES (?, ?, ?, ?)`,
			collection, document.SupplierID, document.Text, encodeVector(document.Vector))
		if execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert into %s: %w", collection, execErr)
		}
	}
	return tx.Commit()
}

// Search returns up to k snippets ranked by cosine similarity to the query
// vector. Ties keep insertion order. Any dimension disagreement between the
// query and a stored embedding is an error, never a truncated comparison.
func (s *Store) Search(ctx context.Context, collection string, vector []float32, k int) ([]Snippet, error) {
	if k <= 0 {
		return nil, nil
	}
	if s.dimensions > 0 && len(vector) != s.dimensions {
		return nil, fmt.Errorf("query vector has dimension %d, store expects %d", len(vector), s.dimensions)
	}
	rows, queryErr := s.db.QueryContext(ctx,
		`SELECT supplier_id, text, embedding FROM documents WHERE collection = ? ORDER BY id`, collection)
	if queryErr != nil {
		return nil, fmt.Errorf("search %s: %w", collection, queryErr)
	}
	defer func() { _ = rows.Close() }()

	type scored struct {
		snippet Snippet
		score   float64
	}
	var candidates []scored
	for rows.Next() {
		var supplierID, text string
		var blob []byte
		if err := rows.Scan(&supplierID, &text, &blob); err != nil {
			return nil, err
		}
		embedding, decodeErr := decodeVector(blob)
		if decodeErr != nil {
			return nil, fmt.Errorf("decode embedding for %s: %w", supplierID, decodeErr)
		}
		if len(embedding) != len(vector) {
			return nil, fmt.Errorf("embedding for %s has dimension %d, query has %d (was the store seeded with a different embedding model?)",
				supplierID, len(embedding), len(vector))
		}
		candidates = append(candidates, scored{
			snippet: Snippet{Text: text, SupplierID: supplierID},
			score:   cosineSimilarity(vector, embedding),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].score > candidates[j].score })
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	snippets := make([]Snippet, 0, len(candidates))
	for _, candidate := range candidates {
		snippets = append(snippets, candidate.snippet)
	}
	return snippets, nil
}

func (s *Store) Collections(ctx context.Context) ([]CollectionInfo, error) {
	rows, queryErr := s.db.QueryContext(ctx,
		`SELECT collection, COUNT(*) FROM documents GROUP BY collection ORDER BY collection`)
	if queryErr != nil {
		return nil, queryErr
	}
	defer func() { _ = rows.Close() }()

	var infos []CollectionInfo
	for rows.Next() {
		var info CollectionInfo
		if err := rows.Scan(&info.Name, &info.Count); err != nil {
			return nil, err
		}
		infos = append(infos, info)
	}
	return infos, rows.Err()
}

func encodeVector(vector []float32) []byte {
	encoded := make([]byte, 4*len(vector))
	for i, value := range vector {
		binary.LittleEndian.PutUint32(encoded[4*i:], math.Float32bits(value))
	}
	return encoded
}

func decodeVector(blob []byte) ([]float32, error) {
	if len(blob)%4 != 0 {
		return nil, fmt.Errorf("embedding blob length %d is not a multiple of 4", len(blob))
	}
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[4*i:]))
	}
	return vector, nil
}

// cosineSimilarity assumes equal-length vectors; Search enforces that before
// calling.
func cosineSimilarity(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
