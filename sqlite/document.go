package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/civdoc/civdoc"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ civdoc.DocumentService = (*DocumentService)(nil)

// DocumentService implements civdoc.DocumentService using SQLite.
type DocumentService struct {
	db *DB
}

// NewDocumentService creates a new DocumentService.
func NewDocumentService(db *DB) *DocumentService {
	return &DocumentService{db: db}
}

const documentColumns = "id, url, title, site_name, type_of, content, reference_id, file_name, source_url, embedding, tokens, created_at"

// CreateDocuments inserts a batch of documents in one transaction. Each
// document gets a generated ID and creation timestamp. A duplicate
// reference ID anywhere in the batch fails the whole batch with ECONFLICT.
func (s *DocumentService) CreateDocuments(ctx context.Context, docs []*civdoc.Document) error {
	if len(docs) == 0 {
		return nil
	}

	for _, doc := range docs {
		if err := doc.Validate(); err != nil {
			return err
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, doc := range docs {
		doc.ID = uuid.New().String()
		doc.CreatedAt = time.Now().UTC()

		embedding, err := marshalEmbedding(doc.Embedding)
		if err != nil {
			return err
		}

		if _, err := tx.ExecContext(ctx, `
			INSERT INTO documents (`+documentColumns+`)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, doc.ID, doc.URL, doc.Title, doc.SiteName, doc.TypeOf, doc.Content, doc.ReferenceID,
			doc.FileName, doc.SourceURL, embedding, doc.Tokens,
			doc.CreatedAt.Format(time.RFC3339)); err != nil {
			return civdoc.Errorf(civdoc.ECONFLICT, "insert document %q: %s", doc.ReferenceID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit documents: %w", err)
	}

	return nil
}

// FindDocumentByReferenceID retrieves a document by its dedup key.
func (s *DocumentService) FindDocumentByReferenceID(ctx context.Context, referenceID string) (*civdoc.Document, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE reference_id = ?
	`, referenceID)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, civdoc.Errorf(civdoc.ENOTFOUND, "document %q not found", referenceID)
	}
	if err != nil {
		return nil, err
	}

	return doc, nil
}

// FindNearest returns up to k documents with non-empty content, ordered by
// ascending cosine distance to the query vector. Documents without an
// embedding are excluded.
func (s *DocumentService) FindNearest(ctx context.Context, vector []float32, k int) ([]*civdoc.Document, error) {
	if len(vector) == 0 {
		return nil, civdoc.Errorf(civdoc.EINVALID, "query vector required")
	}
	if k <= 0 {
		k = 5
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE content != '' AND embedding != ''
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	type scored struct {
		doc      *civdoc.Document
		distance float64
	}

	var candidates []scored
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		if len(doc.Embedding) != len(vector) {
			continue
		}
		candidates = append(candidates, scored{doc: doc, distance: cosineDistance(vector, doc.Embedding)})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})

	if k > len(candidates) {
		k = len(candidates)
	}
	docs := make([]*civdoc.Document, 0, k)
	for _, c := range candidates[:k] {
		docs = append(docs, c.doc)
	}

	return docs, nil
}

// FindDocumentsByType returns all documents of a type, ordered by title.
func (s *DocumentService) FindDocumentsByType(ctx context.Context, typeOf string) ([]*civdoc.Document, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE type_of = ?
		ORDER BY title ASC
	`, typeOf)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*civdoc.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}

	return docs, rows.Err()
}

// DeleteAllDocuments removes every document.
func (s *DocumentService) DeleteAllDocuments(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM documents")
	return err
}

// scanner abstracts *sql.Row and *sql.Rows for scanDocument.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(row scanner) (*civdoc.Document, error) {
	var doc civdoc.Document
	var embedding, createdAt string

	if err := row.Scan(&doc.ID, &doc.URL, &doc.Title, &doc.SiteName, &doc.TypeOf, &doc.Content,
		&doc.ReferenceID, &doc.FileName, &doc.SourceURL, &embedding, &doc.Tokens, &createdAt); err != nil {
		return nil, err
	}

	if embedding != "" {
		if err := json.Unmarshal([]byte(embedding), &doc.Embedding); err != nil {
			return nil, fmt.Errorf("failed to parse embedding: %w", err)
		}
	}

	var err error
	doc.CreatedAt, err = parseRFC3339(createdAt, "created_at")
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

// marshalEmbedding encodes an embedding as a JSON array string.
// An empty vector encodes as the empty string so the non-empty filter in
// FindNearest can exclude unembedded rows cheaply.
func marshalEmbedding(vec []float32) (string, error) {
	if len(vec) == 0 {
		return "", nil
	}
	b, err := json.Marshal(vec)
	if err != nil {
		return "", fmt.Errorf("failed to encode embedding: %w", err)
	}
	return string(b), nil
}

// cosineDistance returns 1 - cosine similarity. Zero-magnitude vectors map
// to the maximum distance.
func cosineDistance(a, b []float32) float64 {
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA <= 0 || normB <= 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
