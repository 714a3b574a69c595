package civdoc

import (
	"context"
	"time"
)

// Document type constants. TypeOf classifies the source a document came from.
const (
	TypePost       = "post"
	TypeAttachment = "attachment"
	TypeSociete    = "societe"
	TypeEvent      = "event"
	TypeTaxe       = "taxe"
)

// EmbedDims is the dimensionality of document embedding vectors, fixed by
// the embedding model (text-embedding-3-small).
const EmbedDims = 1536

// Document is the canonical ingested content unit. Connectors create
// documents from raw source records; the pipeline assigns the embedding
// exactly once before the document is persisted.
type Document struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	SiteName    string    `json:"siteName"`
	TypeOf      string    `json:"typeOf"`
	Content     string    `json:"content"`
	ReferenceID string    `json:"referenceId"`
	FileName    string    `json:"fileName,omitempty"`
	SourceURL   string    `json:"sourceUrl,omitempty"`
	Embedding   []float32 `json:"embedding,omitempty"`
	Tokens      int       `json:"tokens"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Validate returns an error if the document contains invalid fields.
func (d *Document) Validate() error {
	if d.URL == "" {
		return Errorf(EINVALID, "document URL required")
	}
	if d.Title == "" {
		return Errorf(EINVALID, "document title required")
	}
	if d.TypeOf == "" {
		return Errorf(EINVALID, "document type required")
	}
	if d.ReferenceID == "" {
		return Errorf(EINVALID, "document reference ID required")
	}
	return nil
}

// SetEmbedding attaches the embedding vector and derives the token count
// from its dimensionality. The count is a proxy, not a true token count.
func (d *Document) SetEmbedding(vec []float32) {
	d.Embedding = vec
	d.Tokens = len(vec)
}

// ReferenceID builds the stable dedup key for a source record. The same
// source record must always produce the same key, byte for byte. The site
// qualifier is appended only for site-scoped sources (posts, attachments).
func ReferenceID(sourceID, kind, site string) string {
	id := sourceID + "-" + kind
	if site == "" {
		return id
	}
	return id + "-" + site
}

// DocumentService manages persisted documents and answers similarity queries.
type DocumentService interface {
	// CreateDocuments inserts a batch of documents in one transaction.
	CreateDocuments(ctx context.Context, docs []*Document) error

	// FindDocumentByReferenceID retrieves a document by its dedup key.
	// Returns ENOTFOUND if no document has the key. Must be an indexed
	// point lookup; the pipeline calls it once per candidate document.
	FindDocumentByReferenceID(ctx context.Context, referenceID string) (*Document, error)

	// FindNearest returns up to k documents with non-empty content,
	// ordered by ascending cosine distance to the query vector.
	FindNearest(ctx context.Context, vector []float32, k int) ([]*Document, error)

	// FindDocumentsByType returns all documents of a type, ordered by title.
	FindDocumentsByType(ctx context.Context, typeOf string) ([]*Document, error)

	// DeleteAllDocuments removes every document.
	DeleteAllDocuments(ctx context.Context) error
}

// Connector fetches records from one external source and maps them into
// documents. Network failures are non-fatal: implementations log and return
// an empty slice rather than an error, so one failing source never aborts
// an ingestion run.
type Connector interface {
	// Name identifies the source for logging.
	Name() string

	// Fetch retrieves and normalizes all records from the source.
	Fetch(ctx context.Context) []*Document
}
