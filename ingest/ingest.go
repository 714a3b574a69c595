// Package ingest drives the crawl pipeline: fetch documents from the
// configured connectors, deduplicate them by reference ID, embed the
// new ones and store them in batches.
package ingest

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/civdoc/civdoc"
	"github.com/civdoc/civdoc/bloom"
)

// DefaultBatchSize is the number of documents stored per write.
const DefaultBatchSize = 30

// ocrThreshold is the content length below which an attachment or tax
// document is considered textless and its OCR artifact is consulted.
const ocrThreshold = 100

// TextExtractor resolves documents onto their PDF files and returns the
// text extracted from them in a previous OCR pass.
type TextExtractor interface {
	ResolvePath(doc *civdoc.Document) (string, error)
	ReadArtifact(filePath string) (string, error)
}

// Stats summarizes one pipeline run.
type Stats struct {
	Fetched       int // documents yielded by connectors
	Duplicates    int // skipped, already stored
	MissingText   int // skipped, no usable text
	EmbedFailures int // skipped, embedding failed
	Stored        int // written to the database
}

// Importer runs the ingestion pipeline over a set of connectors.
//
// Each run holds a Bloom filter of the reference IDs seen so far, so a
// document yielded twice in one run is skipped without a database
// query. The database check still runs on filter misses; the filter
// only knows about the current run.
type Importer struct {
	Connectors []civdoc.Connector
	Embedder   civdoc.Embedder
	Documents  civdoc.DocumentService

	// Extractor supplies OCR text for attachments and taxes. Without
	// it, textless file documents are skipped.
	Extractor TextExtractor

	// BatchSize is the number of documents per write. Defaults to
	// DefaultBatchSize.
	BatchSize int

	Logger *slog.Logger
}

// Run executes the pipeline and returns its stats. A failed batch write
// is retried once; a second failure aborts the run.
func (imp *Importer) Run(ctx context.Context) (*Stats, error) {
	logger := imp.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	batchSize := imp.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	stats := &Stats{}
	seen := bloom.NewFilter(100000, 0.001)
	var batch []*civdoc.Document

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := imp.Documents.CreateDocuments(ctx, batch); err != nil {
			logger.Warn("batch write failed, retrying", "size", len(batch), "err", err)
			if err := imp.Documents.CreateDocuments(ctx, batch); err != nil {
				return fmt.Errorf("store batch of %d documents: %w", len(batch), err)
			}
		}
		stats.Stored += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, connector := range imp.Connectors {
		docs := connector.Fetch(ctx)
		stats.Fetched += len(docs)
		logger.Info("fetched documents", "connector", connector.Name(), "count", len(docs))

		for _, doc := range docs {
			if seen.Test(doc.ReferenceID) {
				stats.Duplicates++
				continue
			}
			if _, err := imp.Documents.FindDocumentByReferenceID(ctx, doc.ReferenceID); err == nil {
				seen.Add(doc.ReferenceID)
				stats.Duplicates++
				continue
			} else if civdoc.ErrorCode(err) != civdoc.ENOTFOUND {
				return stats, err
			}

			if !imp.ensureText(doc, logger) {
				stats.MissingText++
				continue
			}

			vector, err := imp.Embedder.Embed(ctx, embedInput(doc))
			if err != nil {
				logger.Warn("skipping document, embedding failed", "title", doc.Title, "err", err)
				stats.EmbedFailures++
				continue
			}
			doc.SetEmbedding(vector)

			seen.Add(doc.ReferenceID)
			batch = append(batch, doc)
			if len(batch) >= batchSize {
				if err := flush(); err != nil {
					return stats, err
				}
			}
		}
	}

	if err := flush(); err != nil {
		return stats, err
	}
	return stats, nil
}

// ensureText fills in OCR text for file-backed documents that carry no
// usable content of their own. It reports whether the document has text
// worth embedding.
func (imp *Importer) ensureText(doc *civdoc.Document, logger *slog.Logger) bool {
	if doc.TypeOf != civdoc.TypeAttachment && doc.TypeOf != civdoc.TypeTaxe {
		return true
	}
	if len(doc.Content) > ocrThreshold {
		return true
	}
	if imp.Extractor == nil {
		logger.Warn("skipping file document, no OCR extractor", "title", doc.Title)
		return false
	}

	filePath, err := imp.Extractor.ResolvePath(doc)
	if err != nil {
		logger.Warn("skipping file document, unresolvable path", "title", doc.Title, "err", err)
		return false
	}
	text, err := imp.Extractor.ReadArtifact(filePath)
	if err != nil {
		logger.Warn("skipping file document, no OCR text", "title", doc.Title, "file", filePath, "err", err)
		return false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		logger.Warn("skipping file document, empty OCR text", "title", doc.Title, "file", filePath)
		return false
	}

	doc.Content = text
	return true
}

// embedInput is the text submitted for embedding: title, type and
// content in one line so the vector carries all three signals.
func embedInput(doc *civdoc.Document) string {
	return doc.Title + " " + doc.TypeOf + " " + doc.Content
}
