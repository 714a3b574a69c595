package main

import (
	"context"
	"io"
	"log/slog"

	"github.com/civdoc/civdoc"
	"github.com/civdoc/civdoc/ingest"
	"github.com/civdoc/civdoc/sqlite"
)

// OCRService is the part of the OCR package the ocr command drives.
type OCRService interface {
	ResolvePath(doc *civdoc.Document) (string, error)
	Extract(ctx context.Context, filePath string) error
	HasFile(filePath string) bool
	HasArtifact(filePath string) bool
}

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	Logger *slog.Logger
	DB     *sqlite.DB

	Documents   civdoc.DocumentService
	Discussions civdoc.DiscussionService
	Messages    civdoc.MessageService
	Embedder    civdoc.Embedder
	Answerer    civdoc.Answerer
	Titler      civdoc.Titler

	// Importer is wired for the crawl command with the connectors the
	// flags selected.
	Importer *ingest.Importer

	// Files yields the file-backed documents the ocr command operates
	// on; OCR drives the extraction toolchain.
	Files civdoc.Connector
	OCR   OCRService
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Crawl  CrawlCmd  `cmd:"" help:"Fetch municipal content, embed it and store it"`
	Ocr    OcrCmd    `cmd:"" help:"Extract text from PDF files"`
	Db     DbCmd     `cmd:"" help:"Manage the database"`
	Chat   ChatCmd   `cmd:"" help:"Chat with the municipal assistant"`
	Search SearchCmd `cmd:"" help:"Search stored documents"`
}

// CrawlCmd is the "crawl" subcommand. Each flag enables one source;
// without flags nothing is crawled.
type CrawlCmd struct {
	Post       bool `help:"Index WordPress posts"`
	Bottin     bool `help:"Index the business directory"`
	Event      bool `help:"Index tourism events"`
	Attachment bool `help:"Index WordPress attachments"`
	Taxe       bool `help:"Index tax regulations"`
}

// OcrCmd is the "ocr" subcommand.
type OcrCmd struct {
	Type    string `arg:"" enum:"attachment,taxe" help:"The type of document (attachment or taxe)"`
	Extract bool   `help:"Extract text from PDF files"`
	Check   bool   `help:"Check OCR output exists"`
}

// DbCmd is the "db" subcommand.
type DbCmd struct {
	Reset    bool `help:"Remove discussions and messages"`
	WithDocs bool `name:"with-docs" help:"Also remove documents"`
}

// ChatCmd is the "chat" subcommand.
type ChatCmd struct {
	Question   string `arg:"" help:"Question for the assistant"`
	Discussion string `short:"d" help:"Discussion ID to continue; omit to start a new one"`
}

// SearchCmd is the "search" subcommand.
type SearchCmd struct {
	Query string `arg:"" help:"The search query"`
}
