package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/civdoc/civdoc"
	"github.com/civdoc/civdoc/bottin"
	"github.com/civdoc/civdoc/ingest"
	"github.com/civdoc/civdoc/ocr"
	"github.com/civdoc/civdoc/openai"
	"github.com/civdoc/civdoc/pivot"
	"github.com/civdoc/civdoc/redis"
	civslog "github.com/civdoc/civdoc/slog"
	"github.com/civdoc/civdoc/sqlite"
	"github.com/civdoc/civdoc/taxe"
	"github.com/civdoc/civdoc/wordpress"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	DocumentService   civdoc.DocumentService
	DiscussionService civdoc.DiscussionService
	MessageService    civdoc.MessageService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	// Values from a .env file supplement the environment without
	// overriding it.
	_ = godotenv.Load()

	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: slog.New(slog.NewTextHandler(stderr, nil)),
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("civdoc"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'civdoc --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set CIVDOC_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.DocumentService = sqlite.NewDocumentService(m.DB)
	m.DiscussionService = sqlite.NewDiscussionService(m.DB)
	m.MessageService = sqlite.NewMessageService(m.DB)
	deps.DB = m.DB
	deps.Documents = m.DocumentService
	deps.Discussions = m.DiscussionService
	deps.Messages = m.MessageService

	// Commands that talk to OpenAI share one client, with an optional
	// Redis response cache for embeddings.
	if cmd == "crawl" || cmd == "chat" || cmd == "search" {
		apiKey := os.Getenv("OPENAI_API_KEY")
		if apiKey == "" {
			fmt.Fprintln(stderr, "OPENAI_API_KEY environment variable not set")
			return fmt.Errorf("OPENAI_API_KEY not set")
		}

		opts := []openai.Option{openai.WithLogger(deps.Logger)}
		if addr := os.Getenv("REDIS_ADDR"); addr != "" {
			cache, err := redis.Open(ctx, addr, os.Getenv("REDIS_PASSWORD"), 0)
			if err != nil {
				fmt.Fprintf(stderr, "Hint: Check the Redis server at %s, or unset REDIS_ADDR to run without a cache\n", addr)
				return fmt.Errorf("failed to connect to Redis: %w", err)
			}
			defer cache.Close()
			opts = append(opts, openai.WithCache(cache))
		}
		client := openai.NewClient(apiKey, opts...)

		deps.Embedder = civslog.NewLoggingEmbedder(client, deps.Logger)
		deps.Titler = client
		deps.Answerer = openai.NewAnswerer(client, m.DocumentService, m.MessageService)
	}

	if cmd == "crawl" {
		deps.Importer = &ingest.Importer{
			Connectors: m.selectedConnectors(cli.Crawl, deps.Logger),
			Embedder:   deps.Embedder,
			Documents:  m.DocumentService,
			Extractor:  ocrService(),
			Logger:     deps.Logger,
		}
	}

	if cmd == "ocr" {
		service := ocrService()
		registry := civdoc.DefaultSites()
		switch cli.Ocr.Type {
		case civdoc.TypeAttachment:
			client := wordpress.NewClient(wordpress.WithLogger(deps.Logger))
			deps.Files = wordpress.NewAttachmentConnector(client, registry, deps.Logger)
		case civdoc.TypeTaxe:
			deps.Files = taxe.NewConnector(taxe.WithLogger(deps.Logger))
		}
		deps.OCR = service
	}

	return kongCtx.Run(deps)
}

// selectedConnectors builds the connector list the crawl flags asked
// for, each wrapped with logging.
func (m *Main) selectedConnectors(flags CrawlCmd, logger *slog.Logger) []civdoc.Connector {
	registry := civdoc.DefaultSites()
	client := wordpress.NewClient(wordpress.WithLogger(logger))

	var connectors []civdoc.Connector
	if flags.Post {
		connectors = append(connectors, wordpress.NewPostConnector(client, registry, logger))
	}
	if flags.Bottin {
		connectors = append(connectors, bottin.NewConnector(bottin.WithLogger(logger)))
	}
	if flags.Event {
		connectors = append(connectors, pivot.NewConnector(pivot.WithLogger(logger)))
	}
	if flags.Attachment {
		connectors = append(connectors, wordpress.NewAttachmentConnector(client, registry, logger))
	}
	if flags.Taxe {
		connectors = append(connectors, taxe.NewConnector(taxe.WithLogger(logger)))
	}

	wrapped := make([]civdoc.Connector, 0, len(connectors))
	for _, connector := range connectors {
		wrapped = append(wrapped, civslog.NewLoggingConnector(connector, logger))
	}
	return wrapped
}

// ocrService builds the OCR service from the directory environment
// variables.
func ocrService() *ocr.Service {
	return ocr.NewService(
		os.Getenv("WP_DIRECTORY"),
		os.Getenv("TMP_DIRECTORY"),
		os.Getenv("TAXE_DIRECTORY"),
		civdoc.DefaultSites(),
		nil,
	)
}

func defaultDBPath() string {
	if path := os.Getenv("CIVDOC_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "civdoc.db"
	}
	dir := filepath.Join(home, ".civdoc")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "civdoc.db")
}
