// Package taxe fetches the municipal tax regulations catalog. Each tax
// points at a PDF regulation; the text is extracted later by OCR.
package taxe

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/civdoc/civdoc"
)

// DefaultBaseURL is the extranet serving the tax catalog.
const DefaultBaseURL = "https://extranet.marche.be"

var _ civdoc.Connector = (*Connector)(nil)

// Nomenclature is one category of taxes in the catalog.
type Nomenclature struct {
	Taxes []Taxe `json:"taxes"`
}

// Taxe is one tax regulation. Exercices lists the published regulation
// files, most recent first.
type Taxe struct {
	ID        int        `json:"id"`
	Nom       string     `json:"nom"`
	Exercices []Exercice `json:"exercices"`
}

// Exercice is one published regulation file for a tax year.
type Exercice struct {
	URL      string `json:"url"`
	FileName string `json:"fileName"`
}

// Connector yields one document per tax, pointing at the latest
// regulation file.
type Connector struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Connector.
type Option func(*Connector)

// WithBaseURL overrides the catalog root. Useful for tests.
func WithBaseURL(url string) Option {
	return func(c *Connector) { c.baseURL = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Connector) { c.httpClient = hc }
}

// WithLogger sets the logger for fetch failures and skipped records.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Connector) { c.logger = logger }
}

// NewConnector creates a tax catalog connector.
func NewConnector(opts ...Option) *Connector {
	c := &Connector{
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the connector in logs and stats.
func (c *Connector) Name() string { return "taxe" }

// Fetch returns one document per tax across all nomenclatures. A tax
// without any published exercice is skipped with a warning. Content
// stays blank until OCR extraction runs.
func (c *Connector) Fetch(ctx context.Context) []*civdoc.Document {
	nomenclatures, err := c.nomenclatures(ctx)
	if err != nil {
		c.logger.Warn("failed to fetch tax catalog", "err", err)
		return nil
	}

	var docs []*civdoc.Document
	for _, nomenclature := range nomenclatures {
		for _, taxe := range nomenclature.Taxes {
			if len(taxe.Exercices) == 0 {
				c.logger.Warn("tax has no published regulation, skipping", "id", taxe.ID, "nom", taxe.Nom)
				continue
			}
			latest := taxe.Exercices[0]
			docs = append(docs, &civdoc.Document{
				URL:         latest.URL,
				Title:       taxe.Nom,
				SiteName:    "taxe",
				TypeOf:      civdoc.TypeTaxe,
				Content:     " ",
				FileName:    latest.FileName,
				ReferenceID: civdoc.ReferenceID(strconv.Itoa(taxe.ID), civdoc.TypeTaxe, ""),
			})
		}
	}
	return docs
}

func (c *Connector) nomenclatures(ctx context.Context) ([]Nomenclature, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/taxes/api2", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for tax catalog", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var nomenclatures []Nomenclature
	if err := json.Unmarshal(body, &nomenclatures); err != nil {
		return nil, err
	}
	return nomenclatures, nil
}
