// Package bottin fetches the municipal business directory (the "bottin")
// from its public API and turns each fiche into a document.
package bottin

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/civdoc/civdoc"
)

// DefaultBaseURL is the directory API root.
const DefaultBaseURL = "https://api.marche.be"

// ficheURLFormat is the public page of a fiche, keyed by its slug.
const ficheURLFormat = "https://bottin.marche.be/fiche/%s"

var _ civdoc.Connector = (*Connector)(nil)

// Fiche is one directory record as served by the fichesandroid endpoint.
type Fiche struct {
	ID                    int          `json:"id"`
	Slug                  string       `json:"slug"`
	Societe               string       `json:"societe"`
	Nom                   string       `json:"nom"`
	Prenom                string       `json:"prenom"`
	Email                 string       `json:"email"`
	ContactEmail          string       `json:"contact_email"`
	Telephone             string       `json:"telephone"`
	TelephoneAutre        string       `json:"telephone_autre"`
	GSM                   string       `json:"gsm"`
	ContactTelephone      string       `json:"contact_telephone"`
	ContactTelephoneAutre string       `json:"contact_telephone_autre"`
	ContactGSM            string       `json:"contact_gsm"`
	Website               string       `json:"website"`
	Facebook              string       `json:"facebook"`
	Twitter               string       `json:"twitter"`
	Comment1              string       `json:"comment1"`
	Comment2              string       `json:"comment2"`
	Comment3              string       `json:"comment3"`
	Classements           []Classement `json:"classements"`
}

// Classement is a directory category assigned to a fiche.
type Classement struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Connector yields one document per fiche in the directory.
type Connector struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Connector.
type Option func(*Connector)

// WithBaseURL overrides the API root. Useful for tests.
func WithBaseURL(url string) Option {
	return func(c *Connector) { c.baseURL = url }
}

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Connector) { c.httpClient = hc }
}

// WithLogger sets the logger for fetch failures.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Connector) { c.logger = logger }
}

// NewConnector creates a directory connector.
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
func (c *Connector) Name() string { return "bottin" }

// Fetch returns one document per fiche. Any failure against the API is
// logged and yields an empty slice.
func (c *Connector) Fetch(ctx context.Context) []*civdoc.Document {
	fiches, err := c.fiches(ctx)
	if err != nil {
		c.logger.Warn("failed to fetch fiches", "err", err)
		return nil
	}

	docs := make([]*civdoc.Document, 0, len(fiches))
	for _, fiche := range fiches {
		docs = append(docs, &civdoc.Document{
			URL:         fmt.Sprintf(ficheURLFormat, fiche.Slug),
			Title:       fiche.Societe,
			SiteName:    "bottin",
			TypeOf:      civdoc.TypeSociete,
			Content:     ficheContent(fiche),
			ReferenceID: civdoc.ReferenceID(strconv.Itoa(fiche.ID), "fiche", ""),
		})
	}
	return docs
}

func (c *Connector) fiches(ctx context.Context) ([]Fiche, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/bottin/fichesandroid", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for fichesandroid", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var fiches []Fiche
	if err := json.Unmarshal(body, &fiches); err != nil {
		return nil, err
	}
	return fiches, nil
}

// ficheContent flattens a fiche into labeled "field: value" parts joined
// by spaces, skipping empty fields, then appends category names and
// descriptions as tags.
func ficheContent(fiche Fiche) string {
	var parts []string
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, label+": "+value)
		}
	}

	add("société", fiche.Societe)
	add("nom", fiche.Nom)
	add("prénom", fiche.Prenom)
	add("email", fiche.Email)
	add("email contact", fiche.ContactEmail)
	add("téléphone", fiche.Telephone)
	add("téléphone autre", fiche.TelephoneAutre)
	add("GSM", fiche.GSM)
	add("téléphone contact", fiche.ContactTelephone)
	add("téléphone contact autre", fiche.ContactTelephoneAutre)
	add("GSM contact", fiche.ContactGSM)
	add("site web", fiche.Website)
	add("facebook", fiche.Facebook)
	add("twitter", fiche.Twitter)
	add("description", fiche.Comment1)
	add("description 2", fiche.Comment2)
	add("description 3", fiche.Comment3)

	content := strings.Join(parts, " ")
	if len(fiche.Classements) > 0 {
		var sb strings.Builder
		sb.WriteString(content)
		sb.WriteString(" TAGS:")
		for _, classement := range fiche.Classements {
			sb.WriteString(" ")
			sb.WriteString(classement.Name)
			sb.WriteString(" ")
			sb.WriteString(classement.Description)
		}
		content = sb.String()
	}
	return content
}
