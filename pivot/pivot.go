// Package pivot fetches tourism events from the Pivot feed exposed by
// the regional WordPress instance and turns each event into a document.
package pivot

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/civdoc/civdoc"
)

// DefaultBaseURL is the root of the WordPress instance exposing the feed.
const DefaultBaseURL = "https://marchenew.marche.be"

// eventURLFormat is the public event page, keyed by the Pivot CGT code.
const eventURLFormat = "https://marche.local/tourisme/agenda-des-manifestations/manifestation/%s"

var _ civdoc.Connector = (*Connector)(nil)

// Event is one Pivot event record.
type Event struct {
	CodeCgt       string         `json:"codeCgt"`
	Nom           string         `json:"nom"`
	Dates         []EventDate    `json:"dates"`
	Adresse1      *Address       `json:"adresse1"`
	Latitude      string         `json:"latitude"`
	Longitude     string         `json:"longitude"`
	Communication *Communication `json:"communication"`
}

// EventDate is one occurrence window of an event.
type EventDate struct {
	DateBegin        *PivotDate `json:"dateBegin"`
	DateEnd          *PivotDate `json:"dateEnd"`
	DateRange        string     `json:"dateRange"`
	OuvertureDetails string     `json:"ouvertureDetails"`
}

// PivotDate wraps the serialized date string the feed nests under each
// date boundary.
type PivotDate struct {
	Date string `json:"date"`
}

// Address is the primary address of an event.
type Address struct {
	Rue      string     `json:"rue"`
	Numero   string     `json:"numero"`
	CP       string     `json:"cp"`
	Localite []Localite `json:"localite"`
}

// Localite is one locality label of an address.
type Localite struct {
	Value string `json:"value"`
}

// Communication holds the contact channels of an event.
type Communication struct {
	Mail1     string `json:"mail1"`
	Mail2     string `json:"mail2"`
	Phone1    string `json:"phone1"`
	Phone2    string `json:"phone2"`
	Mobile1   string `json:"mobile1"`
	Mobile2   string `json:"mobile2"`
	Website   string `json:"website"`
	Facebook  string `json:"facebook"`
	Pinterest string `json:"pinterest"`
	Youtube   string `json:"youtube"`
	Flickr    string `json:"flickr"`
	Instagram string `json:"instagram"`
}

// Connector yields one document per event in the Pivot feed.
type Connector struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Connector.
type Option func(*Connector)

// WithBaseURL overrides the feed root. Useful for tests.
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

// NewConnector creates a Pivot event connector.
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
func (c *Connector) Name() string { return "pivot" }

// Fetch returns one document per event. Any failure against the feed is
// logged and yields an empty slice.
func (c *Connector) Fetch(ctx context.Context) []*civdoc.Document {
	events, err := c.events(ctx)
	if err != nil {
		c.logger.Warn("failed to fetch events", "err", err)
		return nil
	}

	docs := make([]*civdoc.Document, 0, len(events))
	for _, event := range events {
		docs = append(docs, &civdoc.Document{
			URL:         fmt.Sprintf(eventURLFormat, event.CodeCgt),
			Title:       event.Nom,
			SiteName:    "event",
			TypeOf:      civdoc.TypeEvent,
			Content:     eventContent(event),
			ReferenceID: civdoc.ReferenceID(event.CodeCgt, civdoc.TypeEvent, ""),
		})
	}
	return docs
}

func (c *Connector) events(ctx context.Context) ([]Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/wp-json/pivot/events", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d for pivot events", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Events []Event `json:"events"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}
	return payload.Events, nil
}

// eventContent flattens an event into labeled "field: value" parts
// joined by spaces, skipping empty fields.
func eventContent(event Event) string {
	var parts []string
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, label+": "+value)
		}
	}

	add("nom", event.Nom)
	add("code", event.CodeCgt)

	for _, date := range event.Dates {
		var dateParts []string
		if date.DateBegin != nil && date.DateBegin.Date != "" {
			dateParts = append(dateParts, "début: "+date.DateBegin.Date)
		}
		if date.DateEnd != nil && date.DateEnd.Date != "" {
			dateParts = append(dateParts, "fin: "+date.DateEnd.Date)
		}
		if date.DateRange != "" {
			dateParts = append(dateParts, "période: "+date.DateRange)
		}
		if date.OuvertureDetails != "" {
			dateParts = append(dateParts, "horaires: "+date.OuvertureDetails)
		}
		if len(dateParts) > 0 {
			parts = append(parts, strings.Join(dateParts, " "))
		}
	}

	if event.Adresse1 != nil {
		var addressParts []string
		if event.Adresse1.Rue != "" {
			addressParts = append(addressParts, "rue: "+event.Adresse1.Rue)
		}
		if event.Adresse1.Numero != "" {
			addressParts = append(addressParts, "numéro: "+event.Adresse1.Numero)
		}
		if event.Adresse1.CP != "" {
			addressParts = append(addressParts, "code postal: "+event.Adresse1.CP)
		}
		// Only the first locality contributes.
		for _, loc := range event.Adresse1.Localite {
			if loc.Value != "" {
				addressParts = append(addressParts, "localité: "+loc.Value)
				break
			}
		}
		if len(addressParts) > 0 {
			parts = append(parts, strings.Join(addressParts, " "))
		}
	}

	add("latitude", event.Latitude)
	add("longitude", event.Longitude)

	if comm := event.Communication; comm != nil {
		add("email", comm.Mail1)
		add("email2", comm.Mail2)
		add("téléphone", comm.Phone1)
		add("téléphone2", comm.Phone2)
		add("mobile", comm.Mobile1)
		add("mobile2", comm.Mobile2)
		add("site web", comm.Website)
		add("facebook", comm.Facebook)
		add("pinterest", comm.Pinterest)
		add("youtube", comm.Youtube)
		add("flickr", comm.Flickr)
		add("instagram", comm.Instagram)
	}

	return strings.Join(parts, " ")
}
