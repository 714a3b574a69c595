package wordpress

import (
	"context"
	"io"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/civdoc/civdoc"
)

// Compile-time interface verification.
var (
	_ civdoc.Connector = (*PostConnector)(nil)
	_ civdoc.Connector = (*AttachmentConnector)(nil)
)

var whitespaceRE = regexp.MustCompile(`\s+`)

// normalizeText strips HTML tags from rendered content and collapses
// runs of whitespace to single spaces.
func normalizeText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return strings.TrimSpace(whitespaceRE.ReplaceAllString(html, " "))
	}
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(doc.Text(), " "))
}

// PostConnector yields one document per post across every registered
// site. Category names are appended to the content as tags so they
// contribute to the embedding.
type PostConnector struct {
	client *Client
	sites  civdoc.SiteRegistry
	logger *slog.Logger
}

// NewPostConnector creates a PostConnector over the registered sites.
func NewPostConnector(client *Client, sites civdoc.SiteRegistry, logger *slog.Logger) *PostConnector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &PostConnector{client: client, sites: sites, logger: logger}
}

// Name identifies the connector in logs and stats.
func (c *PostConnector) Name() string { return "wordpress-posts" }

// Fetch returns documents for all posts of all sites. A site that fails
// to list contributes the pages fetched before the failure.
func (c *PostConnector) Fetch(ctx context.Context) []*civdoc.Document {
	var docs []*civdoc.Document
	for _, siteName := range c.sites.Names() {
		posts, err := c.client.Posts(ctx, siteName)
		if err != nil {
			c.logger.Warn("failed to list posts", "site", siteName, "err", err)
		}
		for _, post := range posts {
			content := normalizeText(post.Content.Rendered)

			categories, err := c.client.Categories(ctx, siteName, post.ID)
			if err != nil {
				c.logger.Warn("failed to list categories", "site", siteName, "post", post.ID, "err", err)
			}
			if len(categories) > 0 {
				var sb strings.Builder
				sb.WriteString(content)
				sb.WriteString(" TAGS:")
				for _, category := range categories {
					sb.WriteString(" ")
					sb.WriteString(category.Name)
				}
				content = sb.String()
			}

			docs = append(docs, &civdoc.Document{
				URL:         post.Link,
				Title:       normalizeText(post.Title.Rendered),
				SiteName:    siteName,
				TypeOf:      civdoc.TypePost,
				Content:     content,
				ReferenceID: civdoc.ReferenceID(strconv.Itoa(post.ID), civdoc.TypePost, siteName),
			})
		}
	}
	return docs
}

// AttachmentConnector yields one document per application-type media
// record (PDFs mostly). Content stays blank until OCR extraction runs;
// SourceURL locates the file on disk for the OCR pass.
type AttachmentConnector struct {
	client *Client
	sites  civdoc.SiteRegistry
	logger *slog.Logger
}

// NewAttachmentConnector creates an AttachmentConnector over the
// registered sites.
func NewAttachmentConnector(client *Client, sites civdoc.SiteRegistry, logger *slog.Logger) *AttachmentConnector {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &AttachmentConnector{client: client, sites: sites, logger: logger}
}

// Name identifies the connector in logs and stats.
func (c *AttachmentConnector) Name() string { return "wordpress-attachments" }

// Fetch returns documents for all attachments of all sites.
func (c *AttachmentConnector) Fetch(ctx context.Context) []*civdoc.Document {
	var docs []*civdoc.Document
	for _, siteName := range c.sites.Names() {
		attachments, err := c.client.Attachments(ctx, siteName)
		if err != nil {
			c.logger.Warn("failed to list attachments", "site", siteName, "err", err)
		}
		for _, att := range attachments {
			docs = append(docs, &civdoc.Document{
				URL:         att.Link,
				Title:       normalizeText(att.Title.Rendered),
				SiteName:    siteName,
				TypeOf:      civdoc.TypeAttachment,
				Content:     " ",
				SourceURL:   att.SourceURL,
				ReferenceID: civdoc.ReferenceID(strconv.Itoa(att.ID), civdoc.TypeAttachment, siteName),
			})
		}
	}
	return docs
}
