package wordpress_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/civdoc/civdoc"
	"github.com/civdoc/civdoc/wordpress"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRegistry holds the main site and one themed subsite.
var testRegistry = civdoc.SiteRegistry{
	{ID: 1, Name: "citoyen"},
	{ID: 5, Name: "sport"},
}

func TestPostConnector_Fetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		switch r.URL.Path {
		case "/wp-json/wp/v2/posts":
			// Main site: one page of posts, then an empty page.
			if page == "1" {
				fmt.Fprint(w, `[
					{"id": 10, "link": "https://www.marche.be/agenda", "title": {"rendered": "F&ecirc;te locale"}, "content": {"rendered": "<p>Venez  nombreux</p>\n<p>le 21 juillet</p>"}}
				]`)
				return
			}
			fmt.Fprint(w, `[]`)
		case "/sport/wp-json/wp/v2/posts":
			if page == "1" {
				fmt.Fprint(w, `[{"id": 7, "link": "https://www.marche.be/sport/piscine", "title": {"rendered": "Piscine"}, "content": {"rendered": "<p>Horaires</p>"}}]`)
				return
			}
			fmt.Fprint(w, `[]`)
		case "/wp-json/wp/v2/categories":
			fmt.Fprint(w, `[{"id": 3, "name": "Festivités"}, {"id": 4, "name": "Culture"}]`)
		case "/sport/wp-json/wp/v2/categories":
			fmt.Fprint(w, `[]`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	client := wordpress.NewClient(wordpress.WithBaseURL(srv.URL), wordpress.WithRPS(1000))
	connector := wordpress.NewPostConnector(client, testRegistry, nil)

	assert.Equal(t, "wordpress-posts", connector.Name())

	docs := connector.Fetch(context.Background())
	require.Len(t, docs, 2)

	main := docs[0]
	assert.Equal(t, "https://www.marche.be/agenda", main.URL)
	assert.Equal(t, "Fête locale", main.Title)
	assert.Equal(t, "citoyen", main.SiteName)
	assert.Equal(t, civdoc.TypePost, main.TypeOf)
	assert.Equal(t, "Venez nombreux le 21 juillet TAGS: Festivités Culture", main.Content)
	assert.Equal(t, "10-post-citoyen", main.ReferenceID)

	sport := docs[1]
	assert.Equal(t, "Horaires", sport.Content, "no tag suffix without categories")
	assert.Equal(t, "7-post-sport", sport.ReferenceID)
}

func TestPostConnector_Fetch_SiteFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/wp-json/wp/v2/posts":
			http.Error(w, "maintenance", http.StatusServiceUnavailable)
		case "/sport/wp-json/wp/v2/posts":
			if r.URL.Query().Get("page") == "1" {
				fmt.Fprint(w, `[{"id": 7, "link": "https://www.marche.be/sport/piscine", "title": {"rendered": "Piscine"}, "content": {"rendered": "Horaires"}}]`)
				return
			}
			fmt.Fprint(w, `[]`)
		case "/sport/wp-json/wp/v2/categories":
			fmt.Fprint(w, `[]`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	client := wordpress.NewClient(wordpress.WithBaseURL(srv.URL), wordpress.WithRPS(1000))
	connector := wordpress.NewPostConnector(client, testRegistry, nil)

	docs := connector.Fetch(context.Background())
	require.Len(t, docs, 1)
	assert.Equal(t, "7-post-sport", docs[0].ReferenceID)
}

func TestAttachmentConnector_Fetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "application", r.URL.Query().Get("media_type"))
		switch r.URL.Path {
		case "/wp-json/wp/v2/media":
			if r.URL.Query().Get("page") == "1" {
				fmt.Fprint(w, `[{"id": 42, "link": "https://www.marche.be/reglement", "source_url": "https://www.marche.be/wp-content/uploads/2024/01/reglement.pdf", "title": {"rendered": "R&egrave;glement communal"}}]`)
				return
			}
			fmt.Fprint(w, `[]`)
		case "/sport/wp-json/wp/v2/media":
			fmt.Fprint(w, `[]`)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)

	client := wordpress.NewClient(wordpress.WithBaseURL(srv.URL), wordpress.WithRPS(1000))
	connector := wordpress.NewAttachmentConnector(client, testRegistry, nil)

	assert.Equal(t, "wordpress-attachments", connector.Name())

	docs := connector.Fetch(context.Background())
	require.Len(t, docs, 1)

	att := docs[0]
	assert.Equal(t, "Règlement communal", att.Title)
	assert.Equal(t, civdoc.TypeAttachment, att.TypeOf)
	assert.Equal(t, " ", att.Content)
	assert.Equal(t, "https://www.marche.be/wp-content/uploads/2024/01/reglement.pdf", att.SourceURL)
	assert.Equal(t, "42-attachment-citoyen", att.ReferenceID)
}
