package bottin_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/civdoc/civdoc"
	"github.com/civdoc/civdoc/bottin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnector_Fetch(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/bottin/fichesandroid", r.URL.Path)
		fmt.Fprint(w, `[
			{
				"id": 311,
				"slug": "boulangerie-dupont",
				"societe": "Boulangerie Dupont",
				"nom": "Dupont",
				"prenom": "Marie",
				"email": "info@dupont.be",
				"telephone": "084 31 00 00",
				"website": "https://dupont.be",
				"comment1": "Pain artisanal",
				"classements": [
					{"name": "Alimentation", "description": "Commerces de bouche"}
				]
			},
			{
				"id": 312,
				"slug": "garage-henin",
				"societe": "Garage Henin",
				"classements": []
			}
		]`)
	}))
	t.Cleanup(srv.Close)

	connector := bottin.NewConnector(bottin.WithBaseURL(srv.URL))

	assert.Equal(t, "bottin", connector.Name())

	docs := connector.Fetch(context.Background())
	require.Len(t, docs, 2)

	first := docs[0]
	assert.Equal(t, "https://bottin.marche.be/fiche/boulangerie-dupont", first.URL)
	assert.Equal(t, "Boulangerie Dupont", first.Title)
	assert.Equal(t, "bottin", first.SiteName)
	assert.Equal(t, civdoc.TypeSociete, first.TypeOf)
	assert.Equal(t, "311-fiche", first.ReferenceID)
	assert.Equal(t,
		"société: Boulangerie Dupont nom: Dupont prénom: Marie email: info@dupont.be "+
			"téléphone: 084 31 00 00 site web: https://dupont.be description: Pain artisanal "+
			"TAGS: Alimentation Commerces de bouche",
		first.Content)

	second := docs[1]
	assert.Equal(t, "société: Garage Henin", second.Content, "no tag suffix without classements")
	assert.Equal(t, "312-fiche", second.ReferenceID)
}

func TestConnector_Fetch_FailuresYieldNothing(t *testing.T) {
	t.Parallel()

	t.Run("server error", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "down", http.StatusBadGateway)
		}))
		t.Cleanup(srv.Close)

		connector := bottin.NewConnector(bottin.WithBaseURL(srv.URL))
		assert.Empty(t, connector.Fetch(context.Background()))
	})

	t.Run("malformed payload", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, `{"not": "a list"}`)
		}))
		t.Cleanup(srv.Close)

		connector := bottin.NewConnector(bottin.WithBaseURL(srv.URL))
		assert.Empty(t, connector.Fetch(context.Background()))
	})

	t.Run("unreachable server", func(t *testing.T) {
		t.Parallel()

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		srv.Close()

		connector := bottin.NewConnector(bottin.WithBaseURL(srv.URL))
		assert.Empty(t, connector.Fetch(context.Background()))
	})
}
