package main_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/civdoc/civdoc"
	main "github.com/civdoc/civdoc/cmd/civdoc"
	"github.com/civdoc/civdoc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints the nearest documents", func(t *testing.T) {
		t.Parallel()

		embedder := &mock.Embedder{
			EmbedFn: func(_ context.Context, text string) ([]float32, error) {
				require.Equal(t, "piscine", text)
				return make([]float32, civdoc.EmbedDims), nil
			},
		}

		documents := &mock.DocumentService{
			FindNearestFn: func(_ context.Context, vector []float32, k int) ([]*civdoc.Document, error) {
				require.Equal(t, 5, k)
				return []*civdoc.Document{
					{Title: "Horaires piscine", URL: "https://www.marche.be/sport/piscine"},
					{Title: "Tarifs piscine", URL: "https://www.marche.be/sport/tarifs"},
				}, nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:       context.Background(),
			Stdout:    stdout,
			Stderr:    &bytes.Buffer{},
			Embedder:  embedder,
			Documents: documents,
		}

		cmd := &main.SearchCmd{Query: "piscine"}
		err := cmd.Run(deps)

		require.NoError(t, err)
		output := stdout.String()
		assert.Contains(t, output, "Found 2 documents.")
		assert.Contains(t, output, "Horaires piscine  https://www.marche.be/sport/piscine")
		assert.Contains(t, output, "Tarifs piscine  https://www.marche.be/sport/tarifs")
	})

	t.Run("propagates embedding failure", func(t *testing.T) {
		t.Parallel()

		embedder := &mock.Embedder{
			EmbedFn: func(_ context.Context, text string) ([]float32, error) {
				return nil, civdoc.Errorf(civdoc.EUNAVAILABLE, "API unreachable")
			},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:      context.Background(),
			Stdout:   &bytes.Buffer{},
			Stderr:   stderr,
			Embedder: embedder,
		}

		cmd := &main.SearchCmd{Query: "piscine"}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Contains(t, stderr.String(), "API unreachable")
	})
}
