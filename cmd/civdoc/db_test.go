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

func TestDbCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("reset removes all discussions", func(t *testing.T) {
		t.Parallel()

		var deleted []string
		discussions := &mock.DiscussionService{
			FindDiscussionsFn: func(_ context.Context) ([]*civdoc.Discussion, error) {
				return []*civdoc.Discussion{{ID: "disc-1"}, {ID: "disc-2"}}, nil
			},
			DeleteDiscussionFn: func(_ context.Context, id string) error {
				deleted = append(deleted, id)
				return nil
			},
		}

		docsDeleted := false
		documents := &mock.DocumentService{
			DeleteAllDocumentsFn: func(_ context.Context) error {
				docsDeleted = true
				return nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:         context.Background(),
			Stdout:      stdout,
			Stderr:      &bytes.Buffer{},
			Discussions: discussions,
			Documents:   documents,
		}

		cmd := &main.DbCmd{Reset: true}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, []string{"disc-1", "disc-2"}, deleted)
		assert.False(t, docsDeleted, "documents survive without --with-docs")
		assert.Contains(t, stdout.String(), "Removed 2 discussions.")
	})

	t.Run("with-docs also removes documents", func(t *testing.T) {
		t.Parallel()

		discussions := &mock.DiscussionService{
			FindDiscussionsFn:  func(_ context.Context) ([]*civdoc.Discussion, error) { return nil, nil },
			DeleteDiscussionFn: func(_ context.Context, id string) error { return nil },
		}

		docsDeleted := false
		documents := &mock.DocumentService{
			DeleteAllDocumentsFn: func(_ context.Context) error {
				docsDeleted = true
				return nil
			},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:         context.Background(),
			Stdout:      stdout,
			Stderr:      &bytes.Buffer{},
			Discussions: discussions,
			Documents:   documents,
		}

		cmd := &main.DbCmd{Reset: true, WithDocs: true}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.True(t, docsDeleted)
		assert.Contains(t, stdout.String(), "Removed all documents.")
	})

	t.Run("requires the reset flag", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
		}

		cmd := &main.DbCmd{}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, civdoc.EINVALID, civdoc.ErrorCode(err))
		assert.Contains(t, stderr.String(), "--reset")
	})
}
