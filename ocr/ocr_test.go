package ocr_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/civdoc/civdoc"
	"github.com/civdoc/civdoc/ocr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testSites = civdoc.SiteRegistry{
	{ID: 1, Name: "citoyen"},
	{ID: 6, Name: "sante"},
}

// fakeRunner simulates pdftoppm and tesseract by writing the files the
// real tools would produce.
type fakeRunner struct {
	calls []string
	pages int
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) error {
	r.calls = append(r.calls, name+" "+strings.Join(args, " "))

	switch name {
	case "pdftoppm":
		// Last argument is the image prefix.
		prefix := args[len(args)-1]
		for i := 1; i <= r.pages; i++ {
			if err := os.WriteFile(fmt.Sprintf("%s-%d.png", prefix, i), []byte("png"), 0o644); err != nil {
				return err
			}
		}
	case "tesseract":
		// tesseract appends .txt to the output base (second argument).
		image, output := args[0], args[1]
		page := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(image), "img-ocr-"), ".png")
		if err := os.WriteFile(output+".txt", []byte("page "+page+"\n"), 0o644); err != nil {
			return err
		}
	}
	return nil
}

func newService(t *testing.T, runner ocr.Runner, pdfs ...string) (*ocr.Service, string) {
	t.Helper()
	baseDir := t.TempDir()
	tmpDir := t.TempDir()
	taxeDir := t.TempDir()
	for _, pdf := range pdfs {
		path := filepath.Join(baseDir, pdf)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("%PDF"), 0o644))
	}
	return ocr.NewService(baseDir, tmpDir, taxeDir, testSites, runner), baseDir
}

func TestService_ResolvePath(t *testing.T) {
	t.Parallel()

	service := ocr.NewService("/data/wp", "/tmp/ocr", "/data/taxes", testSites, nil)

	t.Run("uploads map onto the data directory", func(t *testing.T) {
		t.Parallel()

		path, err := service.ResolvePath(&civdoc.Document{
			TypeOf:    civdoc.TypeAttachment,
			SourceURL: "https://www.marche.be/wp-content/uploads/2024/01/reglement.pdf",
		})
		require.NoError(t, err)
		assert.Equal(t, "/data/wp/wp-content/uploads/2024/01/reglement.pdf", path)
	})

	t.Run("subsite files map onto blogs.dir by site ID", func(t *testing.T) {
		t.Parallel()

		path, err := service.ResolvePath(&civdoc.Document{
			TypeOf:    civdoc.TypeAttachment,
			SourceURL: "https://www.marche.be/sante/files/2024/02/brochure.pdf",
		})
		require.NoError(t, err)
		assert.Equal(t, "/data/wp/wp-content/blogs.dir/6/files/2024/02/brochure.pdf", path)
	})

	t.Run("unknown theme is an error", func(t *testing.T) {
		t.Parallel()

		_, err := service.ResolvePath(&civdoc.Document{
			TypeOf:    civdoc.TypeAttachment,
			SourceURL: "https://www.marche.be/inconnu/files/brochure.pdf",
		})
		require.Error(t, err)
		assert.Equal(t, civdoc.ENOTFOUND, civdoc.ErrorCode(err))
	})

	t.Run("taxes resolve by file name", func(t *testing.T) {
		t.Parallel()

		path, err := service.ResolvePath(&civdoc.Document{
			TypeOf:   civdoc.TypeTaxe,
			FileName: "immondices-2026.pdf",
		})
		require.NoError(t, err)
		assert.Equal(t, "/data/taxes/immondices-2026.pdf", path)
	})

	t.Run("non-file types are rejected", func(t *testing.T) {
		t.Parallel()

		_, err := service.ResolvePath(&civdoc.Document{TypeOf: civdoc.TypePost})
		require.Error(t, err)
		assert.Equal(t, civdoc.EINVALID, civdoc.ErrorCode(err))
	})
}

func TestService_Extract(t *testing.T) {
	t.Parallel()

	t.Run("runs the toolchain and merges pages in order", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{pages: 12}
		service, baseDir := newService(t, runner, "uploads/doc.pdf")
		filePath := filepath.Join(baseDir, "uploads", "doc.pdf")

		require.NoError(t, service.Extract(context.Background(), filePath))

		assert.Len(t, runner.calls, 13, "one pdftoppm call plus one tesseract call per page")
		assert.Contains(t, runner.calls[0], "pdftoppm -png")
		assert.Contains(t, runner.calls[1], "--oem 1 --psm 3 -l fra")

		text, err := service.ReadArtifact(filePath)
		require.NoError(t, err)
		lines := strings.Split(strings.TrimSpace(text), "\n")
		require.Len(t, lines, 12)
		assert.Equal(t, "page 1", lines[0])
		assert.Equal(t, "page 2", lines[1], "pages sort numerically, not lexically")
		assert.Equal(t, "page 12", lines[11])
	})

	t.Run("existing output skips the toolchain", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{pages: 1}
		service, baseDir := newService(t, runner, "uploads/doc.pdf")
		filePath := filepath.Join(baseDir, "uploads", "doc.pdf")

		require.NoError(t, service.Extract(context.Background(), filePath))
		calls := len(runner.calls)

		require.NoError(t, service.Extract(context.Background(), filePath))
		assert.Len(t, runner.calls, calls, "second run must not touch the tools")
	})

	t.Run("files sharing a directory get separate output", func(t *testing.T) {
		t.Parallel()

		runner := &stampRunner{}
		service, baseDir := newService(t, runner, "taxes/immondices.pdf", "taxes/enseignes.pdf")
		first := filepath.Join(baseDir, "taxes", "immondices.pdf")
		second := filepath.Join(baseDir, "taxes", "enseignes.pdf")

		require.NoError(t, service.Extract(context.Background(), first))
		require.NoError(t, service.Extract(context.Background(), second))

		assert.NotEqual(t, service.ArtifactPath(first), service.ArtifactPath(second))
		assert.Len(t, runner.calls, 4, "both files must go through the toolchain")

		text, err := service.ReadArtifact(first)
		require.NoError(t, err)
		assert.Contains(t, text, "immondices.pdf")

		text, err = service.ReadArtifact(second)
		require.NoError(t, err)
		assert.Contains(t, text, "enseignes.pdf")
	})

	t.Run("missing file fails before any command", func(t *testing.T) {
		t.Parallel()

		runner := &fakeRunner{pages: 1}
		service, baseDir := newService(t, runner)

		err := service.Extract(context.Background(), filepath.Join(baseDir, "missing.pdf"))
		require.Error(t, err)
		assert.Equal(t, civdoc.EINVALID, civdoc.ErrorCode(err))
		assert.Empty(t, runner.calls)
	})

	t.Run("tool failure surfaces as an external error", func(t *testing.T) {
		t.Parallel()

		service, baseDir := newService(t, failingRunner{}, "uploads/doc.pdf")

		err := service.Extract(context.Background(), filepath.Join(baseDir, "uploads", "doc.pdf"))
		require.Error(t, err)
		assert.Equal(t, civdoc.EEXTERNAL, civdoc.ErrorCode(err))
	})
}

// stampRunner produces one page of text per file, stamped with the
// source file name.
type stampRunner struct {
	calls  []string
	source string
}

func (r *stampRunner) Run(ctx context.Context, name string, args ...string) error {
	r.calls = append(r.calls, name+" "+strings.Join(args, " "))

	switch name {
	case "pdftoppm":
		r.source = filepath.Base(args[len(args)-2])
		return os.WriteFile(args[len(args)-1]+"-1.png", []byte("png"), 0o644)
	case "tesseract":
		return os.WriteFile(args[1]+".txt", []byte("text of "+r.source+"\n"), 0o644)
	}
	return nil
}

type failingRunner struct{}

func (failingRunner) Run(ctx context.Context, name string, args ...string) error {
	return fmt.Errorf("%s: exit status 1", name)
}

func TestService_ReadArtifact_Missing(t *testing.T) {
	t.Parallel()

	service, baseDir := newService(t, &fakeRunner{}, "uploads/doc.pdf")

	_, err := service.ReadArtifact(filepath.Join(baseDir, "uploads", "doc.pdf"))
	require.Error(t, err)
	assert.Equal(t, civdoc.ENOTFOUND, civdoc.ErrorCode(err))
}
