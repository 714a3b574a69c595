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

// fakeOCR implements main.OCRService over in-memory sets of existing
// files and artifacts.
type fakeOCR struct {
	files     map[string]bool
	artifacts map[string]bool
	extracted []string
}

func (o *fakeOCR) ResolvePath(doc *civdoc.Document) (string, error) {
	if doc.FileName == "" {
		return "", civdoc.Errorf(civdoc.EINVALID, "tax document %q has no file name", doc.ReferenceID)
	}
	return "/taxes/" + doc.FileName, nil
}

func (o *fakeOCR) Extract(ctx context.Context, filePath string) error {
	o.extracted = append(o.extracted, filePath)
	return nil
}

func (o *fakeOCR) HasFile(filePath string) bool     { return o.files[filePath] }
func (o *fakeOCR) HasArtifact(filePath string) bool { return o.artifacts[filePath] }

func taxeConnector(docs ...*civdoc.Document) *mock.Connector {
	return &mock.Connector{
		NameFn:  func() string { return "taxe" },
		FetchFn: func(_ context.Context) []*civdoc.Document { return docs },
	}
}

func taxeDoc(refID, fileName string) *civdoc.Document {
	return &civdoc.Document{
		TypeOf:      civdoc.TypeTaxe,
		Title:       "Taxe",
		FileName:    fileName,
		ReferenceID: refID,
	}
}

func TestOcrCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("extract processes files without output and skips done ones", func(t *testing.T) {
		t.Parallel()

		ocrService := &fakeOCR{
			files:     map[string]bool{"/taxes/a.pdf": true, "/taxes/b.pdf": true},
			artifacts: map[string]bool{"/taxes/b.pdf": true},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Files:  taxeConnector(taxeDoc("21-taxe", "a.pdf"), taxeDoc("22-taxe", "b.pdf")),
			OCR:    ocrService,
		}

		cmd := &main.OcrCmd{Type: "taxe", Extract: true}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Equal(t, []string{"/taxes/a.pdf"}, ocrService.extracted)
		assert.Contains(t, stdout.String(), "Finished")
	})

	t.Run("extract reports missing files and continues", func(t *testing.T) {
		t.Parallel()

		ocrService := &fakeOCR{
			files: map[string]bool{"/taxes/b.pdf": true},
		}

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
			Files:  taxeConnector(taxeDoc("21-taxe", "a.pdf"), taxeDoc("22-taxe", "b.pdf")),
			OCR:    ocrService,
		}

		cmd := &main.OcrCmd{Type: "taxe", Extract: true}
		err := cmd.Run(deps)

		require.NoError(t, err)
		assert.Contains(t, stderr.String(), "file not found: /taxes/a.pdf")
		assert.Equal(t, []string{"/taxes/b.pdf"}, ocrService.extracted)
	})

	t.Run("check reports missing files and missing output", func(t *testing.T) {
		t.Parallel()

		ocrService := &fakeOCR{
			files:     map[string]bool{"/taxes/b.pdf": true, "/taxes/c.pdf": true},
			artifacts: map[string]bool{"/taxes/c.pdf": true},
		}

		stdout := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: stdout,
			Stderr: &bytes.Buffer{},
			Files: taxeConnector(
				taxeDoc("21-taxe", "a.pdf"),
				taxeDoc("22-taxe", "b.pdf"),
				taxeDoc("23-taxe", "c.pdf"),
			),
			OCR: ocrService,
		}

		cmd := &main.OcrCmd{Type: "taxe", Check: true}
		err := cmd.Run(deps)

		require.NoError(t, err)
		output := stdout.String()
		assert.Contains(t, output, "File not found: /taxes/a.pdf")
		assert.Contains(t, output, "OCR output not found: /taxes/b.pdf")
		assert.NotContains(t, output, "c.pdf")
		assert.Empty(t, ocrService.extracted)
	})

	t.Run("requires an action flag", func(t *testing.T) {
		t.Parallel()

		stderr := &bytes.Buffer{}
		deps := &main.Dependencies{
			Ctx:    context.Background(),
			Stdout: &bytes.Buffer{},
			Stderr: stderr,
		}

		cmd := &main.OcrCmd{Type: "taxe"}
		err := cmd.Run(deps)

		require.Error(t, err)
		assert.Equal(t, civdoc.EINVALID, civdoc.ErrorCode(err))
		assert.Contains(t, stderr.String(), "--extract or --check")
	})
}
