package main

import (
	"fmt"

	"github.com/civdoc/civdoc"
)

// Run executes the ocr command.
func (c *OcrCmd) Run(deps *Dependencies) error {
	if !c.Extract && !c.Check {
		fmt.Fprintln(deps.Stderr, "error: please specify an action, --extract or --check")
		return civdoc.Errorf(civdoc.EINVALID, "no action specified")
	}

	docs := deps.Files.Fetch(deps.Ctx)

	if c.Extract {
		c.extract(deps, docs)
	}
	if c.Check {
		c.check(deps, docs)
	}

	fmt.Fprintln(deps.Stdout, "Finished")
	return nil
}

// extract runs the OCR toolchain for each document that does not have
// its output yet. A failing document is reported and skipped; the rest
// of the batch still runs.
func (c *OcrCmd) extract(deps *Dependencies, docs []*civdoc.Document) {
	for _, doc := range docs {
		filePath, err := deps.OCR.ResolvePath(doc)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", civdoc.ErrorMessage(err))
			continue
		}
		if !deps.OCR.HasFile(filePath) {
			fmt.Fprintf(deps.Stderr, "error: file not found: %s\n", filePath)
			continue
		}
		if deps.OCR.HasArtifact(filePath) {
			continue
		}

		fmt.Fprintf(deps.Stdout, "Extracting %s\n", filePath)
		if err := deps.OCR.Extract(deps.Ctx, filePath); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", civdoc.ErrorMessage(err))
		}
	}
}

// check reports documents whose source file or OCR output is missing.
func (c *OcrCmd) check(deps *Dependencies, docs []*civdoc.Document) {
	for _, doc := range docs {
		filePath, err := deps.OCR.ResolvePath(doc)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", civdoc.ErrorMessage(err))
			continue
		}
		if !deps.OCR.HasFile(filePath) {
			fmt.Fprintf(deps.Stdout, "File not found: %s\n", filePath)
			continue
		}
		if !deps.OCR.HasArtifact(filePath) {
			fmt.Fprintf(deps.Stdout, "OCR output not found: %s\n", filePath)
		}
	}
}
