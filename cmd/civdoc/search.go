package main

import (
	"fmt"

	"github.com/civdoc/civdoc"
)

// searchLimit is the number of documents printed per query.
const searchLimit = 5

// Run executes the search command.
func (c *SearchCmd) Run(deps *Dependencies) error {
	vector, err := deps.Embedder.Embed(deps.Ctx, c.Query)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", civdoc.ErrorMessage(err))
		return err
	}

	docs, err := deps.Documents.FindNearest(deps.Ctx, vector, searchLimit)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", civdoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Found %d documents.\n", len(docs))
	for _, doc := range docs {
		fmt.Fprintf(deps.Stdout, "%s  %s\n", doc.Title, doc.URL)
	}
	return nil
}
