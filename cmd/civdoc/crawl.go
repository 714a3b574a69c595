package main

import (
	"fmt"

	"github.com/civdoc/civdoc"
)

// Run executes the crawl command.
func (c *CrawlCmd) Run(deps *Dependencies) error {
	if !c.Post && !c.Bottin && !c.Event && !c.Attachment && !c.Taxe {
		fmt.Fprintln(deps.Stderr, "error: no source selected. Use --post, --bottin, --event, --attachment or --taxe.")
		return civdoc.Errorf(civdoc.EINVALID, "no source selected")
	}

	stats, err := deps.Importer.Run(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", civdoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Fetched %d documents: %d stored, %d duplicates, %d without text, %d embedding failures.\n",
		stats.Fetched, stats.Stored, stats.Duplicates, stats.MissingText, stats.EmbedFailures)
	return nil
}
