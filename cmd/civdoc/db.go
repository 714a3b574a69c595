package main

import (
	"fmt"

	"github.com/civdoc/civdoc"
)

// Run executes the db command.
func (c *DbCmd) Run(deps *Dependencies) error {
	if !c.Reset {
		fmt.Fprintln(deps.Stderr, "error: please specify an action, --reset")
		return civdoc.Errorf(civdoc.EINVALID, "no action specified")
	}

	discussions, err := deps.Discussions.FindDiscussions(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", civdoc.ErrorMessage(err))
		return err
	}
	for _, discussion := range discussions {
		if err := deps.Discussions.DeleteDiscussion(deps.Ctx, discussion.ID); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", civdoc.ErrorMessage(err))
			return err
		}
	}
	fmt.Fprintf(deps.Stdout, "Removed %d discussions.\n", len(discussions))

	if c.WithDocs {
		if err := deps.Documents.DeleteAllDocuments(deps.Ctx); err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", civdoc.ErrorMessage(err))
			return err
		}
		fmt.Fprintln(deps.Stdout, "Removed all documents.")
	}

	return nil
}
