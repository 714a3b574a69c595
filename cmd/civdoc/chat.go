package main

import (
	"fmt"

	"github.com/civdoc/civdoc"
)

// Run executes the chat command. A new discussion is titled from its
// first question; pass --discussion to continue an existing one.
func (c *ChatCmd) Run(deps *Dependencies) error {
	discussion, err := c.resolveDiscussion(deps)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", civdoc.ErrorMessage(err))
		return err
	}

	userMessage := &civdoc.Message{
		DiscussionID: discussion.ID,
		Content:      c.Question,
		IsMe:         true,
	}
	if err := deps.Messages.CreateMessage(deps.Ctx, userMessage); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", civdoc.ErrorMessage(err))
		return err
	}

	answer, err := deps.Answerer.Answer(deps.Ctx, discussion.ID, c.Question)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", civdoc.ErrorMessage(err))
		return err
	}

	assistantMessage := &civdoc.Message{
		DiscussionID: discussion.ID,
		Content:      answer,
		IsMe:         false,
	}
	if err := deps.Messages.CreateMessage(deps.Ctx, assistantMessage); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", civdoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, answer)
	fmt.Fprintf(deps.Stdout, "\nDiscussion: %s (%s)\n", discussion.Name, discussion.ID)
	return nil
}

// resolveDiscussion loads the requested discussion, or creates a fresh
// one named after the question.
func (c *ChatCmd) resolveDiscussion(deps *Dependencies) (*civdoc.Discussion, error) {
	if c.Discussion != "" {
		return deps.Discussions.FindDiscussionByID(deps.Ctx, c.Discussion)
	}

	name, err := deps.Titler.Title(deps.Ctx, c.Question)
	if err != nil {
		return nil, err
	}

	discussion := &civdoc.Discussion{Name: name}
	if err := deps.Discussions.CreateDiscussion(deps.Ctx, discussion); err != nil {
		return nil, err
	}
	return discussion, nil
}
