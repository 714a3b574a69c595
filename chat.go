package civdoc

import (
	"context"
	"time"
)

// Discussion is one conversation thread in the chat interface.
type Discussion struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

// Message is one entry in a discussion. IsMe distinguishes user messages
// from generated answers.
type Message struct {
	ID           string    `json:"id"`
	DiscussionID string    `json:"discussionId"`
	Content      string    `json:"content"`
	IsMe         bool      `json:"isMe"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Validate returns an error if the message contains invalid fields.
func (m *Message) Validate() error {
	if m.DiscussionID == "" {
		return Errorf(EINVALID, "message discussion ID required")
	}
	if m.Content == "" {
		return Errorf(EINVALID, "message content required")
	}
	return nil
}

// DiscussionService manages discussions.
type DiscussionService interface {
	// CreateDiscussion creates a new discussion.
	CreateDiscussion(ctx context.Context, d *Discussion) error

	// FindDiscussionByID retrieves a discussion by ID.
	// Returns ENOTFOUND if it does not exist.
	FindDiscussionByID(ctx context.Context, id string) (*Discussion, error)

	// FindDiscussions returns all discussions, newest first.
	FindDiscussions(ctx context.Context) ([]*Discussion, error)

	// UpdateDiscussionName renames a discussion.
	UpdateDiscussionName(ctx context.Context, id, name string) error

	// DeleteDiscussion removes a discussion and its messages.
	DeleteDiscussion(ctx context.Context, id string) error
}

// MessageService manages messages within discussions.
type MessageService interface {
	// CreateMessage appends a message to a discussion.
	CreateMessage(ctx context.Context, m *Message) error

	// FindMessagesByDiscussion returns a discussion's messages in
	// chronological order.
	FindMessagesByDiscussion(ctx context.Context, discussionID string) ([]*Message, error)

	// DeleteMessagesByDiscussion removes all messages in a discussion.
	DeleteMessagesByDiscussion(ctx context.Context, discussionID string) error
}

// Answerer answers a user question with retrieval-augmented generation:
// it embeds the question, retrieves the nearest documents, and conditions
// a generation call on them plus the discussion history.
type Answerer interface {
	// Answer returns the generated answer for userText within the
	// discussion. It does not persist messages; that is the caller's job.
	Answer(ctx context.Context, discussionID, userText string) (string, error)
}

// Titler generates a short display title for a new discussion from its
// first message.
type Titler interface {
	Title(ctx context.Context, firstMessage string) (string, error)
}
