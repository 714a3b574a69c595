package mock

import (
	"context"

	"github.com/civdoc/civdoc"
)

var _ civdoc.DiscussionService = (*DiscussionService)(nil)

// DiscussionService is a mock implementation of civdoc.DiscussionService.
type DiscussionService struct {
	CreateDiscussionFn     func(ctx context.Context, d *civdoc.Discussion) error
	FindDiscussionByIDFn   func(ctx context.Context, id string) (*civdoc.Discussion, error)
	FindDiscussionsFn      func(ctx context.Context) ([]*civdoc.Discussion, error)
	UpdateDiscussionNameFn func(ctx context.Context, id, name string) error
	DeleteDiscussionFn     func(ctx context.Context, id string) error
}

func (s *DiscussionService) CreateDiscussion(ctx context.Context, d *civdoc.Discussion) error {
	return s.CreateDiscussionFn(ctx, d)
}

func (s *DiscussionService) FindDiscussionByID(ctx context.Context, id string) (*civdoc.Discussion, error) {
	return s.FindDiscussionByIDFn(ctx, id)
}

func (s *DiscussionService) FindDiscussions(ctx context.Context) ([]*civdoc.Discussion, error) {
	return s.FindDiscussionsFn(ctx)
}

func (s *DiscussionService) UpdateDiscussionName(ctx context.Context, id, name string) error {
	return s.UpdateDiscussionNameFn(ctx, id, name)
}

func (s *DiscussionService) DeleteDiscussion(ctx context.Context, id string) error {
	return s.DeleteDiscussionFn(ctx, id)
}

var _ civdoc.MessageService = (*MessageService)(nil)

// MessageService is a mock implementation of civdoc.MessageService.
type MessageService struct {
	CreateMessageFn              func(ctx context.Context, m *civdoc.Message) error
	FindMessagesByDiscussionFn   func(ctx context.Context, discussionID string) ([]*civdoc.Message, error)
	DeleteMessagesByDiscussionFn func(ctx context.Context, discussionID string) error
}

func (s *MessageService) CreateMessage(ctx context.Context, m *civdoc.Message) error {
	return s.CreateMessageFn(ctx, m)
}

func (s *MessageService) FindMessagesByDiscussion(ctx context.Context, discussionID string) ([]*civdoc.Message, error) {
	return s.FindMessagesByDiscussionFn(ctx, discussionID)
}

func (s *MessageService) DeleteMessagesByDiscussion(ctx context.Context, discussionID string) error {
	return s.DeleteMessagesByDiscussionFn(ctx, discussionID)
}

var _ civdoc.Answerer = (*Answerer)(nil)

// Answerer is a mock implementation of civdoc.Answerer.
type Answerer struct {
	AnswerFn func(ctx context.Context, discussionID, userText string) (string, error)
}

func (a *Answerer) Answer(ctx context.Context, discussionID, userText string) (string, error) {
	return a.AnswerFn(ctx, discussionID, userText)
}

var _ civdoc.Titler = (*Titler)(nil)

// Titler is a mock implementation of civdoc.Titler.
type Titler struct {
	TitleFn func(ctx context.Context, firstMessage string) (string, error)
}

func (t *Titler) Title(ctx context.Context, firstMessage string) (string, error) {
	return t.TitleFn(ctx, firstMessage)
}
