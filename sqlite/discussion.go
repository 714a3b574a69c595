package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/civdoc/civdoc"
	"github.com/google/uuid"
)

var _ civdoc.DiscussionService = (*DiscussionService)(nil)

// DiscussionService implements civdoc.DiscussionService using SQLite.
type DiscussionService struct {
	db *DB
}

// NewDiscussionService creates a new DiscussionService.
func NewDiscussionService(db *DB) *DiscussionService {
	return &DiscussionService{db: db}
}

// CreateDiscussion creates a new discussion.
func (s *DiscussionService) CreateDiscussion(ctx context.Context, d *civdoc.Discussion) error {
	d.ID = uuid.New().String()
	d.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO discussions (id, name, created_at)
		VALUES (?, ?, ?)
	`, d.ID, d.Name, d.CreatedAt.Format(time.RFC3339))

	return err
}

// FindDiscussionByID retrieves a discussion by ID.
func (s *DiscussionService) FindDiscussionByID(ctx context.Context, id string) (*civdoc.Discussion, error) {
	var d civdoc.Discussion
	var createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at
		FROM discussions
		WHERE id = ?
	`, id).Scan(&d.ID, &d.Name, &createdAt)

	if err == sql.ErrNoRows {
		return nil, civdoc.Errorf(civdoc.ENOTFOUND, "discussion not found")
	}
	if err != nil {
		return nil, err
	}

	d.CreatedAt, err = parseRFC3339(createdAt, "created_at")
	if err != nil {
		return nil, err
	}

	return &d, nil
}

// FindDiscussions returns all discussions, newest first.
func (s *DiscussionService) FindDiscussions(ctx context.Context) ([]*civdoc.Discussion, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, created_at
		FROM discussions
		ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var discussions []*civdoc.Discussion
	for rows.Next() {
		var d civdoc.Discussion
		var createdAt string
		if err := rows.Scan(&d.ID, &d.Name, &createdAt); err != nil {
			return nil, err
		}
		d.CreatedAt, err = parseRFC3339(createdAt, "created_at")
		if err != nil {
			return nil, err
		}
		discussions = append(discussions, &d)
	}

	return discussions, rows.Err()
}

// UpdateDiscussionName renames a discussion.
func (s *DiscussionService) UpdateDiscussionName(ctx context.Context, id, name string) error {
	result, err := s.db.ExecContext(ctx, "UPDATE discussions SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return civdoc.Errorf(civdoc.ENOTFOUND, "discussion not found")
	}

	return nil
}

// DeleteDiscussion removes a discussion; messages cascade.
func (s *DiscussionService) DeleteDiscussion(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM discussions WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return civdoc.Errorf(civdoc.ENOTFOUND, "discussion not found")
	}

	return nil
}

// rfc3339Fixed is RFC3339 with fixed-width nanoseconds, so stored message
// timestamps sort lexically in chronological order even within one second.
const rfc3339Fixed = "2006-01-02T15:04:05.000000000Z07:00"

var _ civdoc.MessageService = (*MessageService)(nil)

// MessageService implements civdoc.MessageService using SQLite.
type MessageService struct {
	db *DB
}

// NewMessageService creates a new MessageService.
func NewMessageService(db *DB) *MessageService {
	return &MessageService{db: db}
}

// CreateMessage appends a message to a discussion.
func (s *MessageService) CreateMessage(ctx context.Context, m *civdoc.Message) error {
	if err := m.Validate(); err != nil {
		return err
	}

	m.ID = uuid.New().String()
	m.CreatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO messages (id, discussion_id, content, is_me, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.ID, m.DiscussionID, m.Content, boolToInt(m.IsMe), m.CreatedAt.Format(rfc3339Fixed))

	return err
}

// FindMessagesByDiscussion returns a discussion's messages in chronological order.
func (s *MessageService) FindMessagesByDiscussion(ctx context.Context, discussionID string) ([]*civdoc.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, discussion_id, content, is_me, created_at
		FROM messages
		WHERE discussion_id = ?
		ORDER BY created_at ASC
	`, discussionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*civdoc.Message
	for rows.Next() {
		var m civdoc.Message
		var isMe int
		var createdAt string
		if err := rows.Scan(&m.ID, &m.DiscussionID, &m.Content, &isMe, &createdAt); err != nil {
			return nil, err
		}
		m.IsMe = isMe != 0
		m.CreatedAt, err = parseRFC3339(createdAt, "created_at")
		if err != nil {
			return nil, err
		}
		messages = append(messages, &m)
	}

	return messages, rows.Err()
}

// DeleteMessagesByDiscussion removes all messages in a discussion.
func (s *MessageService) DeleteMessagesByDiscussion(ctx context.Context, discussionID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM messages WHERE discussion_id = ?", discussionID)
	return err
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
