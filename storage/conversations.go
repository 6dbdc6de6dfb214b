package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mealplan/model"
)

// ConversationSummary is a lightweight view of a conversation for listing
type ConversationSummary struct {
	ID           int64
	CreatedAt    time.Time
	MessageCount int
	Annotated    bool
}

// InsertConversation persists messages as a new conversation and returns its id
func (s *Store) InsertConversation(ctx context.Context, messages []model.Message) (int64, error) {
	if len(messages) == 0 {
		return 0, ErrEmptyConversation
	}

	var id int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO conversations (created_at) VALUES (?)`, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to insert conversation: %w", err)
		}
		id, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read conversation id: %w", err)
		}

		stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (conversation_id, position, role, content, tool_name)
		VALUES (?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare message insert: %w", err)
		}
		defer stmt.Close()

		for i, msg := range messages {
			if _, err := stmt.ExecContext(ctx, id, i, string(msg.Role), msg.Content, msg.ToolName); err != nil {
				return fmt.Errorf("failed to insert message %d: %w", i, classify(err))
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return id, nil
}

// LatestConversationID returns the id of the most recently created conversation
func (s *Store) LatestConversationID(ctx context.Context) (int64, error) {
	return latestID(ctx, s.db)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func latestID(ctx context.Context, q queryer) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `
	SELECT id FROM conversations
	ORDER BY created_at DESC, id DESC
	LIMIT 1
	`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query latest conversation: %w", err)
	}
	return id, nil
}

// resolve turns Latest into a concrete id and checks that the id exists
func resolve(ctx context.Context, q queryer, id int64) (int64, error) {
	if id == Latest {
		return latestID(ctx, q)
	}

	var found int64
	err := q.QueryRowContext(ctx, `SELECT id FROM conversations WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: id %d", ErrNotFound, id)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to query conversation: %w", err)
	}
	return found, nil
}

// GetConversation returns the ordered messages of conversation id, or of the
// latest conversation when id is Latest.
func (s *Store) GetConversation(ctx context.Context, id int64) ([]model.Message, error) {
	id, err := resolve(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	return s.queryMessages(ctx, `
	SELECT role, content, tool_name FROM messages
	WHERE conversation_id = ?
	ORDER BY position
	`, id)
}

// UserFollowUps returns the user messages typed after the initial prompt
func (s *Store) UserFollowUps(ctx context.Context, id int64) ([]string, error) {
	id, err := resolve(ctx, s.db, id)
	if err != nil {
		return nil, err
	}

	msgs, err := s.queryMessages(ctx, `
	SELECT role, content, tool_name FROM messages
	WHERE conversation_id = ? AND role = 'user' AND position > 0
	ORDER BY position
	`, id)
	if err != nil {
		return nil, err
	}

	followUps := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		followUps = append(followUps, msg.Content)
	}
	return followUps, nil
}

// FinalMessage returns the last message of a conversation
func (s *Store) FinalMessage(ctx context.Context, id int64) (model.Message, error) {
	id, err := resolve(ctx, s.db, id)
	if err != nil {
		return model.Message{}, err
	}

	msgs, err := s.queryMessages(ctx, `
	SELECT role, content, tool_name FROM messages
	WHERE conversation_id = ?
	ORDER BY position DESC
	LIMIT 1
	`, id)
	if err != nil {
		return model.Message{}, err
	}
	if len(msgs) == 0 {
		return model.Message{}, fmt.Errorf("%w: id %d has no messages", ErrNotFound, id)
	}
	return msgs[0], nil
}

// ListConversations returns up to limit conversations, newest first
func (s *Store) ListConversations(ctx context.Context, limit int) ([]ConversationSummary, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	rows, err := s.db.QueryContext(ctx, `
	SELECT c.id, c.created_at,
		(SELECT COUNT(*) FROM messages m WHERE m.conversation_id = c.id),
		EXISTS (SELECT 1 FROM annotations a WHERE a.conversation_id = c.id)
	FROM conversations c
	ORDER BY c.created_at DESC, c.id DESC
	LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	var summaries []ConversationSummary
	for rows.Next() {
		var sum ConversationSummary
		if err := rows.Scan(&sum.ID, &sum.CreatedAt, &sum.MessageCount, &sum.Annotated); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		summaries = append(summaries, sum)
	}

	return summaries, rows.Err()
}

func (s *Store) queryMessages(ctx context.Context, query string, args ...any) ([]model.Message, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query messages: %w", err)
	}
	defer rows.Close()

	var msgs []model.Message
	for rows.Next() {
		var (
			msg  model.Message
			role string
		)
		if err := rows.Scan(&role, &msg.Content, &msg.ToolName); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		msg.Role = model.Role(role)
		msgs = append(msgs, msg)
	}

	return msgs, rows.Err()
}
