package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
)

const previewWidth = 100

// MessageMatch is one message that matched a search query
type MessageMatch struct {
	ConversationID int64
	Position       int
	Role           string
	Content        string
	Preview        string
}

// SearchMessages finds user and assistant messages containing query,
// case-insensitively, newest conversation first.
func (s *Store) SearchMessages(ctx context.Context, query string, limit int) ([]MessageMatch, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidLimit, limit)
	}
	if strings.TrimSpace(query) == "" {
		return []MessageMatch{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT m.conversation_id, m.position, m.role, m.content
	FROM messages m
	JOIN conversations c ON c.id = m.conversation_id
	WHERE m.role IN ('user', 'assistant') AND m.content LIKE ? ESCAPE '\'
	ORDER BY c.created_at DESC, c.id DESC, m.position
	LIMIT ?
	`, "%"+escapeLike(query)+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	defer rows.Close()

	matches := []MessageMatch{}
	for rows.Next() {
		var m MessageMatch
		if err := rows.Scan(&m.ConversationID, &m.Position, &m.Role, &m.Content); err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		m.Preview = preview(m.Content)
		matches = append(matches, m)
	}

	return matches, rows.Err()
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

// preview flattens content to one line and truncates it to previewWidth cells
func preview(content string) string {
	flat := strings.Join(strings.Fields(content), " ")
	return runewidth.Truncate(flat, previewWidth, "...")
}
