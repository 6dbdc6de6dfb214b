package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Annotation is a note with optional likes and dislikes attached to one conversation
type Annotation struct {
	ID             int64     `json:"-"`
	ConversationID int64     `json:"conversation_id"`
	Note           string    `json:"note,omitempty"`
	Likes          []string  `json:"likes,omitempty"`
	Dislikes       []string  `json:"dislikes,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// InsertAnnotation attaches a to conversation id (or the latest one) and
// returns the annotation id. A conversation holds at most one annotation.
func (s *Store) InsertAnnotation(ctx context.Context, id int64, a Annotation) (int64, error) {
	likes, err := encodeList(a.Likes)
	if err != nil {
		return 0, err
	}
	dislikes, err := encodeList(a.Dislikes)
	if err != nil {
		return 0, err
	}

	var annotationID int64
	err = s.withTx(ctx, func(tx *sql.Tx) error {
		if id == Latest {
			latest, err := latestID(ctx, tx)
			if err != nil {
				return err
			}
			id = latest
		}

		// The foreign key decides whether id exists
		res, err := tx.ExecContext(ctx, `
		INSERT INTO annotations (conversation_id, note, likes, dislikes, created_at)
		VALUES (?, ?, ?, ?, ?)
		`, id, a.Note, likes, dislikes, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to insert annotation for conversation %d: %w", id, classify(err))
		}

		annotationID, err = res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read annotation id: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return annotationID, nil
}

// SampleAnnotations returns up to n annotations drawn uniformly at random
// without replacement. Fewer are returned when fewer exist.
func (s *Store) SampleAnnotations(ctx context.Context, n int) ([]Annotation, error) {
	if n <= 0 {
		return []Annotation{}, nil
	}

	rows, err := s.db.QueryContext(ctx, `
	SELECT id, conversation_id, note, likes, dislikes, created_at
	FROM annotations
	ORDER BY random()
	LIMIT ?
	`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to sample annotations: %w", err)
	}
	defer rows.Close()

	annotations := []Annotation{}
	for rows.Next() {
		var (
			a                     Annotation
			likesRaw, dislikesRaw string
		)
		if err := rows.Scan(&a.ID, &a.ConversationID, &a.Note, &likesRaw, &dislikesRaw, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan annotation: %w", err)
		}
		if a.Likes, err = decodeList(likesRaw); err != nil {
			return nil, err
		}
		if a.Dislikes, err = decodeList(dislikesRaw); err != nil {
			return nil, err
		}
		annotations = append(annotations, a)
	}

	return annotations, rows.Err()
}

// CountAnnotations returns the number of stored annotations
func (s *Store) CountAnnotations(ctx context.Context) (int, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM annotations`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count annotations: %w", err)
	}
	return count, nil
}

func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(data), nil
}

func decodeList(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}
	if len(items) == 0 {
		return nil, nil
	}
	return items, nil
}
