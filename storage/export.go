package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"mealplan/model"
)

// EncodeMessages serializes a message list as one JSON document
func EncodeMessages(messages []model.Message) ([]byte, error) {
	if messages == nil {
		messages = []model.Message{}
	}
	data, err := json.Marshal(messages)
	if err != nil {
		return nil, fmt.Errorf("failed to encode messages: %w", err)
	}
	return data, nil
}

// DecodeMessages is the inverse of EncodeMessages
func DecodeMessages(data []byte) ([]model.Message, error) {
	var messages []model.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return messages, nil
}

// Export is the on-disk form of an exported conversation
type Export struct {
	ID         int64           `json:"id"`
	ExportedAt time.Time       `json:"exported_at"`
	Messages   json.RawMessage `json:"messages"`
}

// GenerateExportPath generates a default export path for a conversation
func GenerateExportPath(dataDir string, id int64) string {
	timestamp := time.Now().Format("20060102-150405")
	filename := fmt.Sprintf("mealplan-%d-%s.json", id, timestamp)
	return filepath.Join(dataDir, "exports", filename)
}

// ExportToJSON writes conversation id (or the latest) to exportPath and
// returns the id that was exported.
func (s *Store) ExportToJSON(ctx context.Context, id int64, exportPath string) (int64, error) {
	id, err := resolve(ctx, s.db, id)
	if err != nil {
		return 0, err
	}

	messages, err := s.GetConversation(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("failed to load conversation: %w", err)
	}
	if len(messages) == 0 {
		return 0, errors.Join(ErrEmptyConversation, fmt.Errorf("conversation %d", id))
	}

	doc, err := EncodeMessages(messages)
	if err != nil {
		return 0, err
	}

	data, err := json.MarshalIndent(Export{ID: id, ExportedAt: time.Now().UTC(), Messages: doc}, "", "  ")
	if err != nil {
		return 0, fmt.Errorf("failed to marshal export: %w", err)
	}

	// Exports contain user data (0700 dir, 0600 file)
	if err := os.MkdirAll(filepath.Dir(exportPath), 0700); err != nil {
		return 0, fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(exportPath, data, 0600); err != nil {
		return 0, fmt.Errorf("failed to write file: %w", err)
	}

	return id, nil
}
