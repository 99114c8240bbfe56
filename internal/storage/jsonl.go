package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"tipjar/internal/model"
)

// JsonlJournal appends attempt records to a JSONL file.
type JsonlJournal struct {
	path string
	mu   sync.Mutex
}

func NewJsonlJournal(path string) *JsonlJournal {
	return &JsonlJournal{path: path}
}

// RecordAttempt appends one record as a JSON line.
func (j *JsonlJournal) RecordAttempt(ctx context.Context, record model.AttemptRecord) error {
	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal attempt record: %w", err)
	}
	line = append(line, '\n')

	dir := filepath.Dir(j.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create journal dir: %w", err)
		}
	}

	j.mu.Lock()
	defer j.mu.Unlock()

	file, err := os.OpenFile(j.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open journal file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write(line); err != nil {
		return fmt.Errorf("write attempt record: %w", err)
	}
	return nil
}

func (j *JsonlJournal) Close() error {
	return nil
}

// ReadJsonl returns every record in a JSONL journal, oldest first.
func ReadJsonl(path string) ([]model.AttemptRecord, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var records []model.AttemptRecord
	decoder := json.NewDecoder(bytes.NewReader(raw))
	for decoder.More() {
		var record model.AttemptRecord
		if err := decoder.Decode(&record); err != nil {
			return nil, fmt.Errorf("decode attempt record %d: %w", len(records)+1, err)
		}
		records = append(records, record)
	}
	return records, nil
}
