package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"poolScope/internal/model"
)

// JsonlStorage appends analysis results to a JSONL file.
type JsonlStorage struct {
	path string
	mu   sync.Mutex
}

func NewJsonlStorage(path string) *JsonlStorage {
	return &JsonlStorage{path: path}
}

// PutBandSnapshots appends a batch of band records as JSON lines.
func (s *JsonlStorage) PutBandSnapshots(records []model.BandSnapshotRecord) error {
	lines := make([]interface{}, len(records))
	for i, record := range records {
		lines[i] = record
	}
	return s.appendLines(lines)
}

// PutSlippageResults appends a batch of slippage results as JSON lines.
func (s *JsonlStorage) PutSlippageResults(results []model.SlippageResult) error {
	lines := make([]interface{}, len(results))
	for i, result := range results {
		lines[i] = result
	}
	return s.appendLines(lines)
}

// PutTVLSnapshots appends a batch of TVL snapshots as JSON lines.
func (s *JsonlStorage) PutTVLSnapshots(snapshots []model.TVLSnapshot) error {
	lines := make([]interface{}, len(snapshots))
	for i, snapshot := range snapshots {
		lines[i] = snapshot
	}
	return s.appendLines(lines)
}

func (s *JsonlStorage) appendLines(records []interface{}) error {
	if len(records) == 0 {
		return nil
	}

	dir := filepath.Dir(s.path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open output file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write record: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("flush output: %w", err)
	}

	return nil
}
