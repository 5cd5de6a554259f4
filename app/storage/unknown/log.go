// Package unknown persists inputs that missed the response catalog. Records
// feed later dataset curation, so the log is strictly append-only: one write
// per record, never read-modify-write.
package unknown

import (
	"calmbot/app/config"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/samber/do"
)

type Record struct {
	UserID     int64     `json:"user_id"`
	Timestamp  time.Time `json:"timestamp"`
	Input      string    `json:"input"`
	IsFollowup bool      `json:"is_followup"`
}

var _ do.Shutdownable = (*Log)(nil)

type Log struct {
	mu   sync.Mutex
	file *os.File
}

func New(di *do.Injector) (*Log, error) {
	cfg := do.MustInvoke[*config.Config](di)

	return Open(cfg.Catalog.UnknownPath)
}

func Open(path string) (*Log, error) {
	if dir := filepath.Dir(path); dir != "." {
		_ = os.MkdirAll(dir, 0755)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to open unknown-inputs log: %w", err)
	}

	return &Log{file: file}, nil
}

// Append writes one record as a single JSON line. The mutex keeps concurrent
// appends from interleaving partial records.
func (l *Log) Append(rec Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, err = l.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append record: %w", err)
	}

	return nil
}

func (l *Log) Shutdown() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.file.Close()
}
