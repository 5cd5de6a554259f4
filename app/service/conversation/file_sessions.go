package conversation

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// FileSessions is the persistent Store: one JSON line per user, rewritten as
// a whole on every update. Suitable for small user counts; swap in a real
// database behind the same interface if that stops holding.
type FileSessions struct {
	path string

	mu     sync.RWMutex
	states map[int64]State
}

var _ Store = (*FileSessions)(nil)

type sessionLine struct {
	UserID           int64  `json:"user_id"`
	AwaitingFollowup bool   `json:"awaiting_followup"`
	ChatMode         bool   `json:"chat_mode"`
	History          string `json:"history"`
	PrevResponse     string `json:"prev_response,omitempty"`
}

func OpenFileSessions(path string) (*FileSessions, error) {
	if dir := filepath.Dir(path); dir != "." {
		_ = os.MkdirAll(dir, 0755)
	}

	s := &FileSessions{
		path:   path,
		states: make(map[int64]State),
	}

	if err := s.load(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *FileSessions) load() error {
	file, err := os.OpenFile(s.path, os.O_RDONLY|os.O_CREATE, 0644)
	if err != nil {
		return fmt.Errorf("failed to open sessions file: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var item sessionLine
		if err = json.Unmarshal([]byte(line), &item); err != nil {
			return fmt.Errorf("failed to parse session line: %w", err)
		}

		s.states[item.UserID] = State{
			AwaitingFollowup: item.AwaitingFollowup,
			ChatMode:         item.ChatMode,
			History:          item.History,
			PrevResponse:     item.PrevResponse,
		}
	}

	if err = scanner.Err(); err != nil {
		return fmt.Errorf("error reading sessions file: %w", err)
	}

	return nil
}

// save rewrites the whole file under the write lock. Session state is small
// and a turn touches a single user, so lost-update hazards do not apply the
// way they would to an append-only log.
func (s *FileSessions) save() error {
	file, err := os.OpenFile(s.path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to open sessions file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	for userID, state := range s.states {
		item := sessionLine{
			UserID:           userID,
			AwaitingFollowup: state.AwaitingFollowup,
			ChatMode:         state.ChatMode,
			History:          state.History,
			PrevResponse:     state.PrevResponse,
		}
		data, err := json.Marshal(item)
		if err != nil {
			return fmt.Errorf("failed to marshal session: %w", err)
		}
		if _, err = writer.WriteString(string(data) + "\n"); err != nil {
			return fmt.Errorf("failed to write session: %w", err)
		}
	}

	if err = writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush sessions file: %w", err)
	}

	return nil
}

func (s *FileSessions) Get(userID int64) State {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.states[userID]
}

func (s *FileSessions) Put(userID int64, state State) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[userID] = state

	if err := s.save(); err != nil {
		slog.Error("Failed to persist sessions", "error", err)
	}
}

func (s *FileSessions) Reset(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[userID] = State{}

	if err := s.save(); err != nil {
		slog.Error("Failed to persist sessions", "error", err)
	}
}
