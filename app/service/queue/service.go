// Package queue serializes turn processing per user: one in-flight turn per
// user id, full parallelism across users.
package queue

import (
	"log/slog"
	"sync"

	"github.com/samber/do"
)

const bufferSize = 16

var _ do.Shutdownable = (*Service)(nil)

type Service struct {
	mu      sync.Mutex
	workers map[int64]chan func()
	wg      sync.WaitGroup
	closed  bool
}

func New(_ *do.Injector) (*Service, error) {
	return &Service{
		workers: make(map[int64]chan func()),
	}, nil
}

// Dispatch enqueues a task on the user's worker, creating it lazily. A full
// queue drops the task with a warning rather than blocking the webhook.
func (s *Service) Dispatch(userID int64, task func()) {
	defer func() {
		if r := recover(); r != nil {

		}
	}()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}

	ch, ok := s.workers[userID]
	if !ok {
		ch = make(chan func(), bufferSize)
		s.workers[userID] = ch

		s.wg.Add(1)
		go s.run(ch)
	}
	s.mu.Unlock()

	select {
	case ch <- task:
	default:
		slog.Warn("user queue is full, dropping message", "user_id", userID)
	}
}

func (s *Service) run(ch chan func()) {
	defer s.wg.Done()

	for task := range ch {
		task()
	}
}

func (s *Service) Shutdown() error {
	s.mu.Lock()
	s.closed = true
	for _, ch := range s.workers {
		close(ch)
	}
	s.mu.Unlock()

	s.wg.Wait()

	return nil
}
