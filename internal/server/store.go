// Package server implements the learning service HTTP API: lesson
// content, per-user progress, the code-execution sandbox, and the
// live progress feed.
package server

import (
	"context"
	"sync"
)

// ProgressStore persists per-user completion records. The server is
// the authority for completion state; clients mirror it.
type ProgressStore interface {
	EnsureUser(ctx context.Context, username string) error
	Progress(ctx context.Context, username string) ([]string, error)
	MarkCompleted(ctx context.Context, username, lessonID string) error
	Reset(ctx context.Context, username string) error
}

// MemoryProgressStore is an in-memory ProgressStore for development
// and tests. Completion order is preserved, matching the database
// store's completed_at ordering.
type MemoryProgressStore struct {
	mu    sync.RWMutex
	users map[string][]string
}

// NewMemoryProgressStore creates an empty in-memory store.
func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{
		users: make(map[string][]string),
	}
}

func (s *MemoryProgressStore) EnsureUser(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; !ok {
		s.users[username] = []string{}
	}
	return nil
}

func (s *MemoryProgressStore) Progress(_ context.Context, username string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.users[username]...), nil
}

func (s *MemoryProgressStore) MarkCompleted(_ context.Context, username, lessonID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.users[username] {
		if id == lessonID {
			return nil
		}
	}
	s.users[username] = append(s.users[username], lessonID)
	return nil
}

func (s *MemoryProgressStore) Reset(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = []string{}
	return nil
}
