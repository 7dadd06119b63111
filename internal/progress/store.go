// Package progress holds the client-side mirror of a user's completion
// set. The remote service is authoritative: the mirror is seeded at
// login, mutated optimistically, and persisted in the background.
package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/unicode/norm"

	"github.com/KeitoID/GoLangStudyApp/internal/api"
)

const defaultSyncTimeout = 10 * time.Second

// ErrNotLoggedIn reports a mutation attempted before login.
var ErrNotLoggedIn = errors.New("not logged in")

// Syncer is the remote side of progress reconciliation. *api.Client
// satisfies it.
type Syncer interface {
	Login(ctx context.Context, username string) (api.LoginResult, error)
	MarkCompleted(ctx context.Context, username, lessonID string) error
	ResetProgress(ctx context.Context, username string) error
}

// Sessions is the durable local cache of the username.
type Sessions interface {
	Save(username string) error
	Load() (string, bool)
	Clear() error
}

// Config holds dependencies for the progress store.
type Config struct {
	Syncer      Syncer
	Sessions    Sessions
	SyncTimeout time.Duration // per background persist call (default 10s)
}

// Store mirrors the remote completion set in memory. Reads are local
// and synchronous; mutations apply locally first and persist to the
// remote in the background. Background failures are logged and pushed
// to SyncErrors, never surfaced to the mutating caller.
type Store struct {
	syncer   Syncer
	sessions Sessions
	timeout  time.Duration

	mu        sync.RWMutex
	username  string
	completed map[string]struct{}

	syncErrs chan error
}

// NewStore creates a progress store.
func NewStore(cfg Config) *Store {
	timeout := cfg.SyncTimeout
	if timeout == 0 {
		timeout = defaultSyncTimeout
	}
	return &Store{
		syncer:    cfg.Syncer,
		sessions:  cfg.Sessions,
		timeout:   timeout,
		completed: make(map[string]struct{}),
		syncErrs:  make(chan error, 16),
	}
}

// StoredUsername returns the username cached by a previous session.
func (s *Store) StoredUsername() (string, bool) {
	if s.sessions == nil {
		return "", false
	}
	return s.sessions.Load()
}

// Login exchanges a username for the remote completion set and seeds
// the mirror with it. Login failures propagate as-is; there is no
// local fallback.
func (s *Store) Login(ctx context.Context, username string) error {
	username = norm.NFKC.String(strings.TrimSpace(username))
	if username == "" {
		return &api.AuthError{Message: "username is empty"}
	}

	result, err := s.syncer.Login(ctx, username)
	if err != nil {
		return err
	}
	if result.Username != "" {
		username = result.Username
	}

	s.mu.Lock()
	s.username = username
	s.completed = make(map[string]struct{}, len(result.Progress))
	for _, id := range result.Progress {
		s.completed[id] = struct{}{}
	}
	s.mu.Unlock()

	if s.sessions != nil {
		if err := s.sessions.Save(username); err != nil {
			slog.Warn("failed to cache username", "error", err)
		}
	}

	slog.Info("logged in", "username", username, "completed", len(result.Progress))
	return nil
}

// Username returns the logged-in username, empty when logged out.
func (s *Store) Username() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.username
}

// IsCompleted reports whether the lesson is in the mirror.
func (s *Store) IsCompleted(lessonID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.completed[lessonID]
	return ok
}

// CompletedCount returns the number of completed lessons.
func (s *Store) CompletedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.completed)
}

// CompletedSet returns a copy of the completed lesson IDs.
func (s *Store) CompletedSet() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set := make(map[string]struct{}, len(s.completed))
	for id := range s.completed {
		set[id] = struct{}{}
	}
	return set
}

// MarkCompleted adds the lesson to the mirror immediately and persists
// it to the remote in the background. The mirror only grows; a lesson,
// once complete, stays complete until Reset or Logout.
func (s *Store) MarkCompleted(lessonID string) {
	s.mu.Lock()
	username := s.username
	if username == "" {
		s.mu.Unlock()
		slog.Warn("mark completed ignored", "lesson", lessonID, "error", ErrNotLoggedIn)
		return
	}
	if _, done := s.completed[lessonID]; done {
		s.mu.Unlock()
		return
	}
	s.completed[lessonID] = struct{}{}
	s.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.syncer.MarkCompleted(ctx, username, lessonID); err != nil {
			s.reportSyncError(fmt.Errorf("persist completion of %s: %w", lessonID, err))
		}
	}()
}

// Reset clears the mirror immediately and requests remote deletion of
// all completion records in the background.
func (s *Store) Reset() {
	s.mu.Lock()
	username := s.username
	s.completed = make(map[string]struct{})
	s.mu.Unlock()

	if username == "" {
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := s.syncer.ResetProgress(ctx, username); err != nil {
			s.reportSyncError(fmt.Errorf("reset remote progress: %w", err))
		}
	}()
}

// Logout clears the mirror and forgets the cached username. The remote
// is not contacted; its copy stays authoritative for the next login.
func (s *Store) Logout() {
	s.mu.Lock()
	s.username = ""
	s.completed = make(map[string]struct{})
	s.mu.Unlock()

	if s.sessions != nil {
		if err := s.sessions.Clear(); err != nil {
			slog.Warn("failed to clear cached username", "error", err)
		}
	}
}

// SyncErrors exposes background persistence failures for observability.
// The channel is buffered; when nobody drains it, errors are dropped
// after being logged.
func (s *Store) SyncErrors() <-chan error {
	return s.syncErrs
}

func (s *Store) reportSyncError(err error) {
	slog.Warn("progress sync failed", "error", err)
	select {
	case s.syncErrs <- err:
	default:
	}
}
