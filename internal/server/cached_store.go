package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/KeitoID/GoLangStudyApp/internal/platform/cache"
)

// CachedProgressStore decorates a ProgressStore with a Redis read
// cache for Progress lookups. Mutations write through and invalidate.
// Cache failures degrade to the inner store, never to the caller.
type CachedProgressStore struct {
	inner ProgressStore
	cache *cache.Cache
	ttl   time.Duration
}

// NewCachedProgressStore wraps inner with a read cache.
func NewCachedProgressStore(inner ProgressStore, c *cache.Cache, ttl time.Duration) *CachedProgressStore {
	return &CachedProgressStore{inner: inner, cache: c, ttl: ttl}
}

func progressKey(username string) string {
	return "progress:" + username
}

func (s *CachedProgressStore) EnsureUser(ctx context.Context, username string) error {
	return s.inner.EnsureUser(ctx, username)
}

func (s *CachedProgressStore) Progress(ctx context.Context, username string) ([]string, error) {
	var cached []string
	hit, err := s.cache.GetJSON(ctx, progressKey(username), &cached)
	if err != nil {
		slog.Warn("progress cache read failed", "username", username, "error", err)
	} else if hit {
		return cached, nil
	}

	lessons, err := s.inner.Progress(ctx, username)
	if err != nil {
		return nil, err
	}

	if err := s.cache.SetJSON(ctx, progressKey(username), lessons, s.ttl); err != nil {
		slog.Warn("progress cache write failed", "username", username, "error", err)
	}
	return lessons, nil
}

func (s *CachedProgressStore) MarkCompleted(ctx context.Context, username, lessonID string) error {
	if err := s.inner.MarkCompleted(ctx, username, lessonID); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, progressKey(username)); err != nil {
		slog.Warn("progress cache invalidation failed", "username", username, "error", err)
	}
	return nil
}

func (s *CachedProgressStore) Reset(ctx context.Context, username string) error {
	if err := s.inner.Reset(ctx, username); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, progressKey(username)); err != nil {
		slog.Warn("progress cache invalidation failed", "username", username, "error", err)
	}
	return nil
}
