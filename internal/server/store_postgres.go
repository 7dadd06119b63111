package server

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresProgressStore persists completion records in PostgreSQL.
type PostgresProgressStore struct {
	pool *pgxpool.Pool
}

// NewPostgresProgressStore creates a store backed by the given pool.
func NewPostgresProgressStore(pool *pgxpool.Pool) *PostgresProgressStore {
	return &PostgresProgressStore{pool: pool}
}

func (s *PostgresProgressStore) EnsureUser(ctx context.Context, username string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO users (username) VALUES ($1) ON CONFLICT DO NOTHING`,
		username,
	)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

func (s *PostgresProgressStore) Progress(ctx context.Context, username string) ([]string, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT lesson_id FROM progress WHERE username = $1 ORDER BY completed_at`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("get progress: %w", err)
	}
	defer rows.Close()

	lessons := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan progress: %w", err)
		}
		lessons = append(lessons, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read progress: %w", err)
	}
	return lessons, nil
}

func (s *PostgresProgressStore) MarkCompleted(ctx context.Context, username, lessonID string) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO progress (username, lesson_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		username, lessonID,
	)
	if err != nil {
		return fmt.Errorf("mark completed: %w", err)
	}
	return nil
}

func (s *PostgresProgressStore) Reset(ctx context.Context, username string) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM progress WHERE username = $1`,
		username,
	)
	if err != nil {
		return fmt.Errorf("reset progress: %w", err)
	}
	return nil
}
