package store

import (
	"context"
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/baxromumarov/wordfreq/internal/textproc"
)

type Store struct {
	db *sqlx.DB
}

func NewStore(connStr string) (*Store, error) {
	db, err := sqlx.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping db: %w", err)
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an existing connection.
func NewWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) RunMigrations(schemaPath string) error {
	content, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("failed to read schema file: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, string(content)); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	return nil
}

func clampLimit(limit int, defaultLimit, maxLimit int) int {
	if limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// TopWords is stored as a JSONB array.
type TopWords []textproc.WordCount

func (t TopWords) Value() (driver.Value, error) {
	if t == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(t)
}

func (t *TopWords) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	case nil:
		*t = TopWords{}
		return nil
	default:
		return errors.New("top_words: unsupported column type")
	}
	return json.Unmarshal(raw, t)
}

type Analysis struct {
	ID            uuid.UUID `db:"id" json:"id"`
	URL           string    `db:"url" json:"url"`
	Title         string    `db:"title" json:"title"`
	TokenCount    int       `db:"token_count" json:"token_count"`
	DistinctCount int       `db:"distinct_count" json:"distinct_count"`
	TopWords      TopWords  `db:"top_words" json:"top_words"`
	DurationMS    int64     `db:"duration_ms" json:"duration_ms"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
}

// SaveAnalysis inserts a record, assigning an id and timestamp when unset.
func (s *Store) SaveAnalysis(ctx context.Context, a *Analysis) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.NamedExecContext(ctx, `
INSERT INTO analyses (id, url, title, token_count, distinct_count, top_words, duration_ms, created_at)
VALUES (:id, :url, :title, :token_count, :distinct_count, :top_words, :duration_ms, :created_at)
`, a)
	if err != nil {
		return fmt.Errorf("insert analysis: %w", err)
	}
	return nil
}

func (s *Store) ListAnalyses(ctx context.Context, limit, offset int) ([]Analysis, int, error) {
	limit = clampLimit(limit, 20, 200)
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := s.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM analyses`); err != nil {
		return nil, 0, fmt.Errorf("count analyses: %w", err)
	}

	var out []Analysis
	err := s.db.SelectContext(ctx, &out, `
SELECT id, url, title, token_count, distinct_count, top_words, duration_ms, created_at
FROM analyses
ORDER BY created_at DESC
LIMIT $1 OFFSET $2
`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list analyses: %w", err)
	}
	return out, total, nil
}

// DeleteOlderThan removes analyses created before now-maxAge.
func (s *Store) DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM analyses WHERE created_at < $1`, time.Now().Add(-maxAge))
	if err != nil {
		return 0, fmt.Errorf("delete analyses: %w", err)
	}
	return res.RowsAffected()
}
