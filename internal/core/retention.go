package core

import (
	"context"
	"log/slog"
	"time"
)

// Pruner deletes history older than a cutoff.
type Pruner interface {
	DeleteOlderThan(ctx context.Context, maxAge time.Duration) (int64, error)
}

// RetentionService trims the analysis history once a day.
type RetentionService struct {
	pruner   Pruner
	maxAge   time.Duration
	interval time.Duration
}

func NewRetentionService(pruner Pruner, maxAge time.Duration) *RetentionService {
	return &RetentionService{pruner: pruner, maxAge: maxAge, interval: 24 * time.Hour}
}

func (s *RetentionService) Start(ctx context.Context) {
	if s.maxAge <= 0 {
		return
	}
	go s.run(ctx)
}

func (s *RetentionService) run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	// Run immediately on startup
	s.cleanup(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.cleanup(ctx)
		}
	}
}

func (s *RetentionService) cleanup(ctx context.Context) {
	count, err := s.pruner.DeleteOlderThan(ctx, s.maxAge)
	if err != nil {
		slog.Error("retention: failed to delete old analyses", "error", err)
		return
	}
	slog.Info("retention: deleted old analyses", "count", count)
}
