// Package cleanup runs the periodic background loop that retires old search
// index generations behind the search alias, keeping only the most recent N.
package cleanup

import (
	"context"
	"log/slog"
	"time"
)

// Indexer is the subset of the search client's index-lifecycle operations
// the cleanup loop depends on. Satisfied by *search.Client.
type Indexer interface {
	Cleanup(ctx context.Context, keep int) (removed []string, err error)
}

// Config controls how often the cleanup loop runs and how many index
// generations it retains.
type Config struct {
	Interval time.Duration
	Keep     int
}

// Service periodically removes search index generations beyond the most
// recent Keep, so that a paused or failed migration never accumulates
// indices without bound. All operations are idempotent and safe to run
// from multiple processes concurrently, since index deletion in
// Elasticsearch is itself idempotent.
type Service struct {
	config  Config
	indexer Indexer

	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a new index cleanup service.
func NewService(cfg Config, indexer Indexer) *Service {
	return &Service{config: cfg, indexer: indexer}
}

// Start launches the background cleanup loop.
func (s *Service) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go s.run(ctx)

	slog.Info("index cleanup service started",
		"keep", s.config.Keep,
		"interval", s.config.Interval)
}

// Stop signals the cleanup loop to exit and waits for it to finish.
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("index cleanup service stopped")
}

func (s *Service) run(ctx context.Context) {
	defer close(s.done)

	s.runOnce(ctx)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Service) runOnce(ctx context.Context) {
	removed, err := s.indexer.Cleanup(ctx, s.config.Keep)
	if err != nil {
		slog.Error("index cleanup failed", "error", err)
		return
	}
	if len(removed) > 0 {
		slog.Info("index cleanup removed stale generations", "count", len(removed), "indices", removed)
	}
}
