// Package corpus owns the process-wide document cache: one immutable
// snapshot shared by all query handlers, replaced wholesale on refresh.
package corpus

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/carebase/carebase/internal/domain"
	"github.com/carebase/carebase/internal/metrics"
)

// Stats summarizes the current cache generation.
type Stats struct {
	Documents  int            `json:"documents"`
	Categories map[string]int `json:"categories"`
}

// Service memoizes the corpus snapshot. Reads are lock-free; loading is
// serialized so at most one store read is in flight at a time.
type Service struct {
	loader Loader
	logger *zap.Logger

	mu   sync.Mutex // serializes Load calls (first Get, every Refresh)
	snap atomic.Pointer[domain.Snapshot]
}

// New creates a corpus cache. No load happens until the first Get or Refresh.
func New(loader Loader, logger *zap.Logger) *Service {
	return &Service{loader: loader, logger: logger}
}

// Get returns the memoized snapshot, loading it on first use. A failed load
// memoizes nothing: the error goes to the caller and the next Get retries.
func (s *Service) Get(ctx context.Context) (*domain.Snapshot, error) {
	if snap := s.snap.Load(); snap != nil {
		return snap, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Another caller may have finished the first load while we waited.
	if snap := s.snap.Load(); snap != nil {
		return snap, nil
	}

	return s.load(ctx)
}

// Refresh reloads the corpus and atomically swaps the snapshot, even when
// the new generation is smaller. On failure the previous generation stays
// authoritative and the error is returned.
func (s *Service) Refresh(ctx context.Context) (*domain.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.snap.Load()
	snap, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("Refreshed corpus cache",
		zap.Int("documents", snap.Len()),
		zap.Int("previous_documents", prev.Len()),
	)
	return snap, nil
}

// Stats reports the document count and per-category counts of the current
// generation, loading the corpus first if needed.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	snap, err := s.Get(ctx)
	if err != nil {
		return Stats{}, err
	}
	return StatsFor(snap), nil
}

// StatsFor summarizes one snapshot.
func StatsFor(snap *domain.Snapshot) Stats {
	categories := make(map[string]int)
	for _, category := range snap.Categories {
		categories[category]++
	}
	return Stats{Documents: snap.Len(), Categories: categories}
}

// load must be called with mu held. It publishes the new snapshot with one
// atomic store so concurrent readers see either the old or the new
// generation in full.
func (s *Service) load(ctx context.Context) (*domain.Snapshot, error) {
	snap, err := s.loader.Load(ctx)
	if err != nil {
		metrics.CorpusReloadsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	s.snap.Store(snap)
	metrics.CorpusReloadsTotal.WithLabelValues("success").Inc()
	metrics.CorpusDocuments.Set(float64(snap.Len()))
	return snap, nil
}
