// Package locator finds customer documents by deterministic text matching:
// an email, a phone number, or a personal name extracted from the query.
package locator

import (
	"go.uber.org/zap"

	"github.com/carebase/carebase/internal/domain"
	"github.com/carebase/carebase/internal/metrics"
)

// Service runs the exact-match detectors over a corpus snapshot.
type Service struct {
	logger *zap.Logger
}

// New creates a locator.
func New(logger *zap.Logger) *Service {
	return &Service{logger: logger}
}

// Locate runs the detectors in fixed priority order (email, phone, name)
// and returns the first hit. A detector that extracts a candidate but finds
// no document does not stop the cascade. Pure computation, no I/O.
func (s *Service) Locate(snap *domain.Snapshot, query string) domain.MatchResult {
	detectors := []func(*domain.Snapshot, string) (domain.MatchResult, bool){
		s.byEmail,
		s.byPhone,
		s.byName,
	}

	for _, detect := range detectors {
		if match, ok := detect(snap, query); ok {
			metrics.ExactMatchTotal.WithLabelValues(string(match.Method)).Inc()
			s.logger.Debug("Exact customer match",
				zap.String("method", string(match.Method)),
				zap.String("term", match.Term),
			)
			return match
		}
	}

	return domain.MatchResult{}
}

// eachCustomer visits customer-category documents in ascending-id order, so
// detector results are deterministic for a fixed snapshot. Visiting stops
// when fn returns false.
func eachCustomer(snap *domain.Snapshot, fn func(id int64, content string) bool) {
	for _, id := range snap.IDs {
		if snap.Categories[id] != domain.CategoryCustomers {
			continue
		}
		if !fn(id, snap.Contents[id]) {
			return
		}
	}
}
