// Package retrieval assembles the context block for a staff query: an exact
// customer match merged with its semantic neighbors, or a pure
// similarity-ranked fallback.
package retrieval

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/carebase/carebase/internal/domain"
	"github.com/carebase/carebase/internal/metrics"
)

// DefaultTopK is used when the caller does not specify a result count.
const DefaultTopK = 3

// similarityThreshold is the fixed acceptance floor for the pure semantic
// path; hits must score strictly above it to be shown.
const similarityThreshold = 0.10

const (
	msgNoEmbeddings = "❌ Không có dữ liệu embedding trong database. Vui lòng nạp dữ liệu và làm mới cache."
	msgNoMatch      = "❌ Không tìm thấy thông tin phù hợp. Vui lòng kiểm tra lại tên khách hàng, số điện thoại, email hoặc thử với từ khóa khác."

	semanticHeader = "📊 Kết quả tìm kiếm ngữ nghĩa từ database:"
	blockDelimiter = "\n\n---\n\n"
)

// Service is the hybrid retriever.
type Service struct {
	corpus      SnapshotProvider
	locator     Locator
	embed       Embedder
	defaultTopK int
	logger      *zap.Logger
}

// New creates a retriever. defaultTopK <= 0 falls back to DefaultTopK.
func New(corpus SnapshotProvider, locator Locator, embed Embedder, defaultTopK int, logger *zap.Logger) *Service {
	if defaultTopK <= 0 {
		defaultTopK = DefaultTopK
	}
	return &Service{
		corpus:      corpus,
		locator:     locator,
		embed:       embed,
		defaultTopK: defaultTopK,
		logger:      logger,
	}
}

// Retrieve returns a formatted context block for the query, never an empty
// string: an exact-match merge, a semantic ranking, or one of the in-band
// informational messages. Only corpus-load and embedding failures are
// returned as errors.
func (s *Service) Retrieve(ctx context.Context, query string, k int) (string, error) {
	if k <= 0 {
		k = s.defaultTopK
	}

	snap, err := s.corpus.Get(ctx)
	if err != nil {
		return "", err
	}

	if snap.Empty() {
		metrics.RetrievalRequestsTotal.WithLabelValues("empty_corpus").Inc()
		return msgNoEmbeddings, nil
	}

	if match := s.locator.Locate(snap, query); match.Found {
		return s.retrieveExact(ctx, snap, query, match, k)
	}
	return s.retrieveSemantic(ctx, snap, query, k)
}

// retrieveExact merges the located document with its k-1 nearest semantic
// neighbors. The combined query (original text + matched content) anchors
// the neighborhood around the customer, and any row whose content is
// byte-identical to the match is excluded so the document never appears
// twice.
func (s *Service) retrieveExact(
	ctx context.Context, snap *domain.Snapshot, query string, match domain.MatchResult, k int,
) (string, error) {
	combined := query + "\n\n" + match.Content

	result, err := s.embed.Embed(ctx, combined)
	if err != nil {
		return "", fmt.Errorf("embed combined query: %w", err)
	}

	hits := rankTopK(snap, result.Embedding, k-1, func(h RankedHit) bool {
		return h.Content == match.Content
	})

	metrics.RetrievalRequestsTotal.WithLabelValues("exact").Inc()
	s.logger.Debug("Exact-match retrieval",
		zap.String("method", string(match.Method)),
		zap.Int("neighbors", len(hits)),
	)

	var b strings.Builder
	fmt.Fprintf(&b, "✅ Đã tìm thấy khách hàng theo %s: %s\n\n%s",
		match.Method.Label(), match.Term, match.Content)
	for _, h := range hits {
		b.WriteString(blockDelimiter)
		writeHit(&b, h)
	}
	return b.String(), nil
}

// retrieveSemantic ranks the whole corpus against the raw query and keeps
// the top k hits scoring above the acceptance threshold.
func (s *Service) retrieveSemantic(
	ctx context.Context, snap *domain.Snapshot, query string, k int,
) (string, error) {
	result, err := s.embed.Embed(ctx, query)
	if err != nil {
		return "", fmt.Errorf("embed query: %w", err)
	}

	hits := rankTopK(snap, result.Embedding, k, nil)

	kept := hits[:0]
	for _, h := range hits {
		if h.Score > similarityThreshold {
			kept = append(kept, h)
		}
	}

	if len(kept) == 0 {
		metrics.RetrievalRequestsTotal.WithLabelValues("no_match").Inc()
		return msgNoMatch, nil
	}

	metrics.RetrievalRequestsTotal.WithLabelValues("semantic").Inc()
	s.logger.Debug("Semantic retrieval",
		zap.Int("hits", len(kept)),
		zap.Float64("top_score", kept[0].Score),
	)

	var b strings.Builder
	b.WriteString(semanticHeader)
	b.WriteString("\n\n")
	for i, h := range kept {
		if i > 0 {
			b.WriteString(blockDelimiter)
		}
		writeHit(&b, h)
	}
	return b.String(), nil
}

func writeHit(b *strings.Builder, h RankedHit) {
	fmt.Fprintf(b, "🔍 Độ tương đồng: %.3f\n%s", h.Score, h.Content)
}
