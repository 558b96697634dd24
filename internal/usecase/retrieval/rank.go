package retrieval

import (
	"sort"

	"github.com/carebase/carebase/internal/domain"
)

// RankedHit is one semantically ranked document. Transient, never persisted.
type RankedHit struct {
	ID       int64
	Content  string
	Category string
	Score    float64
}

// rankTopK scores every snapshot row against the query vector and returns
// the k best hits ordered by score descending, ties broken by ascending id.
// Rows for which exclude returns true are skipped before selection. The
// ordering is a total order, so the result is deterministic for a fixed
// snapshot and query vector.
func rankTopK(snap *domain.Snapshot, queryVec []float32, k int, exclude func(RankedHit) bool) []RankedHit {
	hits := make([]RankedHit, 0, snap.Len())
	for i := range snap.IDs {
		doc := snap.Document(i)
		hit := RankedHit{
			ID:       doc.ID,
			Content:  doc.Content,
			Category: doc.Category,
			Score:    domain.CosineSimilarity(queryVec, snap.Vectors[i]),
		}
		if exclude != nil && exclude(hit) {
			continue
		}
		hits = append(hits, hit)
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].ID < hits[j].ID
	})

	if k < 0 {
		k = 0
	}
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits
}
