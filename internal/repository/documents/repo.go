// Package documents loads the embedded document corpus from the backing
// store and materializes it as an immutable snapshot.
package documents

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/carebase/carebase/internal/domain"
)

// Repo reads (id, content, embedding) rows from a SQL table.
type Repo struct {
	db     *sql.DB
	table  string
	logger *zap.Logger
}

// New creates a document repository over the given table. The table name
// must already be validated by config (it is interpolated into the query).
func New(sdb *sql.DB, table string, logger *zap.Logger) *Repo {
	return &Repo{db: sdb, table: table, logger: logger}
}

// Ping checks store connectivity.
func (r *Repo) Ping(ctx context.Context) error {
	if err := r.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %w", domain.ErrStoreUnavailable, err)
	}
	return nil
}

// Load reads every row ordered by id and builds one snapshot.
//
// A malformed embedding, a dimension mismatch, or a duplicate logical id
// fails the whole load: dropping single rows would misalign the content maps
// and the vector matrix. An empty table yields a valid empty snapshot.
func (r *Repo) Load(ctx context.Context) (*domain.Snapshot, error) {
	query := fmt.Sprintf("SELECT id, content, embedding FROM %s ORDER BY id", r.table)

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: query %s: %w", domain.ErrStoreUnavailable, r.table, err)
	}
	defer rows.Close()

	type entry struct {
		id  int64
		vec []float32
	}

	contents := make(map[int64]string)
	categories := make(map[int64]string)
	var entries []entry
	dim := -1

	for rows.Next() {
		var (
			physID  int64
			content string
			rawVec  []byte
		)
		if err := rows.Scan(&physID, &content, &rawVec); err != nil {
			return nil, fmt.Errorf("%w: scan row: %w", domain.ErrStoreUnavailable, err)
		}

		var vec []float32
		if err := json.Unmarshal(rawVec, &vec); err != nil {
			return nil, fmt.Errorf("%w: row %d: embedding is not a JSON float array: %w",
				domain.ErrCorruptDocument, physID, err)
		}
		if len(vec) == 0 {
			return nil, fmt.Errorf("%w: row %d: empty embedding vector", domain.ErrCorruptDocument, physID)
		}
		if dim == -1 {
			dim = len(vec)
		} else if len(vec) != dim {
			return nil, fmt.Errorf("%w: row %d: vector dimension %d, want %d",
				domain.ErrCorruptDocument, physID, len(vec), dim)
		}

		id := physID
		category := domain.CategoryUnknown
		text := content
		if env, ok := parseEnvelope(content); ok {
			category = env.Category
			text = env.Content
			if env.LogicalID != nil {
				id = *env.LogicalID
			}
		}

		if _, dup := contents[id]; dup {
			return nil, fmt.Errorf("%w: duplicate document id %d", domain.ErrCorruptDocument, id)
		}

		contents[id] = text
		categories[id] = category
		entries = append(entries, entry{id: id, vec: vec})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: read rows: %w", domain.ErrStoreUnavailable, err)
	}

	// Logical re-keying can permute ids relative to physical row order;
	// sort so the snapshot's id ↔ vector-row correspondence is canonical.
	sort.Slice(entries, func(i, j int) bool { return entries[i].id < entries[j].id })

	ids := make([]int64, len(entries))
	vectors := make([][]float32, len(entries))
	for i, e := range entries {
		ids[i] = e.id
		vectors[i] = e.vec
	}

	r.logger.Info("Loaded document corpus",
		zap.Int("documents", len(ids)),
		zap.Int("dimensions", max(dim, 0)),
	)

	return &domain.Snapshot{
		IDs:        ids,
		Contents:   contents,
		Categories: categories,
		Vectors:    vectors,
	}, nil
}
