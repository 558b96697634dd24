package corpus

import (
	"context"

	"github.com/carebase/carebase/internal/domain"
)

// Loader reads the full document corpus from the backing store.
type Loader interface {
	Load(ctx context.Context) (*domain.Snapshot, error)
}
