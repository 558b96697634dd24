package corpus

import (
	"context"
	"errors"
	"sync"
	"testing"

	"go.uber.org/zap"

	"github.com/carebase/carebase/internal/domain"
)

type mockLoader struct {
	mu    sync.Mutex
	calls int
	fn    func(ctx context.Context) (*domain.Snapshot, error)
}

func (m *mockLoader) Load(ctx context.Context) (*domain.Snapshot, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	return m.fn(ctx)
}

func (m *mockLoader) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func snapshotOf(ids ...int64) *domain.Snapshot {
	contents := make(map[int64]string, len(ids))
	categories := make(map[int64]string, len(ids))
	vectors := make([][]float32, len(ids))
	for i, id := range ids {
		contents[id] = "doc"
		categories[id] = domain.CategoryUnknown
		vectors[i] = []float32{float32(id)}
	}
	return &domain.Snapshot{IDs: ids, Contents: contents, Categories: categories, Vectors: vectors}
}

func TestGet_MemoizesFirstLoad(t *testing.T) {
	loader := &mockLoader{fn: func(context.Context) (*domain.Snapshot, error) {
		return snapshotOf(1, 2), nil
	}}
	svc := New(loader, zap.NewNop())

	first, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	second, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	if first != second {
		t.Error("expected the same memoized snapshot pointer")
	}
	if loader.callCount() != 1 {
		t.Errorf("expected 1 load, got %d", loader.callCount())
	}
}

func TestGet_FailedLoadIsNotMemoized(t *testing.T) {
	fail := true
	loader := &mockLoader{fn: func(context.Context) (*domain.Snapshot, error) {
		if fail {
			return nil, domain.ErrStoreUnavailable
		}
		return snapshotOf(1), nil
	}}
	svc := New(loader, zap.NewNop())

	if _, err := svc.Get(context.Background()); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}

	fail = false
	snap, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get after recovery: %v", err)
	}
	if snap.Len() != 1 {
		t.Errorf("expected recovered snapshot, got %d docs", snap.Len())
	}
	if loader.callCount() != 2 {
		t.Errorf("expected 2 loads, got %d", loader.callCount())
	}
}

func TestRefresh_SwapsEvenWhenSmaller(t *testing.T) {
	next := snapshotOf(1, 2, 3)
	loader := &mockLoader{fn: func(context.Context) (*domain.Snapshot, error) {
		return next, nil
	}}
	svc := New(loader, zap.NewNop())

	if _, err := svc.Get(context.Background()); err != nil {
		t.Fatalf("Get: %v", err)
	}

	next = snapshotOf(7)
	refreshed, err := svc.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.Len() != 1 {
		t.Fatalf("expected shrunk generation of 1 doc, got %d", refreshed.Len())
	}

	current, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if current != refreshed {
		t.Error("Get did not observe the refreshed generation")
	}
}

func TestRefresh_FailureKeepsPreviousGeneration(t *testing.T) {
	fail := false
	loader := &mockLoader{fn: func(context.Context) (*domain.Snapshot, error) {
		if fail {
			return nil, domain.ErrStoreUnavailable
		}
		return snapshotOf(1, 2), nil
	}}
	svc := New(loader, zap.NewNop())

	original, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	fail = true
	if _, err := svc.Refresh(context.Background()); !errors.Is(err, domain.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}

	current, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if current != original {
		t.Error("failed refresh must leave the previous generation in place")
	}
}

func TestStats_CountsPerCategory(t *testing.T) {
	snap := snapshotOf(1, 2, 3)
	snap.Categories[1] = domain.CategoryCustomers
	snap.Categories[2] = domain.CategoryCustomers
	snap.Categories[3] = "treatments"

	loader := &mockLoader{fn: func(context.Context) (*domain.Snapshot, error) {
		return snap, nil
	}}
	svc := New(loader, zap.NewNop())

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Documents != 3 {
		t.Errorf("documents: got %d, want 3", stats.Documents)
	}
	if stats.Categories[domain.CategoryCustomers] != 2 || stats.Categories["treatments"] != 1 {
		t.Errorf("categories: got %v", stats.Categories)
	}
}

// Readers racing a refresh must observe generation N or N+1 in full,
// never content from one and vectors from the other.
func TestGet_ConsistentUnderConcurrentRefresh(t *testing.T) {
	gen := 0
	loader := &mockLoader{fn: func(context.Context) (*domain.Snapshot, error) {
		gen++
		ids := make([]int64, gen)
		for i := range ids {
			ids[i] = int64(gen*100 + i)
		}
		return snapshotOf(ids...), nil
	}}
	svc := New(loader, zap.NewNop())

	if _, err := svc.Get(context.Background()); err != nil {
		t.Fatalf("initial Get: %v", err)
	}

	var wg sync.WaitGroup
	errs := make(chan error, 50)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				snap, err := svc.Get(context.Background())
				if err != nil {
					errs <- err
					return
				}
				if len(snap.IDs) != len(snap.Vectors) || snap.Len() != len(snap.Contents) {
					errs <- errors.New("torn snapshot: structure sizes disagree")
					return
				}
				for k, id := range snap.IDs {
					if int64(snap.Vectors[k][0]) != id {
						errs <- errors.New("torn snapshot: vector row does not belong to id")
						return
					}
					if _, ok := snap.Contents[id]; !ok {
						errs <- errors.New("torn snapshot: id missing from content map")
						return
					}
				}
			}
		}()
	}

	for i := 0; i < 10; i++ {
		if _, err := svc.Refresh(context.Background()); err != nil {
			t.Fatalf("Refresh: %v", err)
		}
	}

	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}
