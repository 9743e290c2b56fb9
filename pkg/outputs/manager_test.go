package outputs

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/printdesk/pkg/adapters/memory"
	"github.com/aretw0/printdesk/pkg/domain"
	"github.com/aretw0/printdesk/pkg/ports"
)

// slowStore simulates latency to provoke lost updates if locking is missing.
type slowStore struct {
	*memory.OutputStore
}

func (s slowStore) Get(ctx context.Context, id int64) (*domain.DataOutput, error) {
	time.Sleep(2 * time.Millisecond)
	return s.OutputStore.Get(ctx, id)
}

func TestManager_UpdatesAreSerialized(t *testing.T) {
	m := NewManager(slowStore{memory.NewOutputStore()})
	ctx := context.Background()

	out := &domain.DataOutput{Kind: domain.KindLabel, Items: 20}
	require.NoError(t, m.Create(ctx, out))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := m.Update(ctx, out.ID, func(o *domain.DataOutput) error {
				o.Progress++
				return nil
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := m.Get(ctx, out.ID)
	require.NoError(t, err)
	assert.Equal(t, 20, got.Progress)
}

func TestManager_LockLifecycle(t *testing.T) {
	m := NewManager(memory.NewOutputStore())
	ctx := context.Background()

	for i := 0; i < 1000; i++ {
		out := &domain.DataOutput{Kind: domain.KindReport, Items: 1}
		require.NoError(t, m.Create(ctx, out))
		_, _ = m.Update(ctx, out.ID, func(o *domain.DataOutput) error { return nil })
	}

	assert.Empty(t, m.locks, "locks must be released after use")
}

func TestManager_UpdateMissing(t *testing.T) {
	m := NewManager(memory.NewOutputStore())
	_, err := m.Update(context.Background(), 99, func(o *domain.DataOutput) error { return nil })
	assert.ErrorIs(t, err, domain.ErrOutputNotFound)
}

type countingLocker struct {
	mu       sync.Mutex
	locked   int
	unlocked int
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	l.locked++
	l.mu.Unlock()
	return func(ctx context.Context) error {
		l.mu.Lock()
		l.unlocked++
		l.mu.Unlock()
		return nil
	}, nil
}

func TestManager_PruneUsesLocker(t *testing.T) {
	locker := &countingLocker{}
	m := NewManager(memory.NewOutputStore(), WithLocker(locker))
	ctx := context.Background()

	old := &domain.DataOutput{Kind: domain.KindLabel, Created: time.Now().Add(-48 * time.Hour)}
	require.NoError(t, m.Create(ctx, old))

	removed, err := m.Prune(ctx, time.Now().Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Len(t, removed, 1)
	assert.Equal(t, 1, locker.locked)
	assert.Equal(t, 1, locker.unlocked)
}
