package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/pagecraft"
	"github.com/aretw0/pagecraft/pkg/adapters/memory"
	"github.com/aretw0/pagecraft/pkg/domain"
	"github.com/aretw0/pagecraft/pkg/ports"
	"github.com/aretw0/pagecraft/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke lost updates if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) Save(ctx context.Context, docID string, data []byte) error {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Save(ctx, docID, data)
}

func (s SlowStore) Load(ctx context.Context, docID string) ([]byte, error) {
	time.Sleep(2 * time.Millisecond)
	return s.Store.Load(ctx, docID)
}

func TestManager_EditSerializesWriters(t *testing.T) {
	store := SlowStore{memory.NewStore()}
	manager := session.NewManager(store)
	ctx := context.Background()
	id := "race-test"

	var wg sync.WaitGroup
	const writers = 10
	for i := range writers {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			err := manager.Edit(ctx, id, func(eng *pagecraft.Engine) error {
				return eng.Add(domain.Node{ID: fmt.Sprintf("n%d", n), Type: "div"}, "")
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	err := manager.View(ctx, id, func(eng *pagecraft.Engine) error {
		assert.Equal(t, writers, eng.Tree().Len(), "every edit must survive")
		return nil
	})
	require.NoError(t, err)
}

func TestManager_ViewMissing(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	err := manager.View(context.Background(), "nope", func(*pagecraft.Engine) error { return nil })
	assert.ErrorIs(t, err, ports.ErrDocumentNotFound)
}

func TestManager_EditErrorDoesNotSave(t *testing.T) {
	store := memory.NewStore()
	manager := session.NewManager(store)
	ctx := context.Background()
	boom := errors.New("boom")

	err := manager.Edit(ctx, "doc", func(eng *pagecraft.Engine) error {
		_ = eng.Add(domain.Node{ID: "a", Type: "div"}, "")
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = store.Load(ctx, "doc")
	assert.ErrorIs(t, err, ports.ErrDocumentNotFound)
}

func TestManager_EditInvalidID(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	err := manager.Edit(context.Background(), "../etc", func(*pagecraft.Engine) error { return nil })
	assert.ErrorIs(t, err, ports.ErrInvalidDocumentID)
}

func TestManager_CommitHook(t *testing.T) {
	var diffs []*domain.TreeDiff
	manager := session.NewManager(memory.NewStore(), session.WithCommitHook(func(docID string, diff *domain.TreeDiff) {
		assert.Equal(t, "doc", docID)
		diffs = append(diffs, diff)
	}))
	ctx := context.Background()

	require.NoError(t, manager.Edit(ctx, "doc", func(eng *pagecraft.Engine) error {
		return eng.Add(domain.Node{ID: "a", Type: "div"}, "")
	}))
	require.NoError(t, manager.Edit(ctx, "doc", func(eng *pagecraft.Engine) error {
		eng.Update("missing", domain.NodePatch{Type: "p"})
		return nil
	}))
	require.NoError(t, manager.Edit(ctx, "doc", func(eng *pagecraft.Engine) error {
		eng.Delete("a")
		return nil
	}))

	require.Len(t, diffs, 2, "no-op edits must not notify")
	assert.Len(t, diffs[0].Added, 1)
	assert.Equal(t, []string{"a"}, diffs[1].Removed)
}

func TestManager_PutMigratesLegacy(t *testing.T) {
	store := memory.NewStore()
	manager := session.NewManager(store)
	ctx := context.Background()

	legacy := `[{"id":"a","type":"div","props":{},"children":[{"id":"b","type":"p","props":{"children":"hi"}}]}]`
	require.NoError(t, manager.Put(ctx, "doc", []byte(legacy)))

	raw, err := store.Load(ctx, "doc")
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"version":2`)
	assert.Contains(t, string(raw), `"parentId":"a"`)

	err = manager.View(ctx, "doc", func(eng *pagecraft.Engine) error {
		assert.Equal(t, "<div><p>hi</p></div>", eng.RenderHTML())
		return nil
	})
	require.NoError(t, err)
}

func TestManager_DeleteAndList(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()
	for _, id := range []string{"b", "a"} {
		require.NoError(t, manager.Put(ctx, id, []byte(`{"version":2,"components":[]}`)))
	}
	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)

	require.NoError(t, manager.Delete(ctx, "a"))
	ids, _ = manager.List(ctx)
	assert.Equal(t, []string{"b"}, ids)
}

type recordingLocker struct {
	mu     sync.Mutex
	locked []string
	ttl    time.Duration
	err    error
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.mu.Lock()
	l.locked = append(l.locked, key)
	l.ttl = ttl
	l.mu.Unlock()
	return func(context.Context) error { return errors.New("already expired") }, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &recordingLocker{}
	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(time.Second))
	ctx := context.Background()

	require.NoError(t, manager.Put(ctx, "doc", nil), "unlock errors are only logged")
	assert.Equal(t, []string{"doc"}, locker.locked)
	assert.Equal(t, time.Second, locker.ttl)

	locker.err = errors.New("redis down")
	err := manager.View(ctx, "doc", func(*pagecraft.Engine) error { return nil })
	assert.ErrorContains(t, err, "distributed lock")
}
