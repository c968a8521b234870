package session_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/workpad"
	"github.com/aretw0/workpad/pkg/domain"
	"github.com/aretw0/workpad/pkg/ports"
	"github.com/aretw0/workpad/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	data  map[string]*domain.Workpad
	saves int
	mu    sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, wp *domain.Workpad) error {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.data == nil {
		s.data = make(map[string]*domain.Workpad)
	}
	s.data[wp.ID] = wp
	s.saves++
	return nil
}

func (s *SlowStore) Load(ctx context.Context, id string) (*domain.Workpad, error) {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	s.mu.Lock()
	defer s.mu.Unlock()

	if wp, ok := s.data[id]; ok {
		return wp, nil
	}
	return nil, domain.ErrWorkpadNotFound
}

func (s *SlowStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *SlowStore) saveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saves
}

func newWorkpad(id string) *domain.Workpad {
	page := domain.NewPage("page-1")
	page.Elements = []domain.Element{
		{ID: "a", Expression: "markdown", Position: domain.Position{Type: domain.PositionTypeElement}},
	}
	return domain.NewWorkpad(id, page)
}

func TestManager_ApplyNoLostUpdates(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store, workpad.New())
	ctx := context.Background()
	id := "race-test"

	require.NoError(t, manager.Create(ctx, newWorkpad(id)))

	var wg sync.WaitGroup
	concurrentWrites := 10

	for i := 0; i < concurrentWrites; i++ {
		wg.Add(1)
		go func(val int) {
			defer wg.Done()

			cmd := domain.AddElement{PageID: "page-1", Element: domain.Element{
				ID:       fmt.Sprintf("added-%d", val),
				Position: domain.Position{Type: domain.PositionTypeElement},
			}}
			_, diff, err := manager.Apply(ctx, id, cmd)
			assert.NoError(t, err)
			assert.NotNil(t, diff)
		}(i)
	}
	wg.Wait()

	wp, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, wp.Pages[0].Elements, concurrentWrites+1, "every concurrent add must survive")
}

func TestManager_ApplyReturnsDiff(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store, workpad.New())
	ctx := context.Background()

	require.NoError(t, manager.Create(ctx, newWorkpad("wp")))

	wp, diff, err := manager.Apply(ctx, "wp",
		domain.SetExpression{PageID: "page-1", ElementID: "a", Expression: "table"},
	)
	require.NoError(t, err)
	assert.Equal(t, "table", wp.Pages[0].Elements[0].Expression)
	require.NotNil(t, diff)
	require.Len(t, diff.Pages, 1)
	assert.Equal(t, []string{"a"}, diff.Pages[0].Changed)
}

func TestManager_ApplyNoopSkipsSave(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store, workpad.New())
	ctx := context.Background()

	require.NoError(t, manager.Create(ctx, newWorkpad("wp")))
	before := store.saveCount()

	wp, diff, err := manager.Apply(ctx, "wp",
		domain.SetExpression{PageID: "missing", ElementID: "a", Expression: "table"},
		domain.ElementLayer{PageID: "page-1", ElementID: "a", Movement: domain.MoveToFront},
	)
	require.NoError(t, err)
	assert.NotNil(t, wp)
	assert.Nil(t, diff)
	assert.Equal(t, before, store.saveCount())
}

func TestManager_ApplyErrorPersistsNothing(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store, workpad.New())
	ctx := context.Background()

	require.NoError(t, manager.Create(ctx, newWorkpad("wp")))

	_, diff, err := manager.Apply(ctx, "wp",
		domain.SetExpression{PageID: "page-1", ElementID: "a", Expression: "changed"},
		domain.ElementLayer{PageID: "page-1", ElementID: "a", Movement: domain.Movement(0.5)},
	)
	assert.ErrorIs(t, err, domain.ErrInvalidMovement)
	assert.Nil(t, diff)

	wp, err := manager.Load(ctx, "wp")
	require.NoError(t, err)
	assert.Equal(t, "markdown", wp.Pages[0].Elements[0].Expression)
}

func TestManager_ApplyUnknownWorkpad(t *testing.T) {
	manager := session.NewManager(&SlowStore{}, workpad.New())

	_, _, err := manager.Apply(context.Background(), "ghost", domain.RemoveElements{PageID: "p"})
	assert.ErrorIs(t, err, domain.ErrWorkpadNotFound)
}

func TestManager_CreateConcurrent(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store, workpad.New())
	ctx := context.Background()
	id := "atomic-init"

	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		exists  int
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.Create(ctx, newWorkpad(id))

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, domain.ErrWorkpadExists):
				exists++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, 1, exists)

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{id}, ids)
}

type recordingLocker struct {
	mu       sync.Mutex
	keys     []string
	ttls     []time.Duration
	unlocked int
	failLock bool
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failLock {
		return nil, errors.New("lock unavailable")
	}
	l.keys = append(l.keys, key)
	l.ttls = append(l.ttls, ttl)
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocked++
		return nil
	}, nil
}

func TestManager_DistributedLock(t *testing.T) {
	locker := &recordingLocker{}
	manager := session.NewManager(&SlowStore{}, workpad.New(),
		session.WithLocker(locker),
		session.WithLockTTL(5*time.Second),
	)
	ctx := context.Background()

	require.NoError(t, manager.Create(ctx, newWorkpad("wp")))
	_, _, err := manager.Apply(ctx, "wp", domain.SetFilter{PageID: "page-1", ElementID: "a", Filter: "x"})
	require.NoError(t, err)

	assert.Equal(t, []string{"wp", "wp"}, locker.keys)
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second}, locker.ttls)
	assert.Equal(t, 2, locker.unlocked)
}

func TestManager_DistributedLockFailure(t *testing.T) {
	manager := session.NewManager(&SlowStore{}, workpad.New(),
		session.WithLocker(&recordingLocker{failLock: true}),
	)

	_, err := manager.Load(context.Background(), "wp")
	assert.ErrorContains(t, err, "failed to acquire distributed lock")
}
