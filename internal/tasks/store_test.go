package tasks

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmanager/internal/models"
	"taskmanager/internal/store"
)

type fakeClock struct {
	mu sync.Mutex
	ms int64
}

func (c *fakeClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ms++
	return c.ms
}

func openTestStore(t *testing.T, kv store.Store) *Store {
	t.Helper()
	clock := &fakeClock{ms: 1000}
	s := Open(context.Background(), kv, Options{Now: clock.Now, NewID: sequentialIDs()})
	t.Cleanup(s.Close)
	return s
}

func TestStore_StartsEmptyWithoutData(t *testing.T) {
	s := openTestStore(t, store.NewMemoryStore())

	assert.Empty(t, s.Tasks())
	assert.Equal(t, models.Counts{}, s.Counts())
}

func TestStore_StartsEmptyOnMalformedRecords(t *testing.T) {
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), StorageKey, `[{"id":"1","title":"X"}]`))

	s := openTestStore(t, kv)
	assert.Empty(t, s.Tasks())
}

func TestStore_Scenario(t *testing.T) {
	s := openTestStore(t, store.NewMemoryStore())

	s.Add("A")
	s.Add("B")
	tasks := s.Tasks()
	require.Len(t, tasks, 2)
	assert.Equal(t, "B", tasks[0].Title)
	assert.Equal(t, "A", tasks[1].Title)

	s.Toggle(tasks[1].ID)
	assert.Equal(t, models.Counts{Total: 2, Completed: 1, Remaining: 1}, s.Counts())

	s.ClearCompleted()
	tasks = s.Tasks()
	require.Len(t, tasks, 1)
	assert.Equal(t, "B", tasks[0].Title)
}

func TestStore_ReplaceIgnoresPriorState(t *testing.T) {
	s := openTestStore(t, store.NewMemoryStore())
	s.Add("old")

	s.Replace(fixture())
	assert.Equal(t, fixture(), s.Tasks())

	s.Reset()
	assert.Empty(t, s.Tasks())
}

func TestStore_SnapshotsAreCopies(t *testing.T) {
	s := openTestStore(t, store.NewMemoryStore())
	s.Add("A")

	snapshot := s.Tasks()
	snapshot[0].Title = "changed outside"

	assert.Equal(t, "A", s.Tasks()[0].Title)
}

func TestStore_PersistsChanges(t *testing.T) {
	kv := store.NewMemoryStore()
	s := openTestStore(t, kv)

	s.Add("Buy milk")
	s.Add("Walk dog")
	s.Flush()

	saved, ok := NewPersistence(kv).Load(context.Background())
	require.True(t, ok)
	assert.Equal(t, s.Tasks(), saved)
}

func TestStore_CloseFlushesAndReopenRestores(t *testing.T) {
	kv := store.NewMemoryStore()

	first := Open(context.Background(), kv, Options{})
	first.Add("Buy milk")
	first.Add("Walk dog")
	want := first.Tasks()
	first.Close()

	second := Open(context.Background(), kv, Options{})
	defer second.Close()
	assert.Equal(t, want, second.Tasks())
}

func TestStore_PersistenceFailureKeepsMemoryState(t *testing.T) {
	s := openTestStore(t, &failingStore{MemoryStore: store.NewMemoryStore()})

	assert.NotPanics(t, func() {
		s.Add("A")
		s.Flush()
		s.Add("B")
		s.Flush()
	})

	assert.Len(t, s.Tasks(), 2)
}

func TestStore_NoopDoesNotPersist(t *testing.T) {
	kv := store.NewMemoryStore()
	s := openTestStore(t, kv)

	s.Add("   ")
	s.Toggle("missing")
	s.ClearCompleted()
	s.Flush()

	_, ok, err := kv.Get(context.Background(), StorageKey)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStore_SubscribeReceivesChanges(t *testing.T) {
	s := openTestStore(t, store.NewMemoryStore())

	var got [][]models.Task
	unsubscribe := s.Subscribe(func(tasks []models.Task) {
		got = append(got, tasks)
	})

	s.Add("A")
	s.Add("   ") // no-op, no notification
	s.Add("B")
	unsubscribe()
	unsubscribe()
	s.Add("C")

	require.Len(t, got, 2)
	assert.Len(t, got[0], 1)
	assert.Len(t, got[1], 2)
}

func TestStore_FilteredAndSorted(t *testing.T) {
	s := openTestStore(t, store.NewMemoryStore())
	s.Replace(fixture())

	got := s.FilteredAndSorted(models.FilterCompleted, "")
	assert.Equal(t, []string{"c", "a"}, ids(got))

	got = s.FilteredAndSorted(models.FilterAll, "MILK")
	assert.Equal(t, []string{"b"}, ids(got))
}

func TestStore_LoadSample(t *testing.T) {
	s := openTestStore(t, store.NewMemoryStore())
	s.Add("will be replaced")

	s.LoadSample()
	counts := s.Counts()
	assert.Equal(t, len(sampleTitles), counts.Total)
	assert.Equal(t, 1, counts.Completed)
}

func TestStore_ConcurrentCommands(t *testing.T) {
	s := openTestStore(t, store.NewMemoryStore())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Add("task")
			_ = s.Counts()
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, s.Counts().Total)
}

func TestStore_UseAfterClosePanics(t *testing.T) {
	s := openTestStore(t, store.NewMemoryStore())
	s.Close()
	s.Close() // idempotent

	assert.Panics(t, func() { s.Add("A") })
	assert.Panics(t, func() { s.Tasks() })
}

func TestStore_NilPanics(t *testing.T) {
	var s *Store
	assert.Panics(t, func() { s.Tasks() })
	assert.Panics(t, func() { Open(context.Background(), nil, Options{}) })
}
