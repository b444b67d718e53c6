package tasks

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskmanager/internal/models"
	"taskmanager/internal/store"
)

// failingStore rejects writes and optionally reads.
type failingStore struct {
	*store.MemoryStore
	failGet bool
}

func (f *failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	if f.failGet {
		return "", false, errors.New("storage unavailable")
	}
	return f.MemoryStore.Get(ctx, key)
}

func (f *failingStore) Set(context.Context, string, string) error {
	return errors.New("quota exceeded")
}

func TestNormalize_RoundTrip(t *testing.T) {
	tasks := fixture()

	data, err := Marshal(tasks)
	require.NoError(t, err)

	assert.Equal(t, tasks, Normalize(data, 9999))
}

func TestNormalize_LargeTimestampsSurvive(t *testing.T) {
	tasks := []models.Task{{ID: "1", Title: "X", CreatedAt: 1718000000123, UpdatedAt: 1718000000999}}

	data, err := Marshal(tasks)
	require.NoError(t, err)
	assert.Equal(t, tasks, Normalize(data, 0))
}

func TestMarshal_EmptyIsArray(t *testing.T) {
	data, err := Marshal(nil)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}

func TestNormalize_DropsMalformedRecords(t *testing.T) {
	raw := `[
		{"id":"1","title":"X"},
		{"id":2,"title":"numeric id","completed":false},
		{"id":"3","title":"string flag","completed":"true"},
		{"id":"","title":"empty id","completed":false},
		{"id":"5","title":"   ","completed":false},
		"not an object",
		null,
		{"id":"7","title":"kept","completed":true,"createdAt":10,"updatedAt":20}
	]`

	got := Normalize([]byte(raw), 9999)
	assert.Equal(t, []models.Task{
		{ID: "7", Title: "kept", Completed: true, CreatedAt: 10, UpdatedAt: 20},
	}, got)
}

func TestNormalize_MissingTimestampsUseNow(t *testing.T) {
	raw := `[
		{"id":"1","title":"no stamps","completed":false},
		{"id":"2","title":"bad stamps","completed":false,"createdAt":"yesterday","updatedAt":null},
		{"id":"3","title":"fractional","completed":false,"createdAt":12.7,"updatedAt":13}
	]`

	got := Normalize([]byte(raw), 5000)
	require.Len(t, got, 3)
	assert.Equal(t, int64(5000), got[0].CreatedAt)
	assert.Equal(t, int64(5000), got[0].UpdatedAt)
	assert.Equal(t, int64(5000), got[1].CreatedAt)
	assert.Equal(t, int64(5000), got[1].UpdatedAt)
	assert.Equal(t, int64(12), got[2].CreatedAt)
	assert.Equal(t, int64(13), got[2].UpdatedAt)
}

func TestNormalize_RepairsInvariants(t *testing.T) {
	raw := `[
		{"id":"1","title":"first","completed":false,"createdAt":10,"updatedAt":10},
		{"id":"1","title":"duplicate","completed":false,"createdAt":20,"updatedAt":20},
		{"id":"2","title":"backwards","completed":false,"createdAt":50,"updatedAt":40}
	]`

	got := Normalize([]byte(raw), 0)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Title)
	assert.Equal(t, int64(50), got[1].UpdatedAt)
}

func TestNormalize_NotAnArray(t *testing.T) {
	for _, raw := range []string{`{"id":"1"}`, `garbage`, ``, `42`} {
		assert.Empty(t, Normalize([]byte(raw), 0), raw)
	}
}

func TestPersistence_LoadAbsent(t *testing.T) {
	p := NewPersistence(store.NewMemoryStore())

	tasks, ok := p.Load(context.Background())
	assert.False(t, ok)
	assert.Nil(t, tasks)
}

func TestPersistence_LoadCorrupt(t *testing.T) {
	kv := store.NewMemoryStore()
	require.NoError(t, kv.Set(context.Background(), StorageKey, "{not json"))

	_, ok := NewPersistence(kv).Load(context.Background())
	assert.False(t, ok)
}

func TestPersistence_LoadReadError(t *testing.T) {
	p := NewPersistence(&failingStore{MemoryStore: store.NewMemoryStore(), failGet: true})

	_, ok := p.Load(context.Background())
	assert.False(t, ok)
}

func TestPersistence_SaveThenLoad(t *testing.T) {
	p := NewPersistence(store.NewMemoryStore())
	ctx := context.Background()

	require.NoError(t, p.Save(ctx, fixture()))

	tasks, ok := p.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, fixture(), tasks)
}

func TestPersistence_SaveOnSQLite(t *testing.T) {
	kv, err := store.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	p := NewPersistence(kv)
	ctx := context.Background()

	require.NoError(t, p.Save(ctx, fixture()))
	tasks, ok := p.Load(ctx)
	require.True(t, ok)
	assert.Equal(t, fixture(), tasks)
}

func TestPersistence_SaveError(t *testing.T) {
	p := NewPersistence(&failingStore{MemoryStore: store.NewMemoryStore()})

	assert.Error(t, p.Save(context.Background(), fixture()))
}
