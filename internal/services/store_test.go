package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"advisingdash/internal/dataset"
	"advisingdash/internal/infrastructure"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 8, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type eventRecorder struct {
	mu     sync.Mutex
	events []DatasetEvent
}

func (r *eventRecorder) observe(ev DatasetEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
}

func (r *eventRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Type + ":" + ev.Reason
	}
	return out
}

func newTestStore(opts StoreOptions) (*Store, *fakeClock, *eventRecorder) {
	clock := newFakeClock()
	opts.Now = clock.Now
	store := NewStore(opts, nil, infrastructure.NewNopLogger())
	rec := &eventRecorder{}
	store.Subscribe(rec.observe)
	return store, clock, rec
}

func testTable() *dataset.Table {
	return dataset.NewTable([]string{"A", "B"}, [][]string{{"1", "2"}, {"3", "4"}})
}

func TestParseKind(t *testing.T) {
	k, err := ParseKind("advising")
	require.NoError(t, err)
	assert.Equal(t, KindAdvising, k)

	_, err = ParseKind("billing")
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestStore_PutGetDelete(t *testing.T) {
	ctx := context.Background()
	store, _, rec := newTestStore(StoreOptions{})

	ds, existing := store.Put(ctx, KindAdvising, "a.csv", testTable(), "fp1")
	assert.False(t, existing)
	assert.NotEmpty(t, ds.ID)
	assert.Equal(t, 2, ds.Rows)
	assert.Equal(t, []string{"A", "B"}, ds.Columns)
	assert.Nil(t, ds.ExpiresAt)

	got, err := store.Get(ctx, ds.ID)
	require.NoError(t, err)
	assert.Equal(t, ds.ID, got.ID)
	assert.Same(t, ds.Table, got.Table)

	require.NoError(t, store.Delete(ctx, ds.ID))
	_, err = store.Get(ctx, ds.ID)
	assert.True(t, errors.Is(err, ErrDatasetNotFound))
	assert.True(t, errors.Is(store.Delete(ctx, ds.ID), ErrDatasetNotFound))

	assert.Equal(t, []string{"dataset.added:", "dataset.removed:deleted"}, rec.types())
}

func TestStore_DeduplicatesByKindAndFingerprint(t *testing.T) {
	ctx := context.Background()
	store, _, rec := newTestStore(StoreOptions{})

	first, _ := store.Put(ctx, KindAdvising, "a.csv", testTable(), "same")
	again, existing := store.Put(ctx, KindAdvising, "renamed.csv", testTable(), "same")
	assert.True(t, existing)
	assert.Equal(t, first.ID, again.ID)
	assert.Equal(t, "a.csv", again.Filename)

	other, existing := store.Put(ctx, KindWorkshop, "a.csv", testTable(), "same")
	assert.False(t, existing)
	assert.NotEqual(t, first.ID, other.ID)

	assert.Equal(t, 2, store.Len())
	assert.Len(t, rec.types(), 2)
}

func TestStore_EvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	store, clock, rec := newTestStore(StoreOptions{MaxDatasets: 2})

	a, _ := store.Put(ctx, KindAdvising, "a.csv", testTable(), "a")
	clock.Advance(time.Second)
	b, _ := store.Put(ctx, KindAdvising, "b.csv", testTable(), "b")
	clock.Advance(time.Second)

	_, err := store.Get(ctx, a.ID)
	require.NoError(t, err)
	clock.Advance(time.Second)

	c, _ := store.Put(ctx, KindWorkshop, "c.csv", testTable(), "c")

	assert.Equal(t, 2, store.Len())
	_, err = store.Get(ctx, b.ID)
	assert.True(t, errors.Is(err, ErrDatasetNotFound), "b was least recently used")
	_, err = store.Get(ctx, a.ID)
	assert.NoError(t, err)
	_, err = store.Get(ctx, c.ID)
	assert.NoError(t, err)

	assert.Contains(t, rec.types(), "dataset.removed:evicted")
}

func TestStore_TTL(t *testing.T) {
	ctx := context.Background()
	store, clock, rec := newTestStore(StoreOptions{TTL: time.Hour})

	stale, _ := store.Put(ctx, KindAdvising, "a.csv", testTable(), "a")
	require.NotNil(t, stale.ExpiresAt)
	assert.Equal(t, stale.UploadedAt.Add(time.Hour), *stale.ExpiresAt)

	clock.Advance(40 * time.Minute)
	fresh, _ := store.Put(ctx, KindAdvising, "b.csv", testTable(), "b")
	clock.Advance(30 * time.Minute)

	assert.Len(t, store.List(""), 1, "expired datasets are hidden from listings")

	assert.Equal(t, 1, store.Sweep(ctx))
	assert.Equal(t, 1, store.Len())
	_, err := store.Get(ctx, stale.ID)
	assert.True(t, errors.Is(err, ErrDatasetNotFound))

	clock.Advance(45 * time.Minute)
	_, err = store.Get(ctx, fresh.ID)
	assert.True(t, errors.Is(err, ErrDatasetNotFound), "expired on access")
	assert.Zero(t, store.Len())

	assert.Equal(t, []string{
		"dataset.added:",
		"dataset.added:",
		"dataset.removed:expired",
		"dataset.removed:expired",
	}, rec.types())
}

func TestStore_ListOrdersNewestFirst(t *testing.T) {
	ctx := context.Background()
	store, clock, _ := newTestStore(StoreOptions{})

	a, _ := store.Put(ctx, KindAdvising, "a.csv", testTable(), "a")
	clock.Advance(time.Minute)
	w, _ := store.Put(ctx, KindWorkshop, "w.csv", testTable(), "w")
	clock.Advance(time.Minute)
	b, _ := store.Put(ctx, KindAdvising, "b.csv", testTable(), "b")

	ids := func(list []Dataset) []string {
		out := make([]string, len(list))
		for i, ds := range list {
			out[i] = ds.ID
		}
		return out
	}

	assert.Equal(t, []string{b.ID, a.ID}, ids(store.List(KindAdvising)))
	assert.Equal(t, []string{w.ID}, ids(store.List(KindWorkshop)))
	assert.Equal(t, []string{b.ID, w.ID, a.ID}, ids(store.List("")))
}

func TestStore_RunStopsOnCancel(t *testing.T) {
	store := NewStore(StoreOptions{TTL: time.Millisecond, JanitorPeriod: time.Millisecond}, nil, infrastructure.NewNopLogger())
	store.Put(context.Background(), KindAdvising, "a.csv", testTable(), "a")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool { return store.Len() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("janitor did not stop")
	}
}
