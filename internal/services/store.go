package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"advisingdash/internal/dataset"
	"advisingdash/internal/infrastructure"
)

// Kind names the dashboard a dataset belongs to.
type Kind string

// Dashboard kinds.
const (
	KindAdvising Kind = "advising"
	KindWorkshop Kind = "workshop"
)

// ParseKind validates a kind from a URL or flag.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindAdvising, KindWorkshop:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Dataset is a stored upload. Values returned by the Store are snapshots;
// Table is shared and must not be modified.
type Dataset struct {
	ID           string         `json:"id"`
	Kind         Kind           `json:"kind"`
	Filename     string         `json:"filename"`
	Fingerprint  string         `json:"fingerprint"`
	Rows         int            `json:"rows"`
	Columns      []string       `json:"columns"`
	UploadedAt   time.Time      `json:"uploaded_at"`
	LastAccessed time.Time      `json:"last_accessed"`
	ExpiresAt    *time.Time     `json:"expires_at,omitempty"`
	Table        *dataset.Table `json:"-"`
}

// Event types published to store observers.
const (
	EventDatasetAdded   = "dataset.added"
	EventDatasetRemoved = "dataset.removed"
)

// Reasons a dataset left the store.
const (
	RemovedDeleted = "deleted"
	RemovedEvicted = "evicted"
	RemovedExpired = "expired"
)

// DatasetEvent reports a change to the store's contents.
type DatasetEvent struct {
	Type    string  `json:"type"`
	Dataset Dataset `json:"dataset"`
	Reason  string  `json:"reason,omitempty"`
}

// Observer receives store events. It is called without the store lock held
// and must not block.
type Observer func(DatasetEvent)

// StoreOptions bounds the store.
type StoreOptions struct {
	// MaxDatasets caps resident datasets; the least recently used one is
	// evicted to make room. Zero means unbounded.
	MaxDatasets int
	// TTL drops datasets idle for longer than this. Zero disables expiry.
	TTL time.Duration
	// JanitorPeriod is how often Run sweeps expired datasets.
	JanitorPeriod time.Duration
	// Now overrides the clock in tests.
	Now func() time.Time
}

type entry struct {
	ds Dataset
}

// Store is an in-memory registry of uploaded datasets.
type Store struct {
	opts    StoreOptions
	metrics *infrastructure.DashboardMetrics
	logger  *slog.Logger

	mu        sync.Mutex
	entries   map[string]*entry
	observers []Observer
}

// NewStore creates an empty store. metrics may be nil.
func NewStore(opts StoreOptions, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *Store {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.JanitorPeriod <= 0 {
		opts.JanitorPeriod = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		opts:    opts,
		metrics: metrics,
		logger:  logger.With(slog.String("component", "dataset_store")),
		entries: make(map[string]*entry),
	}
}

// Subscribe registers an observer for subsequent events.
func (s *Store) Subscribe(obs Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, obs)
}

// Put stores a parsed upload. When a dataset of the same kind with the same
// fingerprint is resident it is refreshed and returned with existing=true.
func (s *Store) Put(ctx context.Context, kind Kind, filename string, table *dataset.Table, fingerprint string) (ds Dataset, existing bool) {
	now := s.opts.Now()

	s.mu.Lock()
	for _, e := range s.entries {
		if e.ds.Kind == kind && e.ds.Fingerprint == fingerprint && !s.expired(e, now) {
			e.ds.LastAccessed = now
			ds = s.snapshot(e)
			s.mu.Unlock()
			return ds, true
		}
	}

	e := &entry{ds: Dataset{
		ID:           uuid.NewString(),
		Kind:         kind,
		Filename:     filename,
		Fingerprint:  fingerprint,
		Rows:         table.Len(),
		Columns:      append([]string(nil), table.Columns...),
		UploadedAt:   now,
		LastAccessed: now,
		Table:        table,
	}}

	var events []DatasetEvent
	for s.opts.MaxDatasets > 0 && len(s.entries) >= s.opts.MaxDatasets {
		victim := s.leastRecentlyUsed()
		delete(s.entries, victim.ds.ID)
		events = append(events, DatasetEvent{Type: EventDatasetRemoved, Dataset: s.snapshot(victim), Reason: RemovedEvicted})
	}
	s.entries[e.ds.ID] = e
	ds = s.snapshot(e)
	events = append(events, DatasetEvent{Type: EventDatasetAdded, Dataset: ds})
	observers := s.observers
	s.mu.Unlock()

	s.publish(ctx, observers, events)
	return ds, false
}

// Get returns a dataset and marks it used.
func (s *Store) Get(ctx context.Context, id string) (Dataset, error) {
	now := s.opts.Now()

	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return Dataset{}, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	if s.expired(e, now) {
		delete(s.entries, id)
		observers := s.observers
		event := DatasetEvent{Type: EventDatasetRemoved, Dataset: s.snapshot(e), Reason: RemovedExpired}
		s.mu.Unlock()
		s.publish(ctx, observers, []DatasetEvent{event})
		return Dataset{}, fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	e.ds.LastAccessed = now
	ds := s.snapshot(e)
	s.mu.Unlock()
	return ds, nil
}

// List returns resident datasets of kind, newest first. An empty kind lists
// every dataset.
func (s *Store) List(kind Kind) []Dataset {
	now := s.opts.Now()

	s.mu.Lock()
	out := make([]Dataset, 0, len(s.entries))
	for _, e := range s.entries {
		if kind != "" && e.ds.Kind != kind {
			continue
		}
		if s.expired(e, now) {
			continue
		}
		out = append(out, s.snapshot(e))
	}
	s.mu.Unlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Equal(out[j].UploadedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].UploadedAt.After(out[j].UploadedAt)
	})
	return out
}

// Delete removes a dataset.
func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	e, ok := s.entries[id]
	if !ok {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrDatasetNotFound, id)
	}
	delete(s.entries, id)
	observers := s.observers
	event := DatasetEvent{Type: EventDatasetRemoved, Dataset: s.snapshot(e), Reason: RemovedDeleted}
	s.mu.Unlock()

	s.publish(ctx, observers, []DatasetEvent{event})
	return nil
}

// Len returns the number of resident datasets, expired ones included until
// the next sweep.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops expired datasets and returns how many were removed.
func (s *Store) Sweep(ctx context.Context) int {
	now := s.opts.Now()

	s.mu.Lock()
	var events []DatasetEvent
	for id, e := range s.entries {
		if s.expired(e, now) {
			delete(s.entries, id)
			events = append(events, DatasetEvent{Type: EventDatasetRemoved, Dataset: s.snapshot(e), Reason: RemovedExpired})
		}
	}
	observers := s.observers
	s.mu.Unlock()

	s.publish(ctx, observers, events)
	return len(events)
}

// Run sweeps expired datasets every JanitorPeriod until ctx is done.
func (s *Store) Run(ctx context.Context) {
	if s.opts.TTL <= 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(s.opts.JanitorPeriod)
	defer ticker.Stop()

	s.logger.InfoContext(ctx, "dataset janitor started",
		slog.Duration("ttl", s.opts.TTL),
		slog.Duration("period", s.opts.JanitorPeriod))

	for {
		select {
		case <-ctx.Done():
			s.logger.InfoContext(ctx, "dataset janitor stopped")
			return
		case <-ticker.C:
			if n := s.Sweep(ctx); n > 0 {
				s.logger.InfoContext(ctx, "expired datasets removed", slog.Int("count", n))
			}
		}
	}
}

func (s *Store) expired(e *entry, now time.Time) bool {
	return s.opts.TTL > 0 && now.Sub(e.ds.LastAccessed) > s.opts.TTL
}

// leastRecentlyUsed must be called with mu held and a non-empty store.
func (s *Store) leastRecentlyUsed() *entry {
	var victim *entry
	for _, e := range s.entries {
		if victim == nil || e.ds.LastAccessed.Before(victim.ds.LastAccessed) ||
			(e.ds.LastAccessed.Equal(victim.ds.LastAccessed) && e.ds.UploadedAt.Before(victim.ds.UploadedAt)) {
			victim = e
		}
	}
	return victim
}

func (s *Store) snapshot(e *entry) Dataset {
	ds := e.ds
	ds.Columns = append([]string(nil), e.ds.Columns...)
	if s.opts.TTL > 0 {
		exp := ds.LastAccessed.Add(s.opts.TTL)
		ds.ExpiresAt = &exp
	}
	return ds
}

func (s *Store) publish(ctx context.Context, observers []Observer, events []DatasetEvent) {
	for _, ev := range events {
		switch ev.Type {
		case EventDatasetAdded:
			s.metrics.RecordDatasetsActive(ctx, 1)
			s.logger.InfoContext(ctx, "dataset stored",
				slog.String("dataset_id", ev.Dataset.ID),
				slog.String("kind", string(ev.Dataset.Kind)),
				slog.Int("rows", ev.Dataset.Rows))
		case EventDatasetRemoved:
			s.metrics.RecordDatasetsActive(ctx, -1)
			s.logger.InfoContext(ctx, "dataset removed",
				slog.String("dataset_id", ev.Dataset.ID),
				slog.String("reason", ev.Reason))
		}
		for _, obs := range observers {
			obs(ev)
		}
	}
}
