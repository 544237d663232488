// DegreeMatch - Course-to-Program Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/degreematch

package schedules

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/tomtom215/degreematch/internal/logging"
	"github.com/tomtom215/degreematch/internal/metrics"
	"github.com/tomtom215/degreematch/internal/recommend"
)

const (
	scheduleKeyPrefix = "schedule:"

	// DefaultTTL applies when Config.TTL is zero.
	DefaultTTL = 7 * 24 * time.Hour

	gcDiscardRatio = 0.5
)

var (
	// ErrNotFound is returned for unknown schedule IDs.
	ErrNotFound = errors.New("schedule not found")

	// ErrExpired is returned for schedules past their expiry.
	ErrExpired = errors.New("schedule expired")

	// ErrEmptySchedule is returned when creating a schedule with no courses.
	ErrEmptySchedule = errors.New("schedule has no courses")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("schedule store is closed")
)

// Config configures the store.
type Config struct {
	// Path is the badger directory. Ignored when InMemory is set.
	Path string

	// TTL is how long a schedule lives after creation.
	TTL time.Duration

	// InMemory keeps all data in memory.
	InMemory bool
}

// Store is a BadgerDB-backed schedule store. It is safe for concurrent use.
type Store struct {
	db  *badger.DB
	ttl time.Duration

	mu     sync.RWMutex
	closed bool

	// now is replaceable in tests.
	now func() time.Time
}

// Open opens or creates the store.
func Open(cfg Config) (*Store, error) {
	if !cfg.InMemory && cfg.Path == "" {
		return nil, fmt.Errorf("schedule store path is required unless in_memory is set")
	}
	if cfg.TTL < 0 {
		return nil, fmt.Errorf("schedule ttl must not be negative")
	}
	ttl := cfg.TTL
	if ttl == 0 {
		ttl = DefaultTTL
	}

	opts := badger.DefaultOptions(cfg.Path)
	if cfg.InMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open BadgerDB: %w", err)
	}

	logging.Info().
		Str("path", cfg.Path).
		Bool("in_memory", cfg.InMemory).
		Dur("ttl", ttl).
		Msg("Schedule store opened")

	return &Store{db: db, ttl: ttl, now: time.Now}, nil
}

// TTL returns the schedule lifetime.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Create stores a new schedule and returns it with its ID and expiry set.
// Course keys are canonicalized; duplicates are kept.
func (s *Store) Create(ctx context.Context, institution string, courses []recommend.CourseKey) (_ *recommend.Schedule, err error) {
	defer func() { metrics.RecordScheduleOperation("create", err) }()

	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	if len(courses) == 0 {
		return nil, ErrEmptySchedule
	}

	keys := make([]recommend.CourseKey, len(courses))
	for i, c := range courses {
		keys[i] = c.Canonical()
		if keys[i].Institution == "" || keys[i].Code == "" {
			return nil, fmt.Errorf("course %d: institution and code are required", i)
		}
	}

	now := s.now().UTC()
	schedule := &recommend.Schedule{
		ID:          uuid.New().String(),
		Institution: strings.TrimSpace(institution),
		Courses:     keys,
		CreatedAt:   now,
		ExpiresAt:   now.Add(s.ttl),
	}

	data, err := json.Marshal(schedule)
	if err != nil {
		return nil, fmt.Errorf("marshal schedule: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		e := badger.NewEntry([]byte(scheduleKeyPrefix+schedule.ID), data).WithTTL(s.ttl)
		return txn.SetEntry(e)
	})
	if err != nil {
		return nil, fmt.Errorf("set schedule: %w", err)
	}
	return schedule, nil
}

// Get returns a schedule by ID.
func (s *Store) Get(ctx context.Context, id string) (_ *recommend.Schedule, err error) {
	defer func() { metrics.RecordScheduleOperation("get", ignoreMiss(err)) }()

	if err := s.checkOpen(ctx); err != nil {
		return nil, err
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}

	var schedule recommend.Schedule
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(scheduleKeyPrefix + id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("get schedule: %w", err)
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &schedule)
		})
	})
	if err != nil {
		return nil, err
	}

	if !schedule.ExpiresAt.IsZero() && !s.now().Before(schedule.ExpiresAt) {
		return nil, ErrExpired
	}
	return &schedule, nil
}

// Delete removes a schedule. It returns ErrNotFound if the ID is unknown.
func (s *Store) Delete(ctx context.Context, id string) (err error) {
	defer func() { metrics.RecordScheduleOperation("delete", ignoreMiss(err)) }()

	if err := s.checkOpen(ctx); err != nil {
		return err
	}

	return s.db.Update(func(txn *badger.Txn) error {
		key := []byte(scheduleKeyPrefix + id)
		if _, err := txn.Get(key); errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		} else if err != nil {
			return fmt.Errorf("get schedule: %w", err)
		}
		if err := txn.Delete(key); err != nil {
			return fmt.Errorf("delete schedule: %w", err)
		}
		return nil
	})
}

// Count returns the number of live schedules.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := s.checkOpen(ctx); err != nil {
		return 0, err
	}

	count := 0
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(scheduleKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			count++
		}
		return nil
	})
	return count, err
}

// RunGC reclaims value log space. It is a no-op for in-memory stores.
func (s *Store) RunGC() error {
	if err := s.checkOpen(context.Background()); err != nil {
		return err
	}

	for {
		err := s.db.RunValueLogGC(gcDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrGCInMemoryMode) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("run GC: %w", err)
		}
	}
}

// Close closes the underlying database. Further calls return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *Store) checkOpen(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

// ignoreMiss keeps lookups of unknown or expired IDs out of the error metric.
func ignoreMiss(err error) error {
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrExpired) {
		return nil
	}
	return err
}
