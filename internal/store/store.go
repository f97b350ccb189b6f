package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"slices"
	"sync"

	"github.com/hpungsan/unitime/internal/db"
	"github.com/hpungsan/unitime/internal/errors"
	"github.com/hpungsan/unitime/internal/timetable"
)

// Key is the kv key holding the serialized record collection.
const Key = "schedule"

// Store owns the in-memory record collection and its persisted mirror.
// Every mutation installs a complete new collection and saves it before
// readers can observe it.
type Store struct {
	db *sql.DB

	mu      sync.RWMutex
	records []timetable.Record
}

// Open loads the persisted collection. A missing key means an empty collection.
func Open(ctx context.Context, database *sql.DB) (*Store, error) {
	value, found, err := db.GetValue(ctx, database, Key)
	if err != nil {
		return nil, err
	}

	records := timetable.Clear()
	if found {
		records, err = Decode([]byte(value))
		if err != nil {
			return nil, errors.NewInternal(fmt.Errorf("load %s: %w", Key, err))
		}
	}

	return &Store{db: database, records: records}, nil
}

// Records returns a copy of the current collection.
func (s *Store) Records() []timetable.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.records)
}

// Len returns the number of records.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Replace persists records and installs them as the current collection.
func (s *Store) Replace(ctx context.Context, records []timetable.Record) error {
	_, err := s.Update(ctx, func([]timetable.Record) ([]timetable.Record, error) {
		return records, nil
	})
	return err
}

// Update runs fn against the current collection under the writer lock and
// installs its result. If fn or the save fails, the collection is unchanged.
func (s *Store) Update(ctx context.Context, fn func(current []timetable.Record) ([]timetable.Record, error)) ([]timetable.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, err := fn(slices.Clone(s.records))
	if err != nil {
		return nil, err
	}
	if next == nil {
		next = timetable.Clear()
	}

	if err := s.save(ctx, next); err != nil {
		return nil, err
	}
	s.records = next
	return slices.Clone(next), nil
}

// save writes the collection; an empty collection removes the key.
func (s *Store) save(ctx context.Context, records []timetable.Record) error {
	if len(records) == 0 {
		return db.DeleteValue(ctx, s.db, Key)
	}
	data, err := Encode(records)
	if err != nil {
		return errors.NewInternal(err)
	}
	return db.PutValue(ctx, s.db, Key, string(data))
}

// Encode serializes a collection in its persisted form.
func Encode(records []timetable.Record) ([]byte, error) {
	if records == nil {
		records = []timetable.Record{}
	}
	return json.Marshal(records)
}

// Decode revives a persisted collection, including fullDate values.
func Decode(data []byte) ([]timetable.Record, error) {
	var records []timetable.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = timetable.Clear()
	}
	return records, nil
}
