// Package kvdump stores resolved layout rows in LevelDB under
// <kind>/<dimension>/<x>/<z> keys, one JSON document per key.
package kvdump

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/df-mc/goleveldb/leveldb"
	"github.com/df-mc/goleveldb/leveldb/opt"
	"github.com/df-mc/goleveldb/leveldb/util"

	"citylayout.ai/internal/persistence/indexdb"
)

const (
	KindRun     = "run"
	KindSphere  = "sphere"
	KindCity    = "city"
	KindHighway = "highway"
	KindRail    = "rail"
)

// Store writes rows in batches; Close flushes the tail.
type Store struct {
	db        *leveldb.DB
	batchSize int

	mu    sync.Mutex
	batch *leveldb.Batch
	dims  map[string]string // run id -> dimension

	dropRow atomic.Uint64
	closed  atomic.Bool
}

func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("empty leveldb path")
	}
	db, err := leveldb.OpenFile(path, &opt.Options{
		BlockCacheCapacity: 8 * opt.MiB,
		WriteBuffer:        4 * opt.MiB,
	})
	if err != nil {
		return nil, fmt.Errorf("open leveldb %s: %w", path, err)
	}
	return &Store{
		db:        db,
		batchSize: 1024,
		batch:     new(leveldb.Batch),
		dims:      map[string]string{},
	}, nil
}

func Key(kind, dim string, x, z int32) []byte {
	return []byte(kind + "/" + dim + "/" + strconv.Itoa(int(x)) + "/" + strconv.Itoa(int(z)))
}

func (s *Store) RecordRun(r indexdb.Run) {
	s.mu.Lock()
	s.dims[r.ID] = r.Dimension
	s.mu.Unlock()
	s.put([]byte(KindRun+"/"+r.ID), r)
}

func (s *Store) RecordSphere(r indexdb.SphereRow)   { s.putRow(KindSphere, r.RunID, r.X, r.Z, r) }
func (s *Store) RecordCity(r indexdb.CityRow)       { s.putRow(KindCity, r.RunID, r.X, r.Z, r) }
func (s *Store) RecordHighway(r indexdb.HighwayRow) { s.putRow(KindHighway, r.RunID, r.X, r.Z, r) }
func (s *Store) RecordRail(r indexdb.RailRow)       { s.putRow(KindRail, r.RunID, r.X, r.Z, r) }

func (s *Store) putRow(kind, runID string, x, z int32, v any) {
	s.mu.Lock()
	dim, ok := s.dims[runID]
	s.mu.Unlock()
	if !ok {
		s.dropRow.Add(1)
		return
	}
	s.put(Key(kind, dim, x, z), v)
}

func (s *Store) put(key []byte, v any) {
	if s.closed.Load() {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		s.dropRow.Add(1)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.batch.Put(key, b)
	if s.batch.Len() >= s.batchSize {
		if err := s.flushLocked(); err != nil {
			s.dropRow.Add(uint64(s.batch.Len()))
			s.batch.Reset()
		}
	}
}

func (s *Store) flushLocked() error {
	if s.batch.Len() == 0 {
		return nil
	}
	if err := s.db.Write(s.batch, nil); err != nil {
		return err
	}
	s.batch.Reset()
	return nil
}

func (s *Store) Stats() indexdb.Stats {
	s.mu.Lock()
	depth := s.batch.Len()
	s.mu.Unlock()
	return indexdb.Stats{
		QueueDepth:    depth,
		QueueCapacity: s.batchSize,
		DropRowTotal:  s.dropRow.Load(),
	}
}

func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.mu.Lock()
	err := s.flushLocked()
	s.mu.Unlock()
	return errors.Join(err, s.db.Close())
}

// Get decodes the row stored under key into v. Missing keys report false.
func (s *Store) Get(key []byte, v any) (bool, error) {
	b, err := s.db.Get(key, nil)
	switch {
	case errors.Is(err, leveldb.ErrNotFound):
		return false, nil
	case err != nil:
		return false, err
	}
	return true, json.Unmarshal(b, v)
}

// Count returns the number of rows of one kind stored for a dimension.
func (s *Store) Count(kind, dim string) (int, error) {
	it := s.db.NewIterator(util.BytesPrefix([]byte(kind+"/"+dim+"/")), nil)
	defer it.Release()
	n := 0
	for it.Next() {
		n++
	}
	return n, it.Error()
}
