package store

import (
	"log/slog"
	"sync"

	"github.com/jobvault/jobvault/internal/jobid"
	"github.com/jobvault/jobvault/internal/status"
)

// Store records the latest known status of background jobs, indexed by
// hierarchical identifier.
//
// Reads never touch the mirror: after Initialize rebuilds the cache, Get is
// an O(1) cache lookup. Put and Remove update the cache synchronously and
// push the change to the mirror best-effort: a mirror failure is logged as a
// warning and never surfaced, because the cache update already happened and
// is authoritative.
//
// A Store is safe for concurrent use by multiple goroutines once Initialize
// has returned. Operations on distinct identifiers never block one another;
// concurrent Puts for the same identifier resolve to last-writer-wins.
// Concurrent processes sharing one storage root are unsupported.
type Store struct {
	codec  status.Codec
	mirror Mirror
	logger *slog.Logger

	// cache maps jobid.ID.Key() to status.Record.
	cache sync.Map
}

// New creates an uninitialized Store over the given codec and mirror. Call
// Initialize exactly once, before the store is shared, to rebuild the cache
// from the mirror. A nil logger falls back to slog.Default.
func New(codec status.Codec, mirror Mirror, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		codec:  codec,
		mirror: mirror,
		logger: logger,
	}
}

// Initialize populates the cache from the mirror. It runs once, before the
// store is exposed to concurrent callers, and is fail-open: records that
// cannot be decoded are logged and skipped, and even a mirror that cannot be
// read at all only costs the pre-crash state; the store is ready either way,
// with whatever it managed to load.
func (s *Store) Initialize() {
	err := s.mirror.LoadAll(func(src string, data []byte) {
		rec, err := s.codec.Decode(data)
		if err != nil {
			s.logger.Warn("skipping undecodable status record", "source", src, "error", err)
			return
		}
		// The record's own identifier is the cache key, never the path it
		// was found under.
		s.cache.Store(rec.JobID().Key(), rec)
	})
	if err != nil {
		s.logger.Error("failed to load job statuses", "error", err)
	}
}

// Get returns the cached record for id. The zero identifier is the canonical
// empty identifier, so a caller that has no id simply passes jobid.ID{}.
func (s *Store) Get(id jobid.ID) (status.Record, bool) {
	v, ok := s.cache.Load(id.Key())
	if !ok {
		return nil, false
	}
	return v.(status.Record), true
}

// Put stores rec under the identifier the record itself reports, replacing
// any prior record for that identifier in both the cache and the mirror.
// From the caller's perspective Put cannot fail: mirror trouble is logged
// and swallowed.
func (s *Store) Put(rec status.Record) {
	id := rec.JobID()
	s.cache.Store(id.Key(), rec)

	data, err := s.codec.Encode(rec)
	if err != nil {
		s.logger.Warn("failed to serialize job status", "id", id, "error", err)
		return
	}
	if err := s.mirror.Save(id, data); err != nil {
		s.logger.Warn("failed to persist job status", "id", id, "error", err)
	}
}

// Remove deletes and returns the cached record for id, then deletes the
// mirrored subtree for id. The cache entry is gone regardless of whether
// mirror cleanup succeeded; cleanup failure is logged and swallowed.
func (s *Store) Remove(id jobid.ID) (status.Record, bool) {
	v, ok := s.cache.LoadAndDelete(id.Key())

	if err := s.mirror.Delete(id); err != nil {
		s.logger.Warn("failed to delete persisted job status", "id", id, "error", err)
	}

	if !ok {
		return nil, false
	}
	return v.(status.Record), true
}

// List returns every cached record, in no particular order. Like Get it
// never touches the mirror.
func (s *Store) List() []status.Record {
	var recs []status.Record
	s.cache.Range(func(_, v any) bool {
		recs = append(recs, v.(status.Record))
		return true
	})
	return recs
}
