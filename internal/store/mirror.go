// Package store implements the hierarchical job status store: an in-memory
// cache that is the single source of truth for reads, mirrored best-effort
// onto a persistence backend.
//
// The cache is authoritative. The mirror may lag or be absent without
// affecting the correctness of lookups; it is only consulted again at the
// next process start, when Initialize rebuilds the cache from it.
package store

import (
	"github.com/jobvault/jobvault/internal/jobid"
)

// Mirror is the advisory persistence layer behind the status store.
//
// All methods take already-serialized record bytes; serialization is the
// store's job, via its injected codec. Implementations must treat Save as an
// overwrite and Delete as removal of the identifier's entire subtree, i.e.
// every persisted record whose identifier extends id.
type Mirror interface {
	// Save persists the serialized record for id, overwriting any prior data.
	Save(id jobid.ID, data []byte) error

	// Delete removes the persisted subtree rooted at id. Deleting an
	// identifier that was never persisted is not an error.
	Delete(id jobid.ID) error

	// LoadAll streams every persisted record to fn, in no particular order.
	// src is a human-readable origin (file path, database key) used in log
	// messages. Individual unreadable records are skipped by the
	// implementation; LoadAll returns an error only when the mirror as a
	// whole cannot be read.
	LoadAll(fn func(src string, data []byte)) error
}
