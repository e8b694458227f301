package store_test

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/jobvault/jobvault/internal/jobid"
	"github.com/jobvault/jobvault/internal/status"
	"github.com/jobvault/jobvault/internal/store"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError + 1}))
}

// newTestStore builds an initialized store over a fresh filesystem mirror.
func newTestStore(t *testing.T) (*store.Store, *store.FSMirror) {
	t.Helper()
	m := store.NewFSMirror(filepath.Join(t.TempDir(), "status"), quietLogger())
	s := store.New(status.NewJSONCodec(), m, quietLogger())
	s.Initialize()
	return s, m
}

// reopenStore simulates a process restart: a new store with an empty cache
// recovering from the same mirror.
func reopenStore(m store.Mirror) *store.Store {
	s := store.New(status.NewJSONCodec(), m, quietLogger())
	s.Initialize()
	return s
}

func makeStatus(id jobid.ID, state status.State) *status.JobStatus {
	return &status.JobStatus{ID: id, State: state}
}

// encodeStatus serializes a record the way the store would persist it.
func encodeStatus(t *testing.T, rec *status.JobStatus) []byte {
	t.Helper()
	data, err := status.NewJSONCodec().Encode(rec)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return data
}

// mustGet fetches a record and fails the test on a miss.
func mustGet(t *testing.T, s *store.Store, id jobid.ID) *status.JobStatus {
	t.Helper()
	rec, ok := s.Get(id)
	if !ok {
		t.Fatalf("Get(%v) found nothing", id)
	}
	js, ok := rec.(*status.JobStatus)
	if !ok {
		t.Fatalf("Get(%v) returned %T, want *status.JobStatus", id, rec)
	}
	return js
}

// ---------------------------------------------------------------------------
// Round trip and overwrite
// ---------------------------------------------------------------------------

func Test_Store_PutGet_RoundTrip(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	id := jobid.Of("jobs", "42")
	rec := makeStatus(id, status.StateRunning)

	s.Put(rec)

	if got := mustGet(t, s, id); got != rec {
		t.Fatalf("Get returned %+v, want the stored record", got)
	}
}

func Test_Store_Put_OverwritesSameIdentifier(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	id := jobid.Of("jobs", "42")

	s.Put(makeStatus(id, status.StateRunning))
	latest := makeStatus(id, status.StateCompleted)
	s.Put(latest)

	if got := mustGet(t, s, id); got != latest {
		t.Fatalf("Get returned %+v, want the latest record", got)
	}
	if n := len(s.List()); n != 1 {
		t.Fatalf("cache holds %d entries after overwrite, want 1", n)
	}
}

// ---------------------------------------------------------------------------
// Empty-identifier normalization
// ---------------------------------------------------------------------------

func Test_Store_EmptyIdentifier_Normalized(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	rec := makeStatus(jobid.ID{}, status.StatePending)
	s.Put(rec)

	if got := mustGet(t, s, jobid.ID{}); got != rec {
		t.Fatal("zero identifier lookup missed the record")
	}
	if got := mustGet(t, s, jobid.Of()); got != rec {
		t.Fatal("empty-sequence lookup missed the record")
	}
}

// ---------------------------------------------------------------------------
// Removal
// ---------------------------------------------------------------------------

func Test_Store_Remove_IsTotal(t *testing.T) {
	t.Parallel()

	s, m := newTestStore(t)
	id := jobid.Of("jobs", "42")
	rec := makeStatus(id, status.StateCompleted)
	s.Put(rec)

	removed, ok := s.Remove(id)
	if !ok {
		t.Fatal("Remove found nothing")
	}
	if removed != status.Record(rec) {
		t.Fatalf("Remove returned %+v, want the stored record", removed)
	}

	if _, ok := s.Get(id); ok {
		t.Fatal("Get found a record after Remove")
	}
	if _, err := os.Stat(filepath.Join(m.Root(), "jobs", "42")); !os.IsNotExist(err) {
		t.Fatal("on-disk subtree still exists after Remove")
	}
}

func Test_Store_Remove_UnknownIdentifier(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	if _, ok := s.Remove(jobid.Of("never")); ok {
		t.Fatal("Remove reported success for an unknown identifier")
	}
}

// ---------------------------------------------------------------------------
// Recovery and the restart scenario
// ---------------------------------------------------------------------------

func Test_Store_RestartScenario(t *testing.T) {
	t.Parallel()

	s, m := newTestStore(t)
	id := jobid.Of("jobs", "42")
	s.Put(makeStatus(id, status.StateCompleted))

	// Restart: fresh cache, same root.
	s2 := reopenStore(m)

	got := mustGet(t, s2, id)
	if got.State != status.StateCompleted {
		t.Fatalf("recovered state = %q, want %q", got.State, status.StateCompleted)
	}
	if !got.ID.Equal(id) {
		t.Fatalf("recovered id = %v, want %v", got.ID, id)
	}

	s2.Remove(id)
	if _, err := os.Stat(filepath.Join(m.Root(), "jobs", "42")); !os.IsNotExist(err) {
		t.Fatal("directory <root>/jobs/42 still exists after Remove")
	}
	if _, ok := s2.Get(id); ok {
		t.Fatal("Get found a record after Remove")
	}
}

func Test_Store_Recovery_ToleratesCorruptRecord(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "status")
	m := store.NewFSMirror(root, quietLogger())

	good := makeStatus(jobid.Of("good"), status.StateCompleted)
	writeRecordFile(t, root, string(encodeStatus(t, good)), "good")
	writeRecordFile(t, root, "{not json at all", "bad")

	s := reopenStore(m)

	if got := mustGet(t, s, jobid.Of("good")); got.State != status.StateCompleted {
		t.Fatalf("recovered state = %q", got.State)
	}
	if _, ok := s.Get(jobid.Of("bad")); ok {
		t.Fatal("corrupt record should not have been cached")
	}
	if n := len(s.List()); n != 1 {
		t.Fatalf("cache holds %d entries, want 1", n)
	}
}

func Test_Store_Recovery_LegacyLayout(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "status")
	m := store.NewFSMirror(root, quietLogger())

	legacy := makeStatus(jobid.Of("jobs", "42"), status.StateFailed)
	writeLegacyRecordFile(t, root, string(encodeStatus(t, legacy)), "jobs", "42")

	s := reopenStore(m)

	got := mustGet(t, s, jobid.Of("jobs", "42"))
	if got.State != status.StateFailed {
		t.Fatalf("recovered state = %q, want %q", got.State, status.StateFailed)
	}
}

func Test_Store_Recovery_PrefixExtensibleIdentifiers(t *testing.T) {
	t.Parallel()

	s, m := newTestStore(t)
	s.Put(makeStatus(jobid.Of("a", "b"), status.StateRunning))
	s.Put(makeStatus(jobid.Of("a", "b", "c"), status.StateCompleted))

	s2 := reopenStore(m)

	if got := mustGet(t, s2, jobid.Of("a", "b")); got.State != status.StateRunning {
		t.Fatalf("prefix record state = %q", got.State)
	}
	if got := mustGet(t, s2, jobid.Of("a", "b", "c")); got.State != status.StateCompleted {
		t.Fatalf("extended record state = %q", got.State)
	}
}

// The cache key is the identifier the decoded record reports, not the path
// the record was found under.
func Test_Store_Recovery_UsesRecordOwnIdentifier(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "status")
	m := store.NewFSMirror(root, quietLogger())

	misplaced := makeStatus(jobid.Of("jobs", "42"), status.StateCompleted)
	writeRecordFile(t, root, string(encodeStatus(t, misplaced)), "somewhere", "else")

	s := reopenStore(m)

	if _, ok := s.Get(jobid.Of("somewhere", "else")); ok {
		t.Fatal("record was cached under its path instead of its own identifier")
	}
	if _, ok := s.Get(jobid.Of("jobs", "42")); !ok {
		t.Fatal("record was not cached under its own identifier")
	}
}

// A recovered record with no identifier lands under the empty identifier.
func Test_Store_Recovery_MissingIdentifier_FallsBackToEmpty(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "status")
	m := store.NewFSMirror(root, quietLogger())
	writeRecordFile(t, root, `{"state": "completed"}`, "anywhere")

	s := reopenStore(m)

	if got := mustGet(t, s, jobid.ID{}); got.State != status.StateCompleted {
		t.Fatalf("state = %q, want %q", got.State, status.StateCompleted)
	}
}

// ---------------------------------------------------------------------------
// Mirror failures are advisory
// ---------------------------------------------------------------------------

// brokenMirror fails every operation, standing in for a dead disk.
type brokenMirror struct{}

func (brokenMirror) Save(jobid.ID, []byte) error { return errors.New("disk on fire") }
func (brokenMirror) Delete(jobid.ID) error       { return errors.New("disk on fire") }
func (brokenMirror) LoadAll(func(string, []byte)) error {
	return errors.New("disk on fire")
}

func Test_Store_MirrorFailures_DoNotAffectCache(t *testing.T) {
	t.Parallel()

	s := store.New(status.NewJSONCodec(), brokenMirror{}, quietLogger())
	s.Initialize() // fail-open: load error is logged, store is ready

	id := jobid.Of("jobs", "42")
	s.Put(makeStatus(id, status.StateRunning))

	if _, ok := s.Get(id); !ok {
		t.Fatal("Put did not reach the cache when the mirror failed")
	}

	if _, ok := s.Remove(id); !ok {
		t.Fatal("Remove did not return the cached record when the mirror failed")
	}
	if _, ok := s.Get(id); ok {
		t.Fatal("cache entry survived Remove")
	}
}

func Test_Store_EncodeFailure_StillCaches(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)
	rec := &unencodableRecord{id: jobid.Of("odd")}

	s.Put(rec)

	if got, ok := s.Get(jobid.Of("odd")); !ok || got != status.Record(rec) {
		t.Fatal("record the codec cannot serialize should still be cached")
	}
}

// unencodableRecord is a record type the JSON codec refuses to serialize.
type unencodableRecord struct {
	id jobid.ID
}

func (r *unencodableRecord) JobID() jobid.ID { return r.id }

// ---------------------------------------------------------------------------
// Concurrency
// ---------------------------------------------------------------------------

func Test_Store_ConcurrentAccess(t *testing.T) {
	t.Parallel()

	s, _ := newTestStore(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				id := jobid.Of("worker", fmt.Sprintf("%d", worker), fmt.Sprintf("%d", j))
				s.Put(makeStatus(id, status.StateRunning))
				if _, ok := s.Get(id); !ok {
					t.Errorf("worker %d: Get missed its own Put for %v", worker, id)
					return
				}
				if j%2 == 0 {
					s.Remove(id)
				}
			}
		}(i)
	}
	wg.Wait()

	if n := len(s.List()); n != 8*10 {
		t.Fatalf("cache holds %d entries, want %d", n, 8*10)
	}
}
