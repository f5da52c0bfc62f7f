// Package registry holds the shelf: an ordered, deduplicating, size- and
// age-bounded list of ingested files. It is the single source of truth that
// presentation code reads.
package registry

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/justyntemme/dropshelf/internal/debug"
	"github.com/justyntemme/dropshelf/internal/notify"
)

// Record is one shelf entry.
type Record struct {
	ID      uuid.UUID
	Path    string // canonical: absolute and cleaned
	AddedAt time.Time
}

// Options bound the registry.
type Options struct {
	MaxEntries   int           // 0 keeps nothing
	ExpiryWindow time.Duration // <= 0 disables expiry
	Deduplicate  bool
	AutoCleanup  bool
}

// DefaultOptions matches the shipped shelf preferences: 50 items, one week.
func DefaultOptions() Options {
	return Options{
		MaxEntries:   50,
		ExpiryWindow: 7 * 24 * time.Hour,
		Deduplicate:  true,
		AutoCleanup:  true,
	}
}

// TempCleaner removes the temp area used for synthesized files.
type TempCleaner interface {
	Remove() error
}

// ChangeKind says what caused a Change.
type ChangeKind int

const (
	Added ChangeKind = iota
	Removed
	Expired
	Cleared
	OptionsChanged
)

func (k ChangeKind) String() string {
	switch k {
	case Added:
		return "added"
	case Removed:
		return "removed"
	case Expired:
		return "expired"
	case Cleared:
		return "cleared"
	case OptionsChanged:
		return "options"
	default:
		return fmt.Sprintf("ChangeKind(%d)", int(k))
	}
}

// Change is delivered to observers after every mutation that changed the
// list. Records is the resulting snapshot, newest first.
type Change struct {
	Kind    ChangeKind
	Path    string // affected path for Added and Removed
	Records []Record
}

// Registry is safe for concurrent reads; mutations are expected from the
// coordinating goroutine. Observers run outside the lock.
type Registry struct {
	mu      sync.RWMutex
	records []Record // newest first
	opts    Options
	temp    TempCleaner
	now     func() time.Time

	changes notify.List[Change]
}

// New returns an empty registry. temp may be nil.
func New(opts Options, temp TempCleaner) *Registry {
	return &Registry{opts: opts, temp: temp, now: time.Now}
}

// SetClock replaces the time source. Used by tests.
func (r *Registry) SetClock(now func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.now = now
}

// Subscribe registers fn for changes.
func (r *Registry) Subscribe(fn func(Change)) (unregister func()) {
	return r.changes.Register(fn)
}

// Options returns the current options.
func (r *Registry) Options() Options {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.opts
}

// Snapshot returns a copy of the records, newest first.
func (r *Registry) Snapshot() []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snapshotLocked()
}

// Len returns the number of records.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// Contains reports whether path is on the shelf.
func (r *Registry) Contains(path string) bool {
	p := Canonical(path)
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.indexLocked(p) >= 0
}

// Canonical returns the deduplication key for path.
func Canonical(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// Add inserts path at the front. With deduplication an existing record for
// the same path is replaced. The list is truncated from the tail to
// MaxEntries and, with AutoCleanup, expired records are dropped.
func (r *Registry) Add(path string) []Record {
	p := Canonical(path)

	r.mu.Lock()
	if r.opts.Deduplicate {
		if i := r.indexLocked(p); i >= 0 {
			r.records = append(r.records[:i], r.records[i+1:]...)
		}
	}
	rec := Record{ID: uuid.New(), Path: p, AddedAt: r.now()}
	r.records = append([]Record{rec}, r.records...)
	truncated := r.truncateLocked()
	expired := 0
	if r.opts.AutoCleanup {
		expired = r.cleanupLocked()
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()

	debug.Log(debug.REGISTRY, "Add %s (len %d, truncated %d, expired %d)", p, len(snap), truncated, expired)
	r.changes.Emit(Change{Kind: Added, Path: p, Records: snap})
	return snap
}

// Remove deletes the record for path if present.
func (r *Registry) Remove(path string) []Record {
	p := Canonical(path)

	r.mu.Lock()
	removed := false
	for i := 0; i < len(r.records); {
		if r.records[i].Path == p {
			r.records = append(r.records[:i], r.records[i+1:]...)
			removed = true
			continue
		}
		i++
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()

	if removed {
		debug.Log(debug.REGISTRY, "Remove %s (len %d)", p, len(snap))
		r.changes.Emit(Change{Kind: Removed, Path: p, Records: snap})
	}
	return snap
}

// Cleanup drops records whose age has reached the expiry window. It does
// nothing when the window is not positive or AutoCleanup is off.
func (r *Registry) Cleanup() []Record {
	r.mu.Lock()
	n := r.cleanupLocked()
	snap := r.snapshotLocked()
	r.mu.Unlock()

	if n > 0 {
		debug.Log(debug.REGISTRY, "Cleanup expired %d (len %d)", n, len(snap))
		r.changes.Emit(Change{Kind: Expired, Records: snap})
	}
	return snap
}

// ClearAll empties the registry and removes the temp area.
func (r *Registry) ClearAll() []Record {
	r.mu.Lock()
	n := len(r.records)
	r.records = nil
	temp := r.temp
	r.mu.Unlock()

	if temp != nil {
		if err := temp.Remove(); err != nil {
			debug.Log(debug.REGISTRY, "ClearAll: temp removal failed: %v", err)
		}
	}
	debug.Log(debug.REGISTRY, "ClearAll removed %d", n)
	r.changes.Emit(Change{Kind: Cleared, Records: []Record{}})
	return []Record{}
}

// SetOptions replaces the options, then enforces the new cap and expiry.
func (r *Registry) SetOptions(opts Options) []Record {
	r.mu.Lock()
	r.opts = opts
	r.truncateLocked()
	if r.opts.AutoCleanup {
		r.cleanupLocked()
	}
	snap := r.snapshotLocked()
	r.mu.Unlock()

	debug.Log(debug.REGISTRY, "SetOptions %+v (len %d)", opts, len(snap))
	r.changes.Emit(Change{Kind: OptionsChanged, Records: snap})
	return snap
}

func (r *Registry) indexLocked(path string) int {
	for i, rec := range r.records {
		if rec.Path == path {
			return i
		}
	}
	return -1
}

func (r *Registry) truncateLocked() int {
	limit := max(r.opts.MaxEntries, 0)
	if len(r.records) <= limit {
		return 0
	}
	n := len(r.records) - limit
	r.records = r.records[:limit]
	return n
}

func (r *Registry) cleanupLocked() int {
	window := r.opts.ExpiryWindow
	if window <= 0 || !r.opts.AutoCleanup {
		return 0
	}
	cutoff := r.now().Add(-window)
	kept := r.records[:0]
	for _, rec := range r.records {
		if rec.AddedAt.After(cutoff) {
			kept = append(kept, rec)
		}
	}
	n := len(r.records) - len(kept)
	for i := len(kept); i < len(r.records); i++ {
		r.records[i] = Record{}
	}
	r.records = kept
	return n
}

func (r *Registry) snapshotLocked() []Record {
	out := make([]Record, len(r.records))
	copy(out, r.records)
	return out
}
