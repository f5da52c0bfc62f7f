package registry

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestRegistry(opts Options) (*Registry, *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	r := New(opts, nil)
	r.SetClock(clock.now)
	return r, clock
}

func paths(records []Record) []string {
	out := make([]string, len(records))
	for i, rec := range records {
		out[i] = filepath.Base(rec.Path)
	}
	return out
}

func TestCapacityTruncatesFromTail(t *testing.T) {
	r, _ := newTestRegistry(Options{MaxEntries: 3})

	var snap []Record
	for _, p := range []string{"/shelf/A", "/shelf/B", "/shelf/C", "/shelf/D"} {
		snap = r.Add(p)
		assert.LessOrEqual(t, len(snap), 3)
	}

	assert.Equal(t, []string{"D", "C", "B"}, paths(snap))
}

func TestDeduplicateMovesToFront(t *testing.T) {
	r, _ := newTestRegistry(Options{MaxEntries: 10, Deduplicate: true})

	r.Add("/shelf/A")
	r.Add("/shelf/B")
	first := r.Snapshot()
	snap := r.Add("/shelf/A")

	assert.Equal(t, []string{"A", "B"}, paths(snap))
	assert.NotEqual(t, first[1].ID, snap[0].ID, "re-adding creates a fresh record")
}

func TestDeduplicateUsesCanonicalPath(t *testing.T) {
	r, _ := newTestRegistry(Options{MaxEntries: 10, Deduplicate: true})

	r.Add("/shelf/dir/../A")
	snap := r.Add("/shelf/./A")

	require.Len(t, snap, 1)
	assert.Equal(t, Canonical("/shelf/A"), snap[0].Path)
	assert.True(t, r.Contains("/shelf//A"))
}

func TestDuplicatesAllowedWithoutDeduplicate(t *testing.T) {
	r, _ := newTestRegistry(Options{MaxEntries: 10})

	r.Add("/shelf/A")
	snap := r.Add("/shelf/A")
	assert.Len(t, snap, 2)

	assert.Empty(t, r.Remove("/shelf/A"))
}

func TestDeduplicateInvariantOverSequence(t *testing.T) {
	r, _ := newTestRegistry(Options{MaxEntries: 4, Deduplicate: true})
	seq := []string{"A", "B", "A", "C", "B", "D", "E", "A", "A", "C"}

	for _, name := range seq {
		snap := r.Add("/shelf/" + name)
		seen := map[string]bool{}
		for _, rec := range snap {
			assert.False(t, seen[rec.Path], "duplicate %s after adding %s", rec.Path, name)
			seen[rec.Path] = true
		}
		assert.Equal(t, name, filepath.Base(snap[0].Path))
		assert.LessOrEqual(t, len(snap), 4)
	}
	assert.Equal(t, []string{"C", "A", "E", "D"}, paths(r.Snapshot()))
}

func TestCleanupExpiry(t *testing.T) {
	const unit = time.Hour
	testCases := []struct {
		name    string
		elapsed time.Duration
		kept    int
	}{
		{"after two windows", 2 * unit, 0},
		{"after half a window", unit / 2, 1},
		{"exactly one window", unit, 0},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, clock := newTestRegistry(Options{MaxEntries: 10, ExpiryWindow: unit, AutoCleanup: true})
			r.Add("/shelf/A")
			clock.advance(tc.elapsed)
			assert.Len(t, r.Cleanup(), tc.kept)
		})
	}
}

func TestCleanupDisabled(t *testing.T) {
	testCases := []struct {
		name string
		opts Options
	}{
		{"auto cleanup off", Options{MaxEntries: 10, ExpiryWindow: time.Hour}},
		{"zero window", Options{MaxEntries: 10, AutoCleanup: true}},
		{"negative window", Options{MaxEntries: 10, ExpiryWindow: -time.Hour, AutoCleanup: true}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r, clock := newTestRegistry(tc.opts)
			r.Add("/shelf/A")
			clock.advance(1000 * time.Hour)
			assert.Len(t, r.Cleanup(), 1)
		})
	}
}

func TestAddRunsCleanup(t *testing.T) {
	r, clock := newTestRegistry(Options{MaxEntries: 10, ExpiryWindow: time.Hour, AutoCleanup: true})
	r.Add("/shelf/old")
	clock.advance(90 * time.Minute)

	snap := r.Add("/shelf/new")

	assert.Equal(t, []string{"new"}, paths(snap))
}

func TestRemoveAbsentIsNoop(t *testing.T) {
	r, _ := newTestRegistry(Options{MaxEntries: 10})
	r.Add("/shelf/A")

	var changes int
	r.Subscribe(func(Change) { changes++ })
	snap := r.Remove("/shelf/missing")

	assert.Len(t, snap, 1)
	assert.Zero(t, changes)
}

type fakeTemp struct {
	removed int
	err     error
}

func (f *fakeTemp) Remove() error {
	f.removed++
	return f.err
}

func TestClearAllRemovesTempArea(t *testing.T) {
	temp := &fakeTemp{err: errors.New("busy")}
	r := New(DefaultOptions(), temp)
	r.Add("/shelf/A")
	r.Add("/shelf/B")

	snap := r.ClearAll()

	assert.Empty(t, snap)
	assert.Zero(t, r.Len())
	assert.Equal(t, 1, temp.removed, "temp errors are swallowed")
}

func TestSubscribeAndUnregister(t *testing.T) {
	r, _ := newTestRegistry(Options{MaxEntries: 10})
	var got []Change
	unregister := r.Subscribe(func(c Change) { got = append(got, c) })

	r.Add("/shelf/A")
	r.Remove("/shelf/A")
	unregister()
	r.Add("/shelf/B")

	require.Len(t, got, 2)
	assert.Equal(t, Added, got[0].Kind)
	assert.Equal(t, Canonical("/shelf/A"), got[0].Path)
	assert.Len(t, got[0].Records, 1)
	assert.Equal(t, Removed, got[1].Kind)
	assert.Empty(t, got[1].Records)
}

func TestSetOptionsEnforcesNewLimits(t *testing.T) {
	r, _ := newTestRegistry(Options{MaxEntries: 10})
	for _, p := range []string{"A", "B", "C", "D"} {
		r.Add("/shelf/" + p)
	}

	snap := r.SetOptions(Options{MaxEntries: 2, Deduplicate: true})

	assert.Equal(t, []string{"D", "C"}, paths(snap))
	assert.Equal(t, 2, r.Options().MaxEntries)
}

func TestSnapshotIsACopy(t *testing.T) {
	r, _ := newTestRegistry(Options{MaxEntries: 10})
	r.Add("/shelf/A")

	snap := r.Snapshot()
	snap[0].Path = "/elsewhere"

	assert.Equal(t, Canonical("/shelf/A"), r.Snapshot()[0].Path)
}

func TestZeroCapacityKeepsNothing(t *testing.T) {
	r, _ := newTestRegistry(Options{MaxEntries: 0, Deduplicate: true})

	for _, p := range []string{"/shelf/A", "/shelf/B", "/shelf/C"} {
		snap := r.Add(p)
		assert.Empty(t, snap)
	}
	assert.Zero(t, r.Len())
}

func TestSetOptionsZeroCapacityEmpties(t *testing.T) {
	r, _ := newTestRegistry(Options{MaxEntries: 10})
	r.Add("/shelf/A")
	r.Add("/shelf/B")

	assert.Empty(t, r.SetOptions(Options{MaxEntries: 0}))
	assert.Zero(t, r.Len())
}
