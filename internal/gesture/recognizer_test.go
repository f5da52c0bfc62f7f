package gesture

import (
	"testing"
	"time"

	"gioui.org/f32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feed sends one sample at x=0 followed by one sample per displacement and
// returns the 1-based displacement indices at which a shake fired.
func feed(r *Recognizer, displacements []float32) []int {
	var fired []int
	x := float32(0)
	now := time.Unix(0, 0)
	r.Feed(Sample{Time: now, Pos: f32.Point{X: x}})
	for i, dx := range displacements {
		x += dx
		now = now.Add(time.Second / 60)
		if r.Feed(Sample{Time: now, Pos: f32.Point{X: x, Y: 50}}) {
			fired = append(fired, i+1)
		}
	}
	return fired
}

func repeat(v float32, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestShakeFiresOnThirdReversal(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	var events []ShakeEvent
	r.OnShake(func(e ShakeEvent) { events = append(events, e) })

	fired := feed(r, []float32{+20, -20, +20, -20, +20})

	assert.Equal(t, []int{4}, fired)
	require.Len(t, events, 1)
	assert.Equal(t, 3, events[0].Changes)
	assert.Equal(t, float32(50), events[0].Pos.Y)
}

func TestShakeResetsCountersAfterTrigger(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	feed(r, []float32{+20, -20, +20, -20})

	st := r.State()
	assert.Equal(t, 0, st.DirectionChanges)
	assert.Equal(t, 0, st.StationaryFrames)
	assert.Equal(t, -1, st.LastDirection, "direction survives a trigger")
}

func TestContinuedShakingRetriggers(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	fired := feed(r, []float32{+20, -20, +20, -20, +20, -20, +20})
	assert.Equal(t, []int{4, 7}, fired)
}

func TestInactivityDiscardsPartialGesture(t *testing.T) {
	r := NewRecognizer(DefaultConfig())

	seq := []float32{+20, -20, +20} // two reversals
	seq = append(seq, repeat(0, 11)...)
	seq = append(seq, +20, -20, +20, -20)

	fired := feed(r, seq)
	// Only the post-gap reversals count: the 4th post-gap displacement.
	assert.Equal(t, []int{3 + 11 + 4}, fired)
}

func TestShortPauseKeepsCount(t *testing.T) {
	r := NewRecognizer(DefaultConfig())

	seq := []float32{+20, -20, +20}
	seq = append(seq, repeat(0, 10)...)
	seq = append(seq, +20, -20)

	fired := feed(r, seq)
	assert.Equal(t, []int{3 + 10 + 2}, fired)
}

func TestSlowMovementNeverTriggers(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	fired := feed(r, []float32{+10, -10, +10, -10, +10, -10, +9, -9})
	assert.Empty(t, fired)
	assert.Equal(t, 0, r.State().DirectionChanges)
}

func TestVerticalMotionIgnored(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	y := float32(0)
	for i := 0; i < 20; i++ {
		if i%2 == 0 {
			y += 40
		} else {
			y -= 40
		}
		assert.False(t, r.Feed(Sample{Pos: f32.Point{X: 5, Y: y}}))
	}
}

func TestFirstSampleHasNoDisplacement(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	r.Feed(Sample{Pos: f32.Point{X: 500}})

	st := r.State()
	assert.Equal(t, 0, st.LastDirection)
	assert.Equal(t, 1, st.StationaryFrames)
}

func TestCustomThreshold(t *testing.T) {
	r := NewRecognizer(Config{MinVelocity: 5, Threshold: 1, InactivityFrames: 3})
	fired := feed(r, []float32{+6, -6})
	assert.Equal(t, []int{2}, fired)
}

func TestZeroConfigUsesDefaults(t *testing.T) {
	r := NewRecognizer(Config{})
	assert.Equal(t, DefaultConfig(), r.Config())
}

func TestUnregisteredObserverNotCalled(t *testing.T) {
	r := NewRecognizer(DefaultConfig())
	calls := 0
	unregister := r.OnShake(func(ShakeEvent) { calls++ })
	unregister()

	fired := feed(r, []float32{+20, -20, +20, -20})
	assert.Equal(t, []int{4}, fired)
	assert.Zero(t, calls)
}
