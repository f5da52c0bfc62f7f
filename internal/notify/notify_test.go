package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListEmitOrder(t *testing.T) {
	var l List[int]
	var got []string
	l.Register(func(v int) { got = append(got, "a") })
	l.Register(func(v int) { got = append(got, "b") })

	l.Emit(1)
	assert.Equal(t, []string{"a", "b"}, got)
}

func TestListUnregister(t *testing.T) {
	var l List[string]
	calls := 0
	unregister := l.Register(func(string) { calls++ })

	l.Emit("x")
	unregister()
	unregister()
	l.Emit("y")

	assert.Equal(t, 1, calls)
	assert.Equal(t, 0, l.Len())
}

func TestListUnregisterDuringEmit(t *testing.T) {
	var l List[int]
	calls := 0
	var unregister func()
	unregister = l.Register(func(int) {
		calls++
		unregister()
	})

	l.Emit(1)
	l.Emit(2)
	assert.Equal(t, 1, calls)
}
