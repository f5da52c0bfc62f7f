package tick

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskStartIsIdempotent(t *testing.T) {
	m := NewManual()
	task := NewTask(time.Second, m.Func())

	require.True(t, task.Start())
	assert.False(t, task.Start())
	assert.True(t, task.Running())
	assert.NotNil(t, task.C())
}

func TestTaskStopDiscardsPendingTick(t *testing.T) {
	m := NewManual()
	task := NewTask(time.Second, m.Func())
	task.Start()

	require.True(t, m.Fire(time.Now()))
	task.Stop()

	assert.False(t, task.Running())
	assert.Nil(t, task.C())
	assert.True(t, m.Stopped())
	select {
	case <-m.C():
		t.Fatal("pending tick survived Stop")
	default:
	}
	assert.False(t, m.Fire(time.Now()), "stopped source must not fire")
}

func TestTaskRestart(t *testing.T) {
	m := NewManual()
	task := NewTask(time.Second, m.Func())
	task.Start()
	task.Stop()
	task.Stop()

	require.True(t, task.Start())
	assert.True(t, m.Fire(time.Now()))
}

func TestRealTicker(t *testing.T) {
	task := NewTask(time.Millisecond, nil)
	task.Start()
	defer task.Stop()

	select {
	case <-task.C():
	case <-time.After(time.Second):
		t.Fatal("real ticker never fired")
	}
}
