package ui

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestToastExpires(t *testing.T) {
	var toast Toast
	_, _, visible := toast.Current(time.Now())
	assert.False(t, visible)

	toast.Show("Shelf cleared", ToastSuccess)
	msg, kind, visible := toast.Current(time.Now())
	assert.True(t, visible)
	assert.Equal(t, "Shelf cleared", msg)
	assert.Equal(t, ToastSuccess, kind)

	_, _, visible = toast.Current(time.Now().Add(toastDuration))
	assert.False(t, visible)
}
