package ui

import (
	"image"
	"image/color"
	"sync"
	"time"

	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/unit"
	"gioui.org/widget/material"
)

// ToastType indicates the severity/type of toast message
type ToastType int

const (
	ToastInfo ToastType = iota
	ToastSuccess
	ToastError
)

// toastDuration is how long toasts are displayed
const toastDuration = 3 * time.Second

// Toast is a short notification drawn at the bottom of a window. Show may
// be called from any goroutine.
type Toast struct {
	mu        sync.Mutex
	message   string
	kind      ToastType
	expiresAt time.Time
}

// Show displays message until toastDuration has passed.
func (t *Toast) Show(message string, kind ToastType) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.message = message
	t.kind = kind
	t.expiresAt = time.Now().Add(toastDuration)
}

// Current returns the visible message, if any.
func (t *Toast) Current(now time.Time) (string, ToastType, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.message == "" || !now.Before(t.expiresAt) {
		return "", ToastInfo, false
	}
	return t.message, t.kind, true
}

// Layout renders the toast notification at the bottom of the window
func (t *Toast) Layout(gtx layout.Context, th *material.Theme) layout.Dimensions {
	message, kind, visible := t.Current(gtx.Now)
	if !visible {
		return layout.Dimensions{}
	}

	t.mu.Lock()
	expiresAt := t.expiresAt
	t.mu.Unlock()
	// Redraw when the toast should disappear
	gtx.Execute(op.InvalidateCmd{At: expiresAt})

	var bgColor color.NRGBA
	switch kind {
	case ToastError:
		bgColor = color.NRGBA{R: 200, G: 50, B: 50, A: 240}
	case ToastSuccess:
		bgColor = color.NRGBA{R: 50, G: 160, B: 80, A: 240}
	default:
		bgColor = color.NRGBA{R: 60, G: 60, B: 60, A: 240}
	}

	return layout.S.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
		return layout.Inset{Bottom: unit.Dp(12), Left: unit.Dp(12), Right: unit.Dp(12)}.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			macro := op.Record(gtx.Ops)
			textDims := layout.UniformInset(unit.Dp(8)).Layout(gtx, func(gtx layout.Context) layout.Dimensions {
				label := material.Body2(th, message)
				label.Color = colWhite
				return label.Layout(gtx)
			})
			call := macro.Stop()

			rr := gtx.Dp(unit.Dp(6))
			paint.FillShape(gtx.Ops, bgColor, clip.RRect{
				Rect: image.Rect(0, 0, textDims.Size.X, textDims.Size.Y),
				NE:   rr, NW: rr, SE: rr, SW: rr,
			}.Op(gtx.Ops))
			call.Add(gtx.Ops)
			return textDims
		})
	})
}
