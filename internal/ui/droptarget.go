package ui

import (
	"io"
	"log"

	"gioui.org/io/event"
	"gioui.org/io/transfer"
	"gioui.org/layout"
	"gioui.org/op/clip"

	"github.com/justyntemme/dropshelf/internal/debug"
	"github.com/justyntemme/dropshelf/internal/ingest"
)

// dropTarget accepts Gio transfers of every type in AcceptedTypes.
type dropTarget struct {
	// active is set while a compatible drag is in flight
	active bool
}

// Update drains pending transfer events and returns the dropped payloads.
func (d *dropTarget) Update(gtx layout.Context) []ingest.Payload {
	filters := make([]event.Filter, len(AcceptedTypes))
	for i, mime := range AcceptedTypes {
		filters[i] = transfer.TargetFilter{Target: d, Type: mime}
	}

	var out []ingest.Payload
	for {
		ev, ok := gtx.Event(filters...)
		if !ok {
			break
		}
		switch e := ev.(type) {
		case transfer.InitiateEvent:
			d.active = true
		case transfer.CancelEvent:
			d.active = false
		case transfer.DataEvent:
			d.active = false
			reader := e.Open()
			data, err := io.ReadAll(reader)
			reader.Close()
			if err != nil {
				log.Printf("Drop Error: read %s: %v", e.Type, err)
				continue
			}
			debug.Log(debug.UI, "Transfer drop: %s (%d bytes)", e.Type, len(data))
			out = append(out, PayloadsFromData(e.Type, data)...)
		}
	}
	return out
}

// Layout registers the target over the area w occupies.
func (d *dropTarget) Layout(gtx layout.Context, w layout.Widget) layout.Dimensions {
	dims := w(gtx)
	defer clip.Rect{Max: dims.Size}.Push(gtx.Ops).Pop()
	event.Op(gtx.Ops, d)
	return dims
}
