package platform

import (
	"context"
	"errors"
	"sync"

	"github.com/justyntemme/dropshelf/internal/debug"
)

// Promise is a file the drag source has promised but not written yet.
type Promise interface {
	// Resolve asks the source to write the file into destDir and returns
	// its path. It blocks until the source is done.
	Resolve(ctx context.Context, destDir string) (string, error)
}

// DropItem is one item of an external drop. The set fields are the
// representations the source offered, in the order they should be tried:
// Path, then Promise, then Data.
type DropItem struct {
	Path     string
	Promise  Promise
	DataType string // UTI or MIME type of Data
	Data     []byte
}

// FileItems wraps plain file paths as drop items.
func FileItems(paths []string) []DropItem {
	items := make([]DropItem, 0, len(paths))
	for _, p := range paths {
		if p != "" {
			items = append(items, DropItem{Path: p})
		}
	}
	return items
}

// DropHandler is called when items are dropped on one of our windows from
// an external source (e.g., Finder or Explorer). It runs on an OS thread.
type DropHandler func(items []DropItem)

var (
	dropHandler DropHandler
	dropMu      sync.Mutex
	pendingDrop []DropItem
)

// SetDropHandler sets the callback for external drops. Drops that arrived
// before a handler was set are delivered immediately.
func SetDropHandler(handler DropHandler) {
	dropMu.Lock()
	dropHandler = handler
	pending := pendingDrop
	if handler != nil {
		pendingDrop = nil
	}
	dropMu.Unlock()

	if handler != nil && len(pending) > 0 {
		debug.Log(debug.UI, "Delivering %d queued drops", len(pending))
		handler(pending)
	}
}

// deliverDrop hands items to the handler, or queues them until one is set.
func deliverDrop(items []DropItem) {
	if len(items) == 0 {
		return
	}
	dropMu.Lock()
	handler := dropHandler
	if handler == nil {
		pendingDrop = append(pendingDrop, items...)
	}
	dropMu.Unlock()

	if handler != nil {
		handler(items)
	} else {
		debug.Log(debug.UI, "No drop handler, queued %d items", len(items))
	}
}

// dropBuilder collects the items of one native drop as the platform hook
// reports them one at a time.
type dropBuilder struct {
	mu    sync.Mutex
	items []DropItem
}

func (b *dropBuilder) begin() {
	b.mu.Lock()
	b.items = nil
	b.mu.Unlock()
}

func (b *dropBuilder) add(item DropItem) {
	if item.Path == "" && item.Promise == nil && len(item.Data) == 0 {
		return
	}
	b.mu.Lock()
	b.items = append(b.items, item)
	b.mu.Unlock()
}

// end delivers the collected items and resets the builder.
func (b *dropBuilder) end() {
	b.mu.Lock()
	items := b.items
	b.items = nil
	b.mu.Unlock()
	deliverDrop(items)
}

var errPromiseConsumed = errors.New("file promise already received")

// promiseHandle owns a native promise receiver until it is resolved once.
type promiseHandle struct {
	mu       sync.Mutex
	handle   uintptr
	receive  func(handle uintptr, destDir string) (string, error)
	release  func(handle uintptr)
	consumed bool
}

func (p *promiseHandle) Resolve(ctx context.Context, destDir string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.consumed {
		return "", errPromiseConsumed
	}
	p.consumed = true
	defer p.release(p.handle)
	return p.receive(p.handle, destDir)
}

// discard releases the receiver if it was never resolved.
func (p *promiseHandle) discard() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.consumed {
		p.consumed = true
		p.release(p.handle)
	}
}
