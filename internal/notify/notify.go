// Package notify is a small typed observer list. Emitters own a List and
// hand out unregister functions; there are no weak references, so whoever
// registers is responsible for unregistering on teardown.
package notify

import "sync"

// List holds observers of events of type E.
type List[E any] struct {
	mu     sync.Mutex
	nextID int
	fns    map[int]func(E)
	order  []int
}

// Register adds fn and returns a function that removes it again.
// Calling the returned function more than once is harmless.
func (l *List[E]) Register(fn func(E)) (unregister func()) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(E))
	}
	id := l.nextID
	l.nextID++
	l.fns[id] = fn
	l.order = append(l.order, id)

	var once sync.Once
	return func() {
		once.Do(func() { l.remove(id) })
	}
}

func (l *List[E]) remove(id int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.fns, id)
	for i, v := range l.order {
		if v == id {
			l.order = append(l.order[:i], l.order[i+1:]...)
			break
		}
	}
}

// Emit calls every registered observer in registration order. Observers
// may register or unregister from inside the callback.
func (l *List[E]) Emit(e E) {
	l.mu.Lock()
	fns := make([]func(E), 0, len(l.order))
	for _, id := range l.order {
		fns = append(fns, l.fns[id])
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(e)
	}
}

// Len returns the number of registered observers.
func (l *List[E]) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.order)
}
