// Package observe provides a published-snapshot primitive: a current value
// plus broadcast of every subsequent value to subscribers.
package observe

import "sync"

// Value holds the latest published snapshot of T.
// The zero Value is not usable; construct with NewValue.
type Value[T any] struct {
	mu     sync.Mutex
	cur    T
	subs   map[int]chan T
	nextID int
	closed bool
}

// NewValue creates a Value with an initial snapshot.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{
		cur:  initial,
		subs: make(map[int]chan T),
	}
}

// Get returns the current snapshot.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cur
}

// Set publishes a new snapshot to all subscribers.
// A subscriber that has not consumed the previous snapshot only sees the
// latest one; publishing never blocks.
func (v *Value[T]) Set(next T) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.cur = next
	for _, ch := range v.subs {
		select {
		case <-ch:
		default:
		}
		ch <- next
	}
}

// Subscribe returns a channel that receives every snapshot published after
// the call. cancel closes the channel and must be called when done.
func (v *Value[T]) Subscribe() (ch <-chan T, cancel func()) {
	v.mu.Lock()
	defer v.mu.Unlock()

	c := make(chan T, 1)
	if v.closed {
		close(c)
		return c, func() {}
	}
	id := v.nextID
	v.nextID++
	v.subs[id] = c

	var once sync.Once
	return c, func() {
		once.Do(func() {
			v.mu.Lock()
			defer v.mu.Unlock()
			if sub, ok := v.subs[id]; ok {
				delete(v.subs, id)
				close(sub)
			}
		})
	}
}

// Close closes all subscriber channels. Later Set calls are ignored and the
// last snapshot remains readable through Get.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.closed {
		return
	}
	v.closed = true
	for id, ch := range v.subs {
		delete(v.subs, id)
		close(ch)
	}
}
