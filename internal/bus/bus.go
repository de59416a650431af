// Package bus is a small typed publish/subscribe hub.
//
// The timeline registry and the audio plan aggregator publish immutable
// snapshots through a Topic. Two kinds of readers are supported:
//
//   - Subscribe registers a callback invoked in subscription order. The
//     composition runtime and tests use this.
//   - Listen returns a Listener with a one-slot channel. When the reader is
//     slow the pending value is replaced by the newer one, so a listener
//     always ends up holding the latest snapshot and never blocks the writer.
//     The studio websocket and the plan handoff loop use this.
//
// Values are delivered from a queue in the order they were enqueued. No lock
// is held while callbacks run, so a callback may write back to whatever
// owns the topic. A value published from inside a callback, or while another
// goroutine is delivering, is queued and delivered by the goroutine that is
// already draining, after the current value has reached every reader.
package bus

import "sync"

// Topic fans out values of type T to any number of readers.
type Topic[T any] struct {
	qmu        sync.Mutex
	queue      []T
	delivering bool

	mu        sync.RWMutex
	nextID    int
	handlers  []handler[T]
	listeners map[*Listener[T]]struct{}
}

type handler[T any] struct {
	id int
	fn func(T)
}

// Listener receives the latest published value on C.
type Listener[T any] struct {
	C    chan T
	done chan struct{}
	once sync.Once
}

// Done is closed when the listener is removed from its topic.
func (l *Listener[T]) Done() <-chan struct{} {
	return l.done
}

// New creates an empty topic.
func New[T any]() *Topic[T] {
	return &Topic[T]{
		listeners: make(map[*Listener[T]]struct{}),
	}
}

// Subscribe registers fn and returns a function that removes it.
// Calling the returned function more than once is harmless.
func (t *Topic[T]) Subscribe(fn func(T)) (cancel func()) {
	t.mu.Lock()
	t.nextID++
	id := t.nextID
	t.handlers = append(t.handlers, handler[T]{id: id, fn: fn})
	t.mu.Unlock()

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, h := range t.handlers {
			if h.id == id {
				t.handlers = append(t.handlers[:i:i], t.handlers[i+1:]...)
				return
			}
		}
	}
}

// Listen registers a channel-based reader.
func (t *Topic[T]) Listen() *Listener[T] {
	l := &Listener[T]{
		C:    make(chan T, 1),
		done: make(chan struct{}),
	}
	t.mu.Lock()
	t.listeners[l] = struct{}{}
	t.mu.Unlock()
	return l
}

// Unlisten removes a listener and closes its Done channel.
func (t *Topic[T]) Unlisten(l *Listener[T]) {
	t.mu.Lock()
	delete(t.listeners, l)
	t.mu.Unlock()
	l.once.Do(func() { close(l.done) })
}

// Count returns the number of callbacks plus listeners.
func (t *Topic[T]) Count() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.handlers) + len(t.listeners)
}

// Publish enqueues v and delivers the queue.
//
// When another delivery is in progress, on this goroutine or another one,
// Publish returns after enqueueing and the active deliverer sends v.
func (t *Topic[T]) Publish(v T) {
	t.Enqueue(v)
	t.Flush()
}

// Enqueue appends v to the delivery queue without delivering it.
//
// Owners that build values under their own lock call Enqueue inside that
// lock and Flush after releasing it, so the queue order matches the order
// in which the values were installed.
func (t *Topic[T]) Enqueue(v T) {
	t.qmu.Lock()
	t.queue = append(t.queue, v)
	t.qmu.Unlock()
}

// Flush delivers queued values until the queue is empty. It returns at once
// when another call is already delivering.
func (t *Topic[T]) Flush() {
	t.qmu.Lock()
	if t.delivering {
		t.qmu.Unlock()
		return
	}
	t.delivering = true
	t.qmu.Unlock()

	drained := false
	defer func() {
		if !drained {
			// A callback panicked; let the next Flush pick up the rest.
			t.qmu.Lock()
			t.delivering = false
			t.qmu.Unlock()
		}
	}()

	for {
		v, ok := t.next()
		if !ok {
			drained = true
			return
		}
		t.deliver(v)
	}
}

// next pops the head of the queue. When the queue is empty it clears the
// delivering flag under the same lock, so a concurrent Enqueue is never
// stranded.
func (t *Topic[T]) next() (T, bool) {
	t.qmu.Lock()
	defer t.qmu.Unlock()
	var zero T
	if len(t.queue) == 0 {
		t.delivering = false
		return zero, false
	}
	v := t.queue[0]
	t.queue[0] = zero
	t.queue = t.queue[1:]
	return v, true
}

func (t *Topic[T]) deliver(v T) {
	t.mu.RLock()
	handlers := make([]handler[T], len(t.handlers))
	copy(handlers, t.handlers)
	for l := range t.listeners {
		offer(l.C, v)
	}
	t.mu.RUnlock()

	for _, h := range handlers {
		h.fn(v)
	}
}

// offer stores v in a one-slot channel, replacing a stale value if the
// reader has not consumed it yet.
func offer[T any](c chan T, v T) {
	select {
	case c <- v:
		return
	default:
	}
	select {
	case <-c:
	default:
	}
	select {
	case c <- v:
	default:
	}
}
