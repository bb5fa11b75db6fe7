package stores

import "sync"

// broadcaster fans snapshots out to subscribers in subscription order.
type broadcaster[T any] struct {
	mu     sync.Mutex
	nextID int
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// subscribe registers fn and returns a function that removes it. The returned function is safe to call more than once.
func (b *broadcaster[T]) subscribe(fn func(T)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	id := b.nextID
	b.subs = append(b.subs, subscriber[T]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *broadcaster[T]) remove(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	kept := make([]subscriber[T], 0, len(b.subs))
	for _, s := range b.subs {
		if s.id != id {
			kept = append(kept, s)
		}
	}
	b.subs = kept
}

// publish calls every subscriber with v on the caller's goroutine.
func (b *broadcaster[T]) publish(v T) {
	b.mu.Lock()
	subs := b.subs
	b.mu.Unlock()

	for _, s := range subs {
		s.fn(v)
	}
}
