// Package bus is an in-process typed publish/subscribe transport.
package bus

import (
	"context"
	"errors"
	"sync"
)

type Handler[T any] func(ctx context.Context, msg T) error

// Topic delivers each published message synchronously to every subscriber,
// in subscription order, on the publisher's goroutine.
type Topic[T any] struct {
	name string

	mu     sync.RWMutex
	subs   []subscription[T]
	nextID int
}

type subscription[T any] struct {
	id int
	fn Handler[T]
}

func NewTopic[T any](name string) *Topic[T] {
	return &Topic[T]{name: name}
}

func (t *Topic[T]) Name() string { return t.name }

// Subscribe registers fn and returns a function that removes it.
func (t *Topic[T]) Subscribe(fn Handler[T]) func() {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := t.nextID
	t.nextID++
	t.subs = append(t.subs, subscription[T]{id: id, fn: fn})

	return func() {
		t.mu.Lock()
		defer t.mu.Unlock()
		for i, s := range t.subs {
			if s.id == id {
				t.subs = append(t.subs[:i:i], t.subs[i+1:]...)
				return
			}
		}
	}
}

func (t *Topic[T]) Subscribers() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.subs)
}

// Publish delivers msg to every subscriber and joins their errors.
func (t *Topic[T]) Publish(ctx context.Context, msg T) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.RLock()
	subs := make([]subscription[T], len(t.subs))
	copy(subs, t.subs)
	t.mu.RUnlock()

	var errs []error
	for _, s := range subs {
		if err := s.fn(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
