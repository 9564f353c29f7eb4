package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"tshirt-bundle/models"
)

// Notifier broadcasts cart updates to other storefront components
type Notifier interface {
	Publish(ctx context.Context, event models.CartUpdateEvent) error
}

// Broadcaster is an in-process event bus. Subscribers run synchronously in
// subscription order; a panicking subscriber does not stop the others.
type Broadcaster struct {
	mu     sync.RWMutex
	subs   map[int]func(models.CartUpdateEvent)
	nextID int
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]func(models.CartUpdateEvent))}
}

// Subscribe registers fn and returns a function that removes it
func (b *Broadcaster) Subscribe(fn func(models.CartUpdateEvent)) func() {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextID
	b.nextID++
	b.subs[id] = fn
	return func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		delete(b.subs, id)
	}
}

func (b *Broadcaster) Publish(ctx context.Context, event models.CartUpdateEvent) error {
	b.mu.RLock()
	ids := make([]int, 0, len(b.subs))
	for id := range b.subs {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	subs := make([]func(models.CartUpdateEvent), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, b.subs[id])
	}
	b.mu.RUnlock()

	var errs []error
	for _, fn := range subs {
		if err := deliver(fn, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func deliver(fn func(models.CartUpdateEvent), event models.CartUpdateEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("subscriber panicked: %v", r)
		}
	}()
	fn(event)
	return nil
}

// RecordingNotifier keeps published events so they can be handed to the page
type RecordingNotifier struct {
	mu     sync.Mutex
	events []models.CartUpdateEvent
}

func (r *RecordingNotifier) Publish(ctx context.Context, event models.CartUpdateEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
	return nil
}

// Drain returns and forgets the recorded events
func (r *RecordingNotifier) Drain() []models.CartUpdateEvent {
	r.mu.Lock()
	defer r.mu.Unlock()
	events := r.events
	r.events = nil
	return events
}

// MultiNotifier publishes to every notifier, collecting their errors
type MultiNotifier []Notifier

func (m MultiNotifier) Publish(ctx context.Context, event models.CartUpdateEvent) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
