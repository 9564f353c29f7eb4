package repository

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

// InstanceRepository keeps widget instances in memory. Each page load gets a
// fresh ID; idle instances expire after ttl.
type InstanceRepository[T any] struct {
	cache *cache.Cache
	ttl   time.Duration
}

// NewInstanceRepository creates a store whose entries expire after ttl of inactivity
func NewInstanceRepository[T any](ttl time.Duration) *InstanceRepository[T] {
	return &InstanceRepository[T]{
		cache: cache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

// Ensure InstanceRepository implements InstanceStore
var _ InstanceStore[int] = (*InstanceRepository[int])(nil)

// NewID returns a fresh random instance ID
func (r *InstanceRepository[T]) NewID() string {
	return uuid.NewString()
}

// Put stores instance under id
func (r *InstanceRepository[T]) Put(id string, instance T) {
	r.cache.Set(id, instance, r.ttl)
}

// Get returns the instance and refreshes its expiry
func (r *InstanceRepository[T]) Get(id string) (T, bool) {
	var zero T
	v, ok := r.cache.Get(id)
	if !ok {
		return zero, false
	}
	instance, ok := v.(T)
	if !ok {
		return zero, false
	}
	r.cache.Set(id, instance, r.ttl)
	return instance, true
}

func (r *InstanceRepository[T]) Delete(id string) {
	r.cache.Delete(id)
}

func (r *InstanceRepository[T]) Count() int {
	return r.cache.ItemCount()
}
