// Package ring provides fixed-capacity slot bookkeeping for circular logs.
//
// A Ring hands out slot indices in [0, Cap) and never stores values
// itself; callers keep the slot contents wherever they like, typically in
// a backing store. Pushing onto a full ring reuses the oldest slot.
package ring

// Ring tracks the head and count of a circular log.
type Ring struct {
	capacity int
	head     int
	count    int
}

// New returns an empty ring with the given capacity.
func New(capacity int) *Ring {
	return &Ring{capacity: max(capacity, 0)}
}

// Cap returns the number of slots.
func (r *Ring) Cap() int { return r.capacity }

// Len returns the number of live entries.
func (r *Ring) Len() int { return r.count }

// Empty reports whether the ring holds no entries.
func (r *Ring) Empty() bool { return r.count == 0 }

// Next returns the slot the next Push will claim, or -1 for a ring with
// no capacity.
func (r *Ring) Next() int {
	if r.capacity == 0 {
		return -1
	}
	return r.head
}

// Push claims the slot for a new entry and returns its index. When the ring
// is full the oldest entry is evicted and its slot returned. Push on a ring
// with no capacity returns -1.
func (r *Ring) Push() int {
	if r.capacity == 0 {
		return -1
	}
	slot := r.head
	r.head = (r.head + 1) % r.capacity
	r.count = min(r.count+1, r.capacity)
	return slot
}

// Last returns the slot of the newest entry without releasing it, or false
// when the ring is empty.
func (r *Ring) Last() (int, bool) {
	if r.count == 0 {
		return 0, false
	}
	return (r.head - 1 + r.capacity) % r.capacity, true
}

// Pop releases the newest entry and returns its slot index, or false when
// the ring is empty.
func (r *Ring) Pop() (int, bool) {
	if r.count == 0 {
		return 0, false
	}
	r.head = (r.head - 1 + r.capacity) % r.capacity
	r.count--
	return r.head, true
}

// Reset drops every entry.
func (r *Ring) Reset() {
	r.head = 0
	r.count = 0
}
