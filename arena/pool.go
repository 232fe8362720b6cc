// ============================================================================
// OBJECT POOL: FIXED-CAPACITY O(1) ACQUIRE/RELEASE
// ============================================================================
//
// Companion to the bump arena for high-churn objects that recycle
// individually instead of in bulk. All slots are allocated once at
// construction and threaded into an index-based free list; Acquire and
// Release are constant-time stack operations with no allocation.
//
// Safety model:
//   - Single-owner structure: the processing context acquires and releases;
//     no internal synchronization
//   - Acquire on an empty pool returns nil (capacity exhaustion sentinel)
//   - Release zeroes the slot in place so stale state from the previous
//     occupant can never leak into the next Acquire
//   - ⚠️  Releasing a pointer that did not come from Acquire, or releasing
//     twice, corrupts the free list. Caller contract, not checked.

package arena

import "unsafe"

// Pool is a fixed set of pre-allocated T slots with a LIFO free list.
type Pool[T any] struct {
	slots []T
	free  []int32 // stack of free slot indices
	top   int32   // next free-stack entry; 0 means empty
}

// NewPool creates a pool of n slots, all initially free.
func NewPool[T any](n int) *Pool[T] {
	if n <= 0 {
		panic("arena: pool size must be positive")
	}
	p := &Pool[T]{
		slots: make([]T, n),
		free:  make([]int32, n),
		top:   int32(n),
	}
	// LIFO order: slot 0 is handed out first.
	for i := range p.free {
		p.free[i] = int32(n - 1 - i)
	}
	return p
}

// Acquire pops a free slot, or returns nil when the pool is exhausted.
//
//go:nosplit
//go:inline
func (p *Pool[T]) Acquire() *T {
	if p.top == 0 {
		return nil
	}
	p.top--
	return &p.slots[p.free[p.top]]
}

// Release zeroes the slot and pushes it back onto the free list, so the
// next Acquire observes a freshly constructed value.
//
//go:nosplit
//go:inline
func (p *Pool[T]) Release(v *T) {
	var zero T
	*v = zero
	idx := (uintptr(unsafe.Pointer(v)) - uintptr(unsafe.Pointer(&p.slots[0]))) / unsafe.Sizeof(zero)
	p.free[p.top] = int32(idx)
	p.top++
}

// Free reports the number of slots currently available.
//
//go:nosplit
//go:inline
func (p *Pool[T]) Free() int { return int(p.top) }

// Cap reports the total slot count.
//
//go:nosplit
//go:inline
func (p *Pool[T]) Cap() int { return len(p.slots) }
