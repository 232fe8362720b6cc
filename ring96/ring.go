// ============================================================================
// LOCK-FREE SPSC RING BUFFER FOR RESERVE EVENTS
// ============================================================================
//
// Single-producer/single-consumer ring queue moving 96-byte pool-reserve
// events from the feed ingestion path into the processing core without
// blocking either side.
//
// Core capabilities:
//   - Lock-free SPSC operation, wait-free on both sides
//   - Fixed 96-byte payload: one full reserve update per slot
//   - Power-of-2 sizing with bit masking for O(1) cursor arithmetic
//   - Cache line isolation for producer/consumer cursor separation
//
// Architecture overview:
//   - Separated head/tail cursors on isolated cache lines
//   - Sequence-based slot availability signaling: a consumer observing an
//     advanced sequence also observes the fully written payload
//   - Zero allocation after construction
//
// Safety model:
//   - ⚠️  SPSC discipline required: exactly one producer, one consumer
//   - Push returns false when full: the producer owns backpressure policy
//   - Pop returns a slot alias for same-goroutine use; cross-thread
//     consumers copy out via PopInto before the slot recycles
//
// Compiler optimizations:
//   - //go:nosplit for stack management elimination
//   - //go:inline for call overhead reduction
//   - //go:registerparams for register-based parameter passing

package ring96

import (
	"sync/atomic"
)

// PayloadSize is the fixed slot payload width in bytes. Sized for one
// pool-reserve event: two 256-bit reserves, timestamp, identity and
// decimals, padded to a multiple of the cache line half-width.
const PayloadSize = 96

// ============================================================================
// CORE DATA STRUCTURES
// ============================================================================

// slot is a single ring entry: 96 bytes of payload plus an 8-byte sequence
// word, padded so consecutive slots never straddle the same cache line pair.
//
// Sequence protocol:
//   - Producer: sets seq = position + 1 once the payload is fully written
//   - Consumer: expects seq = position + 1 before reading
//   - Consumer: sets seq = position + ring size to recycle the slot
//
//go:align 64
type slot struct {
	val [PayloadSize]byte // reserve event payload
	seq uint64            // availability signaling
	_   [24]byte          // pad to 128 bytes (two cache lines)
}

// Ring is a cache-isolated SPSC ring. The consumer cursor, producer cursor
// and shared metadata each occupy their own cache line so the two sides
// never false-share.
//
//go:align 64
type Ring struct {
	_    [64]byte // isolation for head cursor
	head uint64   // consumer read position

	_    [56]byte // isolation for tail cursor
	tail uint64   // producer write position

	_ [56]byte // reserved

	mask uint64 // size-1 for bit-mask modulo
	step uint64 // ring size for sequence recycling
	buf  []slot // backing slots

	_ [3]uint64 // tail padding
}

// ============================================================================
// CONSTRUCTOR
// ============================================================================

// New creates a ring with the given capacity, which must be a power of two
// of at least 2. Sequence numbers are pre-seeded so every slot starts
// writable by the producer.
//
// Capacity 1 is rejected: with a single slot the producer's publish value
// for position t equals its own next expected recycle value (t+1), so a
// full ring would accept a second push and overwrite the unconsumed
// element.
//
// Panics on invalid capacity: construction misuse is a programming error,
// not a runtime condition.
func New(size int) *Ring {
	if size < 2 || size&(size-1) != 0 {
		panic("ring96: size must be a power of two >= 2")
	}

	r := &Ring{
		mask: uint64(size - 1),
		step: uint64(size),
		buf:  make([]slot, size),
	}
	for i := range r.buf {
		r.buf[i].seq = uint64(i)
	}
	return r
}

// ============================================================================
// PRODUCER OPERATIONS
// ============================================================================

// Push enqueues one 96-byte payload. Returns false when the ring is full;
// the producer applies its own backpressure policy (drop, retry, or widen
// capacity offline). Never blocks, never allocates.
//
// Memory ordering: the release store on seq publishes the payload copy to
// the consumer; no further barriers are needed under SPSC discipline.
//
// ⚠️  Single producer only. The payload is copied, not referenced.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func (r *Ring) Push(val *[PayloadSize]byte) bool {
	t := r.tail
	s := &r.buf[t&r.mask]

	// Slot must have been recycled by the consumer.
	if atomic.LoadUint64(&s.seq) != t {
		return false
	}

	s.val = *val

	// Publish: payload write happens-before this release store.
	atomic.StoreUint64(&s.seq, t+1)

	r.tail = t + 1
	return true
}

// ============================================================================
// CONSUMER OPERATIONS
// ============================================================================

// Pop dequeues the next payload, or returns nil when the ring is empty.
// The returned pointer aliases the slot, and the recycle store below lets
// the producer rewrite that slot immediately: the pointer is only safe
// when producer and consumer run on the same goroutine (tests, drains).
// Cross-thread consumers use PopInto.
//
// ⚠️  Single consumer only.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func (r *Ring) Pop() *[PayloadSize]byte {
	h := r.head
	s := &r.buf[h&r.mask]

	// Acquire load pairs with the producer's release store.
	if atomic.LoadUint64(&s.seq) != h+1 {
		return nil
	}

	val := &s.val

	// Recycle the slot for the producer's next lap.
	atomic.StoreUint64(&s.seq, h+r.step)

	r.head = h + 1
	return val
}

// PopInto dequeues the next payload into dst, or returns false when the
// ring is empty. The copy completes before the slot is recycled, so a
// producer spinning on a full ring can never tear the payload under the
// consumer.
//
// ⚠️  Single consumer only.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func (r *Ring) PopInto(dst *[PayloadSize]byte) bool {
	h := r.head
	s := &r.buf[h&r.mask]

	// Acquire load pairs with the producer's release store.
	if atomic.LoadUint64(&s.seq) != h+1 {
		return false
	}

	*dst = s.val

	// Recycle only after the copy: the producer may rewrite the slot the
	// instant this store lands.
	atomic.StoreUint64(&s.seq, h+r.step)

	r.head = h + 1
	return true
}

// ============================================================================
// INTROSPECTION
// ============================================================================

// Cap returns the ring capacity in slots.
//
//go:nosplit
//go:inline
func (r *Ring) Cap() int { return int(r.step) }
