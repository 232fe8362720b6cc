// ============================================================================
// SPSC RING CORRECTNESS VALIDATION SUITE
// ============================================================================
//
// Covers constructor sizing rules, push/pop semantics, capacity boundaries,
// wraparound pointer arithmetic, and strict FIFO delivery under a real
// producer/consumer goroutine pair.

package ring96

import (
	"encoding/binary"
	"sync"
	"testing"
)

// payload builds a deterministic 96-byte test event tagged with seq.
func payload(seq uint64) *[PayloadSize]byte {
	var p [PayloadSize]byte
	binary.LittleEndian.PutUint64(p[:8], seq)
	for i := 8; i < PayloadSize; i++ {
		p[i] = byte(seq) + byte(i)
	}
	return &p
}

// -----------------------------------------------------------------------------
// Constructor validation
// -----------------------------------------------------------------------------

func TestNewValidSizes(t *testing.T) {
	for _, size := range []int{2, 4, 64, 1024, 1 << 14} {
		r := New(size)
		if r.Cap() != size {
			t.Fatalf("Cap = %d, want %d", r.Cap(), size)
		}
	}
}

func TestNewRejectsInvalidSizes(t *testing.T) {
	// Size 1 is rejected alongside non-powers-of-two: a single slot cannot
	// distinguish "payload ready" from "slot recycled", so a full ring
	// would accept an overwriting push.
	for _, size := range []int{0, -1, 1, 3, 12, 1000} {
		func() {
			defer func() {
				if recover() == nil {
					t.Fatalf("New(%d) should panic", size)
				}
			}()
			New(size)
		}()
	}
}

// -----------------------------------------------------------------------------
// Basic push/pop semantics
// -----------------------------------------------------------------------------

func TestPushPopRoundTrip(t *testing.T) {
	r := New(8)
	want := payload(7)
	if !r.Push(want) {
		t.Fatal("push into empty ring failed")
	}
	got := r.Pop()
	if got == nil || *got != *want {
		t.Fatal("payload corrupted across push/pop")
	}
}

func TestPopEmptyFailsCleanly(t *testing.T) {
	r := New(4)
	if r.Pop() != nil {
		t.Fatal("pop on empty ring must return nil")
	}
	// State must remain usable after the failed pop.
	if !r.Push(payload(1)) {
		t.Fatal("push after failed pop broken")
	}
}

func TestPushFullSmallestRing(t *testing.T) {
	// The minimum capacity must still refuse to overwrite: fill both
	// slots, verify the next push fails, then drain in order.
	r := New(2)
	if !r.Push(payload(0)) || !r.Push(payload(1)) {
		t.Fatal("fill of a size-2 ring failed")
	}
	if r.Push(payload(2)) {
		t.Fatal("push on a full size-2 ring must fail")
	}
	for i := uint64(0); i < 2; i++ {
		p := r.Pop()
		if p == nil || binary.LittleEndian.Uint64(p[:8]) != i {
			t.Fatalf("element %d lost or reordered", i)
		}
	}
}

func TestPushFullFailsCleanly(t *testing.T) {
	r := New(4)
	for i := uint64(0); i < 4; i++ {
		if !r.Push(payload(i)) {
			t.Fatalf("push %d failed before capacity", i)
		}
	}
	if r.Push(payload(99)) {
		t.Fatal("push on full ring must fail")
	}
	// The rejected element must not appear; FIFO content intact.
	for i := uint64(0); i < 4; i++ {
		p := r.Pop()
		if p == nil || binary.LittleEndian.Uint64(p[:8]) != i {
			t.Fatalf("element %d lost or reordered after full-push", i)
		}
	}
	if r.Pop() != nil {
		t.Fatal("ring should be empty")
	}
}

// -----------------------------------------------------------------------------
// Wraparound
// -----------------------------------------------------------------------------

func TestWraparoundManyLaps(t *testing.T) {
	r := New(8)
	var next uint64
	for lap := 0; lap < 100; lap++ {
		for i := 0; i < 5; i++ {
			if !r.Push(payload(next + uint64(i))) {
				t.Fatalf("lap %d push %d failed", lap, i)
			}
		}
		for i := 0; i < 5; i++ {
			p := r.Pop()
			if p == nil {
				t.Fatalf("lap %d pop %d empty", lap, i)
			}
			if got := binary.LittleEndian.Uint64(p[:8]); got != next {
				t.Fatalf("lap %d: got seq %d, want %d", lap, got, next)
			}
			next++
		}
	}
}

// -----------------------------------------------------------------------------
// Pointer lifetime
// -----------------------------------------------------------------------------

func TestPopPointerInvalidatedByReuse(t *testing.T) {
	r := New(2)
	r.Push(payload(1))
	r.Push(payload(2))
	p1 := r.Pop()
	first := binary.LittleEndian.Uint64(p1[:8])

	// Producer laps onto the recycled slot: the old pointer now aliases
	// new data.
	r.Push(payload(3))
	if binary.LittleEndian.Uint64(p1[:8]) == first {
		t.Fatal("slot reuse should overwrite the previously returned payload")
	}
}

func TestPopIntoCopySurvivesSlotReuse(t *testing.T) {
	r := New(2)
	r.Push(payload(1))
	r.Push(payload(2))

	// Copy-out semantics: the dequeued bytes must stay intact even after
	// the producer rewrites the recycled slot.
	var dst [PayloadSize]byte
	if !r.PopInto(&dst) {
		t.Fatal("pop-into on a full ring failed")
	}
	r.Push(payload(3))
	if dst != *payload(1) {
		t.Fatal("copied payload corrupted by slot reuse")
	}

	if !r.PopInto(&dst) || dst != *payload(2) {
		t.Fatal("FIFO order broken across pop-into")
	}
}

func TestPopIntoEmptyFailsCleanly(t *testing.T) {
	r := New(4)
	var dst [PayloadSize]byte
	if r.PopInto(&dst) {
		t.Fatal("pop-into on empty ring must fail")
	}
	if !r.Push(payload(1)) {
		t.Fatal("push after failed pop-into broken")
	}
}

// -----------------------------------------------------------------------------
// SPSC stress: strict FIFO, no loss, no duplication
// -----------------------------------------------------------------------------

func TestSPSCOrderedDelivery(t *testing.T) {
	const total = 200_000
	r := New(1 << 10)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := uint64(0); i < total; {
			if r.Push(payload(i)) {
				i++
			}
		}
	}()

	// Cross-goroutine consumption uses the copy-out path.
	var ev [PayloadSize]byte
	var next uint64
	for next < total {
		if !r.PopInto(&ev) {
			continue
		}
		got := binary.LittleEndian.Uint64(ev[:8])
		if got != next {
			t.Fatalf("FIFO violation: got %d, want %d", got, next)
		}
		next++
	}
	wg.Wait()

	if r.PopInto(&ev) {
		t.Fatal("ring must drain to empty")
	}
}
