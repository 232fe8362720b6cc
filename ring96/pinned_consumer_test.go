// Pinned consumer validation: delivery through the adaptive polling loop
// and clean shutdown via the shared stop flag.

package ring96

import (
	"encoding/binary"
	"sync/atomic"
	"testing"
	"time"
)

func TestPinnedConsumerDrainsRing(t *testing.T) {
	const total = 1000
	r := New(256)

	var stop, hot uint32
	var received uint64
	done := make(chan struct{})
	errs := make(chan string, 1)

	PinnedConsumer(0, r, &stop, &hot, func(p *[PayloadSize]byte) {
		got := binary.LittleEndian.Uint64(p[:8])
		want := atomic.LoadUint64(&received)
		if got != want {
			select {
			case errs <- "order violation":
			default:
			}
		}
		atomic.AddUint64(&received, 1)
	}, done)

	atomic.StoreUint32(&hot, 1)
	for i := uint64(0); i < total; {
		if r.Push(payload(i)) {
			i++
		}
	}

	deadline := time.Now().Add(5 * time.Second)
	for atomic.LoadUint64(&received) < total {
		if time.Now().After(deadline) {
			t.Fatalf("consumer stalled: %d/%d delivered", atomic.LoadUint64(&received), total)
		}
		time.Sleep(time.Millisecond)
	}

	select {
	case msg := <-errs:
		t.Fatal(msg)
	default:
	}

	atomic.StoreUint32(&stop, 1)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("consumer did not observe stop flag")
	}
}

func TestPinnedConsumerStopsWhenIdle(t *testing.T) {
	r := New(16)
	var stop, hot uint32
	done := make(chan struct{})

	PinnedConsumer(0, r, &stop, &hot, func(*[PayloadSize]byte) {}, done)

	// Stop must be honored even with no traffic at all.
	time.Sleep(10 * time.Millisecond)
	atomic.StoreUint32(&stop, 1)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("idle consumer did not terminate")
	}
}
