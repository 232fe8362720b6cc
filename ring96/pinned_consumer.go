// ════════════════════════════════════════════════════════════════════════════════════════════════
// ⚡ CORE-PINNED CONSUMER
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Arbitrage Hot-Path Core
// Component: Dedicated-Core Reserve Event Drain
//
// Description:
//   CPU core-bound consumer loop for the reserve-event ring. Provides adaptive polling with
//   hot/cold detection and CPU relaxation so the processing core stays responsive during
//   bursts without burning a socket during idle feeds.
//
// Adaptive behavior:
//   - Hot mode: continuous polling while the feed is active or events arrived recently
//   - Cool mode: graduated CPU relaxation after the spin budget is exhausted
//   - Immediate exit on the shared stop flag
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package ring96

import (
	"runtime"
	"time"

	"arbcore/control"
)

const (
	// hotWindow keeps the consumer spinning after the last event on the
	// assumption that reserve updates arrive in block-sized bursts.
	hotWindow = 5 * time.Second

	// spinBudget is the number of failed polls tolerated before a CPU
	// relaxation hint is emitted.
	spinBudget = 224
)

// PinnedConsumer launches a goroutine locked to an OS thread and bound to
// the given CPU core, draining the ring into handler until *stop becomes
// non-zero. done is closed on termination.
//
// Events are copied out of the ring before the slot recycles, so the
// producer can never rewrite a payload mid-handler. The handler's pointer
// targets a consumer-owned buffer reused across events: it must finish
// with the payload (or copy it) before returning.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func PinnedConsumer(
	core int,
	ring *Ring,
	stop *uint32,
	hot *uint32,
	handler func(*[PayloadSize]byte),
	done chan<- struct{},
) {
	go func() {
		runtime.LockOSThread()
		setAffinity(core)

		defer func() {
			runtime.UnlockOSThread()
			close(done)
		}()

		var ev [PayloadSize]byte
		var miss int
		lastHit := time.Now()

		for {
			if *stop != 0 {
				return
			}

			if ring.PopInto(&ev) {
				handler(&ev)
				miss = 0
				lastHit = time.Now()
				continue
			}

			// The primary core also owns global cooldown transitions.
			control.PollCooldown()

			if *hot == 1 || time.Since(lastHit) <= hotWindow {
				continue
			}

			if miss++; miss >= spinBudget {
				miss = 0
				cpuRelax()
			}
		}
	}()
}
