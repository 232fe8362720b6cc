// control.go — Global run-state flags for the pinned processing core
// ============================================================================
// SYSTEM CONTROL ORCHESTRATION
// ============================================================================
//
// Lightweight global signaling shared between the feed producer and the
// pinned consumer core: a hot flag marking active feed traffic (keeps the
// consumer spinning) and a stop flag for graceful shutdown. Flag access is
// zero-allocation and branch-cheap so it can sit inside the poll loop.
//
// Threading model:
//   • The ingestion side calls SignalActivity() on every accepted event
//   • The consumer polls Flags() and PollCooldown() between ring drains
//   • Shutdown() broadcasts termination to every pinned core

package control

import "time"

var (
	hot  uint32 // 1 = feed actively producing, 0 = idle
	stop uint32 // 1 = graceful shutdown requested

	lastHot    int64                    // ns timestamp of last feed activity
	cooldownNs = int64(1 * time.Second) // idle period before hot clears
)

// SignalActivity marks the feed as active and stamps the activity clock.
// Called from the ingestion path on every accepted reserve event.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func SignalActivity() {
	hot = 1
	lastHot = time.Now().UnixNano()
}

// PollCooldown clears the hot flag once the feed has been silent past the
// cooldown window. Invoked inline from the consumer's poll loop so an idle
// feed stops burning the core within a second.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func PollCooldown() {
	if hot == 1 && time.Now().UnixNano()-lastHot > cooldownNs {
		hot = 0
	}
}

// Shutdown requests graceful termination. Every pinned consumer observes
// the flag on its next poll iteration and exits cleanly.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func Shutdown() {
	stop = 1
}

// ForceHot latches the hot flag when entering production mode so the
// consumer starts in aggressive polling before the first event lands.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func ForceHot() {
	hot = 1
	lastHot = time.Now().UnixNano()
}

// Flags exposes direct pointers to the coordination words for
// zero-overhead polling inside consumer loops.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func Flags() (stopFlag, hotFlag *uint32) {
	return &stop, &hot
}
