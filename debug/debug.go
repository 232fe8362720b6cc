// ─────────────────────────────────────────────────────────────────────────────
// [Filename]: debug.go — cold-path logging helper (zero-alloc)
//
// Purpose:
//   - Logs infrequent error and state-change paths without heap pressure.
//   - Used only off the hot path: bootstrap phases, capacity drops,
//     shutdown sequencing.
//
// Notes:
//   - Avoids fmt to minimize footprint and latency.
//   - Direct fd-2 writes, no interfaces, no locks.
//
// ⚠️ Never invoke in hot loops — use only in failure diagnostics.
// ─────────────────────────────────────────────────────────────────────────────

package debug

import "arbcore/utils"

// DropError logs an error with an alloc-free print strategy: a single
// string concatenation, written directly to stderr.
//
//go:nosplit
//go:inline
//go:registerparams
func DropError(prefix string, err error) {
	if err != nil {
		utils.PrintWarning(prefix + ": " + err.Error() + "\n")
	} else {
		utils.PrintWarning(prefix + "\n")
	}
}

// DropMessage logs a tagged cold-path message: bootstrap progress,
// connection state changes, capacity warnings.
//
//go:nosplit
//go:inline
//go:registerparams
func DropMessage(prefix, message string) {
	utils.PrintWarning(prefix + ": " + message + "\n")
}
