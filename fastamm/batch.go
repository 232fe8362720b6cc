// ============================================================================
// FASTAMM: BATCH PRICE CALCULATION
// ============================================================================
//
// Amortized pricing for snapshot refreshes and the foreign boundary. The
// batch loop is unrolled in lanes sized to the widest vector unit the host
// reports, so a future assembly kernel slots into the same shape; every
// lane runs the identical integer core, so batch output is bit-for-bit
// equal to the scalar path at any width.

package fastamm

import (
	"sync/atomic"

	"arbcore/types"
)

// MaxBatch is the per-call element cap. Larger inputs are truncated; the
// return value tells the caller how far the batch got.
const MaxBatch = 1024

// forceScalar pins the batch loop to width 1 regardless of host capability.
var forceScalar uint32

// ForceScalar pins or unpins the batch path to scalar execution. Used by
// tests and by embedders that pin cores below the vector units' license
// frequency.
func ForceScalar(on bool) {
	if on {
		atomic.StoreUint32(&forceScalar, 1)
	} else {
		atomic.StoreUint32(&forceScalar, 0)
	}
}

// VectorWidth reports the lane count the batch loop runs at on this host:
// 8, 4 or 1.
//
//go:nosplit
//go:inline
func VectorWidth() int {
	if atomic.LoadUint32(&forceScalar) != 0 {
		return 1
	}
	return hostVectorWidth
}

// CalcPriceBatch prices up to MaxBatch pools into dst and returns the count
// written: min(len(src), len(dst), MaxBatch). Results are positionally
// aligned with src.
//
//go:nosplit
func CalcPriceBatch(dst []types.PriceResult, src []types.PoolReserves) int {
	n := len(src)
	if n > MaxBatch {
		n = MaxBatch
	}
	if len(dst) < n {
		n = len(dst)
	}

	i := 0
	switch VectorWidth() {
	case 8:
		for ; i+8 <= n; i += 8 {
			dst[i+0] = CalcPrice(&src[i+0])
			dst[i+1] = CalcPrice(&src[i+1])
			dst[i+2] = CalcPrice(&src[i+2])
			dst[i+3] = CalcPrice(&src[i+3])
			dst[i+4] = CalcPrice(&src[i+4])
			dst[i+5] = CalcPrice(&src[i+5])
			dst[i+6] = CalcPrice(&src[i+6])
			dst[i+7] = CalcPrice(&src[i+7])
		}
	case 4:
		for ; i+4 <= n; i += 4 {
			dst[i+0] = CalcPrice(&src[i+0])
			dst[i+1] = CalcPrice(&src[i+1])
			dst[i+2] = CalcPrice(&src[i+2])
			dst[i+3] = CalcPrice(&src[i+3])
		}
	}
	for ; i < n; i++ {
		dst[i] = CalcPrice(&src[i])
	}
	return n
}
