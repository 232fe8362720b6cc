// ============================================================================
// FLOAT64 APPROXIMATIONS (RANKING AND PRE-FILTERING ONLY)
// ============================================================================
//
// Fast float estimates of the integer paths. Relative error is bounded by
// float64 rounding on 256-bit magnitudes, good to roughly 15 significant
// digits. Never feed these into profit accounting or admission decisions
// without an integer recheck; the integer paths are authoritative.

package fastamm

import (
	"arbcore/types"
	"arbcore/u256"
)

// PriceApprox estimates reserve1/reserve0 in 1e18 fixed point.
// Zero reserve0 yields 0.
//
//go:nosplit
//go:inline
func PriceApprox(r *types.PoolReserves) float64 {
	r0 := r.Reserve0.Float64()
	if r0 == 0 {
		return 0
	}
	return r.Reserve1.Float64() / r0 * float64(types.PricePrecision)
}

// SpreadBpsApprox estimates the buy-to-sell spread in basis points.
// Zero buy price or an inverted pair yields 0.
//
//go:nosplit
//go:inline
func SpreadBpsApprox(buyPrice, sellPrice u256.U256) float64 {
	b := buyPrice.Float64()
	if b == 0 {
		return 0
	}
	s := sellPrice.Float64()
	if s <= b {
		return 0
	}
	return (s - b) / b * float64(types.BpsScale)
}
