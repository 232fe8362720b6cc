// ============================================================================
// FASTAMM: CONSTANT-PRODUCT POOL MATH
// ============================================================================
//
// Hot-path pricing and swap simulation for x*y=k pools with the canonical
// 0.3% fee (997/1000). Everything here is branch-light, allocation-free and
// total: degenerate inputs produce zero outputs, never panics.
//
// Core capabilities:
//   - Normalized 18-decimal spot price with liquidity-depth confidence
//   - Exact integer swap output with fee (fee on input side)
//   - Price-impact estimation in basis points
//   - Closed-form optimal two-pool trade sizing (float64 approximation)
//   - Exact two-leg profit simulation for a candidate size
//
// Precision model:
//   - Integer paths pre-scale 256-bit operands so intermediate products
//     never overflow; shared scale factors cancel in every ratio
//   - u256.Div rounds conservatively, so swap outputs and profit figures
//     are lower bounds of the exact values
//   - float64 appears only in confidence tiers and trade sizing, where
//     ranking is all that matters

package fastamm

import (
	"math"

	"arbcore/types"
	"arbcore/u256"
)

// Fee constants for the canonical constant-product venue: 0.3% taken from
// the input amount.
const (
	FeeNum = 997
	FeeDen = 1000
)

// ============================================================================
// SPOT PRICE
// ============================================================================

// CalcPrice computes the normalized pool price Reserve1/Reserve0 scaled to
// 18 decimals, with a liquidity-depth confidence score. A zero Reserve0
// yields Confidence 0 and a zero price; downstream stages skip such results.
//
//go:nosplit
func CalcPrice(p *types.PoolReserves) types.PriceResult {
	res := types.PriceResult{
		TimestampMS: p.TimestampMS,
		PoolID:      p.PoolID,
		DexID:       p.DexID,
	}
	r0, r1 := p.Reserve0, p.Reserve1
	if r0.IsZero() {
		return res
	}

	// Shared scale-down keeps r1*1e18 inside 256 bits and the divisor
	// inside one limb. Shifting both reserves preserves the ratio.
	s := 0
	if b := r1.BitLen() - 192; b > s {
		s = b
	}
	if b := r0.BitLen() - 64; b > s {
		s = b
	}
	if s > 0 {
		r0 = u256.Rsh(r0, uint(s))
		r1 = u256.Rsh(r1, uint(s))
		if r0.IsZero() {
			// Reserve imbalance beyond representable range.
			return res
		}
	}

	res.Price = u256.DivU64(u256.MulU64(r1, types.PricePrecision), r0.Low64())
	res.Confidence = confidenceBps(p.Reserve0, p.Reserve1)
	return res
}

// confidenceBps maps pool depth to a confidence tier. Depth is the geometric
// mean of the reserves; tiers follow 18-decimal token conventions (1e18 is
// one whole unit on each side).
//
//go:nosplit
//go:inline
func confidenceBps(r0, r1 u256.U256) int64 {
	liq := math.Sqrt(r0.Float64() * r1.Float64())
	switch {
	case liq >= 1e24:
		return 10000
	case liq >= 1e21:
		return 9000
	case liq >= 1e18:
		return 7000
	default:
		return 3000
	}
}

// ============================================================================
// SWAP SIMULATION
// ============================================================================

// SwapOut returns the exact output amount for amountIn against the given
// reserves, fee on input:
//
//	out = reserveOut * amountIn * 997 / (reserveIn * 1000 + amountIn * 997)
//
// Any zero argument yields zero. Operands wider than the 256-bit headroom
// are pre-scaled; the result is scaled back, losing only bits below the
// scale factor.
//
//go:nosplit
func SwapOut(reserveIn, reserveOut, amountIn u256.U256) u256.U256 {
	if reserveIn.IsZero() || reserveOut.IsZero() || amountIn.IsZero() {
		return u256.Zero
	}

	s := (reserveOut.BitLen() + amountIn.BitLen() + 10 - 255 + 1) / 2
	if b := reserveIn.BitLen() + 11 - 256; b > s {
		s = b
	}
	if s < 0 {
		s = 0
	}
	rIn, rOut, amt := reserveIn, reserveOut, amountIn
	if s > 0 {
		rIn = u256.Rsh(rIn, uint(s))
		rOut = u256.Rsh(rOut, uint(s))
		amt = u256.Rsh(amt, uint(s))
		if rIn.IsZero() || rOut.IsZero() || amt.IsZero() {
			return u256.Zero
		}
	}

	num := u256.MulU64(u256.Mul(rOut, amt), FeeNum)
	den := u256.Add(u256.MulU64(rIn, FeeDen), u256.MulU64(amt, FeeNum))
	out := u256.Div(num, den)
	if s > 0 {
		// Both numerator factors were scaled, the denominator once:
		// the quotient carries one residual factor of 2^-s.
		out = u256.Lsh(out, uint(s))
	}
	return out
}

// SlippageBps estimates price impact for a trade: the spread between spot
// price and realized execution price, in basis points, clamped to
// [0, 10000]. Zero for degenerate inputs.
//
//go:nosplit
func SlippageBps(reserveIn, reserveOut, amountIn u256.U256) int64 {
	if reserveIn.IsZero() || reserveOut.IsZero() || amountIn.IsZero() {
		return 0
	}
	spot := mulDiv(reserveOut, types.PricePrecision, reserveIn)
	if spot.IsZero() {
		return 0
	}
	out := SwapOut(reserveIn, reserveOut, amountIn)
	exec := mulDiv(out, types.PricePrecision, amountIn)
	if u256.Cmp(exec, spot) >= 0 {
		return 0
	}
	bps := mulDiv(u256.Sub(spot, exec), uint64(types.BpsScale), spot).Low64()
	if bps > uint64(types.BpsScale) {
		return types.BpsScale
	}
	return int64(bps)
}

// mulDiv computes a*m/b with a shared scale-down that keeps a*m inside 256
// bits and b inside one limb. The common shift cancels in the ratio.
//
//go:nosplit
//go:inline
func mulDiv(a u256.U256, m uint64, b u256.U256) u256.U256 {
	s := a.BitLen() + 64 - 256
	if v := b.BitLen() - 64; v > s {
		s = v
	}
	if s > 0 {
		a = u256.Rsh(a, uint(s))
		b = u256.Rsh(b, uint(s))
	}
	if b.IsZero() {
		return u256.Zero
	}
	return u256.DivU64(u256.MulU64(a, m), b.Low64())
}

// LiquidityDepth returns the geometric mean of the reserves, the depth
// figure behind confidence tiers and scanner admission. Float64: threshold
// comparisons only.
//
//go:nosplit
//go:inline
func LiquidityDepth(p *types.PoolReserves) float64 {
	return math.Sqrt(p.Reserve0.Float64() * p.Reserve1.Float64())
}

// SpreadBps returns the relative gap between two normalized prices in basis
// points: (sell-buy)*10000/buy. Zero when buy is zero or not below sell.
// Saturates at MaxInt64 for pathological ratios.
//
//go:nosplit
func SpreadBps(buy, sell u256.U256) int64 {
	if buy.IsZero() || u256.Cmp(sell, buy) <= 0 {
		return 0
	}
	bps := mulDiv(u256.Sub(sell, buy), uint64(types.BpsScale), buy)
	if bps.BitLen() > 63 {
		return math.MaxInt64
	}
	return int64(bps.Low64())
}

// MaxAmountForSlippage returns the largest input that keeps the buy-leg
// price impact at or below maxSlippageBps against reserveIn. From the
// constant-product execution ratio exec/spot = f*rIn/(rIn + f*x):
//
//	x_max = rIn * (m - (1-f)) / (f * (1-m)),  m = maxSlippageBps/10000
//
// Zero when the cap is below the fee itself (no size qualifies).
func MaxAmountForSlippage(reserveIn u256.U256, maxSlippageBps int64) u256.U256 {
	const f = float64(FeeNum) / float64(FeeDen)
	if maxSlippageBps <= 0 || maxSlippageBps >= types.BpsScale {
		if maxSlippageBps >= types.BpsScale {
			return reserveIn // unconstrained in practice
		}
		return u256.Zero
	}
	m := float64(maxSlippageBps) / float64(types.BpsScale)
	if m <= 1-f {
		return u256.Zero
	}
	x := reserveIn.Float64() * (m - (1 - f)) / (f * (1 - m))
	return u256.FromFloat64(x)
}

// ============================================================================
// TWO-POOL ARBITRAGE
// ============================================================================

// OptimalTradeSize returns the token1 input that maximizes round-trip
// profit: spend token1 to buy token0 on the low-price pool, sell the token0
// on the high-price pool. Closed-form constant-product optimum:
//
//	x* = (sqrt(a0*a1*b0*b1)*f - a1*b0) / (f*(a0*f + b0))
//
// where f = 997/1000, (a0,a1) are the buy reserves and (b0,b1) the sell
// reserves. Float64 approximation: callers verify with ArbProfit before
// acting. Zero when no profitable size exists.
func OptimalTradeSize(buy, sell *types.PoolReserves) u256.U256 {
	const f = float64(FeeNum) / float64(FeeDen)
	a0 := buy.Reserve0.Float64()
	a1 := buy.Reserve1.Float64()
	b0 := sell.Reserve0.Float64()
	b1 := sell.Reserve1.Float64()
	if a0 <= 0 || a1 <= 0 || b0 <= 0 || b1 <= 0 {
		return u256.Zero
	}
	x := (math.Sqrt(a0*a1*b0*b1)*f - a1*b0) / (f * (a0*f + b0))
	if x <= 0 || math.IsNaN(x) || math.IsInf(x, 0) {
		return u256.Zero
	}
	return u256.FromFloat64(x)
}

// ArbProfit simulates both legs exactly for amountIn of token1: buy token0
// on buy, sell it on sell, and return the token1 surplus. Zero when the
// round trip does not profit. Amounts are denominated in token1, the quote
// side of the normalized price.
//
//go:nosplit
func ArbProfit(buy, sell *types.PoolReserves, amountIn u256.U256) u256.U256 {
	mid := SwapOut(buy.Reserve1, buy.Reserve0, amountIn)
	if mid.IsZero() {
		return u256.Zero
	}
	out := SwapOut(sell.Reserve0, sell.Reserve1, mid)
	if u256.Cmp(out, amountIn) <= 0 {
		return u256.Zero
	}
	return u256.Sub(out, amountIn)
}
