// ============================================================================
// U256: FIXED-WIDTH 256-BIT UNSIGNED ARITHMETIC
// ============================================================================
//
// Exact 256-bit unsigned integer operations for on-chain token amounts.
// Four 64-bit limbs, little-limb-first, matching EVM word layout so that
// reserve and amount values round-trip through the foreign boundary without
// reordering.
//
// Core capabilities:
//   - Wrapping add/sub with full carry/borrow propagation
//   - Multiply and divide by 64-bit scalars (long division, MSB-first)
//   - Truncating 256x256 multiply and wide division with conservative
//     divisor scale-down (quotient never exceeds the true value)
//   - Exact fused multiply-divide by scalars through a 320-bit intermediate
//   - Three-way comparison, bit shifts, hex parsing
//   - Approximate float64 conversion for ranking/sorting only
//
// Safety model:
//   - All operations are total: no panics, no error returns
//   - Sub wraps modulo 2^256; callers order operands
//   - Division by zero yields zero; callers reject zero divisors upstream
//   - Float64/FromFloat64 lose precision and must never feed profit
//     comparisons, only approximate ordering
//
// Performance characteristics:
//   - Value semantics keep operands in registers (32-byte struct)
//   - math/bits intrinsics compile to single ADC/SBB/MUL chains
//   - Zero allocation on every path except String()

package u256

import (
	"math"
	"math/bits"
)

// ============================================================================
// TYPE DEFINITION
// ============================================================================

// U256 is an unsigned 256-bit integer as four 64-bit limbs, little-limb-first:
// limb 0 is least significant. The in-memory layout is identical to the flat
// four-limb representation used across the foreign boundary.
type U256 [4]uint64

// Zero is the additive identity.
var Zero U256

// ============================================================================
// CONSTRUCTORS
// ============================================================================

// FromU64 builds a U256 from a single 64-bit value.
//
//go:nosplit
//go:inline
func FromU64(v uint64) U256 {
	return U256{v, 0, 0, 0}
}

// FromU128 builds a U256 from 128 bits split into low and high halves.
//
//go:nosplit
//go:inline
func FromU128(lo, hi uint64) U256 {
	return U256{lo, hi, 0, 0}
}

// FromFloat64 converts an approximate float64 back into a U256.
// Negative and non-finite inputs yield zero. Precision is limited to the
// 53-bit mantissa; use only for sizing heuristics, never for settlement math.
func FromFloat64(v float64) U256 {
	var r U256
	if v <= 0 || math.IsInf(v, 0) || math.IsNaN(v) {
		return r
	}
	for i := 3; i >= 0; i-- {
		scale := math.Pow(2, 64*float64(i))
		if v >= scale {
			r[i] = uint64(v / scale)
			v -= float64(r[i]) * scale
		}
	}
	return r
}

// ParseHex parses an ASCII hex quantity (0x-optional, up to 64 nibbles)
// into a U256. Returns false on empty or malformed input. Zero-alloc.
func ParseHex(b []byte) (U256, bool) {
	if len(b) >= 2 && b[0] == '0' && (b[1]|0x20) == 'x' {
		b = b[2:]
	}
	if len(b) == 0 || len(b) > 64 {
		return Zero, false
	}
	var r U256
	for _, c := range b {
		var v uint64
		switch {
		case c >= '0' && c <= '9':
			v = uint64(c - '0')
		case (c|0x20) >= 'a' && (c|0x20) <= 'f':
			v = uint64((c|0x20)-'a') + 10
		default:
			return Zero, false
		}
		// r = r<<4 | v
		r[3] = r[3]<<4 | r[2]>>60
		r[2] = r[2]<<4 | r[1]>>60
		r[1] = r[1]<<4 | r[0]>>60
		r[0] = r[0]<<4 | v
	}
	return r, true
}

// ============================================================================
// PREDICATES AND ACCESSORS
// ============================================================================

// IsZero reports whether all four limbs are zero.
//
//go:nosplit
//go:inline
func (a U256) IsZero() bool {
	return a[0]|a[1]|a[2]|a[3] == 0
}

// Low64 returns the least significant 64 bits.
//
//go:nosplit
//go:inline
func (a U256) Low64() uint64 { return a[0] }

// Low128 returns the least significant 128 bits as (lo, hi).
//
//go:nosplit
//go:inline
func (a U256) Low128() (lo, hi uint64) { return a[0], a[1] }

// BitLen returns the minimum number of bits required to represent a.
// BitLen(0) == 0.
//
//go:nosplit
//go:inline
func (a U256) BitLen() int {
	switch {
	case a[3] != 0:
		return 192 + bits.Len64(a[3])
	case a[2] != 0:
		return 128 + bits.Len64(a[2])
	case a[1] != 0:
		return 64 + bits.Len64(a[1])
	default:
		return bits.Len64(a[0])
	}
}

// ============================================================================
// ARITHMETIC
// ============================================================================

// Add returns a+b wrapping modulo 2^256.
// Carry propagates through all four limbs via ADC chains.
//
//go:nosplit
//go:inline
func Add(a, b U256) U256 {
	var r U256
	var c uint64
	r[0], c = bits.Add64(a[0], b[0], 0)
	r[1], c = bits.Add64(a[1], b[1], c)
	r[2], c = bits.Add64(a[2], b[2], c)
	r[3], _ = bits.Add64(a[3], b[3], c)
	return r
}

// Sub returns a-b wrapping modulo 2^256. When b > a the result wraps, which
// matches two's-complement expectations; callers order operands with Cmp.
//
//go:nosplit
//go:inline
func Sub(a, b U256) U256 {
	var r U256
	var bw uint64
	r[0], bw = bits.Sub64(a[0], b[0], 0)
	r[1], bw = bits.Sub64(a[1], b[1], bw)
	r[2], bw = bits.Sub64(a[2], b[2], bw)
	r[3], _ = bits.Sub64(a[3], b[3], bw)
	return r
}

// MulU64 returns a*b truncated to 256 bits.
// Limb-wise schoolbook multiply with 128-bit partial products.
//
//go:nosplit
//go:inline
func MulU64(a U256, b uint64) U256 {
	var r U256
	var carry uint64
	hi, lo := bits.Mul64(a[0], b)
	r[0] = lo
	carry = hi
	hi, lo = bits.Mul64(a[1], b)
	r[1], carry = addCarry(lo, carry, hi)
	hi, lo = bits.Mul64(a[2], b)
	r[2], carry = addCarry(lo, carry, hi)
	_, lo = bits.Mul64(a[3], b)
	r[3] = lo + carry
	return r
}

// addCarry folds a pending carry into a partial product:
// returns (lo+carryIn, hi+overflow).
//
//go:nosplit
//go:inline
func addCarry(lo, carryIn, hi uint64) (uint64, uint64) {
	s, c := bits.Add64(lo, carryIn, 0)
	return s, hi + c
}

// Mul returns a*b truncated to 256 bits. Column-wise schoolbook multiply;
// only the lower half of the 512-bit product is materialized. Callers on the
// swap path pre-scale operands so the product never exceeds 256 bits.
//
//go:nosplit
//go:inline
func Mul(a, b U256) U256 {
	var r U256
	var s0, s1, s2 uint64

	s0, s1, s2 = muladd(0, 0, 0, a[0], b[0])
	r[0] = s0
	s0, s1, s2 = s1, s2, 0

	s0, s1, s2 = muladd(s0, s1, s2, a[0], b[1])
	s0, s1, s2 = muladd(s0, s1, s2, a[1], b[0])
	r[1] = s0
	s0, s1, s2 = s1, s2, 0

	s0, s1, s2 = muladd(s0, s1, s2, a[0], b[2])
	s0, s1, s2 = muladd(s0, s1, s2, a[1], b[1])
	s0, s1, s2 = muladd(s0, s1, s2, a[2], b[0])
	r[2] = s0
	s0 = s1

	r[3] = s0 + a[0]*b[3] + a[1]*b[2] + a[2]*b[1] + a[3]*b[0]
	return r
}

// muladd folds the 128-bit product x*y into a three-word column accumulator.
//
//go:nosplit
//go:inline
func muladd(s0, s1, s2, x, y uint64) (uint64, uint64, uint64) {
	hi, lo := bits.Mul64(x, y)
	var c uint64
	s0, c = bits.Add64(s0, lo, 0)
	s1, c = bits.Add64(s1, hi, c)
	s2 += c
	return s0, s1, s2
}

// Div returns a/b. Exact when b fits in 64 bits. Wider divisors are scaled
// down to 64 bits with the divisor rounded up, so the result NEVER exceeds
// the true quotient: profit estimates built on Div are lower bounds.
// Division by zero yields zero.
//
//go:nosplit
//go:inline
func Div(a, b U256) U256 {
	s := b.BitLen() - 64
	if s <= 0 {
		return DivU64(a, b[0])
	}
	d := Rsh(b, uint(s)).Low64()

	// Round the truncated divisor up when any shifted-out bit was set.
	var frac uint64
	limb := s >> 6
	off := uint(s & 63)
	for i := 0; i < limb; i++ {
		frac |= b[i]
	}
	if off != 0 {
		frac |= b[limb] << (64 - off)
	}
	if frac != 0 && d != ^uint64(0) {
		d++
	}
	return DivU64(Rsh(a, uint(s)), d)
}

// DivU64 returns a/b. Division by zero yields zero; zero divisors are
// rejected upstream by every caller in this module.
//
//go:nosplit
//go:inline
func DivU64(a U256, b uint64) U256 {
	q, _ := DivModU64(a, b)
	return q
}

// DivModU64 returns the quotient and remainder of a/b.
// Long division, most significant limb first. The running remainder is
// always < b, so each bits.Div64 step is overflow-free by construction.
//
//go:nosplit
//go:inline
func DivModU64(a U256, b uint64) (U256, uint64) {
	if b == 0 {
		return Zero, 0
	}
	var q U256
	var rem uint64
	q[3], rem = bits.Div64(rem, a[3], b)
	q[2], rem = bits.Div64(rem, a[2], b)
	q[1], rem = bits.Div64(rem, a[1], b)
	q[0], rem = bits.Div64(rem, a[0], b)
	return q, rem
}

// MulDivU64 returns a*m/d computed through a 320-bit intermediate, so the
// scale-up never truncates. Quotients wider than 256 bits saturate to all
// ones. Division by zero yields zero.
//
//go:nosplit
//go:inline
func MulDivU64(a U256, m, d uint64) U256 {
	if d == 0 {
		return Zero
	}

	// a*m as five limbs, least significant first.
	var p [5]uint64
	var carry uint64
	for i := 0; i < 4; i++ {
		hi, lo := bits.Mul64(a[i], m)
		p[i], carry = addCarry(lo, carry, hi)
	}
	p[4] = carry

	var q [5]uint64
	var rem uint64
	for i := 4; i >= 0; i-- {
		q[i], rem = bits.Div64(rem, p[i], d)
	}
	if q[4] != 0 {
		return U256{^uint64(0), ^uint64(0), ^uint64(0), ^uint64(0)}
	}
	return U256{q[0], q[1], q[2], q[3]}
}

// Rsh returns a>>n for n in [0,256). Used for overflow pre-scaling and
// binary-search midpoints.
//
//go:nosplit
//go:inline
func Rsh(a U256, n uint) U256 {
	if n >= 256 {
		return Zero
	}
	limb := n >> 6
	off := n & 63
	var r U256
	for i := 0; i < 4; i++ {
		src := i + int(limb)
		if src > 3 {
			break
		}
		r[i] = a[src] >> off
		if off != 0 && src+1 <= 3 {
			r[i] |= a[src+1] << (64 - off)
		}
	}
	return r
}

// Lsh returns a<<n truncated to 256 bits. Inverse of the pre-scaling shift
// on the swap output path.
//
//go:nosplit
//go:inline
func Lsh(a U256, n uint) U256 {
	if n >= 256 {
		return Zero
	}
	limb := int(n >> 6)
	off := n & 63
	var r U256
	for i := 3; i >= 0; i-- {
		src := i - limb
		if src < 0 {
			break
		}
		r[i] = a[src] << off
		if off != 0 && src-1 >= 0 {
			r[i] |= a[src-1] >> (64 - off)
		}
	}
	return r
}

// Cmp compares a and b three-way: -1 if a<b, 0 if equal, +1 if a>b.
// Most significant limb first.
//
//go:nosplit
//go:inline
func Cmp(a, b U256) int {
	for i := 3; i >= 0; i-- {
		switch {
		case a[i] < b[i]:
			return -1
		case a[i] > b[i]:
			return 1
		}
	}
	return 0
}

// ============================================================================
// APPROXIMATE CONVERSION (RANKING ONLY)
// ============================================================================

// Float64 converts to an approximate float64. Values above 2^53 lose
// precision. Ranking and sorting only; profit-critical comparisons go
// through Cmp.
//
//go:nosplit
//go:inline
func (a U256) Float64() float64 {
	const limbScale = 18446744073709551616.0 // 2^64
	r := 0.0
	s := 1.0
	for i := 0; i < 4; i++ {
		r += float64(a[i]) * s
		s *= limbScale
	}
	return r
}

// ============================================================================
// COLD-PATH FORMATTING
// ============================================================================

// String renders the value in decimal. Allocates; diagnostics only.
func (a U256) String() string {
	if a.IsZero() {
		return "0"
	}
	var buf [78]byte // ceil(256*log10(2)) digits
	i := len(buf)
	for !a.IsZero() {
		var d uint64
		a, d = DivModU64(a, 10)
		i--
		buf[i] = byte('0' + d)
	}
	return string(buf[i:])
}
