package types

// ============================================================================
// CORE HOT-PATH TYPES - FIXED-LAYOUT VALUE STRUCTURES
// ============================================================================
//
// Plain-old-data types shared by every stage of the pipeline: ring transport,
// reserve store, price calculation, scanning and the foreign boundary. All
// layouts are fixed and pointer-free so values copy across the FFI boundary
// and through the SPSC ring byte-for-byte.
//
// Sizes are locked by compile-time asserts below; changing a layout is a
// wire-format change for embedders.

import (
	"unsafe"

	"arbcore/u256"
)

// ============================================================================
// PRECISION CONSTANTS
// ============================================================================

const (
	// PricePrecision scales normalized prices to 18 decimals, matching the
	// most common ERC-20 base unit.
	PricePrecision uint64 = 1_000_000_000_000_000_000

	// BpsScale is the basis-point denominator (1 bp = 0.01%).
	BpsScale int64 = 10_000
)

// ============================================================================
// POOL RESERVES
// ============================================================================

// PoolReserves is the authoritative state of one liquidity pool: both token
// balances, identity, token decimals and the feed timestamp. Exactly 96
// bytes so one value occupies one ring slot.
//
//go:align 64
type PoolReserves struct {
	Reserve0    u256.U256 // token0 balance
	Reserve1    u256.U256 // token1 balance
	TimestampMS uint64    // monotonic feed time, ms
	PoolID      uint32    // internal pool identifier
	DexID       uint32    // venue identifier
	Decimals0   uint8     // token0 decimals
	Decimals1   uint8     // token1 decimals
	_           [14]byte  // pad to 96 bytes
}

// ReserveEventSize is the wire size of one reserve update on the ring.
const ReserveEventSize = 96

// Bytes reinterprets the reserves as a ring payload without copying.
// The pointer aliases the struct; copy semantics are the ring's Push.
//
//go:nosplit
//go:inline
func (p *PoolReserves) Bytes() *[ReserveEventSize]byte {
	return (*[ReserveEventSize]byte)(unsafe.Pointer(p))
}

// ReservesFromBytes reinterprets a ring payload as reserves without copying.
// The result aliases the slot and must be consumed before the next Pop.
//
//go:nosplit
//go:inline
func ReservesFromBytes(b *[ReserveEventSize]byte) *PoolReserves {
	return (*PoolReserves)(unsafe.Pointer(b))
}

// ============================================================================
// PRICE RESULT
// ============================================================================

// PriceResult is a normalized pool price: Reserve1/Reserve0 scaled to
// PricePrecision, plus a liquidity-depth confidence score in bps.
// Confidence 0 marks a degenerate pool (zero reserve0); such prices never
// enter spread comparisons.
//
//go:align 32
type PriceResult struct {
	Price       u256.U256 // 18-decimal normalized price
	TimestampMS uint64
	PoolID      uint32
	DexID       uint32
	Confidence  int64 // 0..10000 bps
	_           [8]byte
}

// ============================================================================
// ARBITRAGE OPPORTUNITY
// ============================================================================

// ArbitrageOpportunity is one ranked cross-venue candidate: buy low on one
// pool, sell high on another pool of the same token pair.
//
//go:align 64
type ArbitrageOpportunity struct {
	BuyPoolID       uint32
	BuyDexID        uint32
	SellPoolID      uint32
	SellDexID       uint32
	BuyPrice        u256.U256
	SellPrice       u256.U256
	SpreadBps       int64
	MaxAmount       u256.U256 // executable size, capped by config
	EstimatedProfit u256.U256 // gross profit estimate for MaxAmount
	TimestampMS     uint64    // newer of the two pool timestamps
	_               [32]byte  // pad to 192 bytes (three cache lines)
}

// ============================================================================
// SCANNER CONFIGURATION
// ============================================================================

// ScannerConfig is an immutable admission-threshold snapshot. Hot-swappable
// between scans, never mutated mid-scan.
type ScannerConfig struct {
	MinSpreadBps    int64     // minimum spread to report
	MaxSlippageBps  int64     // maximum acceptable price impact
	MinLiquidity    u256.U256 // minimum pool liquidity (geometric mean)
	MaxPositionSize u256.U256 // trade size cap
	IncludeSameDex  bool      // compare pools on the same venue
	_               [7]byte
}

// DefaultScannerConfig returns the conservative baseline: 0.1% minimum
// spread, 0.5% slippage cap, 100e18 liquidity floor, 10000e18 size cap.
func DefaultScannerConfig() ScannerConfig {
	return ScannerConfig{
		MinSpreadBps:    10,
		MaxSlippageBps:  50,
		MinLiquidity:    u256.MulU64(u256.FromU64(100), PricePrecision),
		MaxPositionSize: u256.MulU64(u256.FromU64(10_000), PricePrecision),
		IncludeSameDex:  false,
	}
}

// ============================================================================
// COMPILE-TIME LAYOUT ASSERTS
// ============================================================================

var (
	_ [ReserveEventSize - unsafe.Sizeof(PoolReserves{})]byte
	_ [unsafe.Sizeof(PoolReserves{}) - ReserveEventSize]byte
	_ [64 - unsafe.Sizeof(PriceResult{})]byte
	_ [unsafe.Sizeof(PriceResult{}) - 64]byte
	_ [192 - unsafe.Sizeof(ArbitrageOpportunity{})]byte
	_ [unsafe.Sizeof(ArbitrageOpportunity{}) - 192]byte
)
