// ============================================================================
// FFI: C-COMPATIBLE FOREIGN BOUNDARY
// ============================================================================
//
// Exposes the engine to non-Go embedders as a c-shared library:
//
//	go build -buildmode=c-shared -o libarbcore.so ./ffi
//
// Contract:
//   - Opaque uint64 engine handles; 0 is never a valid handle
//   - Every struct crossing the boundary is fixed-layout POD, verified
//     against the Go layouts by compile-time size asserts
//   - All functions are total: bad handles and nil pointers come back as
//     status codes, never crashes
//   - Calls into one engine are serialized internally; embedders may call
//     from any thread
//
// The exported wrappers are deliberately one-liners over the bridge
// functions in bridge.go, which carry the logic and the tests.

package main

/*
#include <stdint.h>

#define ARB_OK            0
#define ARB_REJECTED      1
#define ARB_ERR_HANDLE  (-1)
#define ARB_ERR_ARG     (-2)

typedef struct {
	uint64_t reserve0[4];
	uint64_t reserve1[4];
	uint64_t timestamp_ms;
	uint32_t pool_id;
	uint32_t dex_id;
	uint8_t  decimals0;
	uint8_t  decimals1;
	uint8_t  pad[14];
} arb_pool_reserves;

typedef struct {
	uint64_t price[4];
	uint64_t timestamp_ms;
	uint32_t pool_id;
	uint32_t dex_id;
	int64_t  confidence;
	uint8_t  pad[8];
} arb_price_result;

typedef struct {
	uint32_t buy_pool_id;
	uint32_t buy_dex_id;
	uint32_t sell_pool_id;
	uint32_t sell_dex_id;
	uint64_t buy_price[4];
	uint64_t sell_price[4];
	int64_t  spread_bps;
	uint64_t max_amount[4];
	uint64_t estimated_profit[4];
	uint64_t timestamp_ms;
	uint8_t  pad[32];
} arb_opportunity;

typedef struct {
	int64_t  min_spread_bps;
	int64_t  max_slippage_bps;
	uint64_t min_liquidity[4];
	uint64_t max_position_size[4];
	uint8_t  include_same_dex;
	uint8_t  pad[7];
} arb_scanner_config;
*/
import "C"

import (
	"unsafe"

	"arbcore/types"
)

// Layout asserts: the C structs must mirror the Go PODs byte for byte.
var (
	_ [C.sizeof_arb_pool_reserves - unsafe.Sizeof(types.PoolReserves{})]byte
	_ [unsafe.Sizeof(types.PoolReserves{}) - C.sizeof_arb_pool_reserves]byte
	_ [C.sizeof_arb_price_result - unsafe.Sizeof(types.PriceResult{})]byte
	_ [unsafe.Sizeof(types.PriceResult{}) - C.sizeof_arb_price_result]byte
	_ [C.sizeof_arb_opportunity - unsafe.Sizeof(types.ArbitrageOpportunity{})]byte
	_ [unsafe.Sizeof(types.ArbitrageOpportunity{}) - C.sizeof_arb_opportunity]byte
	_ [C.sizeof_arb_scanner_config - unsafe.Sizeof(types.ScannerConfig{})]byte
	_ [unsafe.Sizeof(types.ScannerConfig{}) - C.sizeof_arb_scanner_config]byte
)

// Status codes mirror the C defines above.
var (
	_ [C.ARB_OK - stOK]byte
	_ [stOK - C.ARB_OK]byte
	_ [C.ARB_REJECTED - stRejected]byte
	_ [stRejected - C.ARB_REJECTED]byte
)

// version is allocated once; embedders must not free it.
var version = C.CString("arbcore 1.0.0")

//export arb_version
func arb_version() *C.char { return version }

//export arb_vector_width
func arb_vector_width() C.int { return C.int(vectorWidth()) }

//export arb_force_scalar
func arb_force_scalar(on C.int) { forceScalar(on != 0) }

//export arb_engine_new
func arb_engine_new(cfg *C.arb_scanner_config) C.uint64_t {
	return C.uint64_t(engineNew(unsafe.Pointer(cfg)))
}

//export arb_engine_free
func arb_engine_free(h C.uint64_t) C.int {
	return C.int(engineFree(uint64(h)))
}

//export arb_engine_set_config
func arb_engine_set_config(h C.uint64_t, cfg *C.arb_scanner_config) C.int {
	return C.int(engineSetConfig(uint64(h), unsafe.Pointer(cfg)))
}

//export arb_engine_register_pair
func arb_engine_register_pair(h C.uint64_t, poolID C.uint32_t, pairKey C.uint64_t) C.int {
	return C.int(engineRegisterPair(uint64(h), uint32(poolID), uint64(pairKey)))
}

//export arb_engine_update
func arb_engine_update(h C.uint64_t, ev *C.arb_pool_reserves) C.int {
	return C.int(engineUpdate(uint64(h), unsafe.Pointer(ev)))
}

//export arb_engine_update_batch
func arb_engine_update_batch(h C.uint64_t, evs *C.arb_pool_reserves, n C.int) C.int {
	return C.int(engineUpdateBatch(uint64(h), unsafe.Pointer(evs), int(n)))
}

//export arb_engine_price
func arb_engine_price(h C.uint64_t, poolID C.uint32_t, out *C.arb_price_result) C.int {
	return C.int(enginePrice(uint64(h), uint32(poolID), unsafe.Pointer(out)))
}

//export arb_engine_scan
func arb_engine_scan(h C.uint64_t, out *C.arb_opportunity, capacity C.int) C.int {
	return C.int(engineScan(uint64(h), unsafe.Pointer(out), int(capacity)))
}

//export arb_engine_best
func arb_engine_best(h C.uint64_t, out *C.arb_opportunity) C.int {
	return C.int(engineBest(uint64(h), unsafe.Pointer(out)))
}

//export arb_engine_pool_count
func arb_engine_pool_count(h C.uint64_t) C.int {
	return C.int(enginePoolCount(uint64(h)))
}

//export arb_engine_clear
func arb_engine_clear(h C.uint64_t) C.int {
	return C.int(engineClear(uint64(h)))
}

//export arb_calc_price
func arb_calc_price(ev *C.arb_pool_reserves, out *C.arb_price_result) C.int {
	return C.int(calcPrice(unsafe.Pointer(ev), unsafe.Pointer(out)))
}

//export arb_calc_price_batch
func arb_calc_price_batch(evs *C.arb_pool_reserves, n C.int, out *C.arb_price_result) C.int {
	return C.int(calcPriceBatch(unsafe.Pointer(evs), int(n), unsafe.Pointer(out)))
}

//export arb_swap_out
func arb_swap_out(reserveIn, reserveOut, amountIn, out *C.uint64_t) C.int {
	return C.int(swapOut(unsafe.Pointer(reserveIn), unsafe.Pointer(reserveOut),
		unsafe.Pointer(amountIn), unsafe.Pointer(out)))
}

//export arb_slippage_bps
func arb_slippage_bps(reserveIn, reserveOut, amountIn *C.uint64_t) C.int64_t {
	return C.int64_t(slippageBps(unsafe.Pointer(reserveIn), unsafe.Pointer(reserveOut),
		unsafe.Pointer(amountIn)))
}

// main is unused: this package only builds as a c-shared library.
func main() {}
