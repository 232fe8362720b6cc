// Bridge layer between the C exports and the engine packages. Everything
// here is plain Go over unsafe.Pointer views of the C structs, which keeps
// the logic testable without cgo in the test binary.

package main

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"arbcore/arena"
	"arbcore/book"
	"arbcore/fastamm"
	"arbcore/scanner"
	"arbcore/types"
	"arbcore/u256"
)

// Status codes; the cgo file asserts these against the C defines.
const (
	stOK        int32 = 0
	stRejected  int32 = 1
	stErrHandle int32 = -1
	stErrArg    int32 = -2
)

// maxEngines bounds concurrent engine instances per process.
const maxEngines = 64

// engine is one embedder-owned pipeline instance behind a handle.
type engine struct {
	mu   sync.Mutex
	book *book.Book
	scan *scanner.Scanner
}

var (
	handleSeq uint64
	engines   sync.Map // uint64 -> *engine

	// Engine shells recycle through a fixed pool; the pool itself is
	// single-owner, so creation and destruction serialize on poolMu.
	poolMu     sync.Mutex
	enginePool = arena.NewPool[engine](maxEngines)
)

func lookupEngine(h uint64) *engine {
	if v, ok := engines.Load(h); ok {
		return v.(*engine)
	}
	return nil
}

func vectorWidth() int    { return fastamm.VectorWidth() }
func forceScalar(on bool) { fastamm.ForceScalar(on) }

// engineNew allocates an engine behind a fresh handle. Returns 0 when the
// instance pool is exhausted.
func engineNew(cfg unsafe.Pointer) uint64 {
	sc := types.DefaultScannerConfig()
	if cfg != nil {
		sc = *(*types.ScannerConfig)(cfg)
	}
	poolMu.Lock()
	e := enginePool.Acquire()
	poolMu.Unlock()
	if e == nil {
		return 0
	}
	e.book = book.New()
	e.scan = scanner.New(e.book, sc)
	h := atomic.AddUint64(&handleSeq, 1)
	engines.Store(h, e)
	return h
}

// engineFree releases the handle and recycles the shell. The embedder must
// not race a free against in-flight calls on the same handle.
func engineFree(h uint64) int32 {
	v, ok := engines.LoadAndDelete(h)
	if !ok {
		return stErrHandle
	}
	poolMu.Lock()
	enginePool.Release(v.(*engine))
	poolMu.Unlock()
	return stOK
}

func engineSetConfig(h uint64, cfg unsafe.Pointer) int32 {
	e := lookupEngine(h)
	if e == nil {
		return stErrHandle
	}
	if cfg == nil {
		return stErrArg
	}
	e.mu.Lock()
	e.scan.SetConfig(*(*types.ScannerConfig)(cfg))
	e.mu.Unlock()
	return stOK
}

func engineRegisterPair(h uint64, poolID uint32, pairKey uint64) int32 {
	e := lookupEngine(h)
	if e == nil {
		return stErrHandle
	}
	e.mu.Lock()
	ok := e.book.RegisterPair(poolID, pairKey)
	e.mu.Unlock()
	if !ok {
		return stRejected
	}
	return stOK
}

// engineUpdate admits one reserve snapshot. stRejected flags stale
// timestamps and capacity exhaustion; state is untouched in both cases.
func engineUpdate(h uint64, ev unsafe.Pointer) int32 {
	e := lookupEngine(h)
	if e == nil {
		return stErrHandle
	}
	if ev == nil {
		return stErrArg
	}
	e.mu.Lock()
	ok := e.book.Update((*types.PoolReserves)(ev))
	e.mu.Unlock()
	if !ok {
		return stRejected
	}
	return stOK
}

// engineUpdateBatch admits up to n snapshots and returns the number
// accepted.
func engineUpdateBatch(h uint64, evs unsafe.Pointer, n int) int32 {
	e := lookupEngine(h)
	if e == nil {
		return stErrHandle
	}
	if evs == nil || n < 0 {
		return stErrArg
	}
	src := unsafe.Slice((*types.PoolReserves)(evs), n)
	accepted := int32(0)
	e.mu.Lock()
	for i := range src {
		if e.book.Update(&src[i]) {
			accepted++
		}
	}
	e.mu.Unlock()
	return accepted
}

func enginePrice(h uint64, poolID uint32, out unsafe.Pointer) int32 {
	e := lookupEngine(h)
	if e == nil {
		return stErrHandle
	}
	if out == nil {
		return stErrArg
	}
	e.mu.Lock()
	p, ok := e.book.Price(poolID)
	e.mu.Unlock()
	if !ok {
		return stRejected
	}
	*(*types.PriceResult)(out) = p
	return stOK
}

// engineScan runs one scan and writes up to capacity ranked opportunities.
// Returns the count written.
func engineScan(h uint64, out unsafe.Pointer, capacity int) int32 {
	e := lookupEngine(h)
	if e == nil {
		return stErrHandle
	}
	if out == nil || capacity <= 0 {
		return stErrArg
	}
	dst := unsafe.Slice((*types.ArbitrageOpportunity)(out), capacity)
	e.mu.Lock()
	n := e.scan.Scan(dst)
	e.mu.Unlock()
	return int32(n)
}

// engineBest copies the top-ranked opportunity of the last scan.
// stRejected when the last scan found nothing.
func engineBest(h uint64, out unsafe.Pointer) int32 {
	e := lookupEngine(h)
	if e == nil {
		return stErrHandle
	}
	if out == nil {
		return stErrArg
	}
	e.mu.Lock()
	best, ok := e.scan.Best()
	e.mu.Unlock()
	if !ok {
		return stRejected
	}
	*(*types.ArbitrageOpportunity)(out) = best
	return stOK
}

func enginePoolCount(h uint64) int32 {
	e := lookupEngine(h)
	if e == nil {
		return stErrHandle
	}
	e.mu.Lock()
	n := e.book.PoolCount()
	e.mu.Unlock()
	return int32(n)
}

func engineClear(h uint64) int32 {
	e := lookupEngine(h)
	if e == nil {
		return stErrHandle
	}
	e.mu.Lock()
	e.book.Clear()
	e.mu.Unlock()
	return stOK
}

// calcPrice is the stateless single-pool path: no handle, no store.
func calcPrice(ev, out unsafe.Pointer) int32 {
	if ev == nil || out == nil {
		return stErrArg
	}
	*(*types.PriceResult)(out) = fastamm.CalcPrice((*types.PoolReserves)(ev))
	return stOK
}

// calcPriceBatch prices up to n pools. Returns the count written (capped
// internally at the batch limit).
func calcPriceBatch(evs unsafe.Pointer, n int, out unsafe.Pointer) int32 {
	if evs == nil || out == nil || n < 0 {
		return stErrArg
	}
	src := unsafe.Slice((*types.PoolReserves)(evs), n)
	dst := unsafe.Slice((*types.PriceResult)(out), n)
	return int32(fastamm.CalcPriceBatch(dst, src))
}

func swapOut(reserveIn, reserveOut, amountIn, out unsafe.Pointer) int32 {
	if reserveIn == nil || reserveOut == nil || amountIn == nil || out == nil {
		return stErrArg
	}
	r := fastamm.SwapOut(
		*(*u256.U256)(reserveIn),
		*(*u256.U256)(reserveOut),
		*(*u256.U256)(amountIn),
	)
	*(*u256.U256)(out) = r
	return stOK
}

func slippageBps(reserveIn, reserveOut, amountIn unsafe.Pointer) int64 {
	if reserveIn == nil || reserveOut == nil || amountIn == nil {
		return 0
	}
	return fastamm.SlippageBps(
		*(*u256.U256)(reserveIn),
		*(*u256.U256)(reserveOut),
		*(*u256.U256)(amountIn),
	)
}
