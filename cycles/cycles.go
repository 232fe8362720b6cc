// ============================================================================
// CYCLES: MULTI-HOP CYCLE SEARCH
// ============================================================================
//
// Finds profitable swap cycles of up to four hops over the tracked pools:
// start and end in the same token, route through intermediate tokens,
// simulate every leg exactly, and charge gas plus flash-loan fees before
// declaring profit.
//
// Architecture:
//   - Topology (pool -> token endpoints) registers cold-path, like pair
//     keys; reserves and prices come from the store at search time
//   - Rebuild materializes adjacency lists into a bump arena, so repeated
//     rebuilds produce zero garbage
//   - DFS with an explicit fixed-depth frame stack, pool-disjoint paths
//
// Sizing model:
//   - Gross profit is simulated with exact integer swap math
//   - Input sizing is a bounded ternary search: constant-product cycle
//     profit is unimodal in the input, so the search converges on the
//     maximum without derivatives

package cycles

import (
	"unsafe"

	"arbcore/arena"
	"arbcore/book"
	"arbcore/fastamm"
	"arbcore/types"
	"arbcore/u256"
)

// PathCap is the hard hop limit. Four hops covers triangular plus one
// bridging leg; beyond that gas dominates any realistic edge.
const PathCap = 4

// arenaSize backs adjacency rebuilds: 4096 pools * 2 directed edges * 4
// bytes, plus per-token headroom.
const arenaSize = 1 << 18

// Config tunes search admission and cost charging.
type Config struct {
	MaxHops      int       // 2..PathCap
	GasPerHop    uint64    // gas units charged per swap leg
	GasPriceWei  u256.U256 // wei per gas unit
	FlashFeeBps  int64     // flash-loan fee on the borrowed input
	MinNetProfit u256.U256 // cycles below this are not reported
}

// DefaultConfig charges one mainnet-ish swap of gas per hop and the common
// 9bp flash-loan fee.
func DefaultConfig() Config {
	return Config{
		MaxHops:     3,
		GasPerHop:   120_000,
		GasPriceWei: u256.FromU64(30_000_000_000), // 30 gwei
		FlashFeeBps: 9,
	}
}

// Hop is one swap leg of a cycle. ZeroForOne gives the direction: token0
// in, token1 out when true.
type Hop struct {
	PoolID     uint32
	DexID      uint32
	ZeroForOne bool
	_          [7]byte
}

// Cycle is one profitable route: hops, the sized input, and profit net of
// gas and flash-loan fees, denominated in the base token.
type Cycle struct {
	Hops      [PathCap]Hop
	N         int32
	BaseToken uint32
	AmountIn  u256.U256
	NetProfit u256.U256
}

// poolEdge is the registered topology of one pool.
type poolEdge struct {
	poolID uint32
	t0, t1 uint32
}

// edge is one directed adjacency entry: pool index plus direction.
type edge struct {
	pool int32
	z4o  bool
}

// Finder searches cycles over a reserve store. Construct with NewFinder;
// single-owner like the store it reads.
type Finder struct {
	store *book.Book
	cfg   Config

	pools []poolEdge
	adj   map[uint32][]edge // token -> outgoing edges, arena-backed
	mem   *arena.Arena

	rebuilds uint64
}

// NewFinder returns a finder bound to a store. Panics only on a nil store,
// which is constructor misuse.
func NewFinder(store *book.Book, cfg Config) *Finder {
	if store == nil {
		panic("cycles: nil store")
	}
	if cfg.MaxHops < 2 || cfg.MaxHops > PathCap {
		cfg.MaxHops = PathCap
	}
	return &Finder{
		store: store,
		cfg:   cfg,
		adj:   make(map[uint32][]edge),
		mem:   arena.New(arenaSize),
	}
}

// ============================================================================
// TOPOLOGY (COLD PATH)
// ============================================================================

// AddPool registers a pool's token endpoints. Self-loops are rejected.
// Takes effect on the next Rebuild.
func (f *Finder) AddPool(poolID, token0, token1 uint32) bool {
	if token0 == token1 {
		return false
	}
	f.pools = append(f.pools, poolEdge{poolID: poolID, t0: token0, t1: token1})
	return true
}

// Rebuild rematerializes adjacency from registered pools that the store
// currently tracks. The previous adjacency memory is reclaimed wholesale by
// the arena reset.
func (f *Finder) Rebuild() {
	f.rebuilds++
	f.mem.Reset()
	clear(f.adj)

	// First pass sizes each token's list so the arena allocation is exact.
	degree := make(map[uint32]int32, len(f.pools))
	live := 0
	for i := range f.pools {
		if _, ok := f.store.Lookup(f.pools[i].poolID); !ok {
			continue
		}
		degree[f.pools[i].t0]++
		degree[f.pools[i].t1]++
		live++
	}
	if live == 0 {
		return
	}

	for tok, n := range degree {
		f.adj[tok] = allocEdges(f.mem, int(n))
	}
	for i := range f.pools {
		p := &f.pools[i]
		if _, ok := f.store.Lookup(p.poolID); !ok {
			continue
		}
		f.adj[p.t0] = append(f.adj[p.t0], edge{pool: int32(i), z4o: true})
		f.adj[p.t1] = append(f.adj[p.t1], edge{pool: int32(i), z4o: false})
	}
}

// allocEdges carves an empty edge slice with the given capacity out of the
// arena, falling back to the heap when the arena is exhausted.
func allocEdges(a *arena.Arena, n int) []edge {
	const edgeSize = unsafe.Sizeof(edge{})
	p := a.Alloc(uintptr(n)*edgeSize, 8)
	if p == nil {
		return make([]edge, 0, n)
	}
	return unsafe.Slice((*edge)(p), n)[:0]
}

// Rebuilds reports completed topology rebuilds.
func (f *Finder) Rebuilds() uint64 { return f.rebuilds }

// ============================================================================
// SEARCH
// ============================================================================

// frame is one DFS level: the token we stand on and the next adjacency
// index to try.
type frame struct {
	token uint32
	next  int
}

// FindCycles searches pool-disjoint cycles through base, sizes each with
// OptimizeAmount, and writes those clearing MinNetProfit into dst. Returns
// the count written; stops when dst is full.
func (f *Finder) FindCycles(base uint32, dst []Cycle) int {
	if len(dst) == 0 {
		return 0
	}
	maxHops := f.cfg.MaxHops

	var stack [PathCap + 1]frame
	var path [PathCap]edge
	found := 0

	stack[0] = frame{token: base}
	depth := 0
	for depth >= 0 {
		fr := &stack[depth]
		edges := f.adj[fr.token]
		if fr.next >= len(edges) || depth == maxHops {
			depth--
			continue
		}
		e := edges[fr.next]
		fr.next++

		if pathContains(path[:depth], e.pool) {
			continue
		}
		p := &f.pools[e.pool]
		nextTok := p.t1
		if !e.z4o {
			nextTok = p.t0
		}

		if nextTok == base {
			if depth+1 >= 2 {
				path[depth] = e
				if c, ok := f.sizeCycle(base, path[:depth+1]); ok {
					dst[found] = c
					found++
					if found == len(dst) {
						return found
					}
				}
			}
			continue
		}
		if depth+1 == maxHops {
			continue
		}
		path[depth] = e
		depth++
		stack[depth] = frame{token: nextTok}
	}
	return found
}

//go:nosplit
//go:inline
func pathContains(path []edge, pool int32) bool {
	for i := range path {
		if path[i].pool == pool {
			return true
		}
	}
	return false
}

// sizeCycle converts a raw edge path into a sized, costed Cycle.
func (f *Finder) sizeCycle(base uint32, path []edge) (Cycle, bool) {
	var c Cycle
	c.BaseToken = base
	c.N = int32(len(path))
	for i, e := range path {
		p := &f.pools[e.pool]
		res, ok := f.store.Lookup(p.poolID)
		if !ok {
			return c, false
		}
		c.Hops[i] = Hop{PoolID: p.poolID, DexID: res.DexID, ZeroForOne: e.z4o}
	}

	amount, net := f.OptimizeAmount(c.Hops[:c.N])
	if net.IsZero() || u256.Cmp(net, f.cfg.MinNetProfit) < 0 {
		return c, false
	}
	c.AmountIn = amount
	c.NetProfit = net
	return c, true
}

// ============================================================================
// SIMULATION AND SIZING
// ============================================================================

// SimulatePath pushes amountIn through every hop with exact swap math and
// returns the terminal output. Zero when any leg is unknown or dry.
func (f *Finder) SimulatePath(hops []Hop, amountIn u256.U256) u256.U256 {
	amt := amountIn
	for i := range hops {
		res, ok := f.store.Lookup(hops[i].PoolID)
		if !ok {
			return u256.Zero
		}
		rIn, rOut := res.Reserve0, res.Reserve1
		if !hops[i].ZeroForOne {
			rIn, rOut = rOut, rIn
		}
		amt = fastamm.SwapOut(rIn, rOut, amt)
		if amt.IsZero() {
			return u256.Zero
		}
	}
	return amt
}

// OptimizeAmount sizes a path by bounded ternary search on net profit.
// Cycle profit under constant-product pricing is unimodal in the input, so
// narrowing thirds converges on the maximum. Returns (input, net profit);
// zero profit means no size works.
func (f *Finder) OptimizeAmount(hops []Hop) (u256.U256, u256.U256) {
	if len(hops) == 0 {
		return u256.Zero, u256.Zero
	}
	res, ok := f.store.Lookup(hops[0].PoolID)
	if !ok {
		return u256.Zero, u256.Zero
	}
	hi := res.Reserve0
	if !hops[0].ZeroForOne {
		hi = res.Reserve1
	}
	lo := u256.FromU64(1)
	if u256.Cmp(hi, lo) <= 0 {
		return u256.Zero, u256.Zero
	}

	// 64 narrowing rounds pin the optimum well past the cost noise floor.
	for iter := 0; iter < 64; iter++ {
		span := u256.Sub(hi, lo)
		if span.BitLen() <= 1 {
			break
		}
		third := u256.DivU64(span, 3)
		m1 := u256.Add(lo, third)
		m2 := u256.Sub(hi, third)
		if u256.Cmp(f.netProfitAt(hops, m1), f.netProfitAt(hops, m2)) < 0 {
			lo = m1
		} else {
			hi = m2
		}
	}

	best := f.netProfitAt(hops, lo)
	return lo, best
}

// netProfitAt is the search objective: simulated output minus input, gas
// and flash fee. Zero when the cycle loses at this size.
func (f *Finder) netProfitAt(hops []Hop, amountIn u256.U256) u256.U256 {
	out := f.SimulatePath(hops, amountIn)
	if u256.Cmp(out, amountIn) <= 0 {
		return u256.Zero
	}
	return f.NetProfit(u256.Sub(out, amountIn), amountIn, len(hops))
}

// NetProfit charges gas and the flash-loan fee against a gross profit.
// Saturates at zero.
func (f *Finder) NetProfit(gross, amountIn u256.U256, hops int) u256.U256 {
	gas := u256.MulU64(f.cfg.GasPriceWei, f.cfg.GasPerHop*uint64(hops))
	if u256.Cmp(gross, gas) <= 0 {
		return u256.Zero
	}
	net := u256.Sub(gross, gas)

	if f.cfg.FlashFeeBps > 0 {
		fee := u256.MulDivU64(amountIn, uint64(f.cfg.FlashFeeBps), uint64(types.BpsScale))
		if u256.Cmp(net, fee) <= 0 {
			return u256.Zero
		}
		net = u256.Sub(net, fee)
	}
	return net
}
