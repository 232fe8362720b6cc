// ============================================================================
// CYCLE SEARCH VALIDATION SUITE
// ============================================================================
//
// Triangular detection over a small token graph, sizing quality, cost
// charging, and topology rebuild behavior.

package cycles

import (
	"testing"

	"arbcore/book"
	"arbcore/types"
	"arbcore/u256"
)

func e18(n uint64) u256.U256 {
	return u256.MulU64(u256.FromU64(n), types.PricePrecision)
}

func install(t *testing.T, b *book.Book, id uint32, r0, r1 u256.U256) {
	t.Helper()
	s := types.PoolReserves{
		Reserve0:    r0,
		Reserve1:    r1,
		TimestampMS: 1,
		PoolID:      id,
		DexID:       id % 3,
		Decimals0:   18,
		Decimals1:   18,
	}
	if !b.Update(&s) {
		t.Fatalf("install pool %d failed", id)
	}
}

// triangle builds tokens 1-2-3 with a 10% edge on the closing leg.
func triangle(t *testing.T) (*book.Book, *Finder) {
	t.Helper()
	b := book.New()
	install(t, b, 10, e18(1_000), e18(1_000)) // token1 <-> token2
	install(t, b, 11, e18(1_000), e18(1_000)) // token2 <-> token3
	install(t, b, 12, e18(1_000), e18(1_100)) // token3 <-> token1, rate 1.1

	cfg := DefaultConfig()
	cfg.GasPriceWei = u256.FromU64(1_000_000_000) // keep gas subordinate
	f := NewFinder(b, cfg)
	f.AddPool(10, 1, 2)
	f.AddPool(11, 2, 3)
	f.AddPool(12, 3, 1)
	f.Rebuild()
	return b, f
}

func TestFindsTriangularCycle(t *testing.T) {
	_, f := triangle(t)

	var out [8]Cycle
	n := f.FindCycles(1, out[:])
	if n == 0 {
		t.Fatal("10% closing edge must produce a cycle")
	}
	c := out[0]
	if c.N != 3 || c.BaseToken != 1 {
		t.Fatalf("cycle shape: %d hops base %d", c.N, c.BaseToken)
	}
	if c.AmountIn.IsZero() || c.NetProfit.IsZero() {
		t.Fatal("cycle not sized")
	}

	// The reported profit must be reproducible from the reported size.
	gross := f.SimulatePath(c.Hops[:c.N], c.AmountIn)
	if u256.Cmp(gross, c.AmountIn) <= 0 {
		t.Fatal("reported size does not round-trip profitably")
	}
	net := f.NetProfit(u256.Sub(gross, c.AmountIn), c.AmountIn, int(c.N))
	if net != c.NetProfit {
		t.Fatalf("net profit %s does not match recomputation %s", c.NetProfit, net)
	}

	// Pool-disjoint path.
	seen := map[uint32]bool{}
	for i := int32(0); i < c.N; i++ {
		if seen[c.Hops[i].PoolID] {
			t.Fatal("pool reused within one cycle")
		}
		seen[c.Hops[i].PoolID] = true
	}
}

func TestNoCycleWithoutEdge(t *testing.T) {
	b := book.New()
	install(t, b, 10, e18(1_000), e18(1_000))
	install(t, b, 11, e18(1_000), e18(1_000))
	install(t, b, 12, e18(1_000), e18(1_000)) // flat: fees eat everything

	f := NewFinder(b, DefaultConfig())
	f.AddPool(10, 1, 2)
	f.AddPool(11, 2, 3)
	f.AddPool(12, 3, 1)
	f.Rebuild()

	var out [8]Cycle
	if n := f.FindCycles(1, out[:]); n != 0 {
		t.Fatalf("flat triangle produced %d cycles", n)
	}
}

func TestMaxHopsLimit(t *testing.T) {
	b, _ := triangle(t)
	cfg := DefaultConfig()
	cfg.MaxHops = 2
	cfg.GasPriceWei = u256.FromU64(1_000_000_000)
	f := NewFinder(b, cfg)
	f.AddPool(10, 1, 2)
	f.AddPool(11, 2, 3)
	f.AddPool(12, 3, 1)
	f.Rebuild()

	var out [8]Cycle
	if n := f.FindCycles(1, out[:]); n != 0 {
		t.Fatal("triangular cycle found despite a 2-hop limit")
	}
}

func TestTwoHopCycleAcrossVenues(t *testing.T) {
	b := book.New()
	install(t, b, 20, e18(1_000), e18(1_000))
	install(t, b, 21, e18(1_000), e18(1_100)) // same pair, better rate

	cfg := DefaultConfig()
	cfg.MaxHops = 2
	cfg.GasPriceWei = u256.FromU64(1_000_000_000)
	f := NewFinder(b, cfg)
	f.AddPool(20, 1, 2)
	f.AddPool(21, 1, 2)
	f.Rebuild()

	var out [4]Cycle
	n := f.FindCycles(1, out[:])
	if n == 0 {
		t.Fatal("cross-venue 2-hop cycle not found")
	}
	if out[0].N != 2 {
		t.Fatalf("cycle length = %d, want 2", out[0].N)
	}
}

func TestOptimizeAmountBeatsFixedSizes(t *testing.T) {
	_, f := triangle(t)
	hops := []Hop{
		{PoolID: 10, ZeroForOne: true},
		{PoolID: 11, ZeroForOne: true},
		{PoolID: 12, ZeroForOne: true},
	}
	size, best := f.OptimizeAmount(hops)
	if best.IsZero() {
		t.Fatal("optimizer found no profitable size")
	}

	net := func(amt u256.U256) u256.U256 {
		out := f.SimulatePath(hops, amt)
		if u256.Cmp(out, amt) <= 0 {
			return u256.Zero
		}
		return f.NetProfit(u256.Sub(out, amt), amt, len(hops))
	}
	for _, alt := range []u256.U256{e18(1), e18(10), e18(100), u256.Rsh(size, 2)} {
		if u256.Cmp(net(alt), best) > 0 {
			t.Fatalf("fixed size %s beats the optimizer", alt)
		}
	}
}

func TestNetProfitCharges(t *testing.T) {
	b := book.New()
	cfg := Config{
		MaxHops:     2,
		GasPerHop:   100_000,
		GasPriceWei: u256.FromU64(1_000_000_000),
		FlashFeeBps: 9,
	}
	f := NewFinder(b, cfg)

	gross := e18(1)
	input := e18(100)
	got := f.NetProfit(gross, input, 2)

	gas := u256.FromU64(2 * 100_000 * 1_000_000_000)
	fee := u256.DivU64(u256.MulU64(input, 9), 10_000)
	want := u256.Sub(u256.Sub(gross, gas), fee)
	if got != want {
		t.Fatalf("net = %s, want %s", got, want)
	}

	// Costs above gross saturate at zero.
	if !f.NetProfit(u256.FromU64(1), input, 2).IsZero() {
		t.Fatal("cost-dominated cycle must net zero")
	}
}

func TestSimulatePathUnknownPool(t *testing.T) {
	b := book.New()
	f := NewFinder(b, DefaultConfig())
	if !f.SimulatePath([]Hop{{PoolID: 99, ZeroForOne: true}}, e18(1)).IsZero() {
		t.Fatal("unknown pool must simulate to zero")
	}
}

func TestRebuildTracksStore(t *testing.T) {
	b := book.New()
	f := NewFinder(b, DefaultConfig())
	f.AddPool(10, 1, 2)
	f.Rebuild()
	if len(f.adj) != 0 {
		t.Fatal("adjacency built for pools the store never saw")
	}

	install(t, b, 10, e18(10), e18(10))
	f.Rebuild()
	if len(f.adj[1]) != 1 || len(f.adj[2]) != 1 {
		t.Fatal("adjacency missing after the pool arrived")
	}
	if f.Rebuilds() != 2 {
		t.Fatalf("rebuilds = %d, want 2", f.Rebuilds())
	}

	// Repeated rebuilds recycle the same arena.
	used := f.mem.Used()
	for i := 0; i < 10; i++ {
		f.Rebuild()
	}
	if f.mem.Used() != used {
		t.Fatalf("arena usage drifted: %d -> %d", used, f.mem.Used())
	}
}

func TestAddPoolRejectsSelfLoop(t *testing.T) {
	f := NewFinder(book.New(), DefaultConfig())
	if f.AddPool(1, 7, 7) {
		t.Fatal("self-loop accepted")
	}
}

func TestFindCyclesRespectsDstCap(t *testing.T) {
	_, f := triangle(t)
	var out [1]Cycle
	if n := f.FindCycles(1, out[:]); n > 1 {
		t.Fatalf("wrote %d cycles into a 1-slot dst", n)
	}
}
