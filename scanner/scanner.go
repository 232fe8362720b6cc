// ============================================================================
// SCANNER: CROSS-VENUE OPPORTUNITY DETECTION
// ============================================================================
//
// Walks the reserve store's pair groups and compares every pool against
// every other pool of the same token pair, both directions, emitting ranked
// arbitrage candidates.
//
// Admission pipeline per candidate pair:
//   1. Degenerate prices (confidence 0) are skipped outright
//   2. Same-venue pairs are skipped unless the config allows them
//   3. Both pools must clear the liquidity floor
//   4. The price spread must reach the configured minimum
//   5. Trade size is the closed-form optimum, capped by the slippage
//      bound on the buy leg and by the position limit
//   6. The exact two-leg simulation must show nonzero profit
//
// Ownership model:
//   - Single-owner like the store it reads: scans run on the pinned
//     consumer core between ring drains, so no locking anywhere
//   - Config swaps take effect on the next scan, never mid-scan

package scanner

import (
	"sort"

	"arbcore/book"
	"arbcore/debug"
	"arbcore/fastamm"
	"arbcore/types"
	"arbcore/u256"
)

// MaxOpportunities bounds how many candidates one scan retains.
const MaxOpportunities = 256

// Handler receives every emitted opportunity. The pointer is only valid for
// the duration of the call.
type Handler func(*types.ArbitrageOpportunity)

// Scanner detects cross-venue opportunities over a reserve store.
// Construct with New.
type Scanner struct {
	store *book.Book
	cfg   types.ScannerConfig

	handlers []Handler
	last     [MaxOpportunities]types.ArbitrageOpportunity
	lastN    int

	scans         uint64
	found         uint64
	handlerFaults uint64
}

// New returns a scanner bound to a store.
func New(store *book.Book, cfg types.ScannerConfig) *Scanner {
	return &Scanner{store: store, cfg: cfg}
}

// SetConfig swaps the admission thresholds. Takes effect on the next scan.
func (s *Scanner) SetConfig(cfg types.ScannerConfig) { s.cfg = cfg }

// Config returns the active thresholds.
func (s *Scanner) Config() types.ScannerConfig { return s.cfg }

// AddHandler appends an emission callback. Handlers run synchronously
// during Scan in registration order; a panicking handler is isolated and
// logged, never fatal.
func (s *Scanner) AddHandler(h Handler) {
	s.handlers = append(s.handlers, h)
}

// Scans reports completed scan passes.
func (s *Scanner) Scans() uint64 { return s.scans }

// Found reports opportunities emitted across all scans.
func (s *Scanner) Found() uint64 { return s.found }

// HandlerFaults reports handler panics recovered across all scans.
func (s *Scanner) HandlerFaults() uint64 { return s.handlerFaults }

// ============================================================================
// SCAN PASSES
// ============================================================================

// Scan runs one full pass, retains up to MaxOpportunities candidates sorted
// by estimated profit descending, invokes handlers for each, and copies the
// ranked results into dst. Returns the number copied.
func (s *Scanner) Scan(dst []types.ArbitrageOpportunity) int {
	s.scans++
	s.lastN = 0

	groups := s.store.GroupCount()
	for gi := 0; gi < groups; gi++ {
		slots := s.store.GroupSlots(gi)
		for i := 0; i < len(slots); i++ {
			for j := i + 1; j < len(slots); j++ {
				s.evaluate(slots[i], slots[j])
			}
		}
	}

	sort.Slice(s.last[:s.lastN], func(a, b int) bool {
		return u256.Cmp(s.last[a].EstimatedProfit, s.last[b].EstimatedProfit) > 0
	})

	for i := 0; i < s.lastN; i++ {
		s.emit(&s.last[i])
	}

	n := copy(dst, s.last[:s.lastN])
	return n
}

// ScanFunc runs one pass streaming candidates to fn in store order,
// unranked. Scanning stops early when fn returns false. Handlers do not
// run. Returns the number delivered.
func (s *Scanner) ScanFunc(fn func(*types.ArbitrageOpportunity) bool) int {
	s.scans++
	delivered := 0

	groups := s.store.GroupCount()
	for gi := 0; gi < groups; gi++ {
		slots := s.store.GroupSlots(gi)
		for i := 0; i < len(slots); i++ {
			for j := i + 1; j < len(slots); j++ {
				var opp types.ArbitrageOpportunity
				if !s.candidate(slots[i], slots[j], &opp) {
					continue
				}
				s.found++
				delivered++
				if !fn(&opp) {
					return delivered
				}
			}
		}
	}
	return delivered
}

// Best returns the top-ranked opportunity of the last Scan.
func (s *Scanner) Best() (types.ArbitrageOpportunity, bool) {
	if s.lastN == 0 {
		return types.ArbitrageOpportunity{}, false
	}
	return s.last[0], true
}

// LastCount reports candidates retained by the last Scan.
func (s *Scanner) LastCount() int { return s.lastN }

// ============================================================================
// CANDIDATE EVALUATION
// ============================================================================

// evaluate runs the admission pipeline for one slot pair and retains the
// candidate if it qualifies and the retention buffer has room.
func (s *Scanner) evaluate(a, b int32) {
	if s.lastN == MaxOpportunities {
		return
	}
	if s.candidate(a, b, &s.last[s.lastN]) {
		s.lastN++
		s.found++
	}
}

// candidate fills opp for the profitable direction between two pools of the
// same pair, if any. The cheaper pool (lower normalized price) is the buy
// side; both orientations are covered because the comparison is symmetric.
func (s *Scanner) candidate(a, b int32, opp *types.ArbitrageOpportunity) bool {
	pa, pb := s.store.PriceAt(a), s.store.PriceAt(b)
	if pa.Confidence == 0 || pb.Confidence == 0 {
		return false
	}

	buySlot, sellSlot := a, b
	buy, sell := pa, pb
	if u256.Cmp(buy.Price, sell.Price) > 0 {
		buySlot, sellSlot = b, a
		buy, sell = pb, pa
	}

	if !s.cfg.IncludeSameDex && buy.DexID == sell.DexID {
		return false
	}

	// Cheap approximate rejection; survivors get the exact integer spread.
	// Half the floor is far outside float64 error on these magnitudes.
	if fastamm.SpreadBpsApprox(buy.Price, sell.Price) < float64(s.cfg.MinSpreadBps)/2 {
		return false
	}
	spread := fastamm.SpreadBps(buy.Price, sell.Price)
	if spread < s.cfg.MinSpreadBps || spread == 0 {
		return false
	}

	buyRes := s.store.ReservesAt(buySlot)
	sellRes := s.store.ReservesAt(sellSlot)

	floor := s.cfg.MinLiquidity.Float64()
	if fastamm.LiquidityDepth(buyRes) < floor || fastamm.LiquidityDepth(sellRes) < floor {
		return false
	}

	size := fastamm.OptimalTradeSize(buyRes, sellRes)
	if size.IsZero() {
		return false
	}
	if lim := fastamm.MaxAmountForSlippage(buyRes.Reserve1, s.cfg.MaxSlippageBps); u256.Cmp(size, lim) > 0 {
		size = lim
	}
	if u256.Cmp(size, s.cfg.MaxPositionSize) > 0 {
		size = s.cfg.MaxPositionSize
	}
	if size.IsZero() {
		return false
	}

	profit := fastamm.ArbProfit(buyRes, sellRes, size)
	if profit.IsZero() {
		return false
	}

	ts := buy.TimestampMS
	if sell.TimestampMS > ts {
		ts = sell.TimestampMS
	}
	*opp = types.ArbitrageOpportunity{
		BuyPoolID:       buy.PoolID,
		BuyDexID:        buy.DexID,
		SellPoolID:      sell.PoolID,
		SellDexID:       sell.DexID,
		BuyPrice:        buy.Price,
		SellPrice:       sell.Price,
		SpreadBps:       spread,
		MaxAmount:       size,
		EstimatedProfit: profit,
		TimestampMS:     ts,
	}
	return true
}

// emit fans one opportunity out to every handler, isolating panics so one
// misbehaving sink cannot take down the scan loop. Recovered faults are
// counted for the caller behind HandlerFaults.
func (s *Scanner) emit(opp *types.ArbitrageOpportunity) {
	for _, h := range s.handlers {
		func() {
			defer func() {
				if r := recover(); r != nil {
					s.handlerFaults++
					debug.DropMessage("scanner", "handler panic recovered")
				}
			}()
			h(opp)
		}()
	}
}
