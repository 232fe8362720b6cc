// ════════════════════════════════════════════════════════════════════════════════════════════════
// Cross-Exchange Arbitrage Core - Main Entry Point
// ────────────────────────────────────────────────────────────────────────────────────────────────
// Project: Arbitrage Hot-Path Core
// Component: Main Entry Point & System Orchestration
//
// Description:
//   System orchestration with phased initialization and clean separation of concerns.
//   Bootstrap → Memory Optimization → Production Event Processing
//
// Architecture:
//   - Phase 0: Configuration and pool registry bootstrap from sqlite
//   - Phase 1: Ingest ring, pinned consumer, and capture replay wiring
//   - Phase 2: Memory cleanup and optimization for production
//   - Phase 3: Real-time event processing with GC disabled
//
// ════════════════════════════════════════════════════════════════════════════════════════════════

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	rtdebug "runtime/debug"
	"syscall"
	"time"

	"go.uber.org/zap"

	"arbcore/book"
	"arbcore/control"
	"arbcore/cycles"
	"arbcore/feed"
	"arbcore/poolmeta"
	"arbcore/ring96"
	"arbcore/scanner"
	"arbcore/types"
)

// ═══════════════════════════════════════════════════════════════════════════════════════════════
// MAIN ORCHESTRATION
// ═══════════════════════════════════════════════════════════════════════════════════════════════

func main() {
	configPath := flag.String("config", "", "path to YAML configuration (empty = defaults)")
	flag.Parse()

	logger, err := newLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := LoadConfig(*configPath)
	if err != nil {
		logger.Fatal("configuration rejected", zap.Error(err))
	}

	// ─────────────────────────────────────────────────────────────────────────
	// PHASE 0: REGISTRY BOOTSTRAP
	// ─────────────────────────────────────────────────────────────────────────

	db, err := poolmeta.Open(cfg.RegistryDB)
	if err != nil {
		logger.Fatal("registry open failed", zap.Error(err))
	}
	pools, err := poolmeta.Load(db)
	db.Close()
	if err != nil {
		logger.Fatal("registry load failed", zap.Error(err))
	}

	store := book.New()
	registered, skipped := poolmeta.RegisterPairs(store, pools)
	logger.Info("registry loaded",
		zap.Int("pools", len(pools)),
		zap.Int("pairs_registered", registered),
		zap.Int("rows_skipped", skipped))

	var finder *cycles.Finder
	var baseToken uint32
	if cfg.Cycles.Enabled {
		finder = cycles.NewFinder(store, cfg.CyclesTypes())
		ids := poolmeta.BuildTopology(finder, pools)
		id, ok := ids[cfg.Cycles.BaseToken]
		if !ok {
			logger.Fatal("cycle base token absent from registry",
				zap.String("address", cfg.Cycles.BaseToken))
		}
		baseToken = id
		logger.Info("cycle topology built",
			zap.Int("tokens", len(ids)),
			zap.Int("max_hops", cfg.Cycles.MaxHops))
	}

	scan := scanner.New(store, cfg.ScannerTypes())
	scan.AddHandler(func(o *types.ArbitrageOpportunity) {
		logger.Info("opportunity",
			zap.Uint32("buy_pool", o.BuyPoolID),
			zap.Uint32("sell_pool", o.SellPoolID),
			zap.Int64("spread_bps", o.SpreadBps),
			zap.String("max_amount", o.MaxAmount.String()),
			zap.String("estimated_profit", o.EstimatedProfit.String()),
			zap.Uint64("ts_ms", o.TimestampMS))
	})

	// ─────────────────────────────────────────────────────────────────────────
	// PHASE 1: INGEST WIRING
	// ─────────────────────────────────────────────────────────────────────────

	ring := ring96.New(cfg.RingSize)
	stopFlag, hotFlag := control.Flags()
	done := make(chan struct{})

	// Counters below are owned by the consumer goroutine; main reads them
	// only after done closes.
	var accepted, rejected uint64
	var sinceScan int
	var oppBuf [scanner.MaxOpportunities]types.ArbitrageOpportunity
	var cycBuf [16]cycles.Cycle

	handler := func(p *[ring96.PayloadSize]byte) {
		if !store.Update(types.ReservesFromBytes(p)) {
			rejected++
			return
		}
		accepted++
		control.SignalActivity()

		if sinceScan++; sinceScan < cfg.ScanEvery {
			return
		}
		sinceScan = 0
		scan.Scan(oppBuf[:])

		if finder == nil {
			return
		}
		finder.Rebuild()
		n := finder.FindCycles(baseToken, cycBuf[:])
		for i := 0; i < n; i++ {
			c := &cycBuf[i]
			logger.Info("cycle",
				zap.Int32("hops", c.N),
				zap.String("amount_in", c.AmountIn.String()),
				zap.String("net_profit", c.NetProfit.String()))
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// PHASE 2: MEMORY OPTIMIZATION
	// ─────────────────────────────────────────────────────────────────────────

	runtime.GC()
	runtime.GC()
	rtdebug.FreeOSMemory()
	logger.Info("memory settled")

	// ─────────────────────────────────────────────────────────────────────────
	// PHASE 3: PRODUCTION EVENT PROCESSING
	// ─────────────────────────────────────────────────────────────────────────

	rtdebug.SetGCPercent(-1)
	control.ForceHot()
	ring96.PinnedConsumer(cfg.PinCore, ring, stopFlag, hotFlag, handler, done)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	replayDone := make(chan struct{})
	if cfg.Capture != "" {
		go replayCapture(cfg.Capture, ring, stopFlag, logger, replayDone)
	} else {
		logger.Info("no capture configured; waiting for shutdown signal")
	}

	select {
	case s := <-sig:
		logger.Info("signal received", zap.String("signal", s.String()))
	case <-replayDone:
		// Let the consumer drain whatever the pump left in the ring.
		time.Sleep(500 * time.Millisecond)
	}

	control.Shutdown()
	<-done
	rtdebug.SetGCPercent(100)

	logger.Info("shutdown complete",
		zap.Uint64("events_accepted", accepted),
		zap.Uint64("events_rejected", rejected),
		zap.Uint64("stale_drops", store.StaleDrops()),
		zap.Uint64("group_drops", store.GroupDrops()),
		zap.Uint64("scans", scan.Scans()),
		zap.Uint64("opportunities", scan.Found()),
		zap.Uint64("handler_faults", scan.HandlerFaults()))
}

// replayCapture pumps an NDJSON capture file into the ingest ring and
// reports replay statistics. Closes done when the capture is exhausted so
// main can shut the pipeline down.
func replayCapture(path string, ring *ring96.Ring, stop *uint32, logger *zap.Logger, done chan<- struct{}) {
	defer close(done)

	f, err := os.Open(path)
	if err != nil {
		logger.Error("capture open failed", zap.Error(err))
		return
	}
	defer f.Close()

	r := feed.NewReplayer(f)
	pushed, err := r.Pump(ring, stop)
	if err != nil {
		logger.Error("capture replay failed", zap.Error(err),
			zap.Uint64("pushed", pushed))
		return
	}
	logger.Info("capture replayed",
		zap.Uint64("pushed", pushed),
		zap.Uint64("decoded", r.Decoded()),
		zap.Uint64("malformed", r.Malformed()))
}
