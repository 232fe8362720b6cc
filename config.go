// ============================================================================
// RUNTIME CONFIGURATION
// ============================================================================
//
// YAML-backed process configuration with hard validation at load time.
// Every tunable has a default that matches the engine's own defaults, so an
// empty file is a valid configuration. Bad values fail the boot, never get
// silently clamped.

package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"arbcore/cycles"
	"arbcore/types"
	"arbcore/u256"
)

// Config is the full process configuration.
type Config struct {
	// RegistryDB is the sqlite pool registry produced by the harvester.
	RegistryDB string `yaml:"registry_db"`

	// Capture is an NDJSON reserve-event capture to replay. Empty means
	// the process boots, reports readiness, and waits for shutdown.
	Capture string `yaml:"capture"`

	// PinCore pins the ring consumer to a CPU core. Negative disables
	// pinning.
	PinCore int `yaml:"pin_core"`

	// RingSize is the ingest ring capacity in slots. Must be a power of
	// two.
	RingSize int `yaml:"ring_size"`

	// ScanEvery triggers an opportunity scan after this many accepted
	// updates.
	ScanEvery int `yaml:"scan_every"`

	Scanner ScannerConfig `yaml:"scanner"`
	Cycles  CyclesConfig  `yaml:"cycles"`
}

// ScannerConfig mirrors types.ScannerConfig with whole-token liquidity
// figures for human-editable files.
type ScannerConfig struct {
	MinSpreadBps   int64 `yaml:"min_spread_bps"`
	MaxSlippageBps int64 `yaml:"max_slippage_bps"`
	MinLiquidity   int64 `yaml:"min_liquidity"`     // whole tokens, 1e18 scaled on load
	MaxPosition    int64 `yaml:"max_position_size"` // whole tokens, 1e18 scaled on load
	IncludeSameDex bool  `yaml:"include_same_dex"`
}

// CyclesConfig drives the multi-hop finder.
type CyclesConfig struct {
	Enabled      bool   `yaml:"enabled"`
	MaxHops      int    `yaml:"max_hops"`
	GasPerHop    uint64 `yaml:"gas_per_hop"`
	GasPriceGwei uint64 `yaml:"gas_price_gwei"`
	FlashFeeBps  int64  `yaml:"flash_fee_bps"`

	// BaseToken is the hex address cycles must start and end on. Empty
	// disables cycle search even when Enabled is set.
	BaseToken string `yaml:"base_token"`
}

// DefaultConfig returns the configuration used when fields are absent.
func DefaultConfig() Config {
	sc := types.DefaultScannerConfig()
	cy := cycles.DefaultConfig()
	return Config{
		RegistryDB: "pools.db",
		PinCore:    -1,
		RingSize:   4096,
		ScanEvery:  64,
		Scanner: ScannerConfig{
			MinSpreadBps:   sc.MinSpreadBps,
			MaxSlippageBps: sc.MaxSlippageBps,
			MinLiquidity:   100,
			MaxPosition:    10_000,
			IncludeSameDex: sc.IncludeSameDex,
		},
		Cycles: CyclesConfig{
			Enabled:      false,
			MaxHops:      cy.MaxHops,
			GasPerHop:    cy.GasPerHop,
			GasPriceGwei: cy.GasPriceWei.Low64() / 1_000_000_000,
			FlashFeeBps:  cy.FlashFeeBps,
		},
	}
}

// LoadConfig reads and validates a YAML file over the defaults. An empty
// path yields the defaults unchanged.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.RegistryDB == "" {
		return fmt.Errorf("config: registry_db is required")
	}
	if c.RingSize < 2 || c.RingSize&(c.RingSize-1) != 0 {
		return fmt.Errorf("config: ring_size %d is not a power of two >= 2", c.RingSize)
	}
	if c.ScanEvery <= 0 {
		return fmt.Errorf("config: scan_every must be positive")
	}
	if c.Scanner.MinSpreadBps < 0 || c.Scanner.MaxSlippageBps < 0 ||
		c.Scanner.MaxSlippageBps > types.BpsScale {
		return fmt.Errorf("config: scanner thresholds out of range")
	}
	if c.Scanner.MinLiquidity < 0 || c.Scanner.MaxPosition < 0 {
		return fmt.Errorf("config: scanner sizes must be non-negative")
	}
	if c.Cycles.MaxHops < 2 || c.Cycles.MaxHops > cycles.PathCap {
		return fmt.Errorf("config: cycles.max_hops %d outside [2,%d]", c.Cycles.MaxHops, cycles.PathCap)
	}
	if c.Cycles.Enabled && c.Cycles.BaseToken == "" {
		return fmt.Errorf("config: cycles.base_token required when cycles are enabled")
	}
	return nil
}

// ScannerTypes converts the file representation into engine units.
func (c *Config) ScannerTypes() types.ScannerConfig {
	return types.ScannerConfig{
		MinSpreadBps:    c.Scanner.MinSpreadBps,
		MaxSlippageBps:  c.Scanner.MaxSlippageBps,
		MinLiquidity:    u256.MulU64(u256.FromU64(uint64(c.Scanner.MinLiquidity)), types.PricePrecision),
		MaxPositionSize: u256.MulU64(u256.FromU64(uint64(c.Scanner.MaxPosition)), types.PricePrecision),
		IncludeSameDex:  c.Scanner.IncludeSameDex,
	}
}

// CyclesTypes converts the file representation into engine units.
func (c *Config) CyclesTypes() cycles.Config {
	return cycles.Config{
		MaxHops:     c.Cycles.MaxHops,
		GasPerHop:   c.Cycles.GasPerHop,
		GasPriceWei: u256.MulU64(u256.FromU64(c.Cycles.GasPriceGwei), 1_000_000_000),
		FlashFeeBps: c.Cycles.FlashFeeBps,
	}
}

// newLogger builds the process logger. ARBCORE_DEBUG switches to the
// development encoder with debug level.
func newLogger() (*zap.Logger, error) {
	if os.Getenv("ARBCORE_DEBUG") != "" {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
