// ============================================================================
// BOOK: FLAT RESERVE STORE WITH CACHED PRICES
// ============================================================================
//
// The authoritative in-memory view of every tracked pool. Reserves land here
// off the ingest ring; each accepted update recomputes the pool's cached
// normalized price, so the scanner reads prices without dividing.
//
// Architecture:
//   - Fixed arrays, no resizing: MaxPools entry slots, MaxPairs groups
//   - Pools trading the same token pair cluster into one group (FanOut cap),
//     which is the scanner's comparison unit
//   - Robin Hood indexes resolve pool id and pair key in O(1)
//
// Ownership model:
//   - Single-owner, no locks: the pinned consumer core performs every
//     mutation and every scan. Cross-core hand-off happens upstream on the
//     SPSC ring, never here.
//
// Admission rules:
//   - Updates older than the stored snapshot are rejected (feed replays and
//     reordered frames must not roll state back); equal timestamps pass,
//     covering same-block multi-swap refreshes
//   - A full store rejects unknown pools; known pools always update

package book

import (
	"arbcore/fastamm"
	"arbcore/types"
	"arbcore/utils"
)

const (
	// MaxPools is the store capacity.
	MaxPools = 4096

	// MaxPairs bounds the number of distinct token-pair groups.
	MaxPairs = 512

	// FanOut bounds pools per pair group; overflow pools stay queryable but
	// invisible to the scanner.
	FanOut = 32
)

// entry is one tracked pool: latest reserves plus the price cached at
// update time.
type entry struct {
	res     types.PoolReserves
	price   types.PriceResult
	pairKey uint64
	group   int32 // -1 when the pool never made it into a group
}

// group is one token-pair cluster: the scanner's unit of comparison.
type group struct {
	key   uint64
	n     int32
	slots [FanOut]int32
}

// Book is the reserve store. Construct with New.
type Book struct {
	entries [MaxPools]entry
	groups  [MaxPairs]group

	pools poolIdx
	pairs pairIdx

	// regs holds cold-path pair registrations keyed by pool id, consulted
	// once when a pool is first seen. Go map is fine here: registration
	// happens at bootstrap, never per-event.
	regs map[uint32]uint64

	poolCount int32
	pairCount int32

	staleDrops uint64
	groupDrops uint64
}

// New returns an empty store with all capacity preallocated.
func New() *Book {
	return &Book{
		pools: newPoolIdx(MaxPools),
		pairs: newPairIdx(MaxPairs),
		regs:  make(map[uint32]uint64, MaxPools),
	}
}

// ============================================================================
// REGISTRATION (COLD PATH)
// ============================================================================

// RegisterPair binds a pool id to its token-pair key before the pool's
// first update. Returns false for the zero key (reserved sentinel) or when
// the pool has already been admitted with a different key.
func (b *Book) RegisterPair(poolID uint32, pairKey uint64) bool {
	if pairKey == 0 {
		return false
	}
	if slot, ok := b.pools.get(poolID + 1); ok {
		return b.entries[slot].pairKey == pairKey
	}
	b.regs[poolID] = pairKey
	return true
}

// PairKeyOf reports the key a pool is (or would be) grouped under.
func (b *Book) PairKeyOf(poolID uint32) uint64 {
	if slot, ok := b.pools.get(poolID + 1); ok {
		return b.entries[slot].pairKey
	}
	if key, ok := b.regs[poolID]; ok {
		return key
	}
	return fallbackKey(poolID)
}

// fallbackKey isolates an unregistered pool in a group of its own: without
// token metadata the store cannot know which pools share a pair, and a
// wrong grouping would fabricate opportunities.
//
//go:nosplit
//go:inline
func fallbackKey(poolID uint32) uint64 {
	return utils.Mix64(uint64(poolID) + 1)
}

// ============================================================================
// UPDATES (HOT PATH)
// ============================================================================

// Update admits one reserve snapshot and refreshes the cached price.
// Returns false when the update is stale (older than stored) or the store
// is full for an unknown pool.
//
//go:nosplit
func (b *Book) Update(r *types.PoolReserves) bool {
	if r.PoolID == ^uint32(0) {
		// The +1 index encoding reserves the all-ones id.
		return false
	}
	if slot, ok := b.pools.get(r.PoolID + 1); ok {
		e := &b.entries[slot]
		if r.TimestampMS < e.res.TimestampMS {
			b.staleDrops++
			return false
		}
		e.res = *r
		e.price = fastamm.CalcPrice(&e.res)
		return true
	}

	if b.poolCount == MaxPools {
		return false
	}
	slot := b.poolCount
	b.poolCount++
	b.pools.put(r.PoolID+1, uint32(slot))

	e := &b.entries[slot]
	e.res = *r
	e.price = fastamm.CalcPrice(&e.res)

	key, ok := b.regs[r.PoolID]
	if !ok {
		key = fallbackKey(r.PoolID)
	}
	e.pairKey = key
	e.group = b.attach(key, slot)
	return true
}

// attach places a new pool into its pair group, creating the group on first
// sight. Returns -1 when group capacity is exhausted; the pool stays
// queryable but unscanned.
func (b *Book) attach(key uint64, slot int32) int32 {
	gi, ok := b.pairs.get(key)
	if !ok {
		if b.pairCount == MaxPairs {
			b.groupDrops++
			return -1
		}
		gi = uint32(b.pairCount)
		b.pairCount++
		b.pairs.put(key, gi)
		b.groups[gi].key = key
	}
	g := &b.groups[gi]
	if g.n == FanOut {
		b.groupDrops++
		return -1
	}
	g.slots[g.n] = slot
	g.n++
	return int32(gi)
}

// ============================================================================
// QUERIES
// ============================================================================

// Lookup returns the stored reserves for a pool. The pointer aliases store
// memory and is invalidated by the next Update of the same pool.
//
//go:nosplit
func (b *Book) Lookup(poolID uint32) (*types.PoolReserves, bool) {
	slot, ok := b.pools.get(poolID + 1)
	if !ok {
		return nil, false
	}
	return &b.entries[slot].res, true
}

// Price returns the cached normalized price for a pool.
//
//go:nosplit
func (b *Book) Price(poolID uint32) (types.PriceResult, bool) {
	slot, ok := b.pools.get(poolID + 1)
	if !ok {
		return types.PriceResult{}, false
	}
	return b.entries[slot].price, true
}

// PoolCount reports tracked pools.
func (b *Book) PoolCount() int { return int(b.poolCount) }

// PairCount reports distinct pair groups.
func (b *Book) PairCount() int { return int(b.pairCount) }

// StaleDrops reports updates rejected for non-monotonic timestamps.
func (b *Book) StaleDrops() uint64 { return b.staleDrops }

// GroupDrops reports pools that could not join a pair group.
func (b *Book) GroupDrops() uint64 { return b.groupDrops }

// Clear evicts every pool and group. Pair registrations survive: they are
// venue metadata, not market state.
func (b *Book) Clear() {
	for i := int32(0); i < b.poolCount; i++ {
		b.entries[i] = entry{}
	}
	for i := int32(0); i < b.pairCount; i++ {
		b.groups[i] = group{}
	}
	b.pools.reset()
	b.pairs.reset()
	b.poolCount = 0
	b.pairCount = 0
	b.staleDrops = 0
	b.groupDrops = 0
}

// ============================================================================
// SCANNER ACCESS (SLOT-ADDRESSED, ZERO-COPY)
// ============================================================================

// GroupCount reports scannable groups (same as PairCount).
//
//go:nosplit
//go:inline
func (b *Book) GroupCount() int { return int(b.pairCount) }

// GroupSlots returns the entry slots of one group. The slice aliases store
// memory; it is valid until Clear.
//
//go:nosplit
//go:inline
func (b *Book) GroupSlots(gi int) []int32 {
	g := &b.groups[gi]
	return g.slots[:g.n]
}

// PriceAt returns the cached price at an entry slot.
//
//go:nosplit
//go:inline
func (b *Book) PriceAt(slot int32) *types.PriceResult {
	return &b.entries[slot].price
}

// ReservesAt returns the reserves at an entry slot.
//
//go:nosplit
//go:inline
func (b *Book) ReservesAt(slot int32) *types.PoolReserves {
	return &b.entries[slot].res
}
