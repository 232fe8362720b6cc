// ============================================================================
// FIXED-CAPACITY ROBIN HOOD INDEXES
// ============================================================================
//
// Two flat open-addressing maps back the reserve store: pool id to slot and
// pair key to group. Robin Hood displacement bounds worst-case probe chains;
// power-of-2 sizing keeps the modulo a mask. Both tables are sized 2x their
// logical capacity at construction, so the load factor never passes 50% and
// the insert loop cannot cycle.
//
// Zero is the empty-key sentinel in both tables: pool ids are stored +1,
// pair keys are nonzero by construction.

package book

// poolIdx maps pool id (stored +1) to entry slot.
type poolIdx struct {
	keys []uint32
	vals []uint32
	mask uint32
}

// pairIdx maps 64-bit pair key to group index.
type pairIdx struct {
	keys []uint64
	vals []uint32
	mask uint32
}

//go:nosplit
//go:inline
func nextPow2(n int) uint32 {
	s := uint32(1)
	for s < uint32(n) {
		s <<= 1
	}
	return s
}

func newPoolIdx(capacity int) poolIdx {
	sz := nextPow2(capacity * 2)
	return poolIdx{
		keys: make([]uint32, sz),
		vals: make([]uint32, sz),
		mask: sz - 1,
	}
}

func newPairIdx(capacity int) pairIdx {
	sz := nextPow2(capacity * 2)
	return pairIdx{
		keys: make([]uint64, sz),
		vals: make([]uint32, sz),
		mask: sz - 1,
	}
}

// put inserts key or returns the value already bound to it. Key must be
// nonzero; the caller guarantees spare capacity.
//
//go:nosplit
func (h *poolIdx) put(key, val uint32) uint32 {
	i := key & h.mask
	dist := uint32(0)
	for {
		k := h.keys[i]
		if k == 0 {
			h.keys[i], h.vals[i] = key, val
			return val
		}
		if k == key {
			return h.vals[i]
		}
		kDist := (i + h.mask + 1 - (k & h.mask)) & h.mask
		if kDist < dist {
			key, h.keys[i] = h.keys[i], key
			val, h.vals[i] = h.vals[i], val
			dist = kDist
		}
		i = (i + 1) & h.mask
		dist++
	}
}

// get looks up key with Robin Hood early termination.
//
//go:nosplit
func (h *poolIdx) get(key uint32) (uint32, bool) {
	i := key & h.mask
	dist := uint32(0)
	for {
		k := h.keys[i]
		if k == 0 {
			return 0, false
		}
		if k == key {
			return h.vals[i], true
		}
		kDist := (i + h.mask + 1 - (k & h.mask)) & h.mask
		if kDist < dist {
			return 0, false
		}
		i = (i + 1) & h.mask
		dist++
	}
}

func (h *poolIdx) reset() {
	clear(h.keys)
	clear(h.vals)
}

//go:nosplit
func (h *pairIdx) put(key uint64, val uint32) uint32 {
	i := uint32(key) & h.mask
	dist := uint32(0)
	for {
		k := h.keys[i]
		if k == 0 {
			h.keys[i], h.vals[i] = key, val
			return val
		}
		if k == key {
			return h.vals[i]
		}
		kDist := (i + h.mask + 1 - (uint32(k) & h.mask)) & h.mask
		if kDist < dist {
			key, h.keys[i] = h.keys[i], key
			val, h.vals[i] = h.vals[i], val
			dist = kDist
		}
		i = (i + 1) & h.mask
		dist++
	}
}

//go:nosplit
func (h *pairIdx) get(key uint64) (uint32, bool) {
	i := uint32(key) & h.mask
	dist := uint32(0)
	for {
		k := h.keys[i]
		if k == 0 {
			return 0, false
		}
		if k == key {
			return h.vals[i], true
		}
		kDist := (i + h.mask + 1 - (uint32(k) & h.mask)) & h.mask
		if kDist < dist {
			return 0, false
		}
		i = (i + 1) & h.mask
		dist++
	}
}

func (h *pairIdx) reset() {
	clear(h.keys)
	clear(h.vals)
}
