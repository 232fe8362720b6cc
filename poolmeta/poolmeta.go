// ============================================================================
// POOLMETA: BOOTSTRAP POOL METADATA
// ============================================================================
//
// Cold-path loader for the pool registry: identities, venues, token
// addresses and decimals come out of the harvested sqlite database once at
// startup, then fan out into the reserve store (pair keys) and the cycle
// finder (token topology). Nothing here runs after bootstrap.

package poolmeta

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"arbcore/book"
	"arbcore/cycles"
	"arbcore/pairhash"
)

// Pool is one registry row.
type Pool struct {
	PoolID    uint32
	DexID     uint32
	Token0    string // hex address
	Token1    string // hex address
	Decimals0 uint8
	Decimals1 uint8
}

// Open connects to the registry database. The caller closes it after
// loading; nothing holds the connection past bootstrap.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("poolmeta: open %s: %w", path, err)
	}
	return db, nil
}

// Load reads every pool with exact preallocation: COUNT first, then one
// ordered scan.
func Load(db *sql.DB) ([]Pool, error) {
	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM pools").Scan(&n); err != nil {
		return nil, fmt.Errorf("poolmeta: count pools: %w", err)
	}
	if n == 0 {
		return nil, fmt.Errorf("poolmeta: registry is empty")
	}

	pools := make([]Pool, 0, n)
	rows, err := db.Query(`
		SELECT p.id, p.dex_id, p.token0_address, p.token1_address,
		       p.token0_decimals, p.token1_decimals
		FROM pools p
		ORDER BY p.id`)
	if err != nil {
		return nil, fmt.Errorf("poolmeta: query pools: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var p Pool
		if err := rows.Scan(&p.PoolID, &p.DexID, &p.Token0, &p.Token1,
			&p.Decimals0, &p.Decimals1); err != nil {
			return nil, fmt.Errorf("poolmeta: scan pool row: %w", err)
		}
		pools = append(pools, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("poolmeta: iterate pools: %w", err)
	}
	return pools, nil
}

// RegisterPairs derives each pool's token-pair key and registers it with
// the store. Rows with malformed addresses are skipped; the skip count
// comes back alongside the registered count.
func RegisterPairs(b *book.Book, pools []Pool) (registered, skipped int) {
	for i := range pools {
		key, ok := pairhash.KeyHex(pools[i].Token0, pools[i].Token1)
		if !ok || !b.RegisterPair(pools[i].PoolID, key) {
			skipped++
			continue
		}
		registered++
	}
	return registered, skipped
}

// BuildTopology interns token addresses into dense ids and registers every
// pool's endpoints with the cycle finder. Returns the interning table so
// callers can resolve configured base tokens to ids.
func BuildTopology(f *cycles.Finder, pools []Pool) map[string]uint32 {
	ids := make(map[string]uint32, len(pools)*2)
	intern := func(addr string) uint32 {
		if id, ok := ids[addr]; ok {
			return id
		}
		id := uint32(len(ids))
		ids[addr] = id
		return id
	}
	for i := range pools {
		t0 := intern(pools[i].Token0)
		t1 := intern(pools[i].Token1)
		f.AddPool(pools[i].PoolID, t0, t1)
	}
	return ids
}
