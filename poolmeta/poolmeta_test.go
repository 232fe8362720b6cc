// Registry loading against an in-memory database, plus fan-out into the
// store and the cycle finder.

package poolmeta

import (
	"database/sql"
	"testing"

	"arbcore/book"
	"arbcore/cycles"
)

const (
	wbnb = "0xBB4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"
	busd = "0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56"
	usdt = "0x55d398326f99059fF775485246999027B3197955"
)

func seedDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	if _, err := db.Exec(`
		CREATE TABLE pools (
			id INTEGER PRIMARY KEY,
			dex_id INTEGER NOT NULL,
			token0_address TEXT NOT NULL,
			token1_address TEXT NOT NULL,
			token0_decimals INTEGER NOT NULL,
			token1_decimals INTEGER NOT NULL
		)`); err != nil {
		t.Fatal(err)
	}
	for _, row := range []struct {
		id, dex int
		t0, t1  string
		d0, d1  int
	}{
		{1, 1, wbnb, busd, 18, 18},
		{2, 2, wbnb, busd, 18, 18}, // same pair, other venue
		{3, 1, busd, usdt, 18, 6},
	} {
		if _, err := db.Exec(
			`INSERT INTO pools VALUES (?, ?, ?, ?, ?, ?)`,
			row.id, row.dex, row.t0, row.t1, row.d0, row.d1); err != nil {
			t.Fatal(err)
		}
	}
	return db
}

func TestLoad(t *testing.T) {
	pools, err := Load(seedDB(t))
	if err != nil {
		t.Fatal(err)
	}
	if len(pools) != 3 {
		t.Fatalf("loaded %d pools, want 3", len(pools))
	}
	if pools[0].PoolID != 1 || pools[0].DexID != 1 || pools[0].Token0 != wbnb {
		t.Fatalf("row 0 = %+v", pools[0])
	}
	if pools[2].Decimals1 != 6 {
		t.Fatalf("decimals not carried: %+v", pools[2])
	}
}

func TestLoadEmptyRegistry(t *testing.T) {
	db, err := Open(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	if _, err := db.Exec(`CREATE TABLE pools (
		id INTEGER PRIMARY KEY, dex_id INTEGER,
		token0_address TEXT, token1_address TEXT,
		token0_decimals INTEGER, token1_decimals INTEGER)`); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(db); err == nil {
		t.Fatal("empty registry must error")
	}
}

func TestRegisterPairs(t *testing.T) {
	pools, err := Load(seedDB(t))
	if err != nil {
		t.Fatal(err)
	}
	b := book.New()
	registered, skipped := RegisterPairs(b, pools)
	if registered != 3 || skipped != 0 {
		t.Fatalf("registered %d skipped %d", registered, skipped)
	}
	// Pools 1 and 2 share a venue pair key; pool 3 does not.
	if b.PairKeyOf(1) != b.PairKeyOf(2) {
		t.Fatal("same token pair must share a key")
	}
	if b.PairKeyOf(1) == b.PairKeyOf(3) {
		t.Fatal("different token pairs collided")
	}
}

func TestRegisterPairsSkipsMalformed(t *testing.T) {
	b := book.New()
	registered, skipped := RegisterPairs(b, []Pool{
		{PoolID: 1, Token0: "not-an-address", Token1: busd},
		{PoolID: 2, Token0: wbnb, Token1: busd},
	})
	if registered != 1 || skipped != 1 {
		t.Fatalf("registered %d skipped %d, want 1/1", registered, skipped)
	}
}

func TestBuildTopology(t *testing.T) {
	pools := []Pool{
		{PoolID: 1, Token0: wbnb, Token1: busd},
		{PoolID: 2, Token0: busd, Token1: usdt},
	}
	f := cycles.NewFinder(book.New(), cycles.DefaultConfig())
	ids := BuildTopology(f, pools)
	if len(ids) != 3 {
		t.Fatalf("interned %d tokens, want 3", len(ids))
	}
	if _, ok := ids[wbnb]; !ok {
		t.Fatal("base token address not resolvable")
	}
}
