// Batch path validation: count semantics and bit-exact agreement with the
// scalar path at every lane width.

package fastamm

import (
	"testing"

	"arbcore/types"
	"arbcore/u256"
)

func makePools(n int) []types.PoolReserves {
	src := make([]types.PoolReserves, n)
	for i := range src {
		r0 := uint64(i%97 + 1)
		r1 := uint64(i%89 + 1)
		src[i] = pool(uint32(i+1), uint32(i%4+1), e18(r0), e18(r1))
	}
	// Sprinkle degenerates: batch must carry them through untouched.
	if n > 3 {
		src[3].Reserve0 = u256.Zero
	}
	return src
}

func TestCalcPriceBatchMatchesScalar(t *testing.T) {
	src := makePools(101) // odd size forces a scalar remainder
	want := make([]types.PriceResult, len(src))
	for i := range src {
		want[i] = CalcPrice(&src[i])
	}

	got := make([]types.PriceResult, len(src))
	if n := CalcPriceBatch(got, src); n != len(src) {
		t.Fatalf("batch count = %d, want %d", n, len(src))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("element %d: batch %+v != scalar %+v", i, got[i], want[i])
		}
	}
}

func TestCalcPriceBatchForceScalar(t *testing.T) {
	ForceScalar(true)
	defer ForceScalar(false)
	if VectorWidth() != 1 {
		t.Fatalf("forced width = %d, want 1", VectorWidth())
	}

	src := makePools(33)
	got := make([]types.PriceResult, len(src))
	CalcPriceBatch(got, src)
	for i := range src {
		if want := CalcPrice(&src[i]); got[i] != want {
			t.Fatalf("element %d diverged under scalar forcing", i)
		}
	}
}

func TestCalcPriceBatchCountCaps(t *testing.T) {
	src := makePools(8)

	short := make([]types.PriceResult, 5)
	if n := CalcPriceBatch(short, src); n != 5 {
		t.Fatalf("dst-limited count = %d, want 5", n)
	}

	if n := CalcPriceBatch(make([]types.PriceResult, 4096), makePools(MaxBatch+7)); n != MaxBatch {
		t.Fatalf("cap-limited count = %d, want %d", n, MaxBatch)
	}

	if n := CalcPriceBatch(nil, src); n != 0 {
		t.Fatalf("nil dst count = %d, want 0", n)
	}
	if n := CalcPriceBatch(short, nil); n != 0 {
		t.Fatalf("nil src count = %d, want 0", n)
	}
}

func TestVectorWidthSane(t *testing.T) {
	switch w := VectorWidth(); w {
	case 1, 4, 8:
	default:
		t.Fatalf("vector width = %d", w)
	}
}
