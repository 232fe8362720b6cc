// Pair key validation: order independence, sentinel avoidance, and hex
// address parsing.

package pairhash

import "testing"

func addr(b byte) [AddrLen]byte {
	var a [AddrLen]byte
	for i := range a {
		a[i] = b
	}
	return a
}

func TestKeyOrderIndependent(t *testing.T) {
	a, b := addr(0x11), addr(0x22)
	if Key(a, b) != Key(b, a) {
		t.Fatal("pair key must not depend on token order")
	}
}

func TestKeyDistinguishesPairs(t *testing.T) {
	a, b, c := addr(0x11), addr(0x22), addr(0x33)
	if Key(a, b) == Key(a, c) {
		t.Fatal("different pairs mapped to the same key")
	}
}

func TestKeyNeverZero(t *testing.T) {
	// Zero is the empty-group sentinel downstream.
	for i := 0; i < 64; i++ {
		if Key(addr(byte(i)), addr(byte(i+1))) == 0 {
			t.Fatal("pair key collided with the zero sentinel")
		}
	}
}

func TestKeyHex(t *testing.T) {
	t0 := "0xBB4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c" // WBNB
	t1 := "0xe9e7CEA3DedcA5984780Bafc599bD69ADd087D56" // BUSD

	k1, ok := KeyHex(t0, t1)
	if !ok || k1 == 0 {
		t.Fatalf("KeyHex failed: %d, %v", k1, ok)
	}
	k2, ok := KeyHex(t1, t0)
	if !ok || k1 != k2 {
		t.Fatal("KeyHex must be order independent")
	}

	// Bare hex without prefix parses identically.
	k3, ok := KeyHex(t0[2:], t1[2:])
	if !ok || k3 != k1 {
		t.Fatal("bare hex must match prefixed form")
	}

	for _, bad := range []string{"", "0x12", "0x" + string(make([]byte, 40)), "zz4CdB9CBd36B01bD1cBaEBF2De08d9173bc095c"} {
		if _, ok := KeyHex(bad, t1); ok {
			t.Fatalf("KeyHex accepted malformed address %q", bad)
		}
	}
}
