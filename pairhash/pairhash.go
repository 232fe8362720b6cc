// ============================================================================
// PAIRHASH: ORDER-INDEPENDENT TOKEN-PAIR KEYS
// ============================================================================
//
// Derives the 64-bit group key that clusters pools trading the same token
// pair inside the reserve store. Keccak-256 over the lexicographically
// sorted address pair, truncated to the first 8 bytes, so Key(a,b) and
// Key(b,a) always collide onto the same group regardless of which token a
// venue lists first.
//
// Cold path only: keys are computed once per pool at registration, never
// during scanning.

package pairhash

import (
	"golang.org/x/crypto/sha3"
)

// AddrLen is the token address width (EVM account address).
const AddrLen = 20

// Key derives the order-independent pair key for two token addresses.
// Zero is reserved as the empty-group sentinel in the reserve store, so a
// keccak output that truncates to zero is remapped to 1.
func Key(token0, token1 [AddrLen]byte) uint64 {
	lo, hi := token0, token1
	if lessAddr(hi, lo) {
		lo, hi = hi, lo
	}

	h := sha3.NewLegacyKeccak256()
	h.Write(lo[:])
	h.Write(hi[:])
	sum := h.Sum(nil)

	k := uint64(sum[0])<<56 | uint64(sum[1])<<48 | uint64(sum[2])<<40 | uint64(sum[3])<<32 |
		uint64(sum[4])<<24 | uint64(sum[5])<<16 | uint64(sum[6])<<8 | uint64(sum[7])
	if k == 0 {
		k = 1
	}
	return k
}

// KeyHex derives a pair key from 0x-prefixed or bare 40-nibble hex address
// strings. Malformed input yields (0, false).
func KeyHex(token0, token1 string) (uint64, bool) {
	a, ok := parseAddr(token0)
	if !ok {
		return 0, false
	}
	b, ok := parseAddr(token1)
	if !ok {
		return 0, false
	}
	return Key(a, b), true
}

func lessAddr(a, b [AddrLen]byte) bool {
	for i := 0; i < AddrLen; i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return false
}

func parseAddr(s string) ([AddrLen]byte, bool) {
	var a [AddrLen]byte
	if len(s) >= 2 && s[0] == '0' && (s[1]|0x20) == 'x' {
		s = s[2:]
	}
	if len(s) != 2*AddrLen {
		return a, false
	}
	for i := 0; i < AddrLen; i++ {
		hi, ok1 := nibble(s[2*i])
		lo, ok2 := nibble(s[2*i+1])
		if !ok1 || !ok2 {
			return a, false
		}
		a[i] = hi<<4 | lo
	}
	return a, true
}

func nibble(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case (c|0x20) >= 'a' && (c|0x20) <= 'f':
		return (c | 0x20) - 'a' + 10, true
	}
	return 0, false
}
