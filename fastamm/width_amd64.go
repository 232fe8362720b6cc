//go:build amd64

package fastamm

import "golang.org/x/sys/cpu"

// hostVectorWidth is probed once at init: 8 lanes with AVX-512F, 4 with
// AVX2, scalar otherwise.
var hostVectorWidth = func() int {
	switch {
	case cpu.X86.HasAVX512F:
		return 8
	case cpu.X86.HasAVX2:
		return 4
	default:
		return 1
	}
}()
