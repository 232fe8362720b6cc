//go:build arm64

package fastamm

import "golang.org/x/sys/cpu"

// NEON is 128-bit: four 32-bit lanes.
var hostVectorWidth = func() int {
	if cpu.ARM64.HasASIMD {
		return 4
	}
	return 1
}()
