// setaffinity_linux.go - Linux CPU affinity via sched_setaffinity(2)

//go:build linux && !tinygo

package ring96

import (
	"syscall"
	"unsafe"
)

// Pre-computed single-core masks for cores 0-63. Avoids building a cpu_set_t
// on every pin.
var cpuMasks = func() [64][1]uintptr {
	var m [64][1]uintptr
	for i := range m {
		m[i][0] = 1 << uint(i)
	}
	return m
}()

// setAffinity pins the current thread to one CPU core. Out-of-range cores
// are ignored; affinity is best-effort and failures are silent.
//
//go:nosplit
//go:inline
func setAffinity(cpu int) {
	if cpu < 0 || cpu >= len(cpuMasks) {
		return
	}
	mask := &cpuMasks[cpu]
	_, _, _ = syscall.RawSyscall(
		syscall.SYS_SCHED_SETAFFINITY,
		0, // current thread
		uintptr(unsafe.Sizeof(mask[0])),
		uintptr(unsafe.Pointer(mask)),
	)
}
