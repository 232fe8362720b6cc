// relax_amd64.go - x86-64 spin-wait hint via the PAUSE instruction.
// Reduces power draw and SMT resource contention inside the consumer's
// polling loop.

//go:build amd64 && !noasm && !nocgo

package ring96

/*
#ifdef __x86_64__
static inline void cpu_pause() {
    __asm__ __volatile__("pause" ::: "memory");
}
#else
#error "This file requires x86-64 architecture"
#endif
*/
import "C"

// cpuRelax emits PAUSE, delaying the next poll iteration by 10-140 cycles
// while letting a hyperthread sibling make progress.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func cpuRelax() {
	C.cpu_pause()
}
