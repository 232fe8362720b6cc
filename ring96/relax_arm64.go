// relax_arm64.go - ARM64 spin-wait hint via the YIELD instruction.

//go:build arm64 && !noasm && !nocgo

package ring96

/*
#ifdef __aarch64__
static inline void cpu_yield() {
    __asm__ __volatile__("yield" ::: "memory");
}
#else
#error "This file requires ARM64 architecture"
#endif
*/
import "C"

// cpuRelax emits YIELD, hinting the core that the caller is busy-waiting.
//
//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func cpuRelax() {
	C.cpu_yield()
}
