// relax_stub.go - no-op relaxation fallback for architectures without
// PAUSE/YIELD, or builds with assembly/CGO disabled. The empty body inlines
// to nothing; the consumer simply spins at full speed.

//go:build (!amd64 && !arm64) || noasm || nocgo || !cgo

package ring96

//go:norace
//go:nocheckptr
//go:nosplit
//go:inline
//go:registerparams
func cpuRelax() {}
