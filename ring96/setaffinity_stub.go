// setaffinity_stub.go - no-op CPU affinity for platforms without
// sched_setaffinity(2). Keeps the consumer portable; pinning is a
// performance hint, not a correctness requirement.

//go:build !linux || tinygo

package ring96

//go:nosplit
//go:inline
func setAffinity(cpu int) {}
