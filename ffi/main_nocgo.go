// main_nocgo.go - non-cgo counterpart of the empty main in ffi.go, so the
// package still compiles as a main package when CGO is disabled. The real
// entry points are the C exports; main is unused in both build modes.

//go:build !cgo

package main

// main is unused: this package only builds as a c-shared library.
func main() {}
