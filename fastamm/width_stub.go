//go:build !amd64 && !arm64

package fastamm

var hostVectorWidth = 1
