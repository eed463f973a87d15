// Package random supplies seeds for mazes created without one.
package random

import (
	crand "crypto/rand"
	"encoding/binary"
	"time"
)

// NewSeed returns a non-zero seed drawn from the operating system's entropy
// source, falling back to the clock if that fails.
func NewSeed() int64 {
	var b [8]byte
	seed := int64(0)
	if _, err := crand.Read(b[:]); err == nil {
		seed = int64(binary.LittleEndian.Uint64(b[:]) >> 1)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if seed == 0 {
		seed = 1
	}
	return seed
}
