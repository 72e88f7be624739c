// Package cryptorand provides a math/rand Source backed by crypto/rand, so
// target words cannot be predicted from earlier games.
package cryptorand

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

// New returns a *rand.Rand drawing from crypto/rand.
func New() *mrand.Rand {
	return mrand.New(Source{})
}

// Source implements rand.Source. Seed is a no-op.
type Source struct{}

func (Source) Int63() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic(err)
	}
	return int64(binary.LittleEndian.Uint64(buf[:]) & (1<<63 - 1))
}

func (Source) Seed(int64) {}
