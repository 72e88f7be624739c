// Package daily picks the word of the day and records daily results.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// Epoch is day zero for unsalted word selection.
var Epoch = time.Date(2022, time.January, 1, 0, 0, 0, 0, time.UTC)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// WordIndex returns a deterministic index for a date.
//
// With an empty salt the index is whole days since Epoch modulo n, so the
// sequence is predictable and walks the pool in order. With a salt it is
// HMAC-SHA256(salt, YYYY-MM-DD) % n.
func WordIndex(date time.Time, salt string, n int) int {
	if n <= 0 {
		return 0
	}
	if salt == "" {
		days := int(date.UTC().Sub(Epoch) / (24 * time.Hour))
		if days < 0 {
			days = -days
		}
		return days % n
	}
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(DateKey(date)))
	sum := h.Sum(nil)
	// first 8 bytes as uint64 for the modulus
	v := binary.BigEndian.Uint64(sum[:8])
	return int(v % uint64(n))
}

// Answer returns the pool entry for date, with its index.
func Answer(date time.Time, salt string, pool []string) (string, int) {
	if len(pool) == 0 {
		return "", 0
	}
	i := WordIndex(date, salt, len(pool))
	return pool[i], i
}
