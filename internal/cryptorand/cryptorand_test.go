package cryptorand

import "testing"

func TestSourceNonNegative(t *testing.T) {
	var s Source
	for i := 0; i < 1000; i++ {
		if v := s.Int63(); v < 0 {
			t.Fatalf("Int63() = %d", v)
		}
	}
	r := New()
	for i := 0; i < 100; i++ {
		if n := r.Intn(7); n < 0 || n >= 7 {
			t.Fatalf("Intn(7) = %d", n)
		}
	}
}
