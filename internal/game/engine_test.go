package game

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestEvaluate(t *testing.T) {
	cases := []struct {
		target, guess string
		want          []Verdict
	}{
		{"crane", "crane", []Verdict{Correct, Correct, Correct, Correct, Correct}},
		{"crane", "pause", []Verdict{Absent, Present, Absent, Absent, Correct}},
		// Only two l's in the target: the middle one is taken in place, the
		// leading l claims the other, the fourth l gets nothing.
		{"allot", "lolly", []Verdict{Present, Present, Correct, Absent, Absent}},
		{"speed", "erase", []Verdict{Present, Absent, Absent, Present, Present}},
		// An exact match must not be reused for Present elsewhere.
		{"abbey", "kebab", []Verdict{Absent, Present, Correct, Present, Present}},
		{"geese", "steed", []Verdict{Present, Absent, Correct, Present, Absent}},
		{"lunar", "quota", []Verdict{Absent, Correct, Absent, Absent, Present}},
		{"banana", "anchor", []Verdict{Present, Present, Absent, Absent, Absent, Absent}},
		{"balance", "cabinet", []Verdict{Present, Correct, Present, Absent, Correct, Present, Absent}},
	}

	for _, tc := range cases {
		t.Run(tc.target+"/"+tc.guess, func(t *testing.T) {
			got, err := Evaluate(tc.target, tc.guess)
			if err != nil {
				t.Fatalf("Evaluate(%q, %q): %v", tc.target, tc.guess, err)
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Errorf("unexpected verdicts (-want +got)\n%s", diff)
			}
		})
	}
}

func TestEvaluateLengthMismatch(t *testing.T) {
	for _, guess := range []string{"cran", "cranes", ""} {
		if _, err := Evaluate("crane", guess); !errors.Is(err, ErrInvalidInput) {
			t.Errorf("Evaluate(crane, %q) err = %v, want ErrInvalidInput", guess, err)
		}
	}
}

var pairs = [][2]string{
	{"crane", "pause"}, {"allot", "lolly"}, {"speed", "erase"},
	{"sissy", "mummy"}, {"eerie", "geese"}, {"added", "dread"},
	{"banana", "nanana"}, {"letter", "settle"}, {"balloon", "lollipo"},
	{"aaaaa", "aaaab"}, {"abcde", "edcba"},
}

func TestEvaluateProperties(t *testing.T) {
	for _, p := range pairs {
		target, guess := p[0], p[1]

		got, err := Evaluate(target, guess)
		if err != nil {
			t.Fatalf("Evaluate(%q, %q): %v", target, guess, err)
		}
		if len(got) != len(target) {
			t.Errorf("Evaluate(%q, %q) returned %d verdicts, want %d", target, guess, len(got), len(target))
		}

		// Idempotence.
		again, _ := Evaluate(target, guess)
		if diff := cmp.Diff(got, again); diff != "" {
			t.Errorf("second call differs for %q/%q (-first +second)\n%s", target, guess, diff)
		}

		// Letter-count conservation.
		marked := map[byte]int{}
		for i, v := range got {
			if v == Correct {
				if guess[i] != target[i] {
					t.Errorf("%q/%q: position %d Correct but letters differ", target, guess, i)
				}
				marked[guess[i]]++
			}
			if v == Present {
				marked[guess[i]]++
			}
		}
		for c, n := range marked {
			if limit := strings.Count(target, string(c)); n > limit {
				t.Errorf("%q/%q: letter %q marked %d times, target has %d", target, guess, c, n, limit)
			}
		}

		// Self-evaluation is all Correct.
		self, _ := Evaluate(target, target)
		if !IsWin(self) {
			t.Errorf("Evaluate(%q, %q) = %v, want all Correct", target, target, self)
		}
	}
}

func TestIsWin(t *testing.T) {
	if IsWin(nil) {
		t.Error("IsWin(nil) = true")
	}
	if IsWin([]Verdict{Correct, Present}) {
		t.Error("IsWin with a Present = true")
	}
	if !IsWin([]Verdict{Correct, Correct}) {
		t.Error("IsWin all Correct = false")
	}
}
