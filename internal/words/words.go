// internal/words/words.go
//
// Word list management and guess validation.
//
// Responsibilities:
//   - Hold the target pools (one per word length) and the accepted-guess set.
//   - Validate candidates: length, alphabet, lexicon membership.
//   - Supply RandomAnswer, Answers, Contains and Stats.
//
// Word Lists:
//   - pools: canonical answers keyed by length (5, 6, 7 by default).
//   - allowed: every pool word plus the auxiliary dictionary.
//
// Constraints:
//   • Words are lowercase ASCII a–z.
//   • Pool entries whose length does not match their pool are dropped.

package words

import (
	"errors"
	"fmt"
	"math/rand"
	"sort"
	"strings"
)

var (
	// ErrWrongLength is returned when a candidate does not have the puzzle's length.
	ErrWrongLength = errors.New("words: wrong length")
	// ErrInvalidCharacters is returned for anything outside a–z.
	ErrInvalidCharacters = errors.New("words: invalid characters")
	// ErrNotInLexicon is returned for well-formed words the lexicon does not know.
	ErrNotInLexicon = errors.New("words: not in word list")
	// ErrNoAnswers is returned when no pool exists for a length.
	ErrNoAnswers = errors.New("words: no answers for length")
)

// Lexicon is the set of words accepted as guesses plus the target pools.
// It is immutable after construction and safe for concurrent reads.
type Lexicon struct {
	pools   map[int][]string
	allowed map[string]struct{}
}

// NewLexicon builds a lexicon from per-length pools and a dictionary.
func NewLexicon(pools map[int][]string, dictionary []string) *Lexicon {
	l := &Lexicon{
		pools:   make(map[int][]string, len(pools)),
		allowed: make(map[string]struct{}),
	}
	for n, list := range pools {
		seen := make(map[string]struct{}, len(list))
		for _, w := range list {
			w = normalize(w)
			if len(w) != n || !isAlpha(w) {
				continue
			}
			if _, dup := seen[w]; dup {
				continue
			}
			seen[w] = struct{}{}
			l.pools[n] = append(l.pools[n], w)
			l.allowed[w] = struct{}{}
		}
	}
	for _, w := range dictionary {
		w = normalize(w)
		if w != "" && isAlpha(w) {
			l.allowed[w] = struct{}{}
		}
	}
	return l
}

// Validate checks candidate against length and the lexicon.
// Checks run in order: length, alphabet, membership.
func (l *Lexicon) Validate(candidate string, length int) error {
	w := normalize(candidate)
	if len(w) != length {
		return fmt.Errorf("%w: want %d letters, got %d", ErrWrongLength, length, len(w))
	}
	if !isAlpha(w) {
		return ErrInvalidCharacters
	}
	if _, ok := l.allowed[w]; !ok {
		return ErrNotInLexicon
	}
	return nil
}

// IsAcceptable reports whether candidate is a valid guess of the given length.
func IsAcceptable(candidate string, length int, lex *Lexicon) bool {
	return lex != nil && lex.Validate(candidate, length) == nil
}

// Contains reports whether w is an accepted guess of any length.
func (l *Lexicon) Contains(w string) bool {
	_, ok := l.allowed[normalize(w)]
	return ok
}

// Answers returns the target pool for length. Callers must not modify it.
func (l *Lexicon) Answers(length int) []string {
	return l.pools[length]
}

// Lengths returns the word lengths that have a target pool, ascending.
func (l *Lexicon) Lengths() []int {
	out := make([]int, 0, len(l.pools))
	for n, list := range l.pools {
		if len(list) > 0 {
			out = append(out, n)
		}
	}
	sort.Ints(out)
	return out
}

// RandomAnswer picks a target of the given length using r.
func (l *Lexicon) RandomAnswer(length int, r *rand.Rand) (string, error) {
	pool := l.pools[length]
	if len(pool) == 0 {
		return "", fmt.Errorf("%w %d", ErrNoAnswers, length)
	}
	return pool[r.Intn(len(pool))], nil
}

// Stats returns counts of loaded words: answers per length and allowed total.
func (l *Lexicon) Stats() (answers map[int]int, allowed int) {
	answers = make(map[int]int, len(l.pools))
	for n, list := range l.pools {
		answers[n] = len(list)
	}
	return answers, len(l.allowed)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// isAlpha reports whether s is non-empty and all lowercase ASCII letters.
func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < 'a' || r > 'z' {
			return false
		}
	}
	return true
}
