// internal/game/engine.go
//
// Guess evaluation.
// Responsibilities:
//   - Score a guess against a target with the two-pass marking algorithm.
//   - Classify a verdict row as a win.
//
// Notes:
//   - Evaluate is pure; the used-letter tracker lives for one call only.
//   - Inputs are expected to be validated (lowercase, same length) by the
//     caller; a length mismatch fails fast with ErrInvalidInput.

package game

import (
	"errors"
	"fmt"
)

// ErrInvalidInput is returned when target and guess lengths differ.
var ErrInvalidInput = errors.New("game: invalid input")

// Evaluate scores guess against target.
//
// Pass 1:
//   - Mark exact matches Correct and consume that target position.
//
// Pass 2:
//   - For each remaining guess letter, scan the target left to right and
//     take the first unconsumed occurrence; mark Present and consume it.
//   - Letters with no unconsumed occurrence stay Absent.
//
// Exact matches are resolved before any displaced match so a letter
// already matched in place is never reused for Present elsewhere.
func Evaluate(target, guess string) ([]Verdict, error) {
	n := len(target)
	if len(guess) != n {
		return nil, fmt.Errorf("%w: target has %d letters, guess has %d", ErrInvalidInput, n, len(guess))
	}

	out := make([]Verdict, n)
	used := make([]bool, n)
	for i := range out {
		out[i] = Absent
	}

	// First pass: exact matches.
	for i := 0; i < n; i++ {
		if guess[i] == target[i] {
			out[i] = Correct
			used[i] = true
		}
	}

	// Second pass: first unused occurrence wins.
	for i := 0; i < n; i++ {
		if out[i] == Correct {
			continue
		}
		for j := 0; j < n; j++ {
			if !used[j] && target[j] == guess[i] {
				out[i] = Present
				used[j] = true
				break
			}
		}
	}
	return out, nil
}

// IsWin returns true if every verdict is Correct.
func IsWin(v []Verdict) bool {
	if len(v) == 0 {
		return false
	}
	for _, x := range v {
		if x != Correct {
			return false
		}
	}
	return true
}
