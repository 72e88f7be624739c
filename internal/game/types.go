// internal/game/types.go
//
// Core type definitions for the game engine.
// Defines:
//   - Verdict: per-letter result of a guess (correct/present/absent).
//   - Status:  lifecycle of a session (in_progress/won/exhausted).
//   - Mode:    how the target was chosen (random level or daily word).
//   - Level:   word length + guess budget for the difficulty selector.
//   - Attempt: one scored guess.

package game

import (
	"errors"
	"strings"
)

// Verdict represents the evaluation result for a single letter in a guess.
// Possible values:
//   - "correct": letter is in the target at this position.
//   - "present": letter is in the target at another, unconsumed position.
//   - "absent":  letter is not in the target, or all its occurrences are used up.
type Verdict string

const (
	Correct Verdict = "correct"
	Present Verdict = "present"
	Absent  Verdict = "absent"
)

// rank orders verdicts for keyboard highlighting: Correct > Present > Absent.
func (v Verdict) rank() int {
	switch v {
	case Correct:
		return 3
	case Present:
		return 2
	case Absent:
		return 1
	}
	return 0
}

// Better reports whether v should replace old on a keyboard key.
func (v Verdict) Better(old Verdict) bool { return v.rank() > old.rank() }

// Status is the coarse lifecycle state of a session.
type Status string

const (
	InProgress Status = "in_progress"
	Won        Status = "won"
	Exhausted  Status = "exhausted"
)

// Finished reports whether no more guesses are accepted.
func (s Status) Finished() bool { return s == Won || s == Exhausted }

// Mode records how a session's target word was chosen.
type Mode string

const (
	ModeRandom Mode = "random"
	ModeDaily  Mode = "daily"
)

// Level is one entry of the difficulty selector.
type Level struct {
	Name       string `json:"name"`
	WordLength int    `json:"wordLength"`
	MaxGuesses int    `json:"maxGuesses"`
}

// Levels lists the supported difficulties, shortest word first.
var Levels = []Level{
	{Name: "easy", WordLength: 5, MaxGuesses: 6},
	{Name: "medium", WordLength: 6, MaxGuesses: 7},
	{Name: "hard", WordLength: 7, MaxGuesses: 8},
}

// DefaultLevel is used by the daily puzzle and when no level is requested.
var DefaultLevel = Levels[0]

var ErrUnknownLevel = errors.New("game: unknown level")

// LevelByName looks up a level case-insensitively.
func LevelByName(name string) (Level, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for _, l := range Levels {
		if l.Name == name {
			return l, nil
		}
	}
	return Level{}, ErrUnknownLevel
}

// LevelForLength returns the level whose words have n letters.
func LevelForLength(n int) (Level, error) {
	for _, l := range Levels {
		if l.WordLength == n {
			return l, nil
		}
	}
	return Level{}, ErrUnknownLevel
}

// Attempt is a submitted guess together with its verdicts.
type Attempt struct {
	Guess    string    `json:"guess"`
	Verdicts []Verdict `json:"verdicts"`
}
