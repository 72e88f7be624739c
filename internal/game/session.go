// internal/game/session.go
//
// Game session state for a single player.
// Responsibilities:
//   - Hold the target word, scored attempts, keyboard state and status.
//   - Validate guesses through an injected Validator before scoring.
//   - Track transitions: in_progress → won/exhausted.
//   - Restart with a new target (StartNewGame).
//
// A Session is not safe for concurrent use; the store serialises access.

package game

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// ErrGameOver is returned when guessing on a finished session.
var ErrGameOver = errors.New("game: game over")

// Validator decides whether a candidate is an acceptable guess of the given length.
// *words.Lexicon satisfies it.
type Validator interface {
	Validate(candidate string, length int) error
}

// Session holds the state of one game.
type Session struct {
	ID         string             `json:"id"`
	Mode       Mode               `json:"mode"`
	Round      int                `json:"round"`
	Target     string             `json:"-"`
	WordLength int                `json:"wordLength"`
	MaxGuesses int                `json:"maxGuesses"`
	Attempts   []Attempt          `json:"attempts"`
	Keys       map[string]Verdict `json:"keys"`
	Status     Status             `json:"status"`
	StartedAt  time.Time          `json:"startedAt"`

	// Practice marks a round played against a chosen target; it does not
	// count toward player statistics. Cleared by StartNewGame.
	Practice bool `json:"practice,omitempty"`
	// Owner is the player allowed to guess on or restart the session.
	// Empty means anyone may.
	Owner string `json:"-"`

	validator Validator
	now       func() time.Time
}

// NewSession constructs a session for target. maxGuesses <= 0 picks the
// guess budget of the level matching the target's length (or the default).
func NewSession(v Validator, mode Mode, target string, maxGuesses int) *Session {
	s := &Session{
		ID:        uuid.New().String(),
		Mode:      mode,
		Round:     1,
		validator: v,
		now:       time.Now,
	}
	s.reset(target, maxGuesses)
	return s
}

// SubmitGuess validates, scores and records a guess.
//
// Validation failures (wrong length, unknown word) are returned unchanged
// and do not consume an attempt. On success the attempt is appended, the
// keyboard is upgraded, and the status moves to Won if every tile is
// Correct, else to Exhausted once MaxGuesses attempts are used.
func (s *Session) SubmitGuess(guess string) (Attempt, error) {
	if s.Status.Finished() {
		return Attempt{}, ErrGameOver
	}
	guess = strings.ToLower(strings.TrimSpace(guess))
	if s.validator != nil {
		if err := s.validator.Validate(guess, s.WordLength); err != nil {
			return Attempt{}, err
		}
	}

	verdicts, err := Evaluate(s.Target, guess)
	if err != nil {
		return Attempt{}, err
	}
	a := Attempt{Guess: guess, Verdicts: verdicts}
	s.Attempts = append(s.Attempts, a)

	for i, v := range verdicts {
		letter := guess[i : i+1]
		if v.Better(s.Keys[letter]) {
			s.Keys[letter] = v
		}
	}

	switch {
	case IsWin(verdicts):
		s.Status = Won
	case len(s.Attempts) >= s.MaxGuesses:
		s.Status = Exhausted
	}
	return a, nil
}

// StartNewGame replaces the target, clears all progress and starts the
// next round. The guess budget follows the new word length.
func (s *Session) StartNewGame(target string) {
	s.reset(target, 0)
	s.Practice = false
	s.Round++
}

// OwnedBy reports whether player id may play s.
func (s *Session) OwnedBy(id string) bool {
	return s.Owner == "" || s.Owner == id
}

func (s *Session) reset(target string, maxGuesses int) {
	target = strings.ToLower(strings.TrimSpace(target))
	if maxGuesses <= 0 {
		maxGuesses = DefaultLevel.MaxGuesses
		if l, err := LevelForLength(len(target)); err == nil {
			maxGuesses = l.MaxGuesses
		}
	}
	s.Target = target
	s.WordLength = len(target)
	s.MaxGuesses = maxGuesses
	s.Attempts = []Attempt{}
	s.Keys = make(map[string]Verdict)
	s.Status = InProgress
	if s.now == nil {
		s.now = time.Now
	}
	s.StartedAt = s.now()
}

// Remaining reports how many guesses are left.
func (s *Session) Remaining() int {
	if s.Status.Finished() {
		return 0
	}
	return s.MaxGuesses - len(s.Attempts)
}

// Elapsed reports time since the current game started.
func (s *Session) Elapsed() time.Duration { return s.now().Sub(s.StartedAt) }

// Last returns the most recent attempt, if any.
func (s *Session) Last() (Attempt, bool) {
	if len(s.Attempts) == 0 {
		return Attempt{}, false
	}
	return s.Attempts[len(s.Attempts)-1], true
}

// SetClock overrides the time source (tests, replays).
func (s *Session) SetClock(now func() time.Time) {
	s.now = now
	s.StartedAt = now()
}
