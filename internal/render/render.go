// Package render turns game results into an ordered list of presentation
// commands. Clients replay the commands with the given delays; the verdicts
// they carry are copied from the session untouched.
package render

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/robalobadob/wordle/internal/game"
	"github.com/robalobadob/wordle/internal/words"
)

// Animation pacing.
const (
	FlipDuration  = 500 * time.Millisecond
	DanceDuration = 500 * time.Millisecond
	AlertDuration = time.Second
	WinAlert      = 5 * time.Second
)

// Alert texts.
const (
	MsgNotEnoughLetters = "Not enough letters"
	MsgTooManyLetters   = "Too many letters"
	MsgNotInWordList    = "Not in word list"
	MsgInvalidLetters   = "Letters only"
	MsgWin              = "You Win"
)

// Kind names a render command.
type Kind string

const (
	KindFlip    Kind = "flip"     // reveal one tile
	KindKey     Kind = "key"      // recolour one keyboard key
	KindShake   Kind = "shake"    // reject animation on a tile
	KindDance   Kind = "dance"    // win animation on a tile
	KindAlert   Kind = "alert"    // toast; Duration 0 means it stays
	KindNewGame Kind = "new_game" // reveal the new-game button
)

// Command is one presentation step. Delay is relative to the start of the
// sequence.
type Command struct {
	Kind     Kind         `json:"kind"`
	Row      int          `json:"row"`
	Col      int          `json:"col"`
	Letter   string       `json:"letter,omitempty"`
	Verdict  game.Verdict `json:"verdict,omitempty"`
	Message  string       `json:"message,omitempty"`
	Delay    Millis       `json:"delayMs"`
	Duration Millis       `json:"durationMs"`
}

// Millis is a duration encoded in JSON as whole milliseconds.
type Millis time.Duration

func (m Millis) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, time.Duration(m).Milliseconds(), 10), nil
}

func (m *Millis) UnmarshalJSON(b []byte) error {
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return err
	}
	*m = Millis(time.Duration(n) * time.Millisecond)
	return nil
}

// ForGuess renders the latest attempt of s: tile flips, keyboard updates
// and, when the game just ended, the win or loss sequence.
func ForGuess(s *game.Session) []Command {
	a, ok := s.Last()
	if !ok {
		return nil
	}
	row := len(s.Attempts) - 1
	n := len(a.Verdicts)

	out := make([]Command, 0, 3*n+2)
	for i, v := range a.Verdicts {
		out = append(out, Command{
			Kind:    KindFlip,
			Row:     row,
			Col:     i,
			Letter:  a.Guess[i : i+1],
			Verdict: v,
			Delay:   Millis(time.Duration(i) * FlipDuration / 2),
		})
	}

	// Keys change once the last tile has turned.
	reveal := Millis(time.Duration(n) * FlipDuration / 2)
	seen := make(map[string]bool, n)
	for i := 0; i < n; i++ {
		letter := a.Guess[i : i+1]
		if seen[letter] {
			continue
		}
		seen[letter] = true
		out = append(out, Command{
			Kind:    KindKey,
			Row:     row,
			Col:     i,
			Letter:  letter,
			Verdict: s.Keys[letter],
			Delay:   reveal,
		})
	}

	switch s.Status {
	case game.Won:
		out = append(out, Command{Kind: KindAlert, Row: row, Message: MsgWin, Delay: reveal, Duration: Millis(WinAlert)})
		for i := 0; i < n; i++ {
			out = append(out, Command{
				Kind:  KindDance,
				Row:   row,
				Col:   i,
				Delay: reveal + Millis(time.Duration(i)*DanceDuration/5),
			})
		}
		out = append(out, Command{Kind: KindNewGame, Row: row, Delay: reveal})
	case game.Exhausted:
		out = append(out, Command{Kind: KindAlert, Row: row, Message: strings.ToUpper(s.Target), Delay: reveal})
		out = append(out, Command{Kind: KindNewGame, Row: row, Delay: reveal})
	}
	return out
}

// ForRejection renders a refused guess on a board of length columns: an
// alert and a shake of each tile the guess fills. Nothing is emitted for
// errors the player cannot fix.
func ForRejection(row int, guess string, length int, err error) []Command {
	typed := len(strings.TrimSpace(guess))
	var msg string
	switch {
	case errors.Is(err, words.ErrWrongLength) && typed > length:
		msg = MsgTooManyLetters
	case errors.Is(err, words.ErrWrongLength):
		msg = MsgNotEnoughLetters
	case errors.Is(err, words.ErrNotInLexicon):
		msg = MsgNotInWordList
	case errors.Is(err, words.ErrInvalidCharacters):
		msg = MsgInvalidLetters
	default:
		return nil
	}
	out := []Command{{Kind: KindAlert, Row: row, Message: msg, Duration: Millis(AlertDuration)}}
	for i := 0; i < min(typed, length); i++ {
		out = append(out, Command{Kind: KindShake, Row: row, Col: i})
	}
	return out
}
