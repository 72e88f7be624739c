// cmd/wordle/main.go
//
// Terminal Wordle.
// Plays a level (easy/medium/hard) or the daily word against the same word
// lists as the server, drawing tiles and keyboard from render commands.
//
// Flags fall back to environment variables of the upper-cased name
// (words-dir → WORDS_DIR, daily-salt → DAILY_SALT).

package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/namsral/flag"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/internal/cryptorand"
	"github.com/robalobadob/wordle/internal/daily"
	"github.com/robalobadob/wordle/internal/game"
	"github.com/robalobadob/wordle/internal/render"
	"github.com/robalobadob/wordle/internal/words"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		log.Fatal().Err(err).Msg("wordle")
	}
}

type options struct {
	level    string
	daily    bool
	answer   string
	wordsDir string
	salt     string
	animate  bool
	color    bool
}

func parseFlags(args []string) (*options, error) {
	o := &options{}
	fs := flag.NewFlagSet("wordle", flag.ContinueOnError)
	fs.StringVar(&o.level, "level", game.DefaultLevel.Name, "easy (5 letters), medium (6) or hard (7)")
	fs.BoolVar(&o.daily, "daily", false, "play today's daily word")
	fs.StringVar(&o.answer, "answer", "", "fixed answer (practice)")
	fs.StringVar(&o.wordsDir, "words-dir", "", "directory with answers_<n>.txt and dictionary.txt")
	fs.StringVar(&o.salt, "daily-salt", "", "salt for the daily word; must match the server's")
	fs.BoolVar(&o.animate, "animate", false, "pace tile flips like the web client")
	fs.BoolVar(&o.color, "color", true, "ANSI colours")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return o, nil
}

func run(args []string, in io.Reader, out io.Writer) error {
	o, err := parseFlags(args)
	if err != nil {
		return err
	}
	lex, err := words.Load(o.wordsDir)
	if err != nil {
		return err
	}
	level, err := game.LevelByName(o.level)
	if err != nil {
		return fmt.Errorf("%w %q", err, o.level)
	}
	rng := cryptorand.New()

	pick := func() (string, error) {
		if o.answer != "" {
			a := strings.ToLower(strings.TrimSpace(o.answer))
			if err := lex.Validate(a, len(a)); err != nil {
				return "", fmt.Errorf("answer: %w", err)
			}
			return a, nil
		}
		return lex.RandomAnswer(level.WordLength, rng)
	}

	mode := game.ModeRandom
	var target string
	if o.daily {
		mode = game.ModeDaily
		level = game.DefaultLevel
		now := time.Now().UTC()
		target, _ = daily.Answer(now, o.salt, lex.Answers(level.WordLength))
		if target == "" {
			return words.ErrNoAnswers
		}
		fmt.Fprintf(out, "Daily puzzle %s\n", daily.DateKey(now))
	} else if target, err = pick(); err != nil {
		return err
	}

	s := game.NewSession(lex, mode, target, 0)
	reader := bufio.NewReader(in)
	for {
		done, err := playRound(s, reader, out, o)
		if err != nil || !done {
			return err
		}
		if mode == game.ModeDaily || !ask(reader, out, "Play again? [y/N] ") {
			return nil
		}
		next, err := pick()
		if err != nil {
			return err
		}
		s.StartNewGame(next)
	}
}

// playRound reads guesses until s finishes. done is false when input ran out.
func playRound(s *game.Session, reader *bufio.Reader, out io.Writer, o *options) (done bool, err error) {
	sc := newScreen(s.MaxGuesses, s.WordLength, o.color)
	sc.draw(out)
	for !s.Status.Finished() {
		fmt.Fprintf(out, "Guess %d/%d: ", len(s.Attempts)+1, s.MaxGuesses)
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || strings.TrimSpace(line) == "") {
			if errors.Is(err, io.EOF) {
				return false, nil
			}
			return false, err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		row := len(s.Attempts)
		if _, err := s.SubmitGuess(line); err != nil {
			cmds := render.ForRejection(row, line, s.WordLength, err)
			if cmds == nil {
				return false, err
			}
			sc.play(out, cmds, false)
			continue
		}
		sc.play(out, render.ForGuess(s), o.animate)
	}
	fmt.Fprintf(out, "\n%s in %d/%d, %s\n", s.Status, len(s.Attempts), s.MaxGuesses,
		s.Elapsed().Round(time.Second))
	return true, nil
}

func ask(reader *bufio.Reader, out io.Writer, prompt string) bool {
	fmt.Fprint(out, prompt)
	line, _ := reader.ReadString('\n')
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	}
	return false
}
