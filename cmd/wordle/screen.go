package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/robalobadob/wordle/internal/game"
	"github.com/robalobadob/wordle/internal/render"
)

var keyboardRows = []string{"qwertyuiop", "asdfghjkl", "zxcvbnm"}

type cell struct {
	letter  string
	verdict game.Verdict
}

// screen is the terminal's picture of a game, built only from render
// commands.
type screen struct {
	grid   [][]cell
	keys   map[string]game.Verdict
	alerts []string
	shake  int // row to mark as rejected, -1 for none
	over   bool
	color  bool
}

func newScreen(rows, cols int, color bool) *screen {
	g := make([][]cell, rows)
	for i := range g {
		g[i] = make([]cell, cols)
	}
	return &screen{grid: g, keys: make(map[string]game.Verdict), shake: -1, color: color}
}

func (sc *screen) apply(c render.Command) {
	switch c.Kind {
	case render.KindFlip:
		if c.Row < len(sc.grid) && c.Col < len(sc.grid[c.Row]) {
			sc.grid[c.Row][c.Col] = cell{letter: c.Letter, verdict: c.Verdict}
		}
	case render.KindKey:
		sc.keys[c.Letter] = c.Verdict
	case render.KindShake:
		sc.shake = c.Row
	case render.KindAlert:
		sc.alerts = append(sc.alerts, c.Message)
	case render.KindNewGame:
		sc.over = true
	case render.KindDance:
		// no terminal equivalent
	}
}

// play applies cmds in delay order. With pace set, it sleeps until each
// group's delay and redraws after it; otherwise it draws once at the end.
func (sc *screen) play(w io.Writer, cmds []render.Command, pace bool) {
	sc.alerts = sc.alerts[:0]
	sc.shake = -1
	var at render.Millis
	for i, c := range cmds {
		if pace && c.Delay > at {
			sc.draw(w)
			time.Sleep(time.Duration(c.Delay - at))
			at = c.Delay
		}
		sc.apply(c)
		if i == len(cmds)-1 {
			sc.draw(w)
		}
	}
}

func (sc *screen) tile(letter string, v game.Verdict) string {
	if letter == "" {
		letter = " "
	}
	letter = strings.ToUpper(letter)
	if !sc.color {
		switch v {
		case game.Correct:
			return "[" + letter + "]"
		case game.Present:
			return "(" + letter + ")"
		case game.Absent:
			return " " + letter + " "
		}
		return " _ "
	}
	switch v {
	case game.Correct:
		return "\x1b[1;30;42m " + letter + " \x1b[0m"
	case game.Present:
		return "\x1b[1;30;43m " + letter + " \x1b[0m"
	case game.Absent:
		return "\x1b[1;37;100m " + letter + " \x1b[0m"
	}
	return "\x1b[2m _ \x1b[0m"
}

func (sc *screen) draw(w io.Writer) {
	var b strings.Builder
	b.WriteString("\n")
	for r, row := range sc.grid {
		for _, c := range row {
			b.WriteString(sc.tile(c.letter, c.verdict))
		}
		if r == sc.shake {
			b.WriteString("  <")
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	for i, row := range keyboardRows {
		b.WriteString(strings.Repeat(" ", i))
		for _, k := range row {
			letter := string(k)
			v, ok := sc.keys[letter]
			if !ok {
				b.WriteString(" " + strings.ToUpper(letter) + " ")
				continue
			}
			b.WriteString(sc.tile(letter, v))
		}
		b.WriteString("\n")
	}
	for _, a := range sc.alerts {
		fmt.Fprintf(&b, "\n  %s\n", a)
	}
	io.WriteString(w, b.String())
}
