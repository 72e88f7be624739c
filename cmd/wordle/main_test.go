package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/robalobadob/wordle/internal/game"
	"github.com/robalobadob/wordle/internal/render"
)

func play(t *testing.T, input string, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	args = append([]string{"-color=false"}, args...)
	if err := run(args, strings.NewReader(input), &out); err != nil {
		t.Fatalf("run(%v): %v", args, err)
	}
	return out.String()
}

func TestRun(t *testing.T) {
	tests := []struct {
		desc  string
		input string
		args  []string
		want  []string
	}{
		{
			desc:  "win after a rejection",
			input: "zzzzz\npause\ncrane\nn\n",
			args:  []string{"-answer", "crane"},
			want:  []string{render.MsgNotInWordList, " P (A) U  S [E]", "[C][R][A][N][E]", "won in 2/6"},
		},
		{
			desc:  "exhausted shows the answer",
			input: strings.Repeat("slate\n", 6),
			args:  []string{"-answer", "crane"},
			want:  []string{"CRANE", "exhausted in 6/6"},
		},
		{
			desc:  "short guess",
			input: "cra\n",
			args:  []string{"-answer", "crane"},
			want:  []string{render.MsgNotEnoughLetters},
		},
		{
			desc:  "long guess",
			input: "cranes\n",
			args:  []string{"-answer", "crane"},
			want:  []string{render.MsgTooManyLetters},
		},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			got := play(t, tc.input, tc.args...)
			for _, w := range tc.want {
				if !strings.Contains(got, w) {
					t.Errorf("output missing %q:\n%s", w, got)
				}
			}
		})
	}
}

func TestRunPlayAgain(t *testing.T) {
	got := play(t, "crane\ny\ncrane\nn\n", "-answer", "crane")
	if n := strings.Count(got, "won in 1/6"); n != 2 {
		t.Errorf("wins = %d, want 2:\n%s", n, got)
	}
}

func TestRunBadLevel(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-level", "nightmare"}, strings.NewReader(""), &out); err == nil {
		t.Error("run with unknown level succeeded")
	}
}

func TestScreenApply(t *testing.T) {
	sc := newScreen(2, 3, false)
	cmds := []render.Command{
		{Kind: render.KindFlip, Row: 0, Col: 0, Letter: "a", Verdict: game.Correct},
		{Kind: render.KindFlip, Row: 0, Col: 2, Letter: "b", Verdict: game.Present},
		{Kind: render.KindKey, Letter: "a", Verdict: game.Correct},
		{Kind: render.KindAlert, Message: "hello"},
		{Kind: render.KindNewGame},
		// Out of range flips are ignored.
		{Kind: render.KindFlip, Row: 5, Col: 0, Letter: "z", Verdict: game.Absent},
	}
	var out bytes.Buffer
	sc.play(&out, cmds, false)

	wantRow := []cell{{"a", game.Correct}, {}, {"b", game.Present}}
	if diff := cmp.Diff(wantRow, sc.grid[0], cmp.AllowUnexported(cell{})); diff != "" {
		t.Errorf("unexpected row (-want +got)\n%s", diff)
	}
	if !sc.over || sc.keys["a"] != game.Correct {
		t.Errorf("over=%t keys=%v", sc.over, sc.keys)
	}
	if got := out.String(); !strings.Contains(got, "[A] _ (B)") || !strings.Contains(got, "hello") {
		t.Errorf("draw output:\n%s", got)
	}
}
