// internal/words/load.go
//
// Loading the word lists from disk or the embedded defaults.

package words

import (
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordle/assets"
)

// PoolLengths are the word lengths loaded from answers_<n>.txt.
var PoolLengths = []int{5, 6, 7}

// Load reads the word lists from dir, or from the embedded defaults when
// dir is empty. Every pool must be non-empty.
func Load(dir string) (*Lexicon, error) {
	fsys := assets.Source(dir)

	pools := make(map[int][]string, len(PoolLengths))
	for _, n := range PoolLengths {
		name := fmt.Sprintf("answers_%d.txt", n)
		list, err := assets.ReadLines(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		pools[n] = list
	}
	dict, err := assets.ReadLines(fsys, "dictionary.txt")
	if err != nil {
		return nil, fmt.Errorf("read dictionary.txt: %w", err)
	}

	lex := NewLexicon(pools, dict)
	for _, n := range PoolLengths {
		if len(lex.Answers(n)) == 0 {
			return nil, fmt.Errorf("%w %d", ErrNoAnswers, n)
		}
	}

	answers, allowed := lex.Stats()
	log.Info().
		Str("dir", dir).
		Interface("answers", answers).
		Int("allowed", allowed).
		Msg("word lists loaded")
	return lex, nil
}
