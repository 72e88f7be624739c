// Package assets embeds the default word lists.
//
// Layout under words/:
//   - answers_5.txt, answers_6.txt, answers_7.txt: target pools per length.
//   - dictionary.txt: extra accepted guesses of any supported length.
package assets

import (
	"bufio"
	"embed"
	"errors"
	"io/fs"
	"os"
	"strings"
)

//go:embed words/*.txt
var embedded embed.FS

// Source returns the word-list filesystem: dir on disk when set,
// otherwise the embedded defaults.
func Source(dir string) fs.FS {
	if dir != "" {
		return os.DirFS(dir)
	}
	sub, err := fs.Sub(embedded, "words")
	if err != nil {
		// fs.Sub only fails on an invalid path literal.
		panic(err)
	}
	return sub
}

// ReadLines returns the trimmed, lowercased, non-comment lines of name.
// A missing file yields an empty list.
func ReadLines(fsys fs.FS, name string) ([]string, error) {
	f, err := fsys.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var out []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		out = append(out, strings.ToLower(s))
	}
	return out, sc.Err()
}
