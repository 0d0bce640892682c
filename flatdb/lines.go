package flatdb

import (
	"bufio"
	"iter"
	"os"
	"strings"
)

// records are short but allow for long descriptions
const maxLineSize = 1024 * 1024

// lineSource reads the database file as a sequence of trimmed lines.
// It's restartable: every call to All re-opens and re-reads the file.
type lineSource struct {
	path string
	err  error
}

func newLineSource(path string) *lineSource {
	return &lineSource{path: path}
}

// All returns trimmed lines numbered from 1. The file is closed when
// the iteration ends, including when the caller breaks out early.
// Check Err() after the loop.
func (ls *lineSource) All() iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		ls.err = nil
		f, err := os.Open(ls.path)
		if err != nil {
			ls.err = ioError("open", ls.path, err)
			return
		}
		defer f.Close()

		scanner := bufio.NewScanner(f)
		scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
		n := 0
		for scanner.Scan() {
			n++
			line := strings.TrimSpace(scanner.Text())
			if !yield(n, line) {
				return
			}
		}
		if err := scanner.Err(); err != nil {
			ls.err = ioError("read", ls.path, err)
		}
	}
}

// Slots is like All but decodes each line
func (ls *lineSource) Slots() iter.Seq[Slot] {
	return func(yield func(Slot) bool) {
		for n, line := range ls.All() {
			slot := Decode(line)
			slot.ID = n
			if !yield(slot) {
				return
			}
		}
	}
}

// Err returns the error of the last iteration
func (ls *lineSource) Err() error {
	return ls.err
}
