package log

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
)

const dayFormat = "2006-01-02"

// dailyFile appends to one file per UTC day, named YYYY-MM-DD.txt.
// A nil *dailyFile discards writes.
type dailyFile struct {
	dir string

	mu  sync.Mutex
	day string
	f   *os.File
}

func newDailyFile(dir string) *dailyFile {
	return &dailyFile{dir: dir}
}

func pathForDay(dir string, t time.Time) string {
	return filepath.Join(dir, t.UTC().Format(dayFormat)+".txt")
}

// file returns today's file, opening it (and closing yesterday's) as needed.
// Must be called with mu held.
func (w *dailyFile) file() (*os.File, error) {
	now := time.Now().UTC()
	day := now.Format(dayFormat)
	if w.f != nil && w.day == day {
		return w.f, nil
	}
	if err := w.closeLocked(); err != nil {
		return nil, err
	}
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(pathForDay(w.dir, now), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}
	w.f = f
	w.day = day
	return f, nil
}

func (w *dailyFile) Write(d []byte) error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	f, err := w.file()
	if err != nil {
		return err
	}
	_, err = f.Write(d)
	return err
}

func (w *dailyFile) closeLocked() error {
	if w.f == nil {
		return nil
	}
	err := w.f.Sync()
	if err2 := w.f.Close(); err == nil {
		err = err2
	}
	w.f = nil
	w.day = ""
	return err
}

func (w *dailyFile) Close() error {
	if w == nil {
		return nil
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closeLocked()
}

// days returns days for which dir has a file, oldest first
func days(dir string) ([]time.Time, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var res []time.Time
	for _, e := range entries {
		name, ok := strings.CutSuffix(e.Name(), ".txt")
		if !ok || e.IsDir() {
			continue
		}
		day, err := time.Parse(dayFormat, name)
		if err != nil {
			continue
		}
		res = append(res, day)
	}
	slices.SortFunc(res, func(a, b time.Time) int { return a.Compare(b) })
	return res, nil
}
