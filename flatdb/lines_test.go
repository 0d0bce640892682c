package flatdb

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/alecthomas/assert"
	"github.com/kjk/insurancedb/require"
)

func collectLines(ls *lineSource) []string {
	var res []string
	for _, l := range ls.All() {
		res = append(res, l)
	}
	return res
}

func TestLineSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	err := os.WriteFile(path, []byte("  a:b  \r\nempty\n\nc:d"), 0644)
	require.NoError(t, err)

	ls := newLineSource(path)
	exp := []string{"a:b", "empty", "", "c:d"}
	assert.Equal(t, exp, collectLines(ls))
	assert.NoError(t, ls.Err())

	// every iteration re-reads the file
	err = os.WriteFile(path, []byte("x:y\n"), 0644)
	require.NoError(t, err)
	assert.Equal(t, []string{"x:y"}, collectLines(ls))
}

func TestLineSourceNumbering(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db")
	err := os.WriteFile(path, []byte("a:1\nb:2\nc:3\n"), 0644)
	require.NoError(t, err)

	ls := newLineSource(path)
	var ids []int
	for idx := range ls.All() {
		ids = append(ids, idx)
		if idx == 2 {
			break
		}
	}
	assert.Equal(t, []int{1, 2}, ids)
	assert.NoError(t, ls.Err())

	var slots []Slot
	for s := range ls.Slots() {
		slots = append(slots, s)
	}
	assert.Equal(t, 3, len(slots))
	assert.Equal(t, 3, slots[2].ID)
	assert.Equal(t, []string{"c", "3"}, slots[2].Fields)
}

func TestLineSourceMissingFile(t *testing.T) {
	ls := newLineSource(filepath.Join(t.TempDir(), "missing.db"))
	assert.Equal(t, 0, len(collectLines(ls)))
	err := ls.Err()
	assert.Error(t, err)
	assert.True(t, IsIO(err))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
