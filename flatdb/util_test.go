package flatdb

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/davecgh/go-spew/spew"
	"github.com/kjk/insurancedb/require"
	"github.com/pmezard/go-difflib/difflib"
)

func rec(name string, types string) []string {
	return []string{name, "555-0100", "www." + strings.ToLower(name) + ".com", types, "10.5", "about " + name}
}

func line(name string, types string) string {
	return Encode(rec(name, types))
}

// createTestStore creates a store in a temp directory with
// database file consisting of lines
func createTestStore(t *testing.T, lines ...string) *Store {
	dir := t.TempDir()
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	err := os.WriteFile(filepath.Join(dir, DefaultFileName), []byte(content), 0644)
	require.NoError(t, err)
	s, err := Open(Config{DataDir: dir})
	require.NoError(t, err)
	return s
}

func readFile(t *testing.T, path string) string {
	d, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(d)
}

// assertLines checks that database file consists of exp lines and
// shows a diff if it doesn't
func assertLines(t *testing.T, s *Store, exp ...string) {
	t.Helper()
	got := readFile(t, s.Path())
	want := strings.Join(exp, "\n") + "\n"
	if got == want {
		return
	}
	diff, _ := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(want),
		B:        difflib.SplitLines(got),
		FromFile: "expected",
		ToFile:   s.Path(),
		Context:  2,
	})
	t.Fatalf("database content mismatch:\n%s", diff)
}

func assertSlots(t *testing.T, got []Slot, exp []Slot) {
	t.Helper()
	if len(got) != len(exp) {
		t.Fatalf("expected %d slots, got %d:\n%s", len(exp), len(got), spew.Sdump(got))
	}
	for i := range exp {
		g, e := got[i], exp[i]
		if g.ID != e.ID || g.State != e.State || Encode(g.Fields) != Encode(e.Fields) {
			t.Fatalf("slot %d mismatch, expected:\n%s\ngot:\n%s", i, spew.Sdump(e), spew.Sdump(g))
		}
	}
}
