package log

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert"
)

func withOutput(t *testing.T) *bytes.Buffer {
	var buf bytes.Buffer
	Output = &buf
	t.Cleanup(func() { Output = nil })
	return &buf
}

func TestLogfWithoutInit(t *testing.T) {
	buf := withOutput(t)
	Logf("hello %d\n", 5)
	assert.Equal(t, "hello 5\n", buf.String())

	Verbosef("not shown\n")
	assert.Equal(t, "hello 5\n", buf.String())

	// no-op without Init()
	Event("record.add", "id", 1)
}

func TestEventsRoundtrip(t *testing.T) {
	withOutput(t)
	dir := t.TempDir()
	Init(&Config{Dir: dir})
	defer Close()

	Event("record.add", "id", 3, "name", "Acme")
	Event("record.delete", "id", 2)
	Logf("logged\n")
	IfErrf(os.ErrNotExist, "failed to read '%s'", "x.db")

	events, err := ReadEvents(dir, time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 2, len(events))
	assert.Equal(t, "record.add", events[0].Name)
	assert.True(t, strings.Contains(events[0].Data, "Acme"))
	assert.Equal(t, "record.delete", events[1].Name)

	d, err := os.ReadFile(filepath.Join(dir, "log", time.Now().UTC().Format("2006-01-02")+".txt"))
	assert.NoError(t, err)
	assert.True(t, strings.Contains(string(d), "logged\n"))

	d, err = os.ReadFile(filepath.Join(dir, "errors", time.Now().UTC().Format("2006-01-02")+".txt"))
	assert.NoError(t, err)
	assert.True(t, strings.Contains(string(d), "failed to read 'x.db'"))
}

func TestReadEventsMissingDay(t *testing.T) {
	events, err := ReadEvents(t.TempDir(), time.Now())
	assert.NoError(t, err)
	assert.Equal(t, 0, len(events))
}

func TestMarshalEventOddArgs(t *testing.T) {
	defer func() {
		assert.NotNil(t, recover())
	}()
	MarshalEvent("bad", time.Now(), "id")
}

func TestMarshalEventNonStringKey(t *testing.T) {
	defer func() {
		assert.NotNil(t, recover())
	}()
	MarshalEvent("bad", time.Now(), 1, "id")
}

func TestEventDays(t *testing.T) {
	dir := t.TempDir()
	days, err := EventDays(dir)
	assert.NoError(t, err)
	assert.Equal(t, 0, len(days))

	events := filepath.Join(dir, "events")
	assert.NoError(t, os.MkdirAll(events, 0755))
	for _, name := range []string{"2026-10-02.txt", "2026-09-30.txt", "notes.txt", "2026-10-01.log"} {
		assert.NoError(t, os.WriteFile(filepath.Join(events, name), nil, 0644))
	}
	days, err = EventDays(dir)
	assert.NoError(t, err)
	assert.Equal(t, 2, len(days))
	assert.Equal(t, "2026-09-30", days[0].Format(time.DateOnly))
	assert.Equal(t, "2026-10-02", days[1].Format(time.DateOnly))
}

func TestNilDailyFile(t *testing.T) {
	var w *dailyFile
	assert.NoError(t, w.Write([]byte("dropped")))
	assert.NoError(t, w.Close())
}

func TestErrorfCallstack(t *testing.T) {
	withOutput(t)
	dir := t.TempDir()
	Init(&Config{Dir: dir})
	Errorf("bad thing %d", 7)
	Close()

	d, err := os.ReadFile(pathForDay(filepath.Join(dir, "errors"), time.Now()))
	assert.NoError(t, err)
	s := string(d)
	assert.True(t, strings.Contains(s, "bad thing 7\n"))
	assert.True(t, strings.Contains(s, "log_test.go:"), "callstack should start at the caller: %s", s)
}
