package u

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alecthomas/assert"
)

func testCompressRoundtrip(t *testing.T, ext string) {
	dir := t.TempDir()
	src := filepath.Join(dir, "insurance.db")
	d := []byte("Acme:555-0100:acme.com:Fire, Theft:12.5:old\nempty\n")
	assert.NoError(t, os.WriteFile(src, d, 0644))

	dst := src + ext
	var buf bytes.Buffer
	err := CompressFileTo(&buf, src, ext)
	assert.NoError(t, err)
	assert.NoError(t, os.WriteFile(dst, buf.Bytes(), 0644))

	r, err := OpenFileMaybeCompressed(dst)
	assert.NoError(t, err)
	defer r.Close()
	d2, err := io.ReadAll(r)
	assert.NoError(t, err)
	assert.Equal(t, d, d2)
}

func TestCompressRoundtrip(t *testing.T) {
	for _, ext := range []string{ExtZstd, ExtBrotli, ExtGzip} {
		testCompressRoundtrip(t, ext)
	}
}

func TestCompressUnknown(t *testing.T) {
	_, err := NewCompressWriter(io.Discard, ".rar")
	assert.Error(t, err)
}

func TestFileHelpers(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	assert.False(t, FileExists(path))
	assert.Equal(t, int64(-1), FileSize(path))
	assert.NoError(t, os.WriteFile(path, []byte("abc"), 0644))
	assert.True(t, FileExists(path))
	assert.False(t, DirExists(path))
	assert.True(t, DirExists(dir))
	assert.False(t, FileExists(dir))
	assert.Equal(t, int64(3), FileSize(path))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "12 bytes", FormatSize(12))
	assert.Equal(t, "1 kB", FormatSize(1024))
	assert.Equal(t, "1.50 MB", FormatSize(1024*1024*3/2))
	assert.Equal(t, "2 GB", FormatSize(2<<30))
}

func TestExpandTildeInPath(t *testing.T) {
	home, err := os.UserHomeDir()
	assert.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "data"), ExpandTildeInPath("~/data"))
	assert.Equal(t, "~data", ExpandTildeInPath("~data"))
	assert.Equal(t, "./data", ExpandTildeInPath("./data"))
}

func TestDebounce(t *testing.T) {
	var n atomic.Int32
	d := &Debouncer{Timeout: 20 * time.Millisecond}
	for range 10 {
		d.Debounce(func() { n.Add(1) })
	}
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(1), n.Load())
}

func TestDebounceCallsLast(t *testing.T) {
	var got atomic.Int32
	d := &Debouncer{Timeout: 20 * time.Millisecond}
	for i := range 5 {
		d.Debounce(func() { got.Store(int32(i + 1)) })
	}
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(5), got.Load())
}

func TestDebounceStop(t *testing.T) {
	var n atomic.Int32
	d := &Debouncer{Timeout: 20 * time.Millisecond}
	d.Debounce(func() { n.Add(1) })
	d.Stop()
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, int32(0), n.Load())
}
