package u

import (
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/zstd"
)

// extensions of compressed files we know how to read and write
const (
	ExtZstd   = ".zst"
	ExtBrotli = ".br"
	ExtGzip   = ".gz"
)

// implement io.ReadCloser over os.File wrapped with io.Reader.
// io.Closer goes to os.File, io.Reader goes to wrapping reader
type readerWrappedFile struct {
	f       *os.File
	r       io.Reader
	onClose func()
}

func (rc *readerWrappedFile) Close() error {
	if rc.onClose != nil {
		rc.onClose()
	}
	return rc.f.Close()
}

func (rc *readerWrappedFile) Read(p []byte) (int, error) {
	return rc.r.Read(p)
}

// OpenFileMaybeCompressed opens a file that might be compressed with gzip
// or zstd or brotli, based on file extension
func OpenFileMaybeCompressed(path string) (io.ReadCloser, error) {
	ext := strings.ToLower(filepath.Ext(path))
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	switch ext {
	case ExtGzip:
		r, err := gzip.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readerWrappedFile{f: f, r: r}, nil
	case ExtZstd, ".zstd":
		r, err := zstd.NewReader(f)
		if err != nil {
			f.Close()
			return nil, err
		}
		return &readerWrappedFile{f: f, r: r, onClose: r.Close}, nil
	case ExtBrotli:
		return &readerWrappedFile{f: f, r: brotli.NewReader(f)}, nil
	}
	return f, nil
}

// NewCompressWriter returns a writer that compresses to w with
// the compression implied by ext (ExtZstd, ExtBrotli or ExtGzip).
// Close() must be called to flush compressed data, it doesn't close w.
func NewCompressWriter(w io.Writer, ext string) (io.WriteCloser, error) {
	switch ext {
	case ExtZstd:
		return zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedBestCompression))
	case ExtBrotli:
		return brotli.NewWriterLevel(w, brotli.BestCompression), nil
	case ExtGzip:
		return gzip.NewWriterLevel(w, gzip.BestCompression)
	}
	return nil, fmt.Errorf("unsupported compression '%s'", ext)
}

// CompressFileTo writes content of srcPath to w, compressed with
// compression implied by ext
func CompressFileTo(w io.Writer, srcPath string, ext string) error {
	fSrc, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer fSrc.Close()
	cw, err := NewCompressWriter(w, ext)
	if err != nil {
		return err
	}
	_, err = io.Copy(cw, fSrc)
	err2 := cw.Close()
	if err != nil {
		return err
	}
	return err2
}
