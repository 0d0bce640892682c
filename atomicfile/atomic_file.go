package atomicfile

import (
	"bufio"
	"errors"
	"io"
	"os"
	"path/filepath"
)

// Some references:
// - https://www.slideshare.net/nan1nan1/eat-my-data
// - https://lwn.net/Articles/457667/

var (
	// ErrCancelled is returned by calls subsequent to RemoveIfNotClosed()
	ErrCancelled = errors.New("cancelled")

	_ io.WriteCloser  = &File{}
	_ io.StringWriter = &File{}
)

// File writes to a staging file and on Close() swaps it with
// the destination. If any step fails, the staging file is removed
// and the destination is left untouched.
type File struct {
	dstPath string
	dstDir  string
	tmpFile *os.File
	w       *bufio.Writer
	err     error

	tmpPath string
}

// New creates a File with the staging file in the same directory as path
func New(path string) (*File, error) {
	return NewInDir(path, "")
}

// NewInDir creates a File with the staging file in stagingDir, which is
// created if it doesn't exist. It must be on the same file system as
// path so that the final rename is atomic.
// Empty stagingDir means the directory of path.
func NewInDir(path string, stagingDir string) (*File, error) {
	dir, fName := filepath.Split(path)
	if fName == "" {
		return nil, &os.PathError{Op: "open", Path: path, Err: os.ErrInvalid}
	}
	dir, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	// we can't rename into a directory that doesn't exist so
	// fail early instead of after writing everything
	st, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !st.IsDir() {
		return nil, &os.PathError{Op: "open", Path: dir, Err: os.ErrInvalid}
	}
	if stagingDir == "" {
		stagingDir = dir
	} else if err = os.MkdirAll(stagingDir, 0755); err != nil {
		return nil, err
	}

	tmpFile, err := os.CreateTemp(stagingDir, fName+".*.tmp")
	if err != nil {
		return nil, err
	}
	return &File{
		dstPath: path,
		dstDir:  dir,
		tmpFile: tmpFile,
		w:       bufio.NewWriter(tmpFile),
		tmpPath: tmpFile.Name(),
	}, nil
}

// TempPath returns path of the staging file
func (f *File) TempPath() string {
	return f.tmpPath
}

func (f *File) handleError(err error) error {
	if err == nil {
		return nil
	}
	// remember the first error
	if f.err == nil {
		f.err = err
	}
	// cleanup i.e. delete the staging file
	_ = f.Close()
	return err
}

// Write writes data to the staging file
func (f *File) Write(d []byte) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n, err := f.w.Write(d)
	return n, f.handleError(err)
}

func (f *File) WriteString(s string) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n, err := f.w.WriteString(s)
	return n, f.handleError(err)
}

// WriteLine writes s followed by '\n'
func (f *File) WriteLine(s string) error {
	if _, err := f.WriteString(s); err != nil {
		return err
	}
	return f.handleError(f.w.WriteByte('\n'))
}

func (f *File) alreadyClosed() bool {
	return f.tmpFile == nil
}

// RemoveIfNotClosed removes the staging file if we didn't Close
// the file yet. Destination file will not be touched.
// Use it with defer to ensure cleanup on early returns and panics.
// RemoveIfNotClosed after Close is a no-op.
func (f *File) RemoveIfNotClosed() {
	if f == nil || f.alreadyClosed() {
		return
	}
	f.err = ErrCancelled
	_ = f.Close()
}

// Close flushes and closes the staging file and renames it over
// the destination. Can be called multiple times, returns the
// first error.
func (f *File) Close() error {
	if f.alreadyClosed() {
		return f.err
	}
	tmpFile := f.tmpFile
	f.tmpFile = nil

	didRename := false
	defer func() {
		if !didRename {
			_ = os.Remove(f.tmpPath)
		}
	}()

	var err error
	if f.err == nil {
		err = f.w.Flush()
	}
	// https://www.joeshaw.org/dont-defer-close-on-writable-files/
	errSync := tmpFile.Sync()
	errClose := tmpFile.Close()

	if f.err != nil {
		return f.err
	}
	if err == nil {
		err = errSync
	}
	if err == nil {
		err = errClose
	}
	if err == nil {
		// over-writes dstPath if it exists
		err = os.Rename(f.tmpPath, f.dstPath)
		didRename = (err == nil)
		if didRename {
			syncDir(f.dstDir)
		}
	}
	f.err = err
	return err
}

// for extra protection against crashes, sync directory after rename.
// errors are ignored as this is a nice to have
func syncDir(dir string) {
	fdir, _ := os.Open(dir)
	if fdir != nil {
		_ = fdir.Sync()
		_ = fdir.Close()
	}
}
