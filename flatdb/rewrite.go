package flatdb

import (
	"github.com/kjk/insurancedb/atomicfile"
)

// transformFunc computes the new content of the target line.
// exists is false when the target is past the end of the file, in
// which case the result is appended. Returning an error aborts the
// rewrite and leaves the file untouched.
type transformFunc func(line string, exists bool) (string, error)

// rewrite copies the database to a staging file, replacing the line at
// target with the result of transform, and swaps the staging file over
// the database. Every other line is copied as-is so tombstones stay
// tombstones and ids don't shift.
// Must be called with s.mu held.
func (s *Store) rewrite(op string, target int, transform transformFunc) error {
	f, err := atomicfile.NewInDir(s.path, s.stagingDir)
	if err != nil {
		return ioError(op+": create staging file", s.stagingDir, err)
	}
	defer f.RemoveIfNotClosed()

	lines := newLineSource(s.path)
	n := 0
	for idx, line := range lines.All() {
		n = idx
		if idx == target {
			line, err = transform(line, true)
			if err != nil {
				return err
			}
		}
		if err = f.WriteLine(line); err != nil {
			return ioError(op+": write", f.TempPath(), err)
		}
	}
	if err = lines.Err(); err != nil {
		return err
	}
	if target > n {
		line, err := transform("", false)
		if err != nil {
			return err
		}
		if err = f.WriteLine(line); err != nil {
			return ioError(op+": write", f.TempPath(), err)
		}
	}
	if err = f.Close(); err != nil {
		// the staging file is removed and the database wasn't replaced
		return ioError(op+": swap", s.path, err)
	}
	return nil
}

// findAddTarget returns the id a new record with encoded content enc
// would get: the first tombstone or one past the last line.
func (s *Store) findAddTarget(enc string) (int, error) {
	lines := newLineSource(s.path)
	target := 0
	n := 0
	for idx, line := range lines.All() {
		n = idx
		if line == enc {
			return -1, &Error{Kind: KindDuplicateRecord, Op: "add", ID: idx}
		}
		if target == 0 && line == Tombstone {
			target = idx
		}
	}
	if err := lines.Err(); err != nil {
		return -1, err
	}
	if target == 0 {
		target = n + 1
	}
	return target, nil
}
