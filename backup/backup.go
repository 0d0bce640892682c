// Package backup makes compressed snapshots of a database file and
// restores them. Snapshots can be stored locally and, optionally, in an
// S3-compatible bucket (see Remote).
package backup

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/kjk/insurancedb/atomicfile"
	"github.com/kjk/insurancedb/flatdb"
	"github.com/kjk/insurancedb/log"
	"github.com/kjk/insurancedb/u"
)

// supported snapshot codecs
const (
	CodecZstd   = "zstd"
	CodecBrotli = "brotli"
	CodecGzip   = "gzip"
)

const timestampFormat = "20060102-150405"

// CodecExt returns file extension for a codec name. Empty name means zstd.
func CodecExt(codec string) (string, error) {
	switch strings.ToLower(codec) {
	case "", CodecZstd:
		return u.ExtZstd, nil
	case CodecBrotli:
		return u.ExtBrotli, nil
	case CodecGzip:
		return u.ExtGzip, nil
	}
	return "", fmt.Errorf("unknown backup codec '%s', expected zstd, brotli or gzip", codec)
}

// SnapshotName returns a name of snapshot of dbPath taken at t
// e.g. "insurance-20261016-102600.db.zst"
func SnapshotName(dbPath string, t time.Time, ext string) string {
	base := filepath.Base(dbPath)
	dbExt := filepath.Ext(base)
	name := strings.TrimSuffix(base, dbExt)
	return name + "-" + t.UTC().Format(timestampFormat) + dbExt + ext
}

// Snapshot compresses dbPath into dstDir and returns path of the snapshot
func Snapshot(dbPath string, dstDir string, codec string) (string, error) {
	ext, err := CodecExt(codec)
	if err != nil {
		return "", err
	}
	if !u.FileExists(dbPath) {
		return "", &flatdb.Error{Kind: flatdb.KindDatabaseNotFound, Op: "snapshot", Path: dbPath}
	}
	if err = os.MkdirAll(dstDir, 0755); err != nil {
		return "", err
	}
	dstPath := filepath.Join(dstDir, SnapshotName(dbPath, time.Now(), ext))
	f, err := atomicfile.New(dstPath)
	if err != nil {
		return "", err
	}
	defer f.RemoveIfNotClosed()
	if err = u.CompressFileTo(f, dbPath, ext); err != nil {
		return "", err
	}
	if err = f.Close(); err != nil {
		return "", err
	}
	log.Verbosef("backup: '%s' => '%s' (%s)\n", dbPath, dstPath, u.FormatSize(u.FileSize(dstPath)))
	return dstPath, nil
}

// List returns snapshots in dir, oldest first
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var res []string
	for _, e := range entries {
		if e.IsDir() || !isSnapshotName(e.Name()) {
			continue
		}
		res = append(res, filepath.Join(dir, e.Name()))
	}
	// timestamp in the name sorts chronologically
	slices.Sort(res)
	return res, nil
}

func isSnapshotName(name string) bool {
	switch filepath.Ext(name) {
	case u.ExtZstd, u.ExtBrotli, u.ExtGzip:
		return true
	}
	return false
}

// Restore replaces dbPath with the content of snapshotPath. Every line of
// the snapshot must be a tombstone or a record, otherwise dbPath is
// left untouched. Returns number of lines restored.
func Restore(snapshotPath string, dbPath string) (int, error) {
	r, err := u.OpenFileMaybeCompressed(snapshotPath)
	if err != nil {
		return 0, err
	}
	defer r.Close()

	if err = os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return 0, err
	}
	f, err := atomicfile.New(dbPath)
	if err != nil {
		return 0, err
	}
	defer f.RemoveIfNotClosed()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(nil, 1024*1024)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimSpace(scanner.Text())
		if slot := flatdb.Decode(line); slot.State == flatdb.Malformed {
			return 0, &flatdb.Error{
				Kind: flatdb.KindInvalid,
				Op:   "restore",
				ID:   n,
				Path: snapshotPath,
				Err:  fmt.Errorf("malformed line '%s'", line),
			}
		}
		if err = f.WriteLine(line); err != nil {
			return 0, err
		}
	}
	if err = scanner.Err(); err != nil {
		return 0, err
	}
	if err = f.Close(); err != nil {
		return 0, err
	}
	log.Verbosef("backup: restored %d lines from '%s' to '%s'\n", n, snapshotPath, dbPath)
	return n, nil
}
