package backup

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alecthomas/assert"

	"github.com/kjk/insurancedb/flatdb"
	"github.com/kjk/insurancedb/require"
)

const testDB = "Acme:555-0100:www.acme.com:Fire, Theft:12.5:Fire cover\nempty\nBeta:555-0101:www.beta.com:Flood:3:Flood cover\n"

func writeDB(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "insurance.db")
	err := os.WriteFile(path, []byte(content), 0644)
	require.NoError(t, err)
	return path
}

func TestSnapshotRestore(t *testing.T) {
	for _, codec := range []string{"", CodecZstd, CodecBrotli, CodecGzip} {
		dbPath := writeDB(t, testDB)
		dir := filepath.Join(t.TempDir(), "backups")
		snapshot, err := Snapshot(dbPath, dir, codec)
		require.NoError(t, err)
		ext, err := CodecExt(codec)
		require.NoError(t, err)
		assert.True(t, strings.HasSuffix(snapshot, ".db"+ext), "snapshot: %s", snapshot)
		assert.True(t, strings.HasPrefix(filepath.Base(snapshot), "insurance-"))

		list, err := List(dir)
		require.NoError(t, err)
		assert.Equal(t, []string{snapshot}, list)

		dstPath := filepath.Join(t.TempDir(), "restored", "insurance.db")
		n, err := Restore(snapshot, dstPath)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		d, err := os.ReadFile(dstPath)
		require.NoError(t, err)
		assert.Equal(t, testDB, string(d))

		s, err := flatdb.Open(flatdb.Config{DataDir: filepath.Dir(dstPath)})
		require.NoError(t, err)
		fields, err := s.Read(3)
		require.NoError(t, err)
		assert.Equal(t, "Beta", fields[flatdb.FieldName])
	}
}

func TestSnapshotMissingDatabase(t *testing.T) {
	_, err := Snapshot(filepath.Join(t.TempDir(), "insurance.db"), t.TempDir(), "")
	require.ErrorIs(t, err, flatdb.ErrDatabaseNotFound)
}

func TestUnknownCodec(t *testing.T) {
	dbPath := writeDB(t, testDB)
	_, err := Snapshot(dbPath, t.TempDir(), "lzma")
	assert.Error(t, err)
}

func TestRestoreRejectsMalformed(t *testing.T) {
	src := writeDB(t, "Acme:555:www.acme.com:Fire:1:x\nnot a record\n")
	dbPath := writeDB(t, testDB)
	_, err := Restore(src, dbPath)
	require.ErrorIs(t, err, flatdb.ErrInvalid)
	var dbErr *flatdb.Error
	require.True(t, errors.As(err, &dbErr))
	assert.Equal(t, 2, dbErr.ID)

	// destination is untouched
	d, err := os.ReadFile(dbPath)
	require.NoError(t, err)
	assert.Equal(t, testDB, string(d))
}

func TestSnapshotName(t *testing.T) {
	ts := time.Date(2026, 10, 16, 10, 26, 5, 0, time.UTC)
	got := SnapshotName("/data/insurance.db", ts, ".zst")
	assert.Equal(t, "insurance-20261016-102605.db.zst", got)
}

func TestListSkipsOtherFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b-2.db.zst", "a-1.db.br", "notes.txt", "x.db.zst.123.tmp"} {
		err := os.WriteFile(filepath.Join(dir, name), nil, 0644)
		require.NoError(t, err)
	}
	list, err := List(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a-1.db.br"), filepath.Join(dir, "b-2.db.zst")}, list)

	list, err = List(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Equal(t, 0, len(list))
}

func TestRemoteConfig(t *testing.T) {
	var c *RemoteConfig
	assert.False(t, c.IsEnabled())
	c = &RemoteConfig{Endpoint: "s3.example.com", Bucket: "b"}
	assert.True(t, c.IsEnabled())
	assert.Error(t, c.validate())
	assert.Equal(t, "backups/", c.prefix())
	c.Prefix = "db/snapshots/"
	assert.Equal(t, "db/snapshots/", c.prefix())

	r := &Remote{config: c}
	assert.Equal(t, "db/snapshots/insurance-1.db.zst", r.RemotePath("/tmp/x/insurance-1.db.zst"))
}
