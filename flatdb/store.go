package flatdb

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/kjk/insurancedb/log"
	"github.com/kjk/insurancedb/u"
)

const (
	DefaultFileName   = "insurance.db"
	DefaultStagingDir = "tmp"
)

type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpDelete Op = "delete"
)

// Change describes a successful mutation
type Change struct {
	Op Op
	ID int
	// new fields for OpAdd and OpUpdate, nil for OpDelete
	Fields []string
}

type Config struct {
	// directory with the database file. For current directory, use '.'
	DataDir string
	// defaults to DefaultFileName
	FileName string
	// directory for staging files, relative to DataDir unless absolute.
	// Defaults to DefaultStagingDir. Created on first mutation.
	StagingDir string
	// optional, called after every successful Add, Update and Delete
	OnChange func(Change)
}

// Store is a database of fixed-schema records kept in a single text
// file, one record per line. A record's id is its line number.
// Deleted records become tombstone lines that Add re-uses.
//
// Every call re-reads the file and every mutation rewrites it, so the
// file is the only source of truth. Calls on the same Store are
// serialized. Access from multiple Store values or processes is not
// coordinated.
type Store struct {
	path       string
	stagingDir string
	onChange   func(Change)
	mu         sync.Mutex
}

func resolveConfig(cfg *Config) (string, string, error) {
	if cfg.DataDir == "" {
		return "", "", fmt.Errorf("data directory is not set. For current directory, use '.'")
	}
	if cfg.FileName == "" {
		cfg.FileName = DefaultFileName
	}
	if cfg.StagingDir == "" {
		cfg.StagingDir = DefaultStagingDir
	}
	dataDir, err := filepath.Abs(cfg.DataDir)
	if err != nil {
		return "", "", fmt.Errorf("failed to get absolute path for data directory: %w", err)
	}
	path := filepath.Join(dataDir, cfg.FileName)
	stagingDir := cfg.StagingDir
	if !filepath.IsAbs(stagingDir) {
		stagingDir = filepath.Join(dataDir, stagingDir)
	}
	return path, stagingDir, nil
}

// Open opens an existing database. It fails with ErrDatabaseNotFound
// if the file doesn't exist; use Create to make a new one.
func Open(cfg Config) (*Store, error) {
	path, stagingDir, err := resolveConfig(&cfg)
	if err != nil {
		return nil, err
	}
	if !u.FileExists(path) {
		return nil, &Error{Kind: KindDatabaseNotFound, Op: "open", Path: path}
	}
	return &Store{
		path:       path,
		stagingDir: stagingDir,
		onChange:   cfg.OnChange,
	}, nil
}

// Create creates an empty database file, if it doesn't exist yet,
// and opens it
func Create(cfg Config) (*Store, error) {
	path, _, err := resolveConfig(&cfg)
	if err != nil {
		return nil, err
	}
	if err = os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, ioError("create", path, err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, ioError("create", path, err)
	}
	if err = f.Close(); err != nil {
		return nil, ioError("create", path, err)
	}
	return Open(cfg)
}

// Path returns absolute path of the database file
func (s *Store) Path() string {
	return s.path
}

func (s *Store) notify(c Change) {
	log.Verbosef("flatdb: %s %d\n", c.Op, c.ID)
	if s.onChange != nil {
		s.onChange(c)
	}
}

func copyFields(fields []string) []string {
	return append([]string(nil), fields...)
}

// Read returns fields of record id
func (s *Store) Read(id int) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id < 1 {
		return nil, notFound("read", id)
	}
	lines := newLineSource(s.path)
	for slot := range lines.Slots() {
		if slot.ID != id {
			continue
		}
		if slot.State != Active {
			return nil, notFound("read", id)
		}
		return slot.Fields, nil
	}
	if err := lines.Err(); err != nil {
		return nil, err
	}
	return nil, notFound("read", id)
}

// Add stores a new record in the first deleted slot or at the end
// and returns its id. If a record with identical content exists, it
// returns -1 and ErrDuplicateRecord and doesn't modify the file.
func (s *Store) Add(fields []string) (int, error) {
	id, err := s.add(fields)
	if err != nil {
		return -1, err
	}
	s.notify(Change{Op: OpAdd, ID: id, Fields: copyFields(fields)})
	return id, nil
}

func (s *Store) add(fields []string) (int, error) {
	if err := checkEncodable(fields); err != nil {
		return -1, &Error{Kind: KindInvalid, Op: "add", Err: err}
	}
	enc := Encode(fields)

	s.mu.Lock()
	defer s.mu.Unlock()

	target, err := s.findAddTarget(enc)
	if err != nil {
		return -1, err
	}
	err = s.rewrite("add", target, func(string, bool) (string, error) {
		return enc, nil
	})
	if err != nil {
		return -1, err
	}
	return target, nil
}

// Update replaces fields of record id. The slot doesn't have to hold
// an active record: updating a deleted slot makes it active again.
func (s *Store) Update(id int, fields []string) error {
	if err := checkEncodable(fields); err != nil {
		return &Error{Kind: KindInvalid, Op: "update", ID: id, Err: err}
	}
	if id < 1 {
		return notFound("update", id)
	}
	enc := Encode(fields)

	s.mu.Lock()
	err := s.rewrite("update", id, func(_ string, exists bool) (string, error) {
		if !exists {
			return "", notFound("update", id)
		}
		return enc, nil
	})
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify(Change{Op: OpUpdate, ID: id, Fields: copyFields(fields)})
	return nil
}

// Delete marks record id as deleted. Its slot will be re-used by Add.
func (s *Store) Delete(id int) error {
	if id < 1 {
		return notFound("delete", id)
	}

	s.mu.Lock()
	err := s.rewrite("delete", id, func(line string, exists bool) (string, error) {
		if !exists || line == Tombstone {
			return "", notFound("delete", id)
		}
		return EncodeTombstone(), nil
	})
	s.mu.Unlock()

	if err != nil {
		return err
	}
	s.notify(Change{Op: OpDelete, ID: id})
	return nil
}

// Find returns ids, in ascending order, of records whose insurance
// types contain the criteria (case-insensitive substring match).
// With And all criteria must match, with Or at least one.
// No matches is not an error.
func (s *Store) Find(criteria []string, mode Mode) ([]int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return find(newLineSource(s.path), criteria, mode)
}

// ReadAll returns every slot in file order. Fields are nil for
// deleted and malformed slots.
func (s *Store) ReadAll() ([]Slot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var res []Slot
	lines := newLineSource(s.path)
	for slot := range lines.Slots() {
		res = append(res, slot)
	}
	if err := lines.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Count returns number of slots, including deleted ones
func (s *Store) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := 0
	lines := newLineSource(s.path)
	for range lines.All() {
		n++
	}
	if err := lines.Err(); err != nil {
		return 0, err
	}
	return n, nil
}
