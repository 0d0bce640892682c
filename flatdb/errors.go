package flatdb

import (
	"errors"
	"fmt"
)

// Kind classifies failures returned by Store.
type Kind int

const (
	KindIO Kind = iota + 1
	KindDatabaseNotFound
	KindRecordNotFound
	KindDuplicateRecord
	KindInvalid
)

var (
	// ErrDatabaseNotFound is returned by Open when the database file is missing
	ErrDatabaseNotFound = errors.New("database not found")
	// ErrRecordNotFound is returned for ids out of range or pointing at a deleted slot
	ErrRecordNotFound = errors.New("record not found")
	// ErrDuplicateRecord is returned by Add when identical content is already stored
	ErrDuplicateRecord = errors.New("duplicate record")
	// ErrIO is returned when reading, writing or swapping the database file fails
	ErrIO = errors.New("i/o failure")
	// ErrInvalid is returned for field tuples the file format can't hold
	ErrInvalid = errors.New("invalid record")
)

func (k Kind) sentinel() error {
	switch k {
	case KindIO:
		return ErrIO
	case KindDatabaseNotFound:
		return ErrDatabaseNotFound
	case KindRecordNotFound:
		return ErrRecordNotFound
	case KindDuplicateRecord:
		return ErrDuplicateRecord
	case KindInvalid:
		return ErrInvalid
	}
	return nil
}

func (k Kind) String() string {
	if err := k.sentinel(); err != nil {
		return err.Error()
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Error describes a failed store operation.
// Use errors.Is with ErrRecordNotFound etc. to check the kind.
type Error struct {
	Kind Kind
	// Op is the operation that failed e.g. "add", "swap"
	Op string
	// ID is the record id the operation referred to, 0 if none
	ID   int
	Path string
	// Err is the underlying error, if any (always set for KindIO)
	Err error
}

func (e *Error) Error() string {
	s := "flatdb: " + e.Op
	if e.ID != 0 {
		s += fmt.Sprintf(" %d", e.ID)
	}
	if e.Kind == KindIO || e.Kind == KindDatabaseNotFound {
		if e.Path != "" {
			s += " '" + e.Path + "'"
		}
	}
	s += ": " + e.Kind.String()
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target != nil && target == e.Kind.sentinel()
}

// KindOf returns the Kind of err or 0 if err wasn't returned by this package
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}

func IsDuplicate(err error) bool {
	return errors.Is(err, ErrDuplicateRecord)
}

// IsIO returns true for failures of the storage medium. Those should be
// treated as fatal for the operation.
func IsIO(err error) bool {
	return errors.Is(err, ErrIO)
}

func ioError(op string, path string, err error) error {
	return &Error{Kind: KindIO, Op: op, Path: path, Err: err}
}

func notFound(op string, id int) error {
	return &Error{Kind: KindRecordNotFound, Op: op, ID: id}
}
