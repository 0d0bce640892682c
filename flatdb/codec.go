package flatdb

import (
	"fmt"
	"strings"
)

const (
	// Delimiter separates fields on a line. It's not escaped so
	// a field value must not contain it (see ValidateFields)
	Delimiter = ":"
	// Tombstone is the content of a line of a deleted record
	Tombstone = "empty"
	// NumFields is the number of fields in a record
	NumFields = 6
)

// indexes of fields in a record
const (
	FieldName = iota
	FieldTelephone
	FieldURL
	FieldInsuranceTypes
	FieldPercentage
	FieldDescription
)

// FieldSearchable is the field matched by Find
const FieldSearchable = FieldInsuranceTypes

// FieldNames are human-readable names of fields, in order
var FieldNames = [NumFields]string{
	"name",
	"telephone",
	"url",
	"insurance types",
	"percentage",
	"description",
}

type State int

const (
	Active State = iota
	Tombstoned
	// Malformed is a line that isn't a tombstone and has fewer than
	// 2 fields. It's skipped by Read, Find and ReadAll
	Malformed
)

func (s State) String() string {
	switch s {
	case Active:
		return "active"
	case Tombstoned:
		return "tombstoned"
	case Malformed:
		return "malformed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Slot is one line of the database file
type Slot struct {
	// 1-based position of the line in the file
	ID    int
	State State
	// nil unless State is Active
	Fields []string
}

// Decode parses a trimmed line. ID of the returned Slot is not set.
func Decode(line string) Slot {
	if line == Tombstone {
		return Slot{State: Tombstoned}
	}
	parts := strings.Split(line, Delimiter)
	if len(parts) < 2 {
		return Slot{State: Malformed}
	}
	return Slot{State: Active, Fields: parts}
}

// EncodeTombstone returns the line that marks a deleted record
func EncodeTombstone() string {
	return Tombstone
}

// Encode joins fields with Delimiter. The result is a single line
// (without trailing newline).
func Encode(fields []string) string {
	return strings.Join(fields, Delimiter)
}

// searchable returns lower-cased insurance types of an active slot.
// Returns false for slots too short to have the field.
func (s *Slot) searchable() (string, bool) {
	if s.State != Active || len(s.Fields) <= FieldSearchable {
		return "", false
	}
	return strings.ToLower(s.Fields[FieldSearchable]), true
}

// checkEncodable verifies that fields can be written as a single line
// and read back unchanged. Lines are trimmed when read, so the first
// and last field can't start or end with whitespace.
func checkEncodable(fields []string) error {
	if len(fields) != NumFields {
		return fmt.Errorf("expected %d fields, got %d", NumFields, len(fields))
	}
	for i, v := range fields {
		if strings.ContainsAny(v, "\r\n") {
			return fmt.Errorf("field '%s' contains a newline", FieldNames[i])
		}
	}
	enc := Encode(fields)
	if len(enc) >= maxLineSize {
		return fmt.Errorf("record is %d bytes, must be less than %d", len(enc), maxLineSize)
	}
	if strings.TrimSpace(enc) != enc {
		first, last := FieldNames[0], FieldNames[NumFields-1]
		return fmt.Errorf("field '%s' can't start and field '%s' can't end with whitespace", first, last)
	}
	return nil
}

// ValidateFields is for callers that want to reject input the file
// format can't represent faithfully, including values that contain
// Delimiter. The store itself only rejects tuples that would break
// the one-line-per-record layout.
func ValidateFields(fields []string) error {
	if err := checkEncodable(fields); err != nil {
		return &Error{Kind: KindInvalid, Op: "validate", Err: err}
	}
	for i, v := range fields {
		if strings.Contains(v, Delimiter) {
			err := fmt.Errorf("field '%s' contains '%s'", FieldNames[i], Delimiter)
			return &Error{Kind: KindInvalid, Op: "validate", Err: err}
		}
	}
	return nil
}
