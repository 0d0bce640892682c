package flatdb

import (
	"testing"

	"github.com/alecthomas/assert"
)

func TestDecode(t *testing.T) {
	s := Decode("empty")
	assert.Equal(t, Tombstoned, s.State)
	assert.Nil(t, s.Fields)

	s = Decode(line("Acme", "Fire, Theft"))
	assert.Equal(t, Active, s.State)
	assert.Equal(t, rec("Acme", "Fire, Theft"), s.Fields)

	// 2 tokens is enough to be a record
	s = Decode("a:b")
	assert.Equal(t, Active, s.State)
	assert.Equal(t, []string{"a", "b"}, s.Fields)

	for _, l := range []string{"", "just text", "Empty"} {
		s = Decode(l)
		assert.Equal(t, Malformed, s.State, "line: %q", l)
		assert.Nil(t, s.Fields)
	}
}

func TestEncodeTombstone(t *testing.T) {
	assert.Equal(t, Tombstone, EncodeTombstone())
	assert.Equal(t, Tombstoned, Decode(EncodeTombstone()).State)
}

func TestEncode(t *testing.T) {
	got := Encode([]string{"Acme", "555", "acme.com", "Fire", "12.5", "desc"})
	assert.Equal(t, "Acme:555:acme.com:Fire:12.5:desc", got)
	// empty fields are kept so the arity survives a round trip
	got = Encode([]string{"Acme", "", "", "Fire", "", ""})
	assert.Equal(t, "Acme:::Fire::", got)
	assert.Equal(t, 6, len(Decode(got).Fields))
}

func TestValidateFields(t *testing.T) {
	assert.NoError(t, ValidateFields(rec("Acme", "Fire")))

	invalid := [][]string{
		{"too", "short"},
		append(rec("Acme", "Fire"), "extra"),
		rec("Acme", "Fire:Theft"),
		rec("Acme\nCorp", "Fire"),
		rec("Acme", "Fire\r"),
		rec(" Acme", "Fire"),
	}
	for _, fields := range invalid {
		err := ValidateFields(fields)
		assert.Error(t, err, "fields: %#v", fields)
		assert.Equal(t, KindInvalid, KindOf(err))
	}
}
