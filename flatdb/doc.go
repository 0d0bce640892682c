// Package flatdb stores insurance company records in a flat text file.
//
// # File format
//
// One record per line, fields joined with ':' in this order:
//
//	name:telephone:url:insurance types:percentage:description
//
// A deleted record is a line with the text "empty". There is no header
// and no escaping, so field values must not contain ':' or newlines
// (see ValidateFields).
//
// # Identifiers
//
// The id of a record is its 1-based line number. Lines are never
// removed so ids don't change: Delete turns a line into a tombstone
// and Add re-uses the first tombstone before appending.
//
// # Durability
//
// Every mutation writes the whole file to a staging file in a
// sub-directory of the data directory ("tmp" by default) and renames
// it over the database. A failed mutation leaves the database as it
// was. Failures of the storage medium are reported as ErrIO.
//
// # Basic Usage
//
//	s, err := flatdb.Open(flatdb.Config{DataDir: "./data"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	id, err := s.Add([]string{"Acme", "555-0100", "acme.com", "Fire, Theft", "12.5", "Est. 1901"})
//	ids, err := s.Find([]string{"fire", "theft"}, flatdb.And)
package flatdb
