package log

import (
	"bufio"
	"fmt"
	"os"
	"time"

	"github.com/kjk/insurancedb/siser"

	"github.com/toon-format/toon-go"
)

// MarshalEvent encodes key/value pairs in toon format, framed as a
// siser record. Keys must be strings.
func MarshalEvent(name string, t time.Time, vals ...any) []byte {
	if len(vals)%2 != 0 {
		panic(fmt.Sprintf("log.MarshalEvent: odd number of key/value arguments (%d)", len(vals)))
	}
	var d []byte
	if len(vals) > 0 {
		m := make(map[string]any, len(vals)/2)
		for i := 0; i < len(vals); i += 2 {
			k, ok := vals[i].(string)
			if !ok {
				panic(fmt.Sprintf("log.MarshalEvent: key %v is %T, not string", vals[i], vals[i]))
			}
			m[k] = vals[i+1]
		}
		d, _ = toon.Marshal(m)
	}
	return siser.MarshalLine(name, t, d, nil)
}

// Event logs event in toon format to events log
// it's a no-op if Init() wasn't called
func Event(name string, vals ...any) {
	if eventsFile == nil {
		return
	}
	d := MarshalEvent(name, time.Now().UTC(), vals...)
	if err := eventsFile.Write(d); err != nil {
		Logf("log.Event: failed to write '%s': %v\n", name, err)
	}
}

// EventRecord is an event read back from events log
type EventRecord struct {
	Name      string
	Timestamp time.Time
	// toon-encoded key / value pairs
	Data string
}

// ReadEvents reads events logged on a given day from events log in dir
// (the same dir as Config.Dir)
func ReadEvents(dir string, day time.Time) ([]EventRecord, error) {
	f, err := os.Open(pathForDay(eventsDir(dir), day))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	var res []EventRecord
	r := siser.NewReader(bufio.NewReader(f))
	for r.ReadNextData() {
		res = append(res, EventRecord{
			Name:      r.Name,
			Timestamp: r.Timestamp,
			Data:      string(r.Data),
		})
	}
	return res, r.Err()
}

// EventDays returns days with logged events in dir, oldest first
func EventDays(dir string) ([]time.Time, error) {
	return days(eventsDir(dir))
}
