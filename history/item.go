// Package history records one entry per writer session that has ever
// touched a database: when it opened and closed, the command line that
// ran it, a snapshot of the machine it ran on, peak memory use, and
// anything the caller chose to capture from standard output and
// standard error. Entries accumulate across the database's lifetime —
// a database created "from" an existing one inherits its predecessor's
// history verbatim before appending its own.
package history

import (
	"fmt"

	"github.com/Priyanshu23/kmerdbgo/serial"
)

// StreamName is the archive stream every database's history lives in.
const StreamName = "history"

// Item is one recorded writer session.
type Item struct {
	OpenTimeMillis  uint64
	CloseTimeMillis uint64
	PeakRSSBytes    uint64
	CommandLine     string
	SystemInfo      string
	Info            string
	StdCout         string
	StdCerr         string
}

// field tags let Load skip a field it does not recognize without
// knowing its name in advance — a later version of this package can add
// fields and still be read by this one.
const (
	fieldUint64 byte = 0
	fieldString byte = 1
)

func putNamedUint64(buf []byte, name string, v uint64) []byte {
	buf = serial.PutString(buf, name)
	buf = append(buf, fieldUint64)
	return serial.PutUint64(buf, v)
}

func putNamedString(buf []byte, name, v string) []byte {
	buf = serial.PutString(buf, name)
	buf = append(buf, fieldString)
	return serial.PutString(buf, v)
}

// Serialize encodes one history item as a self-describing, forward
// compatible record: each field is prefixed with its own name and a
// type tag, so a reader built against an older version of this package
// can skip fields it does not know about instead of misreading them.
func (it Item) Serialize() []byte {
	buf := putNamedUint64(nil, "open_time_millis", it.OpenTimeMillis)
	buf = putNamedUint64(buf, "close_time_millis", it.CloseTimeMillis)
	buf = putNamedUint64(buf, "peak_rss_bytes", it.PeakRSSBytes)
	buf = putNamedString(buf, "command_line", it.CommandLine)
	buf = putNamedString(buf, "system_info", it.SystemInfo)
	buf = putNamedString(buf, "info", it.Info)
	buf = putNamedString(buf, "std_cout", it.StdCout)
	buf = putNamedString(buf, "std_cerr", it.StdCerr)
	return buf
}

// LoadItem decodes a history item produced by Serialize. Fields whose
// name it does not recognize are skipped using their type tag rather
// than rejected, so items written by a newer build still load.
func LoadItem(buf []byte) (Item, error) {
	var it Item
	for len(buf) > 0 {
		name, rest, err := serial.GetString(buf)
		if err != nil {
			return Item{}, fmt.Errorf("history: reading field name: %w", err)
		}
		if len(rest) < 1 {
			return Item{}, fmt.Errorf("history: truncated record after field %q", name)
		}
		tag := rest[0]
		rest = rest[1:]

		switch tag {
		case fieldUint64:
			var v uint64
			v, rest, err = serial.GetUint64(rest)
			if err != nil {
				return Item{}, fmt.Errorf("history: reading field %q: %w", name, err)
			}
			switch name {
			case "open_time_millis":
				it.OpenTimeMillis = v
			case "close_time_millis":
				it.CloseTimeMillis = v
			case "peak_rss_bytes":
				it.PeakRSSBytes = v
			}
		case fieldString:
			var v string
			v, rest, err = serial.GetString(rest)
			if err != nil {
				return Item{}, fmt.Errorf("history: reading field %q: %w", name, err)
			}
			switch name {
			case "command_line":
				it.CommandLine = v
			case "system_info":
				it.SystemInfo = v
			case "info":
				it.Info = v
			case "std_cout":
				it.StdCout = v
			case "std_cerr":
				it.StdCerr = v
			}
		default:
			return Item{}, fmt.Errorf("history: field %q has unknown type tag %d", name, tag)
		}
		buf = rest
	}
	return it, nil
}
