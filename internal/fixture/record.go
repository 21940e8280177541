// Package fixture reads "timezone;date" input records, expands them into
// local date-times, and writes resolved entries as ';'-separated lines.
package fixture

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/pkg/errors"
)

// Separator joins the fields of input records and fixture lines.
const Separator = ";"

// DefaultStep is the distance between two ticks of a day.
const DefaultStep = 15 * time.Minute

// Record is one input line: a zone and a calendar date.
type Record struct {
	Line int
	Zone string
	Date civil.Date
}

// MalformedRecordError reports an input line with a missing field or an
// unparseable date.
type MalformedRecordError struct {
	Line   int
	Text   string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("line %d: malformed record %q: %s", e.Line, e.Text, e.Reason)
}

// ParseRecord parses "timezone;date". Fields after the date are ignored.
func ParseRecord(line string) (Record, error) {
	fields := strings.Split(line, Separator)
	if len(fields) < 2 {
		return Record{}, &MalformedRecordError{Text: line, Reason: "want timezone;date"}
	}
	zone := strings.TrimSpace(fields[0])
	if zone == "" {
		return Record{}, &MalformedRecordError{Text: line, Reason: "empty timezone"}
	}
	date, err := civil.ParseDate(strings.TrimSpace(fields[1]))
	if err != nil {
		return Record{}, &MalformedRecordError{Text: line, Reason: err.Error()}
	}
	return Record{Zone: zone, Date: date}, nil
}

// ReadRecords parses every record of r. Blank lines and lines starting
// with '#' are skipped. A malformed line stops the read unless skip is
// set, in which case it is passed to skip and reading goes on.
func ReadRecords(r io.Reader, skip func(error)) ([]Record, error) {
	var out []Record
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		rec, err := ParseRecord(line)
		if err != nil {
			var mr *MalformedRecordError
			if errors.As(err, &mr) {
				mr.Line = n
			}
			if skip == nil {
				return nil, err
			}
			skip(err)
			continue
		}
		rec.Line = n
		out = append(out, rec)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "reading records")
	}
	return out, nil
}

// Ticks returns the local date-times of d from 00:00 in steps of step,
// stopping before midnight. The default 15 minute step gives 96 ticks,
// 00:00 through 23:45.
func Ticks(d civil.Date, step time.Duration) ([]civil.DateTime, error) {
	if step <= 0 || step > 24*time.Hour || step%time.Second != 0 {
		return nil, errors.Errorf("tick step %s must be a whole number of seconds between 1s and 24h", step)
	}
	out := make([]civil.DateTime, 0, int(24*time.Hour/step))
	for at := time.Duration(0); at < 24*time.Hour; at += step {
		secs := int(at / time.Second)
		out = append(out, civil.DateTime{
			Date: d,
			Time: civil.Time{Hour: secs / 3600, Minute: secs / 60 % 60, Second: secs % 60},
		})
	}
	return out, nil
}
