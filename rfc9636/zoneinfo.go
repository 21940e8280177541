// Copyright 2011 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// https://github.com/golang/go/blob/master/src/time/zoneinfo.go

package rfc9636

import (
	"fmt"
	"io"
	"time"
)

// A Location is the raw content of one TZif file: the local time types,
// the transition table and the TZ footer. Unlike time.Location it keeps
// every field visible so callers can inspect the rule data itself.
type Location struct {
	name string
	zone []zone
	tx   []zoneTrans

	// The tzdata information can be followed by a string that describes
	// how to handle DST transitions not recorded in zoneTrans.
	// The format is the TZ environment variable without a colon; see
	// https://pubs.opengroup.org/onlinepubs/9699919799/basedefs/V1_chap08.html.
	// Example string, for America/Los_Angeles: PST8PDT,M3.2.0,M11.1.0
	extend string
}

// A zone represents a single time zone such as CET.
type zone struct {
	name   string // abbreviated name, "CET"
	offset int    // seconds east of UTC
	isDST  bool   // is this zone Daylight Savings Time?
}

// A zoneTrans represents a single time zone transition.
type zoneTrans struct {
	when  int64 // transition time, in seconds since 1970 GMT
	index uint8 // the index of the zone that goes into effect at that time
}

// alpha is the beginning of time for zone transitions.
const alpha = -1 << 63 // math.MinInt64

// LocalType is an exported copy of one local time type record.
type LocalType struct {
	Abbrev string
	Offset int
	IsDST  bool
}

// Transition is an exported copy of one transition record. When is zero
// for the synthetic transition of files without a table.
type Transition struct {
	When time.Time
	Type LocalType
}

func (l *Location) Name() string {
	return l.name
}

func (l *Location) Extend() string {
	return l.extend
}

func (l *Location) LocalTypes() []LocalType {
	types := make([]LocalType, 0, len(l.zone))
	for _, z := range l.zone {
		types = append(types, LocalType{Abbrev: z.name, Offset: z.offset, IsDST: z.isDST})
	}
	return types
}

func (l *Location) Transitions() []Transition {
	out := make([]Transition, 0, len(l.tx))
	for _, tx := range l.tx {
		z := l.zone[tx.index]
		var when time.Time
		if tx.when != alpha {
			when = time.Unix(tx.when, 0).UTC()
		}
		out = append(out, Transition{
			When: when,
			Type: LocalType{Abbrev: z.name, Offset: z.offset, IsDST: z.isDST},
		})
	}
	return out
}

// DumpLocation writes a readable listing of the location to w: its local
// time types, every transition and the footer.
func DumpLocation(w io.Writer, l *Location) {
	fmt.Fprintln(w, "Name:", l.Name())
	types := l.LocalTypes()
	fmt.Fprintf(w, "Local types: %d\n", len(types))
	for i, lt := range types {
		fmt.Fprintf(w, "  [%d] %-6s %+7d dst=%t\n", i, lt.Abbrev, lt.Offset, lt.IsDST)
	}
	tx := l.Transitions()
	fmt.Fprintf(w, "Transitions: %d\n", len(tx))
	for i, t := range tx {
		when := "beginning of time"
		if !t.When.IsZero() {
			when = t.When.Format(time.RFC3339)
		}
		fmt.Fprintf(w, "  [%d] %s %s\n", i, when, t.Type.Abbrev)
	}
	fmt.Fprintln(w, "Extend:", l.Extend())
}
