package rules

import (
	"time"
)

// scanWindow bounds the distance between a wall clock read as UTC and the
// instant of any transition that can affect it. Real offsets stay well
// inside ±18h.
const scanWindow = 36 * time.Hour

// maxSegments guards the ZoneBounds walk against a location that reports
// an implausible number of zone changes inside the scan window.
const maxSegments = 256

// Zone is a loaded rule set for one timezone identifier.
type Zone struct {
	name string
	loc  *time.Location
}

// NewZone wraps loc. The name is the identifier the zone was requested by,
// which may differ from loc.String() for aliases.
func NewZone(name string, loc *time.Location) *Zone {
	return &Zone{name: name, loc: loc}
}

func (z *Zone) Name() string {
	return z.name
}

func (z *Zone) Location() *time.Location {
	return z.loc
}

// Transition is a change of UTC offset. Offsets are seconds east of UTC.
type Transition struct {
	Instant      time.Time
	OffsetBefore int
	OffsetAfter  int
}

// IsGap reports whether wall clocks jump forward, skipping local times.
func (t Transition) IsGap() bool {
	return t.OffsetAfter > t.OffsetBefore
}

// IsOverlap reports whether wall clocks fall back, repeating local times.
func (t Transition) IsOverlap() bool {
	return t.OffsetAfter < t.OffsetBefore
}

// DateTimeBefore is the wall clock of the transition instant in the old
// offset, expressed as a UTC time carrying the naive fields.
func (t Transition) DateTimeBefore() time.Time {
	return t.Instant.UTC().Add(time.Duration(t.OffsetBefore) * time.Second)
}

// DateTimeAfter is the wall clock of the transition instant in the new
// offset, expressed as a UTC time carrying the naive fields.
func (t Transition) DateTimeAfter() time.Time {
	return t.Instant.UTC().Add(time.Duration(t.OffsetAfter) * time.Second)
}

// Covers reports whether wall, a naive date-time carried in UTC, falls in
// the local interval the transition skips or repeats.
func (t Transition) Covers(wall time.Time) bool {
	lo, hi := t.DateTimeBefore(), t.DateTimeAfter()
	if hi.Before(lo) {
		lo, hi = hi, lo
	}
	return !wall.Before(lo) && wall.Before(hi)
}

// TransitionAt returns the transition whose skipped or repeated local
// interval contains wall, a naive date-time carried in UTC. ok is false
// when the wall clock maps to exactly one instant.
func (z *Zone) TransitionAt(wall time.Time) (tr Transition, ok bool) {
	for _, t := range z.Transitions(wall.Add(-scanWindow), wall.Add(scanWindow)) {
		if t.Covers(wall) {
			return t, true
		}
	}
	return Transition{}, false
}

// Transitions lists the offset changes in (from, to]. Boundaries where only
// the abbreviation or the DST flag changes are not transitions.
func (z *Zone) Transitions(from, to time.Time) []Transition {
	var out []Transition
	t := from.In(z.loc)
	for i := 0; i < maxSegments; i++ {
		_, end := t.ZoneBounds()
		if end.IsZero() || end.After(to) {
			break
		}
		_, before := t.Zone()
		_, after := end.Zone()
		if before != after {
			out = append(out, Transition{Instant: end.UTC(), OffsetBefore: before, OffsetAfter: after})
		}
		t = end
	}
	return out
}
