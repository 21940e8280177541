// Package resolver classifies a local date-time in a timezone as ok, gap
// or ambiguous and renders the offsets a fixture records for it.
package resolver

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/mathieuprog/tzdb-test/internal/rules"
)

// GapProbe is subtracted from the start of a gap to land on the last
// instant of the old offset. It must stay below the shortest transition
// and below the input resolution, which is one minute.
const GapProbe = time.Microsecond

// Resolver resolves local date-times against the zones of a provider. It
// holds no mutable state of its own and is safe for concurrent use when
// the provider is.
type Resolver struct {
	provider rules.Provider
}

func New(provider rules.Provider) *Resolver {
	return &Resolver{provider: provider}
}

// classification is the outcome of looking a wall clock up in a zone:
// unambiguous, gap or overlap.
type classification interface {
	classification()
}

type unambiguous struct{ instant time.Time }

type gap struct{ transition rules.Transition }

type overlap struct{ transition rules.Transition }

func (unambiguous) classification() {}
func (gap) classification()         {}
func (overlap) classification()     {}

// Resolve classifies local in the named zone and renders its entry.
func (r *Resolver) Resolve(zone string, local civil.DateTime) (Entry, error) {
	z, err := r.provider.LoadZone(zone)
	if err != nil {
		return Entry{}, &UnknownTimezoneError{Zone: zone, Err: err}
	}
	loc := z.Location()
	wall := wallClock(local)

	c, err := classify(z, local)
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{Zone: zone, Local: local}
	switch c := c.(type) {
	case unambiguous:
		entry.Case = CaseOK
		entry.Offsets = []Stamp{FormatInstant(c.instant, loc)}
	case gap:
		// The local time has no instant. Report the offsets on either side
		// of the gap at the nearest instants that exist.
		entry.Case = CaseGap
		entry.Offsets = []Stamp{
			FormatInstant(c.transition.Instant.Add(-GapProbe), loc),
			FormatInstant(c.transition.Instant, loc),
		}
	case overlap:
		// Both offsets are valid for the same wall clock.
		entry.Case = CaseAmbiguous
		entry.Offsets = []Stamp{
			FormatInstant(atOffset(wall, c.transition.OffsetBefore), loc),
			FormatInstant(atOffset(wall, c.transition.OffsetAfter), loc),
		}
	default:
		return Entry{}, &UnclassifiableTransitionError{Zone: zone, Local: local}
	}

	// wall already is the local fields read as UTC.
	entry.Shifted = FormatInstant(wall, loc)
	return entry, nil
}

// zoneRules is the part of a loaded zone that classify consults.
// *rules.Zone implements it.
type zoneRules interface {
	Name() string
	Location() *time.Location
	TransitionAt(wall time.Time) (rules.Transition, bool)
}

func classify(z zoneRules, local civil.DateTime) (classification, error) {
	tr, ok := z.TransitionAt(wallClock(local))
	switch {
	case !ok:
		return unambiguous{instant: local.In(z.Location())}, nil
	case tr.IsGap():
		return gap{transition: tr}, nil
	case tr.IsOverlap():
		return overlap{transition: tr}, nil
	}
	return nil, &UnclassifiableTransitionError{Zone: z.Name(), Local: local, Transition: tr}
}

// wallClock carries the naive fields of local in a UTC time.
func wallClock(local civil.DateTime) time.Time {
	return local.In(time.UTC)
}

// atOffset is the instant at which a clock at offset seconds east of UTC
// reads wall.
func atOffset(wall time.Time, offset int) time.Time {
	return wall.Add(-time.Duration(offset) * time.Second)
}
