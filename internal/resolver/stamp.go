package resolver

import (
	"time"

	"github.com/pkg/errors"
)

const (
	// OffsetLayout renders an instant with its numeric UTC offset. The
	// "-07:00" element prints +00:00 for UTC, never Z.
	OffsetLayout = "2006-01-02T15:04:05.999999999-07:00"
	// OffsetSecondsLayout is used when the offset is not a whole minute,
	// as with local mean time before standard zones.
	OffsetSecondsLayout = "2006-01-02T15:04:05.999999999-07:00:00"
)

// Stamp is an instant rendered in a zone: the date-time with its offset
// and the zone's abbreviation for that instant.
type Stamp struct {
	DateTime     string
	Abbreviation string
}

// FormatInstant renders t in loc. Every offset date-time of a fixture goes
// through here.
func FormatInstant(t time.Time, loc *time.Location) Stamp {
	t = t.In(loc)
	_, offset := t.Zone()
	layout := OffsetLayout
	if offset%60 != 0 {
		layout = OffsetSecondsLayout
	}
	return Stamp{
		DateTime:     t.Format(layout),
		Abbreviation: t.Format("MST"),
	}
}

// Time parses the DateTime of s back into an instant.
func (s Stamp) Time() (time.Time, error) {
	t, err := time.Parse(OffsetLayout, s.DateTime)
	if err == nil {
		return t, nil
	}
	t, err2 := time.Parse(OffsetSecondsLayout, s.DateTime)
	if err2 == nil {
		return t, nil
	}
	return time.Time{}, errors.Wrapf(err, "offset date-time %q", s.DateTime)
}

// Offset returns the UTC offset, in seconds east, that s was rendered with.
func (s Stamp) Offset() (int, error) {
	t, err := s.Time()
	if err != nil {
		return 0, err
	}
	_, off := t.Zone()
	return off, nil
}
