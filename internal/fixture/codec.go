package fixture

import (
	"strings"

	"cloud.google.com/go/civil"
	"github.com/pkg/errors"

	"github.com/mathieuprog/tzdb-test/internal/resolver"
)

// FormatEntry renders e as one fixture line:
//
//	zone;local;ok;dateTime;abbr;shifted;shiftedAbbr
//	zone;local;gap|ambiguous;before;beforeAbbr;after;afterAbbr;shifted;shiftedAbbr
func FormatEntry(e resolver.Entry) string {
	fields := make([]string, 0, 9)
	fields = append(fields, e.Zone, e.Local.String(), e.Case.String())
	for _, s := range e.Offsets {
		fields = append(fields, s.DateTime, s.Abbreviation)
	}
	fields = append(fields, e.Shifted.DateTime, e.Shifted.Abbreviation)
	return strings.Join(fields, Separator)
}

// ParseEntry is the inverse of FormatEntry.
func ParseEntry(line string) (resolver.Entry, error) {
	fields := strings.Split(line, Separator)
	if len(fields) < 3 {
		return resolver.Entry{}, errors.Errorf("fixture line %q: too few fields", line)
	}
	c, err := resolver.ParseCase(fields[2])
	if err != nil {
		return resolver.Entry{}, errors.Wrapf(err, "fixture line %q", line)
	}
	want := 3 + 2*c.Stamps() + 2
	if len(fields) != want {
		return resolver.Entry{}, errors.Errorf("fixture line %q: %s entry has %d fields, want %d", line, c, len(fields), want)
	}
	local, err := civil.ParseDateTime(fields[1])
	if err != nil {
		return resolver.Entry{}, errors.Wrapf(err, "fixture line %q", line)
	}

	e := resolver.Entry{Zone: fields[0], Local: local, Case: c}
	for i := 0; i < c.Stamps(); i++ {
		e.Offsets = append(e.Offsets, resolver.Stamp{DateTime: fields[3+2*i], Abbreviation: fields[4+2*i]})
	}
	e.Shifted = resolver.Stamp{DateTime: fields[want-2], Abbreviation: fields[want-1]}
	if err := e.Validate(); err != nil {
		return resolver.Entry{}, errors.Wrapf(err, "fixture line %q", line)
	}
	stamps := append([]resolver.Stamp{e.Shifted}, e.Offsets...)
	for _, s := range stamps {
		if _, err := s.Time(); err != nil {
			return resolver.Entry{}, errors.Wrapf(err, "fixture line %q", line)
		}
	}
	return e, nil
}
