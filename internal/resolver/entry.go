package resolver

import (
	"cloud.google.com/go/civil"
	"github.com/pkg/errors"
)

// Case classifies a local date-time in a zone.
type Case int

const (
	// CaseOK is a local time that maps to exactly one instant.
	CaseOK Case = iota
	// CaseGap is a local time skipped by a forward shift.
	CaseGap
	// CaseAmbiguous is a local time repeated by a backward shift.
	CaseAmbiguous
)

var caseNames = [...]string{
	CaseOK:        "ok",
	CaseGap:       "gap",
	CaseAmbiguous: "ambiguous",
}

func (c Case) String() string {
	if c < 0 || int(c) >= len(caseNames) {
		return "invalid"
	}
	return caseNames[c]
}

// Stamps is the number of offset stamps an entry of this case carries.
func (c Case) Stamps() int {
	if c == CaseOK {
		return 1
	}
	return 2
}

// ParseCase is the inverse of Case.String.
func ParseCase(s string) (Case, error) {
	for c, name := range caseNames {
		if name == s {
			return Case(c), nil
		}
	}
	return 0, errors.Errorf("unknown case %q", s)
}

// Entry is the resolved fixture record for one zone and local date-time.
// Offsets holds the single stamp of an ok entry, or the before and after
// stamps of a gap or ambiguous entry. Shifted is the local date-time read
// as UTC and converted into the zone.
type Entry struct {
	Zone    string
	Local   civil.DateTime
	Case    Case
	Offsets []Stamp
	Shifted Stamp
}

// Validate checks the stamp count against the case.
func (e Entry) Validate() error {
	if e.Zone == "" {
		return errors.New("entry has no zone")
	}
	if e.Case.String() == "invalid" {
		return errors.Errorf("entry has invalid case %d", int(e.Case))
	}
	if len(e.Offsets) != e.Case.Stamps() {
		return errors.Errorf("%s entry carries %d offsets, want %d", e.Case, len(e.Offsets), e.Case.Stamps())
	}
	return nil
}

// Before is the pre-transition stamp of a gap or ambiguous entry, and the
// only stamp of an ok entry.
func (e Entry) Before() Stamp {
	return e.Offsets[0]
}

// After is the post-transition stamp of a gap or ambiguous entry, and the
// only stamp of an ok entry.
func (e Entry) After() Stamp {
	return e.Offsets[len(e.Offsets)-1]
}
