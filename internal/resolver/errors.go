package resolver

import (
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/mathieuprog/tzdb-test/internal/rules"
)

// UnknownTimezoneError reports an identifier the rule provider cannot load.
type UnknownTimezoneError struct {
	Zone string
	Err  error
}

func (e *UnknownTimezoneError) Error() string {
	return fmt.Sprintf("unknown timezone %q: %v", e.Zone, e.Err)
}

func (e *UnknownTimezoneError) Unwrap() error {
	return e.Err
}

// UnclassifiableTransitionError reports a transition that neither skips nor
// repeats local time. A correct rule engine never produces one.
type UnclassifiableTransitionError struct {
	Zone       string
	Local      civil.DateTime
	Transition rules.Transition
}

func (e *UnclassifiableTransitionError) Error() string {
	return fmt.Sprintf("%s %s: transition at %s is neither a gap nor an overlap (offset %d -> %d)",
		e.Zone, e.Local, e.Transition.Instant.Format("2006-01-02T15:04:05Z07:00"),
		e.Transition.OffsetBefore, e.Transition.OffsetAfter)
}
