// Package tzposix decodes the POSIX TZ strings found in TZif footers
// (for example "EST5EDT,M3.2.0,M11.1.0") and renders them as prose.
package tzposix

import (
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// The regex captures:
// 1. Standard Time Abbr (STD)
// 2. STD Offset
// 3. Optional DST Abbr (DST)
// 4. Optional DST Offset (assumed +1 hour if absent)
// 5. Optional DST Start Rule
// 6. Optional DST End Rules
var tzRegex = regexp.MustCompile(`^(?P<StdName>[[:alpha:]]{3,}|<[[:alnum:]+-]+>)` +
	`(?P<StdOffset>[-+]?[0-9]+(?::[0-9]+){0,2})` +
	`(?P<DstName>[[:alpha:]]{3,}|<[[:alnum:]+-]+>)?` +
	`(?P<DstOffset>[-+]?[0-9]+(?::[0-9]+){0,2})?` +
	`,?(?P<StartRule>(?:J?[0-9]+|M[0-9]+(?:\.[0-9]+){0,2})(?:/[+-]?[0-9]+(?::[0-9]+){0,2})?)?` +
	`,?(?P<EndRule>(?:J?[0-9]+|M[0-9]+(?:\.[0-9]+){0,2})(?:/[+-]?[0-9]+(?::[0-9]+){0,2})?)?$`)

// Rule is a decoded POSIX TZ string. Offsets keep the POSIX sign:
// seconds WEST of UTC.
type Rule struct {
	StdAbbr   string
	StdOffset int
	DstAbbr   string
	DstOffset int
	Start     string
	End       string
}

// HasDST reports whether the rule names a daylight saving time.
func (r Rule) HasDST() bool {
	return r.DstAbbr != ""
}

// Parse decodes posixTZ.
func Parse(posixTZ string) (Rule, error) {
	matches := tzRegex.FindStringSubmatch(posixTZ)
	if matches == nil {
		return Rule{}, fmt.Errorf("invalid POSIX TZ string format: %s", posixTZ)
	}

	r := Rule{
		StdAbbr: matches[1],
		DstAbbr: matches[3],
		Start:   matches[5],
		End:     matches[6],
	}
	var err error
	if r.StdOffset, err = parseOffset(matches[2]); err != nil {
		return Rule{}, fmt.Errorf("invalid standard offset: %w", err)
	}
	if r.DstAbbr == "" {
		return r, nil
	}

	// POSIX default is one hour ahead, which is one hour less west.
	r.DstOffset = r.StdOffset - 3600
	if matches[4] != "" {
		if r.DstOffset, err = parseOffset(matches[4]); err != nil {
			return Rule{}, fmt.Errorf("invalid daylight offset: %w", err)
		}
	}
	if (r.Start == "") != (r.End == "") {
		slog.Warn("stand alone TZ rule", "tz", posixTZ)
	}
	return r, nil
}

// DecodeTZ returns short standard, daylight and rule descriptions. The
// daylight and rule strings are empty for zones without DST.
func DecodeTZ(posixTZ string) (string, string, string, error) {
	r, err := Parse(posixTZ)
	if err != nil {
		return "", "", "", err
	}

	stdDesc := fmt.Sprintf("%s (UTC%s)", r.StdAbbr, formatOffset(r.StdOffset))
	if !r.HasDST() {
		return stdDesc, "", "", nil
	}
	dstDesc := fmt.Sprintf("%s (UTC%s)", r.DstAbbr, formatOffset(r.DstOffset))
	rulesDesc := ""
	if r.Start != "" && r.End != "" {
		rulesDesc = fmt.Sprintf("Starts %s, Ends %s", parseRule(r.Start), parseRule(r.End))
	}
	return stdDesc, dstDesc, rulesDesc, nil
}

// HumanReadableTZ parses a POSIX TZ string and returns a human-readable description.
// It handles a common format like "EST5EDT,M3.2.0/02:00:00,M11.1.0/02:00:00"
func HumanReadableTZ(posixTZ string) (string, error) {
	r, err := Parse(posixTZ)
	if err != nil {
		return "", err
	}

	stdDesc := fmt.Sprintf("Standard Time: %s (UTC%s)", r.StdAbbr, formatOffset(r.StdOffset))
	if !r.HasDST() {
		return stdDesc + "\n(No Daylight Saving Time rules)", nil
	}
	dstDesc := fmt.Sprintf("Daylight Time: %s (UTC%s)", r.DstAbbr, formatOffset(r.DstOffset))

	rulesDesc := ""
	if r.Start != "" && r.End != "" {
		rulesDesc = fmt.Sprintf("\nRules: Starts %s, Ends %s", parseRule(r.Start), parseRule(r.End))
	}
	return fmt.Sprintf("%s\n%s%s", stdDesc, dstDesc, rulesDesc), nil
}

// parseOffset converts a POSIX offset string (e.g., "5", "-10:30") to seconds west of UTC
func parseOffset(offsetStr string) (int, error) {
	// "EST5" means 5 hours West of UTC.
	sign := 1
	if strings.HasPrefix(offsetStr, "+") {
		offsetStr = strings.TrimPrefix(offsetStr, "+")
	} else if strings.HasPrefix(offsetStr, "-") {
		offsetStr = strings.TrimPrefix(offsetStr, "-")
		sign = -1
	}

	parts := strings.Split(offsetStr, ":")
	fields := [3]int{}
	for i := 0; i < len(parts) && i < 3; i++ {
		v, err := strconv.Atoi(parts[i])
		if err != nil {
			return 0, err
		}
		fields[i] = v
	}
	return sign * (fields[0]*3600 + fields[1]*60 + fields[2]), nil
}

// formatOffset converts seconds west of UTC to " +H:M" or " -H:M"
func formatOffset(offsetSeconds int) string {
	sign := "+"
	if offsetSeconds > 0 {
		sign = "-" // POSIX is backwards, so >0 seconds is actually UTC-X
	}
	absOffset := offsetSeconds
	if absOffset < 0 {
		absOffset = -absOffset
	}

	hours := absOffset / 3600
	minutes := (absOffset % 3600) / 60
	seconds := absOffset % 60
	if seconds != 0 {
		return fmt.Sprintf(" %s%02d:%02d:%02d", sign, hours, minutes, seconds)
	}
	return fmt.Sprintf(" %s%02d:%02d", sign, hours, minutes)
}

var (
	months   = []string{"January", "February", "March", "April", "May", "June", "July", "August", "September", "October", "November", "December"}
	weekDesc = map[string]string{"1": "first", "2": "second", "3": "third", "4": "fourth", "5": "last"}
	dayDesc  = map[string]string{"0": "Sunday", "1": "Monday", "2": "Tuesday", "3": "Wednesday", "4": "Thursday", "5": "Friday", "6": "Saturday"}
)

// parseRule converts a POSIX rule string (e.g., "M3.2.0/02:00:00") to a description
func parseRule(rule string) string {
	switch {
	case strings.HasPrefix(rule, "M"):
		parts := strings.Split(strings.TrimPrefix(rule, "M"), ".")
		if len(parts) < 3 {
			return fmt.Sprintf("Rule: %s", rule)
		}
		month, week, day := parts[0], parts[1], parts[2]
		hours, minutes, seconds := 2, 0, 0
		if d, timeStr, found := strings.Cut(day, "/"); found {
			day = d
			if timeStr == "50" {
				// Asia/Gaza and Asia/Hebron: 50 minutes past midnight.
				hours, minutes = 0, 50
			} else if timeStr != "" {
				tparts := strings.Split(timeStr, ":")
				hours = atoi(tparts[0])
				if len(tparts) > 1 {
					minutes = atoi(tparts[1])
				}
				if len(tparts) > 2 {
					seconds = atoi(tparts[2])
				}
			}
		}

		var timeStr string
		switch hours {
		case 26:
			// Asia/Jerusalem M3.4.4/26: 02:00 on the Friday on or after
			// March 23, which no week number can express.
			return "on the Friday on or after March 23rd at 02:00:00"
		case 24:
			timeStr = "midnight of the next day"
		default:
			t := time.Date(0, 0, 0, hours, minutes, seconds, 0, time.UTC)
			timeStr = t.Format("15:04:05")
		}

		m := atoi(month)
		if m < 1 || m > len(months) {
			return fmt.Sprintf("Rule: %s", rule)
		}
		return fmt.Sprintf("on the %s %s of %s at %s", weekDesc[week], dayDesc[day], months[m-1], timeStr)
	case strings.HasPrefix(rule, "J"):
		julianDay := strings.TrimPrefix(rule, "J")
		if julianDay == "365/25" {
			return "at the end of the year"
		}
		return fmt.Sprintf("on Julian Day %s", julianDay)
	default:
		if rule == "0/0" {
			return "from the start of the year"
		}
		return fmt.Sprintf("on Julian Day %s", rule)
	}
}

func atoi(s string) int {
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return 0
}
