// Package timeofday decodes the heterogeneous time-of-day strings found in
// reservation and ruleset documents into canonical minutes since midnight.
package timeofday

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Minutes is a canonical minute-of-day value in [0, 1440).
type Minutes int

// strictPattern accepts "HH:MM", "H:MM" and "H:MM AM"/"H:MMpm" style values.
var strictPattern = regexp.MustCompile(`^\s*(\d{1,2}):(\d{2})\s*([AaPp][Mm])?\s*$`)

// referenceDate seeds the fallback parse so that only the clock portion of
// the input matters.
const referenceDate = "2006-01-02"

var fallbackLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 3:04 PM",
	"2006-01-02 3:04PM",
}

// DecodeError reports an unparseable time string. Affected records are
// excluded from block grouping and quota counting, never fatal.
type DecodeError struct {
	Input string
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("undecodable time of day: %q", e.Input)
}

// Parse decodes s into minutes since midnight. The strict pattern is tried
// first; on mismatch a generic date/time parse seeded with a fixed reference
// date is attempted. Canonicalization: with an AM/PM marker 12 AM maps to 0
// and 12 PM stays 12; without a marker the literal hour is taken as already
// being in 24-hour form.
func Parse(s string) (Minutes, error) {
	if m := strictPattern.FindStringSubmatch(s); m != nil {
		hour, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, &DecodeError{Input: s}
		}
		minute, err := strconv.Atoi(m[2])
		if err != nil {
			return 0, &DecodeError{Input: s}
		}
		if minute > 59 {
			return 0, &DecodeError{Input: s}
		}

		marker := strings.ToUpper(m[3])
		switch marker {
		case "AM":
			if hour < 1 || hour > 12 {
				return 0, &DecodeError{Input: s}
			}
			if hour == 12 {
				hour = 0
			}
		case "PM":
			if hour < 1 || hour > 12 {
				return 0, &DecodeError{Input: s}
			}
			if hour != 12 {
				hour += 12
			}
		default:
			if hour > 23 {
				return 0, &DecodeError{Input: s}
			}
		}
		return Minutes(hour*60 + minute), nil
	}

	return parseFallback(s)
}

func parseFallback(s string) (Minutes, error) {
	seeded := referenceDate + " " + strings.TrimSpace(s)
	for _, layout := range fallbackLayouts {
		t, err := time.Parse(layout, seeded)
		if err != nil {
			continue
		}
		return Minutes(t.Hour()*60 + t.Minute()), nil
	}
	return 0, &DecodeError{Input: s}
}

// Format renders m as "HH:MM" in 24-hour form. Parse(Format(m)) == m for all
// valid m.
func (m Minutes) Format() string {
	return fmt.Sprintf("%02d:%02d", int(m)/60, int(m)%60)
}

func (m Minutes) Hour() int   { return int(m) / 60 }
func (m Minutes) Minute() int { return int(m) % 60 }

// Valid reports whether m falls inside a single day.
func (m Minutes) Valid() bool {
	return m >= 0 && m < 24*60
}

// At anchors m onto the calendar day of d in d's location.
func (m Minutes) At(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), m.Hour(), m.Minute(), 0, 0, d.Location())
}
