package amenity

import (
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/pkg/timeofday"
)

// Unlimited marks a numeric cap that is not enforced.
const Unlimited = 0

const DateKeyFormat = "2006-01-02"

// Window is a half-open [Open, Close) range of minutes within one day.
type Window struct {
	Open  timeofday.Minutes
	Close timeofday.Minutes
}

// Contains reports whether the [start, end) range lies fully inside w.
func (w Window) Contains(start, end timeofday.Minutes) bool {
	return start >= w.Open && end <= w.Close
}

// Intersects reports whether the [start, end) range overlaps w.
func (w Window) Intersects(start, end timeofday.Minutes) bool {
	return start < w.Close && w.Open < end
}

// Schedule resolves the opening hours of an amenity for a given weekday.
// Per-weekday overrides win over the weekday/weekend category defaults.
type Schedule struct {
	Weekday          Window
	Weekend          Window
	Overrides        map[time.Weekday]Window
	DisabledWeekdays map[time.Weekday]bool
	DisabledDates    map[string]bool
	DisabledWindows  map[time.Weekday][]Window
}

func (s Schedule) HoursFor(d time.Weekday) Window {
	if w, ok := s.Overrides[d]; ok {
		return w
	}
	if d == time.Saturday || d == time.Sunday {
		return s.Weekend
	}
	return s.Weekday
}

func (s Schedule) IsWeekdayDisabled(d time.Weekday) bool {
	return s.DisabledWeekdays[d]
}

func (s Schedule) IsDateDisabled(date time.Time) bool {
	return s.DisabledDates[date.Format(DateKeyFormat)]
}

// WindowsDisabledFor returns the ad-hoc closures configured for a weekday
// (e.g. "Tuesdays 13:00-14:00 closed for cleaning").
func (s Schedule) WindowsDisabledFor(d time.Weekday) []Window {
	return s.DisabledWindows[d]
}

// RuleSet is the reservation configuration attached to one amenity. Numeric
// caps use Unlimited (zero) when not enforced; quota scoping is always per
// household, not per user.
type RuleSet struct {
	MaxHoursPerReservation    int
	MaxPerDay                 int
	MaxPerWeek                int
	MaxPerMonth               int
	MaxSimultaneousHouseholds int
	MaxGuests                 int

	MinAdvanceDays       int
	MaxAdvanceDays       int
	MinCancelNoticeHours int

	AllowGuests     bool
	RequireApproval bool
	AllowOverlap    bool
	RequireKey      bool

	Schedule Schedule
}

// MaxDurationMinutes converts the hour cap to minutes; zero means unlimited.
func (r RuleSet) MaxDurationMinutes() int {
	if r.MaxHoursPerReservation == Unlimited {
		return Unlimited
	}
	return r.MaxHoursPerReservation * 60
}

// CancelDeadline is the last instant at which a resident may still cancel a
// reservation starting at start.
func (r RuleSet) CancelDeadline(start time.Time) time.Time {
	return start.Add(-time.Duration(r.MinCancelNoticeHours) * time.Hour)
}
