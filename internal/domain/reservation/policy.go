package reservation

import (
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/amenity"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/errs"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/timeofday"
)

// Candidate is a reservation request under admissibility evaluation.
type Candidate struct {
	Household  Household
	Date       time.Time
	Start      timeofday.Minutes
	End        timeofday.Minutes
	PartySize  int
	GuestCount int
}

// Decision is the outcome of evaluating a candidate. Reason carries the
// human-readable cause of the first failing rule; Err is the matching
// validation sentinel.
type Decision struct {
	Admissible bool
	Reason     string
	Err        error
}

func admitted() Decision {
	return Decision{Admissible: true}
}

func rejected(err error) Decision {
	return Decision{Admissible: false, Reason: err.Error(), Err: err}
}

// Evaluate runs the six admissibility rules for a candidate against the
// amenity's ruleset and the amenity's already-held reservations (all
// households). Pure and synchronous over already-fetched data. The rules are
// independent; ordering only decides which single reason surfaces first.
func Evaluate(c Candidate, rules amenity.RuleSet, existing []*Reservation, now time.Time) Decision {
	checks := []func(Candidate, amenity.RuleSet, []*Reservation, time.Time) Decision{
		checkAdvanceWindow,
		checkDisabledDate,
		checkScheduleBounds,
		checkHouseholdCaps,
		checkSimultaneity,
		checkGuests,
	}
	for _, check := range checks {
		if d := check(c, rules, existing, now); !d.Admissible {
			return d
		}
	}
	return admitted()
}

// Rule 1: minimum/maximum advance-booking distance in whole days.
func checkAdvanceWindow(c Candidate, rules amenity.RuleSet, _ []*Reservation, now time.Time) Decision {
	days := daysBetween(now, c.Date)
	if days < rules.MinAdvanceDays {
		return rejected(errs.ErrInsufficientAdvance)
	}
	if rules.MaxAdvanceDays != amenity.Unlimited && days > rules.MaxAdvanceDays {
		return rejected(errs.ErrExcessiveAdvance)
	}
	return admitted()
}

// Rule 2: disabled weekday, disabled exact date, or intersection with a
// disabled sub-window of that weekday.
func checkDisabledDate(c Candidate, rules amenity.RuleSet, _ []*Reservation, _ time.Time) Decision {
	sched := rules.Schedule
	weekday := c.Date.Weekday()
	if sched.IsWeekdayDisabled(weekday) || sched.IsDateDisabled(c.Date) {
		return rejected(errs.ErrDateDisabled)
	}
	for _, w := range sched.WindowsDisabledFor(weekday) {
		if w.Intersects(c.Start, c.End) {
			return rejected(errs.ErrDateDisabled)
		}
	}
	return admitted()
}

// Rule 3: the candidate range must lie inside the resolved opening hours.
func checkScheduleBounds(c Candidate, rules amenity.RuleSet, _ []*Reservation, _ time.Time) Decision {
	if !rules.Schedule.HoursFor(c.Date.Weekday()).Contains(c.Start, c.End) {
		return rejected(errs.ErrOutsideSchedule)
	}
	return admitted()
}

// Rule 4: household day/ISO-week/month caps over non-rejected, non-cancelled
// reservations of the same amenity.
func checkHouseholdCaps(c Candidate, rules amenity.RuleSet, existing []*Reservation, _ time.Time) Decision {
	var day, week, month int
	candYear, candWeek := c.Date.ISOWeek()
	for _, r := range existing {
		if !r.Status().CountsTowardQuota() || !r.Household().Equal(c.Household) {
			continue
		}
		d := r.Slot().Date()
		if sameDay(d, c.Date) {
			day++
		}
		if y, w := d.ISOWeek(); y == candYear && w == candWeek {
			week++
		}
		if d.Year() == c.Date.Year() && d.Month() == c.Date.Month() {
			month++
		}
	}
	if rules.MaxPerDay != amenity.Unlimited && day >= rules.MaxPerDay {
		return rejected(errs.ErrDailyCapExceeded)
	}
	if rules.MaxPerWeek != amenity.Unlimited && week >= rules.MaxPerWeek {
		return rejected(errs.ErrWeeklyCapExceeded)
	}
	if rules.MaxPerMonth != amenity.Unlimited && month >= rules.MaxPerMonth {
		return rejected(errs.ErrMonthlyCapExceeded)
	}
	return admitted()
}

// Rule 5: time-range conflicts with other households. With overlap disallowed
// any intersecting reservation of another household rejects; with overlap
// allowed the count of distinct households holding intersecting reservations
// (candidate included) must not exceed the simultaneity cap.
func checkSimultaneity(c Candidate, rules amenity.RuleSet, existing []*Reservation, _ time.Time) Decision {
	households := map[string]bool{}
	for _, r := range existing {
		if !r.Status().CountsTowardQuota() {
			continue
		}
		slot := r.Slot()
		if !sameDay(slot.Date(), c.Date) {
			continue
		}
		if !(c.Start < slot.End() && slot.Start() < c.End) {
			continue
		}
		if r.Household().Equal(c.Household) {
			continue
		}
		if !rules.AllowOverlap {
			return rejected(errs.ErrTimeConflict)
		}
		households[r.Household().Key()] = true
	}
	if rules.AllowOverlap && rules.MaxSimultaneousHouseholds != amenity.Unlimited {
		if len(households)+1 > rules.MaxSimultaneousHouseholds {
			return rejected(errs.ErrTimeConflict)
		}
	}
	return admitted()
}

// Rule 6: guest rules.
func checkGuests(c Candidate, rules amenity.RuleSet, _ []*Reservation, _ time.Time) Decision {
	if c.GuestCount > 0 && !rules.AllowGuests {
		return rejected(errs.ErrGuestsNotAllowed)
	}
	if rules.MaxGuests != amenity.Unlimited && c.PartySize > rules.MaxGuests {
		return rejected(errs.ErrPartySizeExceeded)
	}
	return admitted()
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// daysBetween counts whole calendar days from now's day to date's day.
func daysBetween(now, date time.Time) int {
	a := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
