//go:build unit || e2e

package builder

import (
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/amenity"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/timeofday"
)

// RuleSetBuilder assembles amenity rulesets with permissive defaults: open
// every day 06:00-22:00, no caps, overlap allowed, no approval, no key.
type RuleSetBuilder struct {
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

	Weekday          amenity.Window
	Weekend          amenity.Window
	Overrides        map[time.Weekday]amenity.Window
	DisabledWeekdays map[time.Weekday]bool
	DisabledDates    map[string]bool
	DisabledWindows  map[time.Weekday][]amenity.Window
}

func NewRuleSetBuilder() *RuleSetBuilder {
	open := amenity.Window{Open: timeofday.Minutes(6 * 60), Close: timeofday.Minutes(22 * 60)}
	return &RuleSetBuilder{
		Weekday:          open,
		Weekend:          open,
		AllowGuests:      true,
		AllowOverlap:     true,
		Overrides:        map[time.Weekday]amenity.Window{},
		DisabledWeekdays: map[time.Weekday]bool{},
		DisabledDates:    map[string]bool{},
		DisabledWindows:  map[time.Weekday][]amenity.Window{},
	}
}

func (b *RuleSetBuilder) With(mutate func(*RuleSetBuilder)) *RuleSetBuilder {
	mutate(b)
	return b
}

func (b *RuleSetBuilder) Build() amenity.RuleSet {
	return amenity.RuleSet{
		MaxHoursPerReservation:    b.MaxHoursPerReservation,
		MaxPerDay:                 b.MaxPerDay,
		MaxPerWeek:                b.MaxPerWeek,
		MaxPerMonth:               b.MaxPerMonth,
		MaxSimultaneousHouseholds: b.MaxSimultaneousHouseholds,
		MaxGuests:                 b.MaxGuests,
		MinAdvanceDays:            b.MinAdvanceDays,
		MaxAdvanceDays:            b.MaxAdvanceDays,
		MinCancelNoticeHours:      b.MinCancelNoticeHours,
		AllowGuests:               b.AllowGuests,
		RequireApproval:           b.RequireApproval,
		AllowOverlap:              b.AllowOverlap,
		RequireKey:                b.RequireKey,
		Schedule: amenity.Schedule{
			Weekday:          b.Weekday,
			Weekend:          b.Weekend,
			Overrides:        b.Overrides,
			DisabledWeekdays: b.DisabledWeekdays,
			DisabledDates:    b.DisabledDates,
			DisabledWindows:  b.DisabledWindows,
		},
	}
}
