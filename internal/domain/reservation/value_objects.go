package reservation

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/pkg/timeofday"

	"github.com/google/uuid"
)

var (
	ErrInvalidSlot         = errors.New("start time must be before end time")
	ErrSlotOutOfDay        = errors.New("slot must fall within a single day")
	ErrSlotTooLong         = errors.New("slot exceeds the maximum reservation length")
	ErrIncompleteHousehold = errors.New("household requires community, street and house number")
)

// Household is the quota-scoping key: all residents of one address share it.
// It is derived from each reservation's denormalized address fields, never
// stored on its own.
type Household struct {
	communityID string
	street      string
	houseNumber string
}

func NewHousehold(communityID, street, houseNumber string) (Household, error) {
	communityID = strings.TrimSpace(communityID)
	street = strings.TrimSpace(street)
	houseNumber = strings.TrimSpace(houseNumber)
	if communityID == "" || street == "" || houseNumber == "" {
		return Household{}, ErrIncompleteHousehold
	}
	return Household{communityID: communityID, street: street, houseNumber: houseNumber}, nil
}

func (h Household) CommunityID() string { return h.communityID }
func (h Household) Street() string      { return h.street }
func (h Household) HouseNumber() string { return h.houseNumber }

// Key is a stable string form usable as a map key.
func (h Household) Key() string {
	return h.communityID + "|" + h.street + "|" + h.houseNumber
}

func (h Household) Equal(other Household) bool {
	return h == other
}

func (h Household) String() string {
	return fmt.Sprintf("%s %s (%s)", h.street, h.houseNumber, h.communityID)
}

// Slot is a reservation's day plus its start/end as minutes of that day.
type Slot struct {
	date  time.Time
	start timeofday.Minutes
	end   timeofday.Minutes
}

// NewSlot builds a slot on the calendar day of date (time-of-day portion is
// discarded). Start must precede end and both must fall within the day.
func NewSlot(date time.Time, start, end timeofday.Minutes) (Slot, error) {
	if !start.Valid() || end < 0 || end > 24*60 {
		return Slot{}, ErrSlotOutOfDay
	}
	if start >= end {
		return Slot{}, ErrInvalidSlot
	}
	day := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	return Slot{date: day, start: start, end: end}, nil
}

func (s Slot) Date() time.Time          { return s.date }
func (s Slot) Start() timeofday.Minutes { return s.start }
func (s Slot) End() timeofday.Minutes   { return s.end }
func (s Slot) DurationMinutes() int     { return int(s.end - s.start) }
func (s Slot) Duration() time.Duration  { return time.Duration(s.DurationMinutes()) * time.Minute }
func (s Slot) Weekday() time.Weekday    { return s.date.Weekday() }
func (s Slot) DateKey() string          { return s.date.Format("2006-01-02") }

// StartAt anchors the slot's start on its calendar day.
func (s Slot) StartAt() time.Time {
	return s.start.At(s.date)
}

func (s Slot) EndAt() time.Time {
	return s.end.At(s.date)
}

// SameDay reports whether both slots fall on one calendar day.
func (s Slot) SameDay(other Slot) bool {
	return s.date.Equal(other.date)
}

// Overlaps is the classic open-interval intersection test:
// start_a < end_b AND start_b < end_a, on the same day only.
func (s Slot) Overlaps(other Slot) bool {
	return s.SameDay(other) && s.start < other.end && other.start < s.end
}

// Identical reports bit-for-bit equality of the (start, end) pair, the
// grouping criterion for display blocks. Overlapping-but-different slots are
// conflicts, never the same block.
func (s Slot) Identical(other Slot) bool {
	return s.SameDay(other) && s.start == other.start && s.end == other.end
}

// Cancellation records who cancelled a reservation, when and why.
type Cancellation struct {
	ActorID uuid.UUID
	At      time.Time
	Reason  string
}

// Rejection records who rejected a reservation, when and why. The reason is
// mandatory at the transition guard.
type Rejection struct {
	ActorID uuid.UUID
	At      time.Time
	Reason  string
}
