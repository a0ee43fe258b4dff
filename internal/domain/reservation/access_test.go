//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/reservation"
	"github.com/Gera09az/zentry-web-sub000/tests/common/builder"

	"github.com/stretchr/testify/assert"
)

func TestAccessOpenBoundaries(t *testing.T) {
	start := time.Date(2026, 9, 10, 14, 0, 0, 0, time.UTC)
	duration := time.Hour

	cases := []struct {
		name string
		now  time.Time
		want bool
	}{
		{name: "sixteen minutes early", now: start.Add(-16 * time.Minute), want: false},
		{name: "exactly fifteen minutes early", now: start.Add(-15 * time.Minute), want: true},
		{name: "at start", now: start, want: true},
		{name: "at end", now: start.Add(duration), want: true},
		{name: "one minute past end", now: start.Add(duration + time.Minute), want: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, reservation.AccessOpen(tc.now, start, duration))
		})
	}
}

func TestAccessStatusLadder(t *testing.T) {
	day := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

	build := func(status reservation.Status) *reservation.Reservation {
		return builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
			b.Date = day
			b.Start = 14 * 60
			b.End = 15 * 60
			b.Status = status
		}).Build()
	}

	clockAt := func(hour, minute int) time.Time {
		return time.Date(2026, 9, 10, hour, minute, 0, 0, time.UTC)
	}

	cases := []struct {
		name   string
		status reservation.Status
		now    time.Time
		want   reservation.DisplayStatus
	}{
		{name: "scheduled before the window", status: reservation.StatusApproved, now: clockAt(13, 44), want: reservation.DisplayScheduled},
		{name: "access opens fifteen minutes early", status: reservation.StatusApproved, now: clockAt(13, 46), want: reservation.DisplayAccessOpen},
		{name: "access open during the slot", status: reservation.StatusApproved, now: clockAt(14, 30), want: reservation.DisplayAccessOpen},
		{name: "window precedence beats in_progress", status: reservation.StatusInProgress, now: clockAt(14, 30), want: reservation.DisplayAccessOpen},
		{name: "in progress after the window", status: reservation.StatusInProgress, now: clockAt(15, 30), want: reservation.DisplayInProgress},
		{name: "finalized after the window", status: reservation.StatusFinalized, now: clockAt(15, 30), want: reservation.DisplayFinalized},
		{name: "completed when the slot elapsed", status: reservation.StatusApproved, now: clockAt(16, 0), want: reservation.DisplayCompleted},
		{name: "scheduled day before", status: reservation.StatusApproved, now: time.Date(2026, 9, 9, 14, 0, 0, 0, time.UTC), want: reservation.DisplayScheduled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := build(tc.status)
			assert.Equal(t, tc.want, r.AccessStatus(tc.now))
		})
	}
}
