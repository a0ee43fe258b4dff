//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/reservation"
	"github.com/Gera09az/zentry-web-sub000/tests/common/builder"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPending() *reservation.Reservation {
	return builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
		b.Status = reservation.StatusPending
	}).Build()
}

func TestNewReservation(t *testing.T) {
	household, err := reservation.NewHousehold("community-1", "Roble", "12")
	require.NoError(t, err)

	day := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	slot, err := reservation.NewSlot(day, 10*60, 12*60)
	require.NoError(t, err)

	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	t.Run("pending when approval is required", func(t *testing.T) {
		rules := builder.NewRuleSetBuilder().With(func(b *builder.RuleSetBuilder) {
			b.RequireApproval = true
		}).Build()

		r, err := reservation.NewReservation(uuid.New(), household, uuid.New(), slot, 4, 0, decimal.NewFromInt(250), rules, now)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusPending, r.Status())
		assert.Nil(t, r.Key())
	})

	t.Run("auto-approved with key record when no approval needed", func(t *testing.T) {
		rules := builder.NewRuleSetBuilder().With(func(b *builder.RuleSetBuilder) {
			b.RequireKey = true
		}).Build()

		r, err := reservation.NewReservation(uuid.New(), household, uuid.New(), slot, 4, 0, decimal.NewFromInt(250), rules, now)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusApproved, r.Status())
		require.NotNil(t, r.Key())
		assert.Equal(t, slot.EndAt(), r.Key().ReturnDeadline())
	})

	t.Run("slot over the hour cap", func(t *testing.T) {
		rules := builder.NewRuleSetBuilder().With(func(b *builder.RuleSetBuilder) {
			b.MaxHoursPerReservation = 1
		}).Build()

		_, err := reservation.NewReservation(uuid.New(), household, uuid.New(), slot, 4, 0, decimal.NewFromInt(250), rules, now)
		assert.ErrorIs(t, err, reservation.ErrSlotTooLong)
	})
}

func TestTransitionGuardTable(t *testing.T) {
	type guardCase struct {
		name  string
		from  reservation.Status
		to    reservation.Status
		errIs error
	}

	cases := []guardCase{
		{name: "pending to approved", from: reservation.StatusPending, to: reservation.StatusApproved},
		{name: "pending to cancelled", from: reservation.StatusPending, to: reservation.StatusCancelled},
		{name: "approved to in_progress", from: reservation.StatusApproved, to: reservation.StatusInProgress},
		{name: "approved to cancelled", from: reservation.StatusApproved, to: reservation.StatusCancelled},
		{name: "in_progress to finalized", from: reservation.StatusInProgress, to: reservation.StatusFinalized},
		{name: "in_progress to cancelled", from: reservation.StatusInProgress, to: reservation.StatusCancelled},
		{name: "pending cannot start", from: reservation.StatusPending, to: reservation.StatusInProgress, errIs: reservation.ErrInvalidTransition},
		{name: "approved cannot finalize directly", from: reservation.StatusApproved, to: reservation.StatusFinalized, errIs: reservation.ErrInvalidTransition},
		{name: "rejected is terminal", from: reservation.StatusRejected, to: reservation.StatusApproved, errIs: reservation.ErrInvalidTransition},
		{name: "cancelled is terminal", from: reservation.StatusCancelled, to: reservation.StatusApproved, errIs: reservation.ErrInvalidTransition},
		{name: "finalized is terminal", from: reservation.StatusFinalized, to: reservation.StatusInProgress, errIs: reservation.ErrInvalidTransition},
	}

	rules := builder.NewRuleSetBuilder().Build()
	now := time.Date(2026, 9, 1, 9, 0, 0, 0, time.UTC)

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
				b.Status = tc.from
				b.Date = time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
			}).Build()

			opts := reservation.TransitionOptions{Rules: rules}
			if tc.to == reservation.StatusRejected {
				opts.Reason = "maintenance"
			}

			event, err := r.Transition(tc.to, uuid.New(), now, opts)
			if tc.errIs != nil {
				require.ErrorIs(t, err, tc.errIs)
				assert.Equal(t, tc.from, r.Status())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.to, r.Status())
			assert.Equal(t, tc.from, event.From)
			assert.Equal(t, tc.to, event.To)
		})
	}
}

func TestTransitionRejectionNeedsReason(t *testing.T) {
	rules := builder.NewRuleSetBuilder().Build()
	now := time.Now()

	r := newPending()
	_, err := r.Transition(reservation.StatusRejected, uuid.New(), now, reservation.TransitionOptions{Rules: rules})
	assert.ErrorIs(t, err, reservation.ErrRejectionNeedsReason)

	_, err = r.Transition(reservation.StatusRejected, uuid.New(), now, reservation.TransitionOptions{Rules: rules, Reason: "   "})
	assert.ErrorIs(t, err, reservation.ErrRejectionNeedsReason)

	actor := uuid.New()
	event, err := r.Transition(reservation.StatusRejected, actor, now, reservation.TransitionOptions{Rules: rules, Reason: "pool closed"})
	require.NoError(t, err)
	assert.Equal(t, reservation.StatusRejected, r.Status())
	assert.Equal(t, "pool closed", event.Reason)

	require.NotNil(t, r.Rejection())
	assert.Equal(t, "pool closed", r.Rejection().Reason)
	assert.Equal(t, actor, r.Rejection().ActorID)
	assert.Equal(t, now, r.Rejection().At)
}

func TestTransitionCancelDeadline(t *testing.T) {
	day := time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
	rules := builder.NewRuleSetBuilder().With(func(b *builder.RuleSetBuilder) {
		b.MinCancelNoticeHours = 24
	}).Build()

	build := func() *reservation.Reservation {
		return builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
			b.Date = day
			b.Start = 10 * 60
			b.End = 12 * 60
		}).Build()
	}

	t.Run("before the deadline", func(t *testing.T) {
		r := build()
		now := day.Add(10*time.Hour - 25*time.Hour)
		_, err := r.Transition(reservation.StatusCancelled, uuid.New(), now, reservation.TransitionOptions{Rules: rules, Reason: "trip"})
		require.NoError(t, err)
		require.NotNil(t, r.Cancellation())
		assert.Equal(t, "trip", r.Cancellation().Reason)
	})

	t.Run("past the deadline", func(t *testing.T) {
		r := build()
		now := day.Add(10*time.Hour - 2*time.Hour)
		_, err := r.Transition(reservation.StatusCancelled, uuid.New(), now, reservation.TransitionOptions{Rules: rules})
		assert.ErrorIs(t, err, reservation.ErrCancelDeadlinePassed)
	})

	t.Run("admin override forces a late cancellation", func(t *testing.T) {
		r := build()
		now := day.Add(10*time.Hour - 2*time.Hour)
		_, err := r.Transition(reservation.StatusCancelled, uuid.New(), now, reservation.TransitionOptions{Rules: rules, AdminOverride: true})
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusCancelled, r.Status())
	})
}

func TestTransitionCreatesKeyRecordOnApproval(t *testing.T) {
	rules := builder.NewRuleSetBuilder().With(func(b *builder.RuleSetBuilder) {
		b.RequireApproval = true
		b.RequireKey = true
	}).Build()

	r := newPending()
	require.Nil(t, r.Key())

	_, err := r.Transition(reservation.StatusApproved, uuid.New(), time.Now(), reservation.TransitionOptions{Rules: rules})
	require.NoError(t, err)
	require.NotNil(t, r.Key())
	assert.Equal(t, r.Slot().EndAt(), r.Key().ReturnDeadline())
}
