//go:build unit

package reservation_test

import (
	"testing"
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/keyhandover"
	"github.com/Gera09az/zentry-web-sub000/internal/domain/reservation"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyIn(t *testing.T, status keyhandover.Status, returnDeadline time.Time) *keyhandover.Record {
	t.Helper()
	actor := uuid.New()
	record := keyhandover.NewRecord(returnDeadline)
	switch status {
	case keyhandover.StatusPending:
	case keyhandover.StatusDelivered:
		require.NoError(t, record.Transition(keyhandover.StatusDelivered, actor, returnDeadline.Add(-time.Hour)))
	case keyhandover.StatusReceived:
		require.NoError(t, record.Transition(keyhandover.StatusDelivered, actor, returnDeadline.Add(-time.Hour)))
		require.NoError(t, record.Transition(keyhandover.StatusReceived, actor, returnDeadline.Add(-time.Minute)))
	}
	return record
}

func TestCoupleKeyToReservation(t *testing.T) {
	deadline := time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC)
	now := deadline.Add(-time.Hour)

	cases := []struct {
		name       string
		key        keyhandover.Status
		current    reservation.Status
		want       reservation.Status
		wantForced bool
	}{
		{name: "delivered starts an approved reservation", key: keyhandover.StatusDelivered, current: reservation.StatusApproved, want: reservation.StatusInProgress, wantForced: true},
		{name: "received finalizes an approved reservation", key: keyhandover.StatusReceived, current: reservation.StatusApproved, want: reservation.StatusFinalized, wantForced: true},
		{name: "received finalizes an in-progress reservation", key: keyhandover.StatusReceived, current: reservation.StatusInProgress, want: reservation.StatusFinalized, wantForced: true},
		{name: "delivery reversal reverts in_progress", key: keyhandover.StatusPending, current: reservation.StatusInProgress, want: reservation.StatusApproved, wantForced: true},
		{name: "pending key leaves approved alone", key: keyhandover.StatusPending, current: reservation.StatusApproved, want: reservation.StatusApproved},
		{name: "delivered leaves in_progress alone", key: keyhandover.StatusDelivered, current: reservation.StatusInProgress, want: reservation.StatusInProgress},
		{name: "delivered never resurrects cancelled", key: keyhandover.StatusDelivered, current: reservation.StatusCancelled, want: reservation.StatusCancelled},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			key := keyIn(t, tc.key, deadline)
			got, forced := reservation.CoupleKeyToReservation(key, tc.current, now)
			assert.Equal(t, tc.want, got)
			assert.Equal(t, tc.wantForced, forced)
		})
	}

	t.Run("nil key never forces", func(t *testing.T) {
		got, forced := reservation.CoupleKeyToReservation(nil, reservation.StatusApproved, now)
		assert.Equal(t, reservation.StatusApproved, got)
		assert.False(t, forced)
	})

	t.Run("overdue custody overrides the stored key state", func(t *testing.T) {
		// delivered key past its deadline reads as overdue, which maps to no
		// forced reservation change
		key := keyIn(t, keyhandover.StatusDelivered, deadline)
		got, forced := reservation.CoupleKeyToReservation(key, reservation.StatusApproved, deadline.Add(time.Hour))
		assert.Equal(t, reservation.StatusApproved, got)
		assert.False(t, forced)
	})
}
