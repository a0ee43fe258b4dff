package reservation

import (
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/keyhandover"
)

// CoupleKeyToReservation computes the reservation status forced by the
// current key custody state, if any. It is the only coupling between the two
// state machines and is invoked once per reconciliation pass by the
// synchronizer, never synchronously from a handover mutation:
//
//	delivered while approved        -> in_progress
//	received  while approved or
//	          in_progress           -> finalized
//	pending   while in_progress     -> approved (delivery reversal)
//
// All other combinations leave the reservation status alone.
func CoupleKeyToReservation(key *keyhandover.Record, current Status, now time.Time) (Status, bool) {
	if key == nil {
		return current, false
	}

	status := key.Status()
	if key.IsOverdue(now) {
		status = keyhandover.StatusOverdue
	}

	switch status {
	case keyhandover.StatusDelivered:
		if current == StatusApproved {
			return StatusInProgress, true
		}
	case keyhandover.StatusReceived:
		if current == StatusApproved || current == StatusInProgress {
			return StatusFinalized, true
		}
	case keyhandover.StatusPending:
		if current == StatusInProgress {
			return StatusApproved, true
		}
	}
	return current, false
}
