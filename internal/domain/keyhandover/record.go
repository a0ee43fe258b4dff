// Package keyhandover models the physical custody lifecycle of an amenity's
// access key as a sub-state machine of its parent reservation.
package keyhandover

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidKeyTransition = errors.New("invalid key handover transition")
	ErrAlreadyReturned      = errors.New("key already returned")
)

// Status is the custody state of the key.
type Status string

const (
	StatusPending   Status = "pending"
	StatusDelivered Status = "delivered"
	StatusReceived  Status = "received"
	StatusOverdue   Status = "overdue"
)

func (s Status) String() string { return string(s) }

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusDelivered, StatusReceived, StatusOverdue:
		return true
	default:
		return false
	}
}

// CanTransitionTo covers the on-site personnel actions. The overdue flip is
// not an action; it is computed against the return deadline (see Record).
func (s Status) CanTransitionTo(target Status) bool {
	switch s {
	case StatusPending:
		return target == StatusDelivered
	case StatusDelivered:
		return target == StatusReceived || target == StatusPending
	case StatusOverdue:
		return target == StatusReceived || target == StatusDelivered
	default:
		return false
	}
}

// Record is the key custody record embedded in a reservation. Created with
// default pending custody when a key-requiring amenity's reservation is
// approved; removed only with its parent.
type Record struct {
	status         Status
	deliveredAt    *time.Time
	deliveredBy    *uuid.UUID
	receivedAt     *time.Time
	receivedBy     *uuid.UUID
	returnDeadline time.Time
}

// NewRecord creates the implicit pending record for an approved reservation.
func NewRecord(returnDeadline time.Time) *Record {
	return &Record{
		status:         StatusPending,
		returnDeadline: returnDeadline,
	}
}

func Reconstruct(
	status Status,
	deliveredAt *time.Time, deliveredBy *uuid.UUID,
	receivedAt *time.Time, receivedBy *uuid.UUID,
	returnDeadline time.Time,
) *Record {
	return &Record{
		status:         status,
		deliveredAt:    deliveredAt,
		deliveredBy:    deliveredBy,
		receivedAt:     receivedAt,
		receivedBy:     receivedBy,
		returnDeadline: returnDeadline,
	}
}

func (r *Record) Status() Status            { return r.status }
func (r *Record) DeliveredAt() *time.Time   { return r.deliveredAt }
func (r *Record) DeliveredBy() *uuid.UUID   { return r.deliveredBy }
func (r *Record) ReceivedAt() *time.Time    { return r.receivedAt }
func (r *Record) ReceivedBy() *uuid.UUID    { return r.receivedBy }
func (r *Record) ReturnDeadline() time.Time { return r.returnDeadline }

// Transition applies an on-site personnel action.
func (r *Record) Transition(target Status, actorID uuid.UUID, now time.Time) error {
	if !target.IsValid() {
		return ErrInvalidKeyTransition
	}
	if r.status == StatusReceived {
		return ErrAlreadyReturned
	}
	if !r.status.CanTransitionTo(target) {
		return ErrInvalidKeyTransition
	}

	switch target {
	case StatusDelivered:
		r.deliveredAt = &now
		r.deliveredBy = &actorID
	case StatusReceived:
		r.receivedAt = &now
		r.receivedBy = &actorID
	case StatusPending:
		// reversal of a mistaken delivery
		r.deliveredAt = nil
		r.deliveredBy = nil
	}
	r.status = target
	return nil
}

// IsOverdue reports whether the key should flip to overdue: custody never
// reached received and the return deadline has passed.
func (r *Record) IsOverdue(now time.Time) bool {
	if r.status != StatusPending && r.status != StatusDelivered {
		return false
	}
	return now.After(r.returnDeadline)
}

// MarkOverdue flips pending/delivered custody to overdue when the deadline
// has passed. Returns true when the flip happened.
func (r *Record) MarkOverdue(now time.Time) bool {
	if !r.IsOverdue(now) {
		return false
	}
	r.status = StatusOverdue
	return true
}
