package reservation

import (
	"errors"
	"strings"
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/amenity"
	"github.com/Gera09az/zentry-web-sub000/internal/domain/keyhandover"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidTransition    = errors.New("invalid status transition")
	ErrRejectionNeedsReason = errors.New("rejection requires a reason")
	ErrCancelDeadlinePassed = errors.New("cancellation deadline passed")
	ErrNegativePartySize    = errors.New("party size cannot be negative")
)

// Reservation is one household's booking of an amenity. Address fields are
// denormalized onto it; the Household tuple derived from them scopes quotas.
type Reservation struct {
	id           uuid.UUID
	amenityID    uuid.UUID
	communityID  string
	household    Household
	userID       uuid.UUID
	slot         Slot
	partySize    int
	guestCount   int
	price        decimal.Decimal
	status       Status
	createdAt    time.Time
	cancellation *Cancellation
	rejection    *Rejection
	key          *keyhandover.Record
}

// TransitionEvent is handed to the audit sink for every applied transition.
// Reason is set on rejections and cancellations.
type TransitionEvent struct {
	ReservationID uuid.UUID
	From          Status
	To            Status
	ActorID       uuid.UUID
	At            time.Time
	Reason        string
}

// NewReservation builds a pending reservation. The slot must respect the
// ruleset's maximum length; admissibility against quotas is the policy's job.
func NewReservation(
	amenityID uuid.UUID,
	household Household,
	userID uuid.UUID,
	slot Slot,
	partySize, guestCount int,
	price decimal.Decimal,
	rules amenity.RuleSet,
	now time.Time,
) (*Reservation, error) {
	if partySize < 0 || guestCount < 0 {
		return nil, ErrNegativePartySize
	}
	if maxMin := rules.MaxDurationMinutes(); maxMin != amenity.Unlimited && slot.DurationMinutes() > maxMin {
		return nil, ErrSlotTooLong
	}

	status := StatusPending
	if !rules.RequireApproval {
		status = StatusApproved
	}

	r := &Reservation{
		id:          uuid.New(),
		amenityID:   amenityID,
		communityID: household.CommunityID(),
		household:   household,
		userID:      userID,
		slot:        slot,
		partySize:   partySize,
		guestCount:  guestCount,
		price:       price,
		status:      status,
		createdAt:   now,
	}
	if status == StatusApproved && rules.RequireKey {
		r.key = keyhandover.NewRecord(slot.EndAt())
	}
	return r, nil
}

func Reconstruct(
	id, amenityID uuid.UUID,
	household Household,
	userID uuid.UUID,
	slot Slot,
	partySize, guestCount int,
	price decimal.Decimal,
	status Status,
	createdAt time.Time,
	cancellation *Cancellation,
	rejection *Rejection,
	key *keyhandover.Record,
) *Reservation {
	return &Reservation{
		id:           id,
		amenityID:    amenityID,
		communityID:  household.CommunityID(),
		household:    household,
		userID:       userID,
		slot:         slot,
		partySize:    partySize,
		guestCount:   guestCount,
		price:        price,
		status:       status,
		createdAt:    createdAt,
		cancellation: cancellation,
		rejection:    rejection,
		key:          key,
	}
}

func (r *Reservation) ID() uuid.UUID               { return r.id }
func (r *Reservation) AmenityID() uuid.UUID        { return r.amenityID }
func (r *Reservation) CommunityID() string         { return r.communityID }
func (r *Reservation) Household() Household        { return r.household }
func (r *Reservation) UserID() uuid.UUID           { return r.userID }
func (r *Reservation) Slot() Slot                  { return r.slot }
func (r *Reservation) PartySize() int              { return r.partySize }
func (r *Reservation) GuestCount() int             { return r.guestCount }
func (r *Reservation) Price() decimal.Decimal      { return r.price }
func (r *Reservation) Status() Status              { return r.status }
func (r *Reservation) CreatedAt() time.Time        { return r.createdAt }
func (r *Reservation) Cancellation() *Cancellation { return r.cancellation }
func (r *Reservation) Rejection() *Rejection       { return r.rejection }
func (r *Reservation) Key() *keyhandover.Record    { return r.key }

// TransitionOptions carries the guard context of a requested transition.
type TransitionOptions struct {
	Reason        string
	AdminOverride bool
	Rules         amenity.RuleSet
}

// Transition moves the reservation to target, enforcing the guard table, the
// rejection-reason requirement and the cancellation-notice deadline (which an
// administrative override may force). On an approved transition of a
// key-requiring amenity the key handover record is created explicitly, with
// the slot's end as return deadline.
func (r *Reservation) Transition(target Status, actorID uuid.UUID, now time.Time, opts TransitionOptions) (TransitionEvent, error) {
	if !target.IsValid() {
		return TransitionEvent{}, ErrInvalidTransition
	}
	if !r.status.CanTransitionTo(target) {
		return TransitionEvent{}, ErrInvalidTransition
	}

	switch target {
	case StatusRejected:
		if strings.TrimSpace(opts.Reason) == "" {
			return TransitionEvent{}, ErrRejectionNeedsReason
		}
		r.rejection = &Rejection{ActorID: actorID, At: now, Reason: opts.Reason}
	case StatusCancelled:
		deadline := opts.Rules.CancelDeadline(r.slot.StartAt())
		if now.After(deadline) && !opts.AdminOverride {
			return TransitionEvent{}, ErrCancelDeadlinePassed
		}
		r.cancellation = &Cancellation{ActorID: actorID, At: now, Reason: opts.Reason}
	case StatusApproved:
		if r.key == nil && opts.Rules.RequireKey {
			r.key = keyhandover.NewRecord(r.slot.EndAt())
		}
	}

	event := TransitionEvent{
		ReservationID: r.id,
		From:          r.status,
		To:            target,
		ActorID:       actorID,
		At:            now,
	}
	if target == StatusRejected || target == StatusCancelled {
		event.Reason = opts.Reason
	}
	r.status = target
	return event, nil
}

// ForceStatus applies a status computed by the key-coupling reconciliation
// pass without re-running resident-facing guards.
func (r *Reservation) ForceStatus(target Status) {
	r.status = target
}

func (r *Reservation) IsCancelled() bool { return r.status == StatusCancelled }

func (r *Reservation) HasExpired(now time.Time) bool {
	return now.After(r.slot.EndAt())
}
