package commands

import (
	"context"
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/reservation"

	"github.com/google/uuid"
)

// Actor is the acting identity attributed to a transition, supplied by the
// identity collaborator.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// SystemActor attributes transitions applied by the reconciliation pass.
var SystemActor = Actor{ID: uuid.Nil, Role: "system"}

func (a Actor) IsAdmin() bool {
	return a.Role == "admin" || a.Role == "system"
}

// AuditSink receives one record per applied transition. Append-only,
// advisory: implementations must not fail the transition.
type AuditSink interface {
	Record(ctx context.Context, tenantID string, event reservation.TransitionEvent)
}

// Notifier delivers status-change notifications. Fire-and-forget.
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, amenityName string, date time.Time, newStatus string, reason *string)
}

// WorkingSet is the synchronizer's merged reservation list, read-only.
// EvaluateReservation consults it instead of hitting the store.
type WorkingSet interface {
	Reservations(tenantID string) []*reservation.Reservation
}

// TransitionResult reports an applied transition.
type TransitionResult struct {
	ReservationID uuid.UUID
	From          reservation.Status
	To            reservation.Status
	KeyStatus     *string
	// PartiallyApplied is set when one half of the dual write could not be
	// repaired; the reservation is flagged for administrative reconciliation.
	PartiallyApplied bool
}
