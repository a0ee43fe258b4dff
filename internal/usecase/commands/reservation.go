package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/amenity"
	"github.com/Gera09az/zentry-web-sub000/internal/domain/keyhandover"
	"github.com/Gera09az/zentry-web-sub000/internal/domain/reservation"
	"github.com/Gera09az/zentry-web-sub000/internal/infra"
	"github.com/Gera09az/zentry-web-sub000/internal/infra/converter"
	"github.com/Gera09az/zentry-web-sub000/internal/infra/docstore"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/clock"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/errs"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/timeofday"

	"github.com/google/uuid"
)

var ErrNoKeyRecord = errs.New("reservation has no key handover record")

// EvaluateRequest is a candidate reservation under admissibility evaluation.
type EvaluateRequest struct {
	AmenityID   uuid.UUID
	Street      string
	HouseNumber string
	Date        time.Time
	Start       timeofday.Minutes
	End         timeofday.Minutes
	PartySize   int
	GuestCount  int
}

type ReservationCommands interface {
	// Evaluate runs the quota enforcer for a candidate against the merged
	// working set. Pure read; the rejection reason comes from the first
	// failing rule.
	Evaluate(ctx context.Context, tenantID string, req EvaluateRequest) (reservation.Decision, error)
	// Transition moves a reservation's lifecycle status and propagates it
	// through the dual-write coordinator.
	Transition(ctx context.Context, tenantID string, reservationID uuid.UUID, target reservation.Status, actor Actor, reason *string) (*TransitionResult, error)
	// SetKeyStatus applies an on-site key custody action. Its reservation-
	// status consequence is applied by the next reconciliation pass, never
	// synchronously here.
	SetKeyStatus(ctx context.Context, tenantID string, reservationID uuid.UUID, target keyhandover.Status, actor Actor) (*TransitionResult, error)
	// Remove is the explicit administrative removal deleting both
	// denormalized copies.
	Remove(ctx context.Context, tenantID string, reservationID uuid.UUID, actor Actor) error
}

type reservationCommandsImpl struct {
	store      docstore.Store
	dualWriter *DualWriter
	workingSet WorkingSet
	audit      AuditSink
	notifier   Notifier
	clock      clock.Clock
	loc        *time.Location
	logger     *slog.Logger
}

func NewReservationCommands(
	store docstore.Store,
	dualWriter *DualWriter,
	workingSet WorkingSet,
	audit AuditSink,
	notifier Notifier,
	clock clock.Clock,
	loc *time.Location,
	logger *slog.Logger,
) ReservationCommands {
	return &reservationCommandsImpl{
		store:      store,
		dualWriter: dualWriter,
		workingSet: workingSet,
		audit:      audit,
		notifier:   notifier,
		clock:      clock,
		loc:        loc,
		logger:     logger,
	}
}

func (c *reservationCommandsImpl) Evaluate(ctx context.Context, tenantID string, req EvaluateRequest) (reservation.Decision, error) {
	amen, err := c.loadAmenity(ctx, tenantID, req.AmenityID)
	if err != nil {
		return reservation.Decision{}, err
	}

	household, err := reservation.NewHousehold(tenantID, req.Street, req.HouseNumber)
	if err != nil {
		return reservation.Decision{}, err
	}

	existing := make([]*reservation.Reservation, 0)
	for _, r := range c.workingSet.Reservations(tenantID) {
		if r.AmenityID() == req.AmenityID {
			existing = append(existing, r)
		}
	}

	candidate := reservation.Candidate{
		Household:  household,
		Date:       req.Date.In(c.loc),
		Start:      req.Start,
		End:        req.End,
		PartySize:  req.PartySize,
		GuestCount: req.GuestCount,
	}
	return reservation.Evaluate(candidate, amen.Rules(), existing, c.clock.Now().In(c.loc)), nil
}

func (c *reservationCommandsImpl) Transition(ctx context.Context, tenantID string, reservationID uuid.UUID, target reservation.Status, actor Actor, reason *string) (*TransitionResult, error) {
	res, err := c.loadReservation(ctx, tenantID, reservationID)
	if err != nil {
		return nil, err
	}
	amen, err := c.loadAmenity(ctx, tenantID, res.AmenityID())
	if err != nil {
		return nil, err
	}

	opts := reservation.TransitionOptions{
		AdminOverride: actor.IsAdmin(),
		Rules:         amen.Rules(),
	}
	if reason != nil {
		opts.Reason = *reason
	}

	event, err := res.Transition(target, actor.ID, c.clock.Now(), opts)
	if err != nil {
		return nil, err
	}

	partial, err := c.dualWriter.Write(ctx, res)
	if err != nil && !errors.Is(err, errs.ErrPartialWrite) {
		return nil, err
	}

	c.audit.Record(ctx, tenantID, event)
	c.notifier.Notify(ctx, res.UserID(), amen.Name(), res.Slot().Date(), target.String(), reason)

	result := &TransitionResult{
		ReservationID:    reservationID,
		From:             event.From,
		To:               event.To,
		PartiallyApplied: partial,
	}
	if err != nil {
		// consistency error travels alongside the applied result
		return result, err
	}
	return result, nil
}

func (c *reservationCommandsImpl) SetKeyStatus(ctx context.Context, tenantID string, reservationID uuid.UUID, target keyhandover.Status, actor Actor) (*TransitionResult, error) {
	res, err := c.loadReservation(ctx, tenantID, reservationID)
	if err != nil {
		return nil, err
	}
	key := res.Key()
	if key == nil {
		return nil, ErrNoKeyRecord
	}

	from := res.Status()
	if err := key.Transition(target, actor.ID, c.clock.Now()); err != nil {
		return nil, err
	}

	partial, err := c.dualWriter.Write(ctx, res)
	if err != nil && !errors.Is(err, errs.ErrPartialWrite) {
		return nil, err
	}

	keyStatus := key.Status().String()
	result := &TransitionResult{
		ReservationID:    reservationID,
		From:             from,
		To:               res.Status(), // unchanged here; coupling runs on the next pass
		KeyStatus:        &keyStatus,
		PartiallyApplied: partial,
	}
	if err != nil {
		return result, err
	}
	return result, nil
}

func (c *reservationCommandsImpl) Remove(ctx context.Context, tenantID string, reservationID uuid.UUID, actor Actor) error {
	if !actor.IsAdmin() {
		return errs.ErrInvalidTransition
	}
	res, err := c.loadReservation(ctx, tenantID, reservationID)
	if err != nil {
		return err
	}
	return c.dualWriter.Delete(ctx, res)
}

// ApplyReconciliation persists a reconciliation outcome (overdue flip or a
// key-coupled forced status) and audits the forced transition when present.
// It is the synchronizer's write path.
func (c *reservationCommandsImpl) ApplyReconciliation(ctx context.Context, tenantID string, res *reservation.Reservation, event *reservation.TransitionEvent) error {
	if _, err := c.dualWriter.Write(ctx, res); err != nil && !errors.Is(err, errs.ErrPartialWrite) {
		return err
	}
	if event != nil {
		c.audit.Record(ctx, tenantID, *event)
	}
	return nil
}

func (c *reservationCommandsImpl) loadReservation(ctx context.Context, tenantID string, id uuid.UUID) (*reservation.Reservation, error) {
	doc, err := c.store.Get(ctx, tenantID, docstore.CollectionReservations, id.String())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrReservationNotFound
		}
		return nil, errs.Mark(err, errs.ErrStoreOperationFailed)
	}
	res, err := converter.DecodeReservation(doc, c.loc)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStoreOperationFailed)
	}
	return res, nil
}

func (c *reservationCommandsImpl) loadAmenity(ctx context.Context, tenantID string, id uuid.UUID) (*amenity.Amenity, error) {
	doc, err := c.store.Get(ctx, tenantID, docstore.CollectionRuleSets, id.String())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrAmenityNotFound
		}
		return nil, errs.Mark(err, errs.ErrStoreOperationFailed)
	}
	amen, defects, err := converter.DecodeAmenity(doc)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStoreOperationFailed)
	}
	for _, defect := range defects {
		c.logger.Warn("amenity ruleset has undecodable time", "amenity_id", id, "error", defect)
	}
	return amen, nil
}
