//go:build unit

package commands_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"testing"
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/amenity"
	"github.com/Gera09az/zentry-web-sub000/internal/domain/keyhandover"
	"github.com/Gera09az/zentry-web-sub000/internal/domain/reservation"
	"github.com/Gera09az/zentry-web-sub000/internal/infra/converter"
	"github.com/Gera09az/zentry-web-sub000/internal/infra/docstore"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/clock"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/errs"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/timeofday"
	"github.com/Gera09az/zentry-web-sub000/internal/usecase/commands"
	"github.com/Gera09az/zentry-web-sub000/tests/common/builder"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cmdTenant = "community-1"

// Wednesday; reservations under test start the next morning.
var cmdNow = time.Date(2026, 9, 9, 9, 0, 0, 0, time.UTC)

type stubWorkingSet struct {
	byTenant map[string][]*reservation.Reservation
}

func (s *stubWorkingSet) Reservations(tenantID string) []*reservation.Reservation {
	return s.byTenant[tenantID]
}

type recordingAudit struct {
	events []reservation.TransitionEvent
}

func (a *recordingAudit) Record(_ context.Context, _ string, event reservation.TransitionEvent) {
	a.events = append(a.events, event)
}

type recordingNotifier struct {
	statuses []string
}

func (n *recordingNotifier) Notify(_ context.Context, _ uuid.UUID, _ string, _ time.Time, newStatus string, _ *string) {
	n.statuses = append(n.statuses, newStatus)
}

type cmdEnv struct {
	store    *docstore.MemoryStore
	clk      *clock.MockClock
	ws       *stubWorkingSet
	audit    *recordingAudit
	notifier *recordingNotifier
	cmds     commands.ReservationCommands
}

func newCmdEnv() *cmdEnv {
	store := docstore.NewMemoryStore()
	clk := clock.NewMockClock(cmdNow)
	ws := &stubWorkingSet{byTenant: map[string][]*reservation.Reservation{}}
	audit := &recordingAudit{}
	notifier := &recordingNotifier{}
	logger := slog.Default()
	cmds := commands.NewReservationCommands(
		store, commands.NewDualWriter(store, logger), ws, audit, notifier, clk, time.UTC, logger,
	)
	return &cmdEnv{store: store, clk: clk, ws: ws, audit: audit, notifier: notifier, cmds: cmds}
}

func (e *cmdEnv) seedAmenity(t *testing.T, id uuid.UUID, raw amenity.RawRuleSet) {
	t.Helper()
	data, err := json.Marshal(converter.AmenityDoc{
		ID:          id.String(),
		CommunityID: cmdTenant,
		Nombre:      "Alberca",
		Capacidad:   30,
		Activa:      true,
		Reglas:      raw,
	})
	require.NoError(t, err)
	res := e.store.BatchWrite(context.Background(), []docstore.Write{{
		Op:         docstore.OpPut,
		TenantID:   cmdTenant,
		Collection: docstore.CollectionRuleSets,
		ID:         id.String(),
		Data:       data,
	}})
	require.NoError(t, res.Err())
}

func (e *cmdEnv) seedReservation(t *testing.T, r *reservation.Reservation) {
	t.Helper()
	data, err := converter.EncodeReservation(r, false)
	require.NoError(t, err)
	res := e.store.BatchWrite(context.Background(), []docstore.Write{{
		Op:         docstore.OpPut,
		TenantID:   cmdTenant,
		Collection: docstore.CollectionReservations,
		ID:         r.ID().String(),
		Data:       data,
	}})
	require.NoError(t, res.Err())
}

func (e *cmdEnv) storedField(t *testing.T, id uuid.UUID, field string) any {
	t.Helper()
	doc, err := e.store.Get(context.Background(), cmdTenant, docstore.CollectionReservations, id.String())
	require.NoError(t, err)
	var body map[string]any
	require.NoError(t, json.Unmarshal(doc.Data, &body))
	return body[field]
}

func tomorrowReservation(amenityID uuid.UUID) *builder.ReservationBuilder {
	return builder.NewReservationBuilder().With(func(b *builder.ReservationBuilder) {
		b.AmenityID = amenityID
		b.Date = time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)
		b.CreatedAt = cmdNow
	})
}

func TestEvaluateCommand(t *testing.T) {
	ctx := context.Background()

	request := func(amenityID uuid.UUID) commands.EvaluateRequest {
		return commands.EvaluateRequest{
			AmenityID:   amenityID,
			Street:      "Roble",
			HouseNumber: "12",
			Date:        time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC),
			Start:       timeofday.Minutes(10 * 60),
			End:         timeofday.Minutes(12 * 60),
			PartySize:   4,
		}
	}

	t.Run("admissible candidate", func(t *testing.T) {
		env := newCmdEnv()
		amenityID := uuid.New()
		env.seedAmenity(t, amenityID, amenity.RawRuleSet{PermiteInvitados: true})

		decision, err := env.cmds.Evaluate(ctx, cmdTenant, request(amenityID))
		require.NoError(t, err)
		assert.True(t, decision.Admissible)
		assert.Empty(t, decision.Reason)
	})

	t.Run("daily cap counts working-set reservations", func(t *testing.T) {
		env := newCmdEnv()
		amenityID := uuid.New()
		env.seedAmenity(t, amenityID, amenity.RawRuleSet{MaxReservasPorDia: 1, PermiteInvitados: true})
		env.ws.byTenant[cmdTenant] = []*reservation.Reservation{
			tomorrowReservation(amenityID).Build(),
		}

		decision, err := env.cmds.Evaluate(ctx, cmdTenant, request(amenityID))
		require.NoError(t, err)
		assert.False(t, decision.Admissible)
		assert.ErrorIs(t, decision.Err, errs.ErrDailyCapExceeded)
		assert.NotEmpty(t, decision.Reason)
	})

	t.Run("other amenity reservations are not counted", func(t *testing.T) {
		env := newCmdEnv()
		amenityID := uuid.New()
		env.seedAmenity(t, amenityID, amenity.RawRuleSet{MaxReservasPorDia: 1, PermiteInvitados: true})
		env.ws.byTenant[cmdTenant] = []*reservation.Reservation{
			tomorrowReservation(uuid.New()).Build(),
		}

		decision, err := env.cmds.Evaluate(ctx, cmdTenant, request(amenityID))
		require.NoError(t, err)
		assert.True(t, decision.Admissible)
	})

	t.Run("unknown amenity", func(t *testing.T) {
		env := newCmdEnv()
		_, err := env.cmds.Evaluate(ctx, cmdTenant, request(uuid.New()))
		assert.ErrorIs(t, err, errs.ErrAmenityNotFound)
	})
}

func TestTransitionCommand(t *testing.T) {
	ctx := context.Background()
	admin := commands.Actor{ID: uuid.New(), Role: "admin"}
	resident := commands.Actor{ID: uuid.New(), Role: "resident"}

	t.Run("approval persists both copies and creates the key record", func(t *testing.T) {
		env := newCmdEnv()
		amenityID := uuid.New()
		env.seedAmenity(t, amenityID, amenity.RawRuleSet{RequiereAprobacion: true, RequiereLlave: true})
		r := tomorrowReservation(amenityID).With(func(b *builder.ReservationBuilder) {
			b.Status = reservation.StatusPending
		}).Build()
		env.seedReservation(t, r)

		result, err := env.cmds.Transition(ctx, cmdTenant, r.ID(), reservation.StatusApproved, admin, nil)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusPending, result.From)
		assert.Equal(t, reservation.StatusApproved, result.To)
		assert.False(t, result.PartiallyApplied)

		assert.Equal(t, "approved", env.storedField(t, r.ID(), "estado"))
		assert.NotNil(t, env.storedField(t, r.ID(), "llave"))

		mirror, err := env.store.Get(ctx, r.UserID().String(), docstore.CollectionUserMirror, r.ID().String())
		require.NoError(t, err)
		tenantDoc, err := env.store.Get(ctx, cmdTenant, docstore.CollectionReservations, r.ID().String())
		require.NoError(t, err)
		assert.JSONEq(t, string(tenantDoc.Data), string(mirror.Data))

		require.Len(t, env.audit.events, 1)
		assert.Equal(t, reservation.StatusApproved, env.audit.events[0].To)
		assert.Equal(t, admin.ID, env.audit.events[0].ActorID)
		assert.Equal(t, []string{"approved"}, env.notifier.statuses)
	})

	t.Run("rejection persists the reason on the document", func(t *testing.T) {
		env := newCmdEnv()
		amenityID := uuid.New()
		env.seedAmenity(t, amenityID, amenity.RawRuleSet{RequiereAprobacion: true})
		r := tomorrowReservation(amenityID).With(func(b *builder.ReservationBuilder) {
			b.Status = reservation.StatusPending
		}).Build()
		env.seedReservation(t, r)

		reason := "documentación incompleta"
		result, err := env.cmds.Transition(ctx, cmdTenant, r.ID(), reservation.StatusRejected, admin, &reason)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusRejected, result.To)

		assert.Equal(t, "rejected", env.storedField(t, r.ID(), "estado"))
		assert.Equal(t, reason, env.storedField(t, r.ID(), "motivoRechazo"))
		assert.Equal(t, admin.ID.String(), env.storedField(t, r.ID(), "rechazadoPor"))

		doc, err := env.store.Get(ctx, cmdTenant, docstore.CollectionReservations, r.ID().String())
		require.NoError(t, err)
		decoded, err := converter.DecodeReservation(doc, time.UTC)
		require.NoError(t, err)
		require.NotNil(t, decoded.Rejection())
		assert.Equal(t, reason, decoded.Rejection().Reason)

		require.Len(t, env.audit.events, 1)
		assert.Equal(t, reason, env.audit.events[0].Reason)
	})

	t.Run("resident cancellation past the notice deadline", func(t *testing.T) {
		env := newCmdEnv()
		amenityID := uuid.New()
		env.seedAmenity(t, amenityID, amenity.RawRuleSet{CancelacionMinima: 48})
		r := tomorrowReservation(amenityID).Build()
		env.seedReservation(t, r)

		_, err := env.cmds.Transition(ctx, cmdTenant, r.ID(), reservation.StatusCancelled, resident, nil)
		assert.ErrorIs(t, err, reservation.ErrCancelDeadlinePassed)
		assert.Equal(t, "approved", env.storedField(t, r.ID(), "estado"))
		assert.Empty(t, env.audit.events)
	})

	t.Run("admin override forces the late cancellation", func(t *testing.T) {
		env := newCmdEnv()
		amenityID := uuid.New()
		env.seedAmenity(t, amenityID, amenity.RawRuleSet{CancelacionMinima: 48})
		r := tomorrowReservation(amenityID).Build()
		env.seedReservation(t, r)

		reason := "resident request"
		result, err := env.cmds.Transition(ctx, cmdTenant, r.ID(), reservation.StatusCancelled, admin, &reason)
		require.NoError(t, err)
		assert.Equal(t, reservation.StatusCancelled, result.To)
		assert.Equal(t, "cancelled", env.storedField(t, r.ID(), "estado"))
	})

	t.Run("partial dual write still reports the applied transition", func(t *testing.T) {
		env := newCmdEnv()
		amenityID := uuid.New()
		env.seedAmenity(t, amenityID, amenity.RawRuleSet{RequiereAprobacion: true})
		r := tomorrowReservation(amenityID).With(func(b *builder.ReservationBuilder) {
			b.Status = reservation.StatusPending
		}).Build()
		env.seedReservation(t, r)

		env.store.WriteHook = func(w docstore.Write) error {
			if w.Collection == docstore.CollectionUserMirror {
				return assert.AnError
			}
			return nil
		}

		result, err := env.cmds.Transition(ctx, cmdTenant, r.ID(), reservation.StatusApproved, admin, nil)
		assert.ErrorIs(t, err, errs.ErrPartialWrite)
		require.NotNil(t, result)
		assert.True(t, result.PartiallyApplied)
		assert.Equal(t, reservation.StatusApproved, result.To)
		assert.Equal(t, "approved", env.storedField(t, r.ID(), "estado"))
	})

	t.Run("unknown reservation", func(t *testing.T) {
		env := newCmdEnv()
		_, err := env.cmds.Transition(ctx, cmdTenant, uuid.New(), reservation.StatusApproved, admin, nil)
		assert.ErrorIs(t, err, errs.ErrReservationNotFound)
	})
}

func TestSetKeyStatusCommand(t *testing.T) {
	ctx := context.Background()
	guard := commands.Actor{ID: uuid.New(), Role: "guard"}

	newKeyed := func(t *testing.T, env *cmdEnv) *reservation.Reservation {
		t.Helper()
		amenityID := uuid.New()
		env.seedAmenity(t, amenityID, amenity.RawRuleSet{RequiereLlave: true})
		r := tomorrowReservation(amenityID).With(func(b *builder.ReservationBuilder) {
			b.Key = keyhandover.NewRecord(time.Date(2026, 9, 10, 12, 0, 0, 0, time.UTC))
		}).Build()
		env.seedReservation(t, r)
		return r
	}

	t.Run("delivery leaves the reservation status untouched", func(t *testing.T) {
		env := newCmdEnv()
		r := newKeyed(t, env)

		result, err := env.cmds.SetKeyStatus(ctx, cmdTenant, r.ID(), keyhandover.StatusDelivered, guard)
		require.NoError(t, err)
		require.NotNil(t, result.KeyStatus)
		assert.Equal(t, "delivered", *result.KeyStatus)
		assert.Equal(t, reservation.StatusApproved, result.To)

		key, ok := env.storedField(t, r.ID(), "llave").(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "delivered", key["estado"])
		assert.Equal(t, "approved", env.storedField(t, r.ID(), "estado"))
	})

	t.Run("receipt without prior delivery is rejected", func(t *testing.T) {
		env := newCmdEnv()
		r := newKeyed(t, env)

		_, err := env.cmds.SetKeyStatus(ctx, cmdTenant, r.ID(), keyhandover.StatusReceived, guard)
		assert.ErrorIs(t, err, keyhandover.ErrInvalidKeyTransition)
	})

	t.Run("no key record", func(t *testing.T) {
		env := newCmdEnv()
		amenityID := uuid.New()
		env.seedAmenity(t, amenityID, amenity.RawRuleSet{})
		r := tomorrowReservation(amenityID).Build()
		env.seedReservation(t, r)

		_, err := env.cmds.SetKeyStatus(ctx, cmdTenant, r.ID(), keyhandover.StatusDelivered, guard)
		assert.ErrorIs(t, err, commands.ErrNoKeyRecord)
	})
}

func TestRemoveCommand(t *testing.T) {
	ctx := context.Background()

	t.Run("admin removal deletes both copies", func(t *testing.T) {
		env := newCmdEnv()
		r := tomorrowReservation(uuid.New()).Build()
		env.seedReservation(t, r)
		// mirror copy written the usual way
		_, err := commands.NewDualWriter(env.store, slog.Default()).Write(ctx, r)
		require.NoError(t, err)

		err = env.cmds.Remove(ctx, cmdTenant, r.ID(), commands.Actor{ID: uuid.New(), Role: "admin"})
		require.NoError(t, err)

		_, err = env.store.Get(ctx, cmdTenant, docstore.CollectionReservations, r.ID().String())
		assert.Error(t, err)
		_, err = env.store.Get(ctx, r.UserID().String(), docstore.CollectionUserMirror, r.ID().String())
		assert.Error(t, err)
	})

	t.Run("non-admin actors cannot remove", func(t *testing.T) {
		env := newCmdEnv()
		r := tomorrowReservation(uuid.New()).Build()
		env.seedReservation(t, r)

		err := env.cmds.Remove(ctx, cmdTenant, r.ID(), commands.Actor{ID: uuid.New(), Role: "resident"})
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
		_, err = env.store.Get(ctx, cmdTenant, docstore.CollectionReservations, r.ID().String())
		assert.NoError(t, err)
	})
}
