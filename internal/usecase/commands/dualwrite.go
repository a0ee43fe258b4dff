package commands

import (
	"context"
	"log/slog"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/reservation"
	"github.com/Gera09az/zentry-web-sub000/internal/infra/converter"
	"github.com/Gera09az/zentry-web-sub000/internal/infra/docstore"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/errs"
)

// maxHalfRetries bounds how often the failing half of a dual write is
// retried before the reservation is flagged for administrative
// reconciliation.
const maxHalfRetries = 3

// DualWriter propagates a reservation mutation to its two denormalized
// locations, the per-community record and the per-user mirror, as a single
// best-effort batch. There is no cross-location transaction: on partial
// failure the failing half is retried a bounded number of times and, on
// exhaustion, the surviving copy is marked as needing reconciliation and a
// consistency error is surfaced, never swallowed.
type DualWriter struct {
	store  docstore.Store
	logger *slog.Logger
}

func NewDualWriter(store docstore.Store, logger *slog.Logger) *DualWriter {
	return &DualWriter{store: store, logger: logger}
}

func (d *DualWriter) writes(r *reservation.Reservation, needsReconciliation bool) ([]docstore.Write, error) {
	data, err := converter.EncodeReservation(r, needsReconciliation)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrStoreOperationFailed)
	}
	id := r.ID().String()
	return []docstore.Write{
		{
			Op:         docstore.OpPut,
			TenantID:   r.CommunityID(),
			Collection: docstore.CollectionReservations,
			ID:         id,
			Data:       data,
		},
		{
			Op:         docstore.OpPut,
			TenantID:   r.UserID().String(),
			Collection: docstore.CollectionUserMirror,
			ID:         id,
			Data:       data,
		},
	}, nil
}

// Write persists both copies. The returned bool reports partial application:
// true means exactly one half survived and the reservation was flagged.
func (d *DualWriter) Write(ctx context.Context, r *reservation.Reservation) (bool, error) {
	writes, err := d.writes(r, false)
	if err != nil {
		return false, err
	}

	result := d.store.BatchWrite(ctx, writes)
	if result.Err() == nil {
		return false, nil
	}
	if result.AllFailed() {
		return false, errs.Mark(result.Err(), errs.ErrStoreOperationFailed)
	}

	// One half applied. Retry the other a bounded number of times.
	for _, idx := range result.Failed() {
		w := writes[idx]
		if d.retryHalf(ctx, w) {
			continue
		}

		d.logger.Error("dual write half exhausted retries; flagging for reconciliation",
			"reservation_id", r.ID(),
			"tenant_id", w.TenantID,
			"collection", w.Collection)
		d.flagForReconciliation(ctx, r, writes, idx)
		return true, errs.ErrPartialWrite
	}
	return false, nil
}

// Delete removes both denormalized copies (administrative removal).
func (d *DualWriter) Delete(ctx context.Context, r *reservation.Reservation) error {
	id := r.ID().String()
	result := d.store.BatchWrite(ctx, []docstore.Write{
		{Op: docstore.OpDelete, TenantID: r.CommunityID(), Collection: docstore.CollectionReservations, ID: id},
		{Op: docstore.OpDelete, TenantID: r.UserID().String(), Collection: docstore.CollectionUserMirror, ID: id},
	})
	if err := result.Err(); err != nil {
		return errs.Mark(err, errs.ErrStoreOperationFailed)
	}
	return nil
}

func (d *DualWriter) retryHalf(ctx context.Context, w docstore.Write) bool {
	for attempt := 0; attempt < maxHalfRetries; attempt++ {
		if d.store.BatchWrite(ctx, []docstore.Write{w}).Err() == nil {
			return true
		}
	}
	return false
}

// flagForReconciliation rewrites the surviving copy with the
// needs-reconciliation marker so administrators can find it.
func (d *DualWriter) flagForReconciliation(ctx context.Context, r *reservation.Reservation, writes []docstore.Write, failedIdx int) {
	flagged, err := d.writes(r, true)
	if err != nil {
		return
	}
	for i, w := range flagged {
		if i == failedIdx {
			continue
		}
		if werr := d.store.BatchWrite(ctx, []docstore.Write{w}).Err(); werr != nil {
			d.logger.Error("failed to mark reservation for reconciliation",
				"reservation_id", r.ID(),
				"tenant_id", writes[i].TenantID,
				"error", werr)
		}
	}
}
