// Package audit appends reservation transition records to the append-only
// audit collection.
package audit

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/reservation"
	"github.com/Gera09az/zentry-web-sub000/internal/infra/converter"
	"github.com/Gera09az/zentry-web-sub000/internal/infra/docstore"

	"github.com/google/uuid"
)

type Sink struct {
	store  docstore.Store
	logger *slog.Logger
}

func NewSink(store docstore.Store, logger *slog.Logger) *Sink {
	return &Sink{store: store, logger: logger}
}

// Record appends one trail entry. The trail is advisory: a failed append is
// logged and never blocks the transition that produced it.
func (s *Sink) Record(ctx context.Context, tenantID string, event reservation.TransitionEvent) {
	doc := converter.AuditDoc{
		ReservationID: event.ReservationID.String(),
		FromStatus:    event.From.String(),
		ToStatus:      event.To.String(),
		ActorID:       event.ActorID.String(),
		Reason:        event.Reason,
		Timestamp:     event.At,
	}
	data, err := json.Marshal(doc)
	if err != nil {
		s.logger.Error("failed to encode audit entry", "error", err)
		return
	}

	result := s.store.BatchWrite(ctx, []docstore.Write{{
		Op:         docstore.OpPut,
		TenantID:   tenantID,
		Collection: docstore.CollectionAudit,
		ID:         uuid.NewString(),
		Data:       data,
	}})
	if err := result.Err(); err != nil {
		s.logger.Error("failed to append audit entry",
			"reservation_id", event.ReservationID,
			"from", event.From,
			"to", event.To,
			"error", err)
	}
}
