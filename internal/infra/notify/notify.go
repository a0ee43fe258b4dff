// Package notify is the push-notification dispatcher adapter. Delivery is
// fire-and-forget: failures are logged and never roll back or block the
// status transition that triggered them.
package notify

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

type Dispatcher struct {
	logger *slog.Logger
}

func NewDispatcher(logger *slog.Logger) *Dispatcher {
	return &Dispatcher{logger: logger}
}

func (d *Dispatcher) Notify(_ context.Context, userID uuid.UUID, amenityName string, date time.Time, newStatus string, reason *string) {
	args := []any{
		"user_id", userID,
		"amenity", amenityName,
		"date", date.Format("2006-01-02"),
		"status", newStatus,
	}
	if reason != nil {
		args = append(args, "reason", *reason)
	}
	d.logger.Info("reservation status notification", args...)
}
