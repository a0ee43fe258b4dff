package response

import (
	"github.com/Gera09az/zentry-web-sub000/internal/domain/reservation"
	"github.com/Gera09az/zentry-web-sub000/internal/usecase/commands"

	"github.com/google/uuid"
)

type EvaluateResponse struct {
	Admissible bool   `json:"admissible"`
	Reason     string `json:"reason,omitempty"`
}

func FromDecision(d reservation.Decision) EvaluateResponse {
	return EvaluateResponse{
		Admissible: d.Admissible,
		Reason:     d.Reason,
	}
}

type TransitionResponse struct {
	ReservationID    uuid.UUID `json:"reservationId"`
	From             string    `json:"from"`
	To               string    `json:"to"`
	KeyStatus        *string   `json:"keyStatus,omitempty"`
	PartiallyApplied bool      `json:"partiallyApplied"`
}

func FromTransitionResult(r *commands.TransitionResult) TransitionResponse {
	return TransitionResponse{
		ReservationID:    r.ReservationID,
		From:             r.From.String(),
		To:               r.To.String(),
		KeyStatus:        r.KeyStatus,
		PartiallyApplied: r.PartiallyApplied,
	}
}

type AccessStatusResponse struct {
	AccessStatus string `json:"accessStatus"`
}
