package request

import (
	"errors"
	"strings"
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/keyhandover"
	"github.com/Gera09az/zentry-web-sub000/internal/domain/reservation"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/timeofday"
	"github.com/Gera09az/zentry-web-sub000/internal/usecase/commands"

	"github.com/google/uuid"
)

var (
	ErrInvalidDate      = errors.New("date must be formatted as YYYY-MM-DD")
	ErrUnknownStatus    = errors.New("unknown target status")
	ErrUnknownKeyStatus = errors.New("unknown target key status")
)

type EvaluateReservationRequest struct {
	AmenityID   uuid.UUID `json:"amenityId" binding:"required"`
	Street      string    `json:"street" binding:"required"`
	HouseNumber string    `json:"houseNumber" binding:"required"`
	Date        string    `json:"date" binding:"required"`
	Start       string    `json:"start" binding:"required"`
	End         string    `json:"end" binding:"required"`
	PartySize   int       `json:"partySize" binding:"required,min=1"`
	GuestCount  int       `json:"guestCount" binding:"min=0"`
}

func (r EvaluateReservationRequest) ToCommand(loc *time.Location) (commands.EvaluateRequest, error) {
	date, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(r.Date), loc)
	if err != nil {
		return commands.EvaluateRequest{}, ErrInvalidDate
	}

	start, err := timeofday.Parse(r.Start)
	if err != nil {
		return commands.EvaluateRequest{}, err
	}
	end, err := timeofday.Parse(r.End)
	if err != nil {
		return commands.EvaluateRequest{}, err
	}

	return commands.EvaluateRequest{
		AmenityID:   r.AmenityID,
		Street:      strings.TrimSpace(r.Street),
		HouseNumber: strings.TrimSpace(r.HouseNumber),
		Date:        date,
		Start:       start,
		End:         end,
		PartySize:   r.PartySize,
		GuestCount:  r.GuestCount,
	}, nil
}

type TransitionRequest struct {
	Target string  `json:"target" binding:"required"`
	Reason *string `json:"reason,omitempty"`
}

func (r TransitionRequest) ToStatus() (reservation.Status, error) {
	status := reservation.Status(strings.TrimSpace(r.Target))
	if !status.IsValid() {
		return "", ErrUnknownStatus
	}
	return status, nil
}

func (r TransitionRequest) GetReason() *string {
	if r.Reason == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*r.Reason)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

type KeyStatusRequest struct {
	Target string `json:"target" binding:"required"`
}

func (r KeyStatusRequest) ToStatus() (keyhandover.Status, error) {
	status := keyhandover.Status(strings.TrimSpace(r.Target))
	if !status.IsValid() {
		return "", ErrUnknownKeyStatus
	}
	return status, nil
}
