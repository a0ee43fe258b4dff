//go:build unit || e2e

package builder

import (
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/keyhandover"
	"github.com/Gera09az/zentry-web-sub000/internal/domain/reservation"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/timeofday"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReservationBuilder assembles reservations directly in a given status,
// bypassing the lifecycle guards. Defaults: an approved two-hour pool
// booking tomorrow at 10:00 for household "Roble 12".
type ReservationBuilder struct {
	ID          uuid.UUID
	AmenityID   uuid.UUID
	CommunityID string
	Street      string
	HouseNumber string
	UserID      uuid.UUID
	Date        time.Time
	Start       timeofday.Minutes
	End         timeofday.Minutes
	PartySize   int
	GuestCount  int
	Price       decimal.Decimal
	Status      reservation.Status
	CreatedAt   time.Time
	Key         *keyhandover.Record
}

func NewReservationBuilder() *ReservationBuilder {
	now := time.Now()
	return &ReservationBuilder{
		ID:          uuid.New(),
		AmenityID:   uuid.New(),
		CommunityID: "community-1",
		Street:      "Roble",
		HouseNumber: "12",
		UserID:      uuid.New(),
		Date:        now.AddDate(0, 0, 1),
		Start:       timeofday.Minutes(10 * 60),
		End:         timeofday.Minutes(12 * 60),
		PartySize:   4,
		GuestCount:  0,
		Price:       decimal.NewFromInt(250),
		Status:      reservation.StatusApproved,
		CreatedAt:   now,
	}
}

func (b *ReservationBuilder) With(mutate func(*ReservationBuilder)) *ReservationBuilder {
	mutate(b)
	return b
}

func (b *ReservationBuilder) Build() *reservation.Reservation {
	household, err := reservation.NewHousehold(b.CommunityID, b.Street, b.HouseNumber)
	if err != nil {
		panic("builder produced invalid household: " + err.Error())
	}
	slot, err := reservation.NewSlot(b.Date, b.Start, b.End)
	if err != nil {
		panic("builder produced invalid slot: " + err.Error())
	}
	return reservation.Reconstruct(
		b.ID, b.AmenityID,
		household,
		b.UserID,
		slot,
		b.PartySize, b.GuestCount,
		b.Price,
		b.Status,
		b.CreatedAt,
		nil,
		nil,
		b.Key,
	)
}

// BuildCandidate derives the matching admissibility candidate.
func (b *ReservationBuilder) BuildCandidate() reservation.Candidate {
	household, err := reservation.NewHousehold(b.CommunityID, b.Street, b.HouseNumber)
	if err != nil {
		panic("builder produced invalid household: " + err.Error())
	}
	return reservation.Candidate{
		Household:  household,
		Date:       b.Date,
		Start:      b.Start,
		End:        b.End,
		PartySize:  b.PartySize,
		GuestCount: b.GuestCount,
	}
}
