package queries

import (
	"strconv"
	"time"

	"github.com/google/uuid"
)

// ReservationView is the flattened read model served to clients.
type ReservationView struct {
	ID           uuid.UUID `json:"id"`
	AmenityID    uuid.UUID `json:"amenityId"`
	CommunityID  string    `json:"communityId"`
	Street       string    `json:"street"`
	HouseNumber  string    `json:"houseNumber"`
	UserID       uuid.UUID `json:"userId"`
	Date         string    `json:"date"`
	Start        string    `json:"start"`
	End          string    `json:"end"`
	PartySize    int       `json:"partySize"`
	GuestCount   int       `json:"guestCount"`
	Price        string    `json:"price"`
	Status       string    `json:"status"`
	StatusLabel  string    `json:"statusLabel"`
	AccessStatus string    `json:"accessStatus"`
	KeyStatus    *string   `json:"keyStatus,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// BlockView is one display block of a day calendar: the reservations of an
// amenity sharing an identical time range.
type BlockView struct {
	Start        string            `json:"start"`
	End          string            `json:"end"`
	Reservations []ReservationView `json:"reservations"`
}

// ExportRow is the flattened record offered for tabular/CSV consumption.
// Formatting only, no business logic. The copier tags bind the row to the
// view it is flattened from.
type ExportRow struct {
	ID          string `copier:"-"`
	Household   string `copier:"-"`
	Amenity     string `copier:"-"`
	Date        string `copier:"Date"`
	Start       string `copier:"Start"`
	End         string `copier:"End"`
	PartySize   int    `copier:"PartySize"`
	Price       string `copier:"Price"`
	StatusLabel string `copier:"StatusLabel"`
}

// ExportHeader is the column order of the export surface.
var ExportHeader = []string{
	"id", "household", "amenity", "date", "start", "end", "party_size", "price", "status",
}

func (r ExportRow) Record() []string {
	return []string{
		r.ID,
		r.Household,
		r.Amenity,
		r.Date,
		r.Start,
		r.End,
		strconv.Itoa(r.PartySize),
		r.Price,
		r.StatusLabel,
	}
}
