// Package converter maps stored documents to domain entities and back.
package converter

import (
	"encoding/json"
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/keyhandover"
	"github.com/Gera09az/zentry-web-sub000/internal/domain/reservation"
	"github.com/Gera09az/zentry-web-sub000/internal/infra/docstore"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/errs"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/timeofday"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ReservationDoc mirrors the stored reservation record, address fields
// denormalized. Times of day are strings in any accepted clock format;
// horaFin may be absent, in which case duracionHoras fills it in.
type ReservationDoc struct {
	ID          string `json:"id"`
	AmenidadID  string `json:"amenidadId"`
	CommunityID string `json:"communityId"`
	Calle       string `json:"calle"`
	NumeroCasa  string `json:"numeroCasa"`
	UsuarioID   string `json:"usuarioId"`

	Fecha         string  `json:"fecha"`
	HoraInicio    string  `json:"horaInicio"`
	HoraFin       string  `json:"horaFin,omitempty"`
	DuracionHoras float64 `json:"duracionHoras,omitempty"`

	Personas  int    `json:"personas"`
	Invitados int    `json:"invitados"`
	Precio    string `json:"precio"`
	Estado    string `json:"estado"`

	FechaCreacion time.Time `json:"fechaCreacion"`

	CanceladoPor      *string    `json:"canceladoPor,omitempty"`
	FechaCancelacion  *time.Time `json:"fechaCancelacion,omitempty"`
	MotivoCancelacion string     `json:"motivoCancelacion,omitempty"`

	RechazadoPor  *string    `json:"rechazadoPor,omitempty"`
	FechaRechazo  *time.Time `json:"fechaRechazo,omitempty"`
	MotivoRechazo string     `json:"motivoRechazo,omitempty"`

	NecesitaReconciliacion bool `json:"necesitaReconciliacion,omitempty"`

	Llave *KeyDoc `json:"llave,omitempty"`
}

type KeyDoc struct {
	Estado                string     `json:"estado"`
	FechaEntrega          *time.Time `json:"fechaEntrega,omitempty"`
	EntregadoPor          *string    `json:"entregadoPor,omitempty"`
	FechaRecepcion        *time.Time `json:"fechaRecepcion,omitempty"`
	RecibidoPor           *string    `json:"recibidoPor,omitempty"`
	FechaLimiteDevolucion time.Time  `json:"fechaLimiteDevolucion"`
}

// DecodeReservation turns a stored document into the domain entity. An
// undecodable time string is a data-quality defect: the caller excludes the
// record from block grouping and quota counting and surfaces the error.
func DecodeReservation(doc docstore.Document, loc *time.Location) (*reservation.Reservation, error) {
	var rd ReservationDoc
	if err := json.Unmarshal(doc.Data, &rd); err != nil {
		return nil, errs.Wrap(err, "malformed reservation document")
	}
	return decodeReservationDoc(rd, loc)
}

func decodeReservationDoc(rd ReservationDoc, loc *time.Location) (*reservation.Reservation, error) {
	id, err := uuid.Parse(rd.ID)
	if err != nil {
		return nil, errs.Wrap(err, "invalid reservation id")
	}
	amenityID, err := uuid.Parse(rd.AmenidadID)
	if err != nil {
		return nil, errs.Wrap(err, "invalid amenity id")
	}
	userID, err := uuid.Parse(rd.UsuarioID)
	if err != nil {
		return nil, errs.Wrap(err, "invalid user id")
	}

	household, err := reservation.NewHousehold(rd.CommunityID, rd.Calle, rd.NumeroCasa)
	if err != nil {
		return nil, err
	}

	date, err := time.ParseInLocation("2006-01-02", rd.Fecha, loc)
	if err != nil {
		return nil, errs.Wrap(err, "invalid reservation date")
	}

	start, err := timeofday.Parse(rd.HoraInicio)
	if err != nil {
		return nil, errs.Mark(err, errs.ErrUndecodableTime)
	}

	var end timeofday.Minutes
	if rd.HoraFin != "" {
		end, err = timeofday.Parse(rd.HoraFin)
		if err != nil {
			return nil, errs.Mark(err, errs.ErrUndecodableTime)
		}
	} else {
		// end defaults to start + duration when no explicit end is recorded
		end = start + timeofday.Minutes(rd.DuracionHoras*60)
	}

	slot, err := reservation.NewSlot(date, start, end)
	if err != nil {
		return nil, err
	}

	price, err := decimal.NewFromString(rd.Precio)
	if err != nil {
		price = decimal.Zero
	}

	status := reservation.Status(rd.Estado)
	if !status.IsValid() {
		status = reservation.StatusPending
	}

	var cancellation *reservation.Cancellation
	if rd.FechaCancelacion != nil {
		actor := uuid.Nil
		if rd.CanceladoPor != nil {
			actor, _ = uuid.Parse(*rd.CanceladoPor)
		}
		cancellation = &reservation.Cancellation{
			ActorID: actor,
			At:      *rd.FechaCancelacion,
			Reason:  rd.MotivoCancelacion,
		}
	}

	var rejection *reservation.Rejection
	if rd.FechaRechazo != nil {
		actor := uuid.Nil
		if rd.RechazadoPor != nil {
			actor, _ = uuid.Parse(*rd.RechazadoPor)
		}
		rejection = &reservation.Rejection{
			ActorID: actor,
			At:      *rd.FechaRechazo,
			Reason:  rd.MotivoRechazo,
		}
	}

	var key *keyhandover.Record
	if rd.Llave != nil {
		key = keyhandover.Reconstruct(
			keyhandover.Status(rd.Llave.Estado),
			rd.Llave.FechaEntrega, parseActor(rd.Llave.EntregadoPor),
			rd.Llave.FechaRecepcion, parseActor(rd.Llave.RecibidoPor),
			rd.Llave.FechaLimiteDevolucion,
		)
	}

	return reservation.Reconstruct(
		id, amenityID, household, userID, slot,
		rd.Personas, rd.Invitados, price, status,
		rd.FechaCreacion, cancellation, rejection, key,
	), nil
}

func parseActor(s *string) *uuid.UUID {
	if s == nil {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}

// EncodeReservation renders the entity back into its document form.
// needsReconciliation is persisted on the tenant copy when the mirror half of
// a dual write exhausted its retries.
func EncodeReservation(r *reservation.Reservation, needsReconciliation bool) (json.RawMessage, error) {
	rd := ReservationDoc{
		ID:          r.ID().String(),
		AmenidadID:  r.AmenityID().String(),
		CommunityID: r.CommunityID(),
		Calle:       r.Household().Street(),
		NumeroCasa:  r.Household().HouseNumber(),
		UsuarioID:   r.UserID().String(),

		Fecha:      r.Slot().DateKey(),
		HoraInicio: r.Slot().Start().Format(),
		HoraFin:    r.Slot().End().Format(),

		Personas:  r.PartySize(),
		Invitados: r.GuestCount(),
		Precio:    r.Price().String(),
		Estado:    r.Status().String(),

		FechaCreacion:          r.CreatedAt(),
		NecesitaReconciliacion: needsReconciliation,
	}

	if c := r.Cancellation(); c != nil {
		actor := c.ActorID.String()
		at := c.At
		rd.CanceladoPor = &actor
		rd.FechaCancelacion = &at
		rd.MotivoCancelacion = c.Reason
	}

	if rej := r.Rejection(); rej != nil {
		actor := rej.ActorID.String()
		at := rej.At
		rd.RechazadoPor = &actor
		rd.FechaRechazo = &at
		rd.MotivoRechazo = rej.Reason
	}

	if key := r.Key(); key != nil {
		rd.Llave = &KeyDoc{
			Estado:                key.Status().String(),
			FechaEntrega:          key.DeliveredAt(),
			EntregadoPor:          formatActor(key.DeliveredBy()),
			FechaRecepcion:        key.ReceivedAt(),
			RecibidoPor:           formatActor(key.ReceivedBy()),
			FechaLimiteDevolucion: key.ReturnDeadline(),
		}
	}

	return json.Marshal(rd)
}

func formatActor(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
