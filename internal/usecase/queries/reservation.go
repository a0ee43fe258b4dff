package queries

import (
	"context"
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/reservation"
	"github.com/Gera09az/zentry-web-sub000/internal/infra"
	"github.com/Gera09az/zentry-web-sub000/internal/infra/converter"
	"github.com/Gera09az/zentry-web-sub000/internal/infra/docstore"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/clock"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// WorkingSet is the synchronizer's merged reservation list.
type WorkingSet interface {
	Reservations(tenantID string) []*reservation.Reservation
}

type ReservationQueries interface {
	// GetByID serves one reservation view from the merged working set.
	GetByID(ctx context.Context, tenantID string, id uuid.UUID) (*ReservationView, error)
	// DayBlocks partitions one amenity's reservations of a day into display
	// blocks.
	DayBlocks(ctx context.Context, tenantID string, amenityID uuid.UUID, date time.Time) ([]BlockView, error)
	// AccessStatus derives the display label for a reservation right now.
	AccessStatus(ctx context.Context, tenantID string, id uuid.UUID) (reservation.DisplayStatus, error)
	// ExportRows flattens a tenant's reservations for CSV consumption.
	ExportRows(ctx context.Context, tenantID string) ([]ExportRow, error)
}

type reservationQueriesImpl struct {
	workingSet WorkingSet
	store      docstore.Store
	clock      clock.Clock
	loc        *time.Location
}

func NewReservationQueries(workingSet WorkingSet, store docstore.Store, clk clock.Clock, loc *time.Location) ReservationQueries {
	return &reservationQueriesImpl{
		workingSet: workingSet,
		store:      store,
		clock:      clk,
		loc:        loc,
	}
}

func (q *reservationQueriesImpl) GetByID(_ context.Context, tenantID string, id uuid.UUID) (*ReservationView, error) {
	for _, r := range q.workingSet.Reservations(tenantID) {
		if r.ID() == id {
			view := q.toView(r)
			return &view, nil
		}
	}
	return nil, errs.ErrReservationNotFound
}

func (q *reservationQueriesImpl) DayBlocks(_ context.Context, tenantID string, amenityID uuid.UUID, date time.Time) ([]BlockView, error) {
	var dayReservations []*reservation.Reservation
	for _, r := range q.workingSet.Reservations(tenantID) {
		if r.AmenityID() != amenityID {
			continue
		}
		d := r.Slot().Date()
		if d.Year() == date.Year() && d.YearDay() == date.YearDay() {
			dayReservations = append(dayReservations, r)
		}
	}

	blocks := reservation.BuildBlocks(dayReservations)
	views := make([]BlockView, len(blocks))
	for i, b := range blocks {
		bv := BlockView{Start: b.Start.Format(), End: b.End.Format()}
		for _, r := range b.Reservations {
			bv.Reservations = append(bv.Reservations, q.toView(r))
		}
		views[i] = bv
	}
	return views, nil
}

func (q *reservationQueriesImpl) AccessStatus(_ context.Context, tenantID string, id uuid.UUID) (reservation.DisplayStatus, error) {
	for _, r := range q.workingSet.Reservations(tenantID) {
		if r.ID() == id {
			return r.AccessStatus(q.clock.Now().In(q.loc)), nil
		}
	}
	return "", errs.ErrReservationNotFound
}

func (q *reservationQueriesImpl) ExportRows(ctx context.Context, tenantID string) ([]ExportRow, error) {
	amenityNames, err := q.amenityNames(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	reservations := q.workingSet.Reservations(tenantID)
	rows := make([]ExportRow, 0, len(reservations))
	for _, r := range reservations {
		view := q.toView(r)
		var row ExportRow
		if cerr := copier.Copy(&row, &view); cerr != nil {
			return nil, errs.Wrap(cerr, "failed to flatten reservation view")
		}
		row.ID = view.ID.String()
		row.Household = r.Household().String()
		row.Amenity = amenityNames[r.AmenityID()]
		rows = append(rows, row)
	}
	return rows, nil
}

func (q *reservationQueriesImpl) amenityNames(ctx context.Context, tenantID string) (map[uuid.UUID]string, error) {
	docs, err := q.store.Query(ctx, docstore.Query{
		TenantID:   tenantID,
		Collection: docstore.CollectionRuleSets,
	})
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return map[uuid.UUID]string{}, nil
		}
		return nil, errs.Mark(err, errs.ErrStoreOperationFailed)
	}

	names := make(map[uuid.UUID]string, len(docs))
	for _, doc := range docs {
		amen, _, derr := converter.DecodeAmenity(doc)
		if derr != nil {
			continue
		}
		names[amen.ID()] = amen.Name()
	}
	return names, nil
}

func (q *reservationQueriesImpl) toView(r *reservation.Reservation) ReservationView {
	view := ReservationView{
		ID:           r.ID(),
		AmenityID:    r.AmenityID(),
		CommunityID:  r.CommunityID(),
		Street:       r.Household().Street(),
		HouseNumber:  r.Household().HouseNumber(),
		UserID:       r.UserID(),
		Date:         r.Slot().DateKey(),
		Start:        r.Slot().Start().Format(),
		End:          r.Slot().End().Format(),
		PartySize:    r.PartySize(),
		GuestCount:   r.GuestCount(),
		Price:        r.Price().String(),
		Status:       r.Status().String(),
		StatusLabel:  r.Status().Label(),
		AccessStatus: string(r.AccessStatus(q.clock.Now().In(q.loc))),
		CreatedAt:    r.CreatedAt(),
	}
	if key := r.Key(); key != nil {
		status := key.Status().String()
		view.KeyStatus = &status
	}
	return view
}
