package converter

import (
	"encoding/json"
	"time"

	"github.com/Gera09az/zentry-web-sub000/internal/domain/amenity"
	"github.com/Gera09az/zentry-web-sub000/internal/infra/docstore"
	"github.com/Gera09az/zentry-web-sub000/internal/pkg/errs"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AmenityDoc is the stored amenity record with its embedded ruleset.
type AmenityDoc struct {
	ID          string             `json:"id"`
	CommunityID string             `json:"communityId"`
	Nombre      string             `json:"nombre"`
	Capacidad   int                `json:"capacidad"`
	Precio      string             `json:"precio,omitempty"`
	DePago      bool               `json:"dePago"`
	Activa      bool               `json:"activa"`
	Reglas      amenity.RawRuleSet `json:"reglas"`
}

// DecodeAmenity resolves a stored amenity document. Ruleset time-string
// defects are returned alongside the entity for operator attention; they do
// not abort resolution.
func DecodeAmenity(doc docstore.Document) (*amenity.Amenity, []error, error) {
	var ad AmenityDoc
	if err := json.Unmarshal(doc.Data, &ad); err != nil {
		return nil, nil, errs.Wrap(err, "malformed amenity document")
	}

	id, err := uuid.Parse(ad.ID)
	if err != nil {
		return nil, nil, errs.Wrap(err, "invalid amenity id")
	}

	price := decimal.Zero
	if ad.Precio != "" {
		if p, perr := decimal.NewFromString(ad.Precio); perr == nil {
			price = p
		}
	}

	rules, defects := amenity.Resolve(ad.Reglas)

	entity, err := amenity.NewAmenity(id, ad.CommunityID, ad.Nombre, ad.Capacidad, price, ad.DePago, ad.Activa, rules)
	if err != nil {
		return nil, defects, err
	}
	return entity, defects, nil
}

// AuditDoc is one append-only audit trail entry.
type AuditDoc struct {
	ReservationID string    `json:"reservationId"`
	FromStatus    string    `json:"fromStatus"`
	ToStatus      string    `json:"toStatus"`
	ActorID       string    `json:"actorId"`
	Reason        string    `json:"reason,omitempty"`
	Timestamp     time.Time `json:"timestamp"`
}
