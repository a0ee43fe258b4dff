package amenity

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrEmptyAmenityName   = errors.New("amenity name cannot be empty")
	ErrNegativeCapacity   = errors.New("capacity cannot be negative")
	ErrAmenityNameTooLong = errors.New("amenity name is too long (max 255 characters)")
)

const (
	MaxAmenityNameLength = 255
)

// Amenity is a shared facility of a community (event hall, court, pool).
// Only the fields the engine consumes are modeled; administrative CRUD of
// the metadata lives elsewhere.
type Amenity struct {
	id          uuid.UUID
	communityID string
	name        string
	capacity    int
	price       decimal.Decimal
	requiresFee bool
	active      bool
	rules       RuleSet
}

func NewAmenity(
	id uuid.UUID,
	communityID, name string,
	capacity int,
	price decimal.Decimal,
	requiresFee, active bool,
	rules RuleSet,
) (*Amenity, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyAmenityName
	}
	if len(name) > MaxAmenityNameLength {
		return nil, ErrAmenityNameTooLong
	}
	if capacity < 0 {
		return nil, ErrNegativeCapacity
	}

	return &Amenity{
		id:          id,
		communityID: communityID,
		name:        name,
		capacity:    capacity,
		price:       price,
		requiresFee: requiresFee,
		active:      active,
		rules:       rules,
	}, nil
}

func (a *Amenity) ID() uuid.UUID          { return a.id }
func (a *Amenity) CommunityID() string    { return a.communityID }
func (a *Amenity) Name() string           { return a.name }
func (a *Amenity) Capacity() int          { return a.capacity }
func (a *Amenity) Price() decimal.Decimal { return a.price }
func (a *Amenity) RequiresFee() bool      { return a.requiresFee }
func (a *Amenity) IsActive() bool         { return a.active }
func (a *Amenity) Rules() RuleSet         { return a.rules }
