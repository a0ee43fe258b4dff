package usecase

import (
	"errors"

	"github.com/Gera09az/zentry-web-sub000/internal/pkg/jwt"

	"github.com/google/uuid"
)

var ErrUnknownRole = errors.New("unknown role")

var knownRoles = map[string]struct{}{
	"resident": {},
	"guard":    {},
	"admin":    {},
}

// Identity is the authenticated caller extracted from a token.
type Identity struct {
	UserID      uuid.UUID
	Role        string
	CommunityID string
}

// TokenValidator provides token validation for middleware
type TokenValidator interface {
	ValidateToken(tokenString string) (Identity, error)
}

type tokenValidatorImpl struct {
	jwtService *jwt.Service
}

func NewTokenValidator(jwtService *jwt.Service) TokenValidator {
	return &tokenValidatorImpl{
		jwtService: jwtService,
	}
}

func (t *tokenValidatorImpl) ValidateToken(tokenString string) (Identity, error) {
	claims, err := t.jwtService.ValidateToken(tokenString)
	if err != nil {
		return Identity{}, err
	}

	if _, ok := knownRoles[claims.Role]; !ok {
		return Identity{}, ErrUnknownRole
	}

	return Identity{
		UserID:      claims.UserID,
		Role:        claims.Role,
		CommunityID: claims.CommunityID,
	}, nil
}
