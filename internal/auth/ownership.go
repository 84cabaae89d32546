package auth

import (
	"net/http"

	"github.com/nekogravitycat/resource-share-backend/internal/pkg/apperror"
)

var (
	ErrForbidden       = apperror.New(http.StatusForbidden, "permission denied")
	ErrUnauthenticated = apperror.New(http.StatusUnauthorized, "authentication required")
)

// IsOwner reports whether actingUser owns an entity whose owner is entityOwner.
// An empty acting user never owns anything.
func IsOwner(entityOwner, actingUser string) bool {
	return actingUser != "" && entityOwner == actingUser
}

// AssertOwner returns ErrForbidden unless actingUser owns the entity.
func AssertOwner(entityOwner, actingUser string) error {
	if !IsOwner(entityOwner, actingUser) {
		return ErrForbidden
	}
	return nil
}
