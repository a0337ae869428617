package athlete

import (
	"context"
	"errors"

	"github.com/skyhigh-allstar/tryouts-api/internal/domain/guardian"
)

// ErrAlreadyExists is returned by CreateWithGuardian when the registration
// already has an athlete row. Callers can race past a GetByRegistrationID
// pre-check; the unique constraint on registration_id is the authority.
var ErrAlreadyExists = errors.New("athlete already exists")

// Repository describes athlete persistence needs from use cases.
type Repository interface {
	// CreateWithGuardian inserts the athlete and, when g is non-nil, the
	// guardian row in one transaction. Neither row is written if either
	// insert fails.
	CreateWithGuardian(ctx context.Context, a Athlete, g *guardian.Guardian) error
	GetByRegistrationID(ctx context.Context, registrationID string) (Athlete, bool, error)
	UpdatePhotoURL(ctx context.Context, registrationID, url string) (Athlete, error)
}
