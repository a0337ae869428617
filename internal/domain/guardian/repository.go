package guardian

import "context"

// Repository describes guardian persistence needs from use cases. Guardian
// creation happens inside the registration and athlete transactions, so this
// interface only exposes reads.
type Repository interface {
	GetByRegistrationID(ctx context.Context, registrationID string) (Guardian, bool, error)
}
