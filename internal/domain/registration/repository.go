package registration

import (
	"context"
	"errors"
	"time"

	"github.com/skyhigh-allstar/tryouts-api/internal/domain/guardian"
)

// ErrDuplicateEmail is returned by Create when the email column's unique
// constraint rejects the row. Callers treat it the same as a positive
// EmailExists pre-check.
var ErrDuplicateEmail = errors.New("email already registered")

// ErrNotFound is returned by update methods when no row matches the id.
var ErrNotFound = errors.New("registration not found")

// ListFilter narrows admin listings. Zero values mean "no constraint".
type ListFilter struct {
	Status           Status
	AttendanceStatus AttendanceStatus
	PaymentStatus    PaymentStatus
	// Search matches name or email, case-insensitive substring.
	Search string
	Limit  int
	Offset int
}

// Repository describes registration persistence needs from use cases.
type Repository interface {
	// Create inserts the registration and, when g is non-nil, the guardian
	// row in one transaction.
	Create(ctx context.Context, reg Registration, g *guardian.Guardian) error
	GetByID(ctx context.Context, id string) (Registration, bool, error)
	GetByEmail(ctx context.Context, email string) (Registration, bool, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, filter ListFilter) ([]Registration, int, error)
	UpdateAttendance(ctx context.Context, id string, status AttendanceStatus) (Registration, error)
	UpdatePayment(ctx context.Context, id string, status PaymentStatus) (Registration, error)
	UpdatePaymentProofURL(ctx context.Context, id, url string) (Registration, error)
	UpdatePhotoURL(ctx context.Context, id, url string) (Registration, error)
	UpdateTryoutNumber(ctx context.Context, id string, number int) (Registration, error)
	UpdateScheduledTryoutDate(ctx context.Context, id string, date *time.Time) (Registration, error)
	UpdateReview(ctx context.Context, id string, status Status, assignments []TeamAssignment) (Registration, error)
}
