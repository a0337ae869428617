package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/skyhigh-allstar/tryouts-api/internal/domain/registration"
	"github.com/skyhigh-allstar/tryouts-api/internal/infrastructure/repository/memory"
)

type sequenceIDGenerator struct {
	prefix string
	n      int
}

func (g *sequenceIDGenerator) NewID() (string, error) {
	g.n++
	return fmt.Sprintf("%s-%d", g.prefix, g.n), nil
}

func validSubmitInput() SubmitRegistrationInput {
	return SubmitRegistrationInput{
		Email:             "Nova@Example.com",
		FullName:          "Nova Applicant",
		Phone:             "+55 11 99999-0000",
		BirthDate:         time.Date(2000, time.May, 10, 0, 0, 0, 0, time.UTC),
		City:              "São Paulo",
		State:             "SP",
		Level:             "intermediate",
		PreferredPosition: "base",
		AvailableDays:     []string{"saturday", "sunday"},
	}
}

func TestRegistrationService_Submit_Success(t *testing.T) {
	regRepo := memory.NewRegistrationRepository(nil)
	svc := NewRegistrationService(regRepo, &sequenceIDGenerator{prefix: "reg"})
	svc.now = func() time.Time { return time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC) }

	saved, err := svc.Submit(t.Context(), validSubmitInput())
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	if saved.ID == "" {
		t.Fatal("expected a generated id")
	}
	if saved.Email != "nova@example.com" {
		t.Fatalf("expected lowercased email, got %s", saved.Email)
	}
	if saved.Status != registration.StatusPending {
		t.Fatalf("expected pending status, got %s", saved.Status)
	}
	if saved.AttendanceStatus != registration.AttendanceNotChecked {
		t.Fatalf("expected not_checked attendance, got %s", saved.AttendanceStatus)
	}
	if saved.PaymentStatus != registration.PaymentPending {
		t.Fatalf("expected pending payment, got %s", saved.PaymentStatus)
	}
	if saved.TryoutNumber == 0 {
		t.Fatal("expected an assigned tryout number")
	}
}

func TestRegistrationService_Submit_DuplicatePreCheck(t *testing.T) {
	regRepo := memory.NewRegistrationRepository(nil, memory.SeedRegistrations()...)
	svc := NewRegistrationService(regRepo, &sequenceIDGenerator{prefix: "reg"})

	input := validSubmitInput()
	input.Email = "PENDING@example.com"

	_, err := svc.Submit(t.Context(), input)
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered, got %v", err)
	}
}

// blindPreCheckRepo hides the duplicate from EmailExists so the insert path
// has to rely on the unique-constraint error.
type blindPreCheckRepo struct {
	registration.Repository
}

func (r blindPreCheckRepo) EmailExists(context.Context, string) (bool, error) {
	return false, nil
}

func TestRegistrationService_Submit_DuplicateConstraintFallback(t *testing.T) {
	regRepo := memory.NewRegistrationRepository(nil, memory.SeedRegistrations()...)
	svc := NewRegistrationService(blindPreCheckRepo{Repository: regRepo}, &sequenceIDGenerator{prefix: "reg"})

	input := validSubmitInput()
	input.Email = "pending@example.com"

	_, err := svc.Submit(t.Context(), input)
	if !errors.Is(err, ErrAlreadyRegistered) {
		t.Fatalf("expected ErrAlreadyRegistered from constraint fallback, got %v", err)
	}
}

func TestRegistrationService_Submit_MinorRequiresGuardian(t *testing.T) {
	regRepo := memory.NewRegistrationRepository(nil)
	svc := NewRegistrationService(regRepo, &sequenceIDGenerator{prefix: "reg"})
	svc.now = func() time.Time { return time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC) }

	input := validSubmitInput()
	input.BirthDate = time.Date(2012, time.May, 10, 0, 0, 0, 0, time.UTC)

	_, err := svc.Submit(t.Context(), input)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing guardian, got %v", err)
	}
}

func TestRegistrationService_Submit_MinorCreatesGuardian(t *testing.T) {
	guardians := memory.NewGuardianRepository()
	regRepo := memory.NewRegistrationRepository(guardians)
	svc := NewRegistrationService(regRepo, &sequenceIDGenerator{prefix: "reg"})
	svc.now = func() time.Time { return time.Date(2026, time.March, 1, 10, 0, 0, 0, time.UTC) }

	input := validSubmitInput()
	input.BirthDate = time.Date(2012, time.May, 10, 0, 0, 0, 0, time.UTC)
	input.GuardianFullName = "Paula Applicant"
	input.GuardianPhone = "+55 11 98888-0000"
	input.GuardianRelationship = "mother"

	saved, err := svc.Submit(t.Context(), input)
	if err != nil {
		t.Fatalf("submit failed: %v", err)
	}

	g, found, err := guardians.GetByRegistrationID(t.Context(), saved.ID)
	if err != nil {
		t.Fatalf("get guardian: %v", err)
	}
	if !found {
		t.Fatal("expected a guardian row for a minor")
	}
	if g.FullName != "Paula Applicant" {
		t.Fatalf("unexpected guardian name: %s", g.FullName)
	}
}

func TestRegistrationService_Submit_InvalidLevel(t *testing.T) {
	regRepo := memory.NewRegistrationRepository(nil)
	svc := NewRegistrationService(regRepo, &sequenceIDGenerator{prefix: "reg"})

	input := validSubmitInput()
	input.Level = "pro"

	_, err := svc.Submit(t.Context(), input)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
