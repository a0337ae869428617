package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/skyhigh-allstar/tryouts-api/internal/domain/athlete"
	"github.com/skyhigh-allstar/tryouts-api/internal/domain/registration"
	"github.com/skyhigh-allstar/tryouts-api/internal/infrastructure/repository/memory"
)

func newApprovalFixture(t *testing.T) (*ApprovalService, *memory.RegistrationRepository, *memory.AthleteRepository) {
	t.Helper()
	guardians := memory.NewGuardianRepository()
	regRepo := memory.NewRegistrationRepository(guardians, memory.SeedRegistrations()...)
	athleteRepo := memory.NewAthleteRepository(guardians)
	return NewApprovalService(regRepo, athleteRepo, guardians), regRepo, athleteRepo
}

func TestApprovalService_Check_NotFound(t *testing.T) {
	svc, _, _ := newApprovalFixture(t)

	result, err := svc.Check(t.Context(), "nobody@example.com")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if result.State.Kind != registration.CheckNotFound {
		t.Fatalf("expected not_found, got %s", result.State.Kind)
	}
}

func TestApprovalService_Check_ScheduledBeatsStatus(t *testing.T) {
	svc, _, _ := newApprovalFixture(t)

	result, err := svc.Check(t.Context(), "scheduled@example.com")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if result.State.Kind != registration.CheckScheduled {
		t.Fatalf("expected scheduled despite accepted status, got %s", result.State.Kind)
	}
}

func TestApprovalService_Check_AbsentBeatsAccepted(t *testing.T) {
	svc, _, _ := newApprovalFixture(t)

	result, err := svc.Check(t.Context(), "absent@example.com")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if result.State.Kind != registration.CheckAbsent {
		t.Fatalf("expected absent despite accepted status, got %s", result.State.Kind)
	}
}

func TestApprovalService_Check_ApprovedWithAssignments(t *testing.T) {
	svc, _, athleteRepo := newApprovalFixture(t)

	if err := athleteRepo.CreateWithGuardian(t.Context(), athlete.Athlete{
		ID:                    "ath-1",
		RegistrationID:        memory.SeedRegistrationAccepted,
		FullLegalName:         "Beatriz Nogueira",
		CPF:                   "000.000.000-00",
		EmergencyContactName:  "Lia Nogueira",
		EmergencyContactPhone: "+55 11 90000-0000",
		CreatedAt:             time.Now().UTC(),
		UpdatedAt:             time.Now().UTC(),
	}, nil); err != nil {
		t.Fatalf("seed athlete: %v", err)
	}

	result, err := svc.Check(t.Context(), "accepted@example.com")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if result.State.Kind != registration.CheckApproved {
		t.Fatalf("expected approved, got %s", result.State.Kind)
	}
	if len(result.State.Assignments) != 1 {
		t.Fatalf("expected one assignment, got %d", len(result.State.Assignments))
	}
	if !result.ProfileCompleted {
		t.Fatal("expected profile completed once the athlete row exists")
	}
}

func TestApprovalService_Check_AcceptedWithoutAssignmentsIsTryoutPending(t *testing.T) {
	svc, regRepo, _ := newApprovalFixture(t)

	if _, err := regRepo.UpdateReview(t.Context(), memory.SeedRegistrationAccepted, registration.StatusAccepted, nil); err != nil {
		t.Fatalf("clear assignments: %v", err)
	}

	result, err := svc.Check(t.Context(), "accepted@example.com")
	if err != nil {
		t.Fatalf("check failed: %v", err)
	}
	if result.State.Kind != registration.CheckTryoutPending {
		t.Fatalf("expected tryout_pending, got %s", result.State.Kind)
	}
	if result.ProfileCompleted {
		t.Fatal("expected profile not completed without an athlete row")
	}
}

func TestApprovalService_Check_InvalidEmail(t *testing.T) {
	svc, _, _ := newApprovalFixture(t)

	_, err := svc.Check(t.Context(), "not-an-email")
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}
