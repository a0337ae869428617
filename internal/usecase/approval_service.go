package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/sourcegraph/conc/pool"

	"github.com/skyhigh-allstar/tryouts-api/internal/domain/athlete"
	"github.com/skyhigh-allstar/tryouts-api/internal/domain/guardian"
	"github.com/skyhigh-allstar/tryouts-api/internal/domain/registration"
)

// CheckResult is the full payload behind one status-check lookup: the derived
// page state plus the profile-completion signal and the guardian used to
// pre-fill the athlete form for minors.
type CheckResult struct {
	State            registration.CheckState
	ProfileCompleted bool
	Athlete          *athlete.Athlete
	Guardian         *guardian.Guardian
}

type ApprovalService struct {
	regRepo      registration.Repository
	athleteRepo  athlete.Repository
	guardianRepo guardian.Repository
}

func NewApprovalService(
	regRepo registration.Repository,
	athleteRepo athlete.Repository,
	guardianRepo guardian.Repository,
) *ApprovalService {
	return &ApprovalService{
		regRepo:      regRepo,
		athleteRepo:  athleteRepo,
		guardianRepo: guardianRepo,
	}
}

// Check derives the status page state for an email. The state is re-derived
// from scratch on every call; nothing about previous checks is persisted.
func (s *ApprovalService) Check(ctx context.Context, email string) (CheckResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ApprovalService.Check")
	defer span.End()

	email = normalizeEmail(email)
	if email == "" || !strings.Contains(email, "@") {
		return CheckResult{}, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}

	reg, found, err := s.regRepo.GetByEmail(ctx, email)
	if err != nil {
		return CheckResult{}, fmt.Errorf("get registration by email: %w", err)
	}
	if !found {
		return CheckResult{State: registration.DeriveCheckState(nil)}, nil
	}

	result := CheckResult{State: registration.DeriveCheckState(&reg)}

	var (
		foundAthlete  athlete.Athlete
		athleteExists bool
		foundGuardian guardian.Guardian
		guardianFound bool
	)

	lookups := pool.New().WithErrors().WithContext(ctx)
	lookups.Go(func(ctx context.Context) error {
		var err error
		foundAthlete, athleteExists, err = s.athleteRepo.GetByRegistrationID(ctx, reg.ID)
		if err != nil {
			return fmt.Errorf("get athlete by registration id: %w", err)
		}
		return nil
	})
	lookups.Go(func(ctx context.Context) error {
		var err error
		foundGuardian, guardianFound, err = s.guardianRepo.GetByRegistrationID(ctx, reg.ID)
		if err != nil {
			return fmt.Errorf("get guardian by registration id: %w", err)
		}
		return nil
	})
	if err := lookups.Wait(); err != nil {
		return CheckResult{}, err
	}

	if athleteExists {
		result.ProfileCompleted = true
		result.Athlete = &foundAthlete
	}
	if guardianFound {
		result.Guardian = &foundGuardian
	}
	return result, nil
}
