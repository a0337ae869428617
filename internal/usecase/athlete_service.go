package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skyhigh-allstar/tryouts-api/internal/domain/athlete"
	"github.com/skyhigh-allstar/tryouts-api/internal/domain/guardian"
	"github.com/skyhigh-allstar/tryouts-api/internal/domain/registration"
	idgen "github.com/skyhigh-allstar/tryouts-api/internal/platform/id"
)

type CompleteProfileInput struct {
	Email string

	FullLegalName string
	CPF           string
	RG            string
	BirthDate     time.Time
	Nationality   string
	Instagram     string
	ShirtSize     string

	EmergencyContactName         string
	EmergencyContactPhone        string
	EmergencyContactRelationship string

	GuardianFullName     string
	GuardianPhone        string
	GuardianEmail        string
	GuardianCPF          string
	GuardianRelationship string
}

type AthleteService struct {
	regRepo      registration.Repository
	athleteRepo  athlete.Repository
	guardianRepo guardian.Repository
	idGen        idgen.Generator
	now          func() time.Time
}

func NewAthleteService(
	regRepo registration.Repository,
	athleteRepo athlete.Repository,
	guardianRepo guardian.Repository,
	idGen idgen.Generator,
) *AthleteService {
	return &AthleteService{
		regRepo:      regRepo,
		athleteRepo:  athleteRepo,
		guardianRepo: guardianRepo,
		idGen:        idGen,
		now:          time.Now,
	}
}

// CompleteProfile creates the athlete row for an accepted registration, plus
// the guardian row for minors that do not have one yet. Submitting twice for
// the same registration fails with ErrProfileAlreadyCompleted.
func (s *AthleteService) CompleteProfile(ctx context.Context, input CompleteProfileInput) (athlete.Athlete, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AthleteService.CompleteProfile")
	defer span.End()

	input.Email = normalizeEmail(input.Email)
	input.FullLegalName = strings.TrimSpace(input.FullLegalName)
	input.CPF = strings.TrimSpace(input.CPF)

	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return athlete.Athlete{}, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if input.FullLegalName == "" {
		return athlete.Athlete{}, fmt.Errorf("%w: full legal name is required", ErrInvalidInput)
	}
	if input.CPF == "" {
		return athlete.Athlete{}, fmt.Errorf("%w: cpf is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.EmergencyContactName) == "" {
		return athlete.Athlete{}, fmt.Errorf("%w: emergency contact name is required", ErrInvalidInput)
	}
	if strings.TrimSpace(input.EmergencyContactPhone) == "" {
		return athlete.Athlete{}, fmt.Errorf("%w: emergency contact phone is required", ErrInvalidInput)
	}

	reg, found, err := s.regRepo.GetByEmail(ctx, input.Email)
	if err != nil {
		return athlete.Athlete{}, fmt.Errorf("get registration by email: %w", err)
	}
	if !found {
		return athlete.Athlete{}, fmt.Errorf("%w: no registration for %s", ErrNotFound, input.Email)
	}
	if reg.Status != registration.StatusAccepted {
		return athlete.Athlete{}, fmt.Errorf("%w: registration %s", ErrNotApproved, reg.ID)
	}

	if _, exists, err := s.athleteRepo.GetByRegistrationID(ctx, reg.ID); err != nil {
		return athlete.Athlete{}, fmt.Errorf("check existing athlete: %w", err)
	} else if exists {
		return athlete.Athlete{}, fmt.Errorf("%w: registration %s", ErrProfileAlreadyCompleted, reg.ID)
	}

	now := s.now().UTC()
	birthDate := input.BirthDate
	if birthDate.IsZero() {
		birthDate = reg.BirthDate
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return athlete.Athlete{}, fmt.Errorf("generate athlete id: %w", err)
	}

	a := athlete.Athlete{
		ID:             id,
		RegistrationID: reg.ID,
		FullLegalName:  input.FullLegalName,
		CPF:            input.CPF,
		RG:             strings.TrimSpace(input.RG),
		BirthDate:      birthDate,
		Nationality:    strings.TrimSpace(input.Nationality),
		Instagram:      athlete.NormalizeInstagram(input.Instagram),
		ShirtSize:      strings.TrimSpace(input.ShirtSize),

		EmergencyContactName:         strings.TrimSpace(input.EmergencyContactName),
		EmergencyContactPhone:        strings.TrimSpace(input.EmergencyContactPhone),
		EmergencyContactRelationship: strings.TrimSpace(input.EmergencyContactRelationship),

		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := a.ValidateBasic(); err != nil {
		return athlete.Athlete{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	g, err := s.guardianForMinor(ctx, reg, birthDate, input, now)
	if err != nil {
		return athlete.Athlete{}, err
	}

	if err := s.athleteRepo.CreateWithGuardian(ctx, a, g); err != nil {
		// A concurrent completion can slip past the pre-check above; the
		// constraint fallback reports the same conflict category.
		if errors.Is(err, athlete.ErrAlreadyExists) {
			return athlete.Athlete{}, fmt.Errorf("%w: registration %s", ErrProfileAlreadyCompleted, reg.ID)
		}
		return athlete.Athlete{}, fmt.Errorf("create athlete: %w", err)
	}
	return a, nil
}

// guardianForMinor decides whether this completion must write a guardian row.
// Adults never get one. Minors whose registration already created a guardian
// keep the existing row untouched.
func (s *AthleteService) guardianForMinor(
	ctx context.Context,
	reg registration.Registration,
	birthDate time.Time,
	input CompleteProfileInput,
	now time.Time,
) (*guardian.Guardian, error) {
	if registration.Age(birthDate, now) >= 18 {
		return nil, nil
	}

	if _, exists, err := s.guardianRepo.GetByRegistrationID(ctx, reg.ID); err != nil {
		return nil, fmt.Errorf("check existing guardian: %w", err)
	} else if exists {
		return nil, nil
	}

	if strings.TrimSpace(input.GuardianFullName) == "" {
		return nil, fmt.Errorf("%w: guardian name is required for minors", ErrInvalidInput)
	}
	if strings.TrimSpace(input.GuardianPhone) == "" {
		return nil, fmt.Errorf("%w: guardian phone is required for minors", ErrInvalidInput)
	}

	guardianID, err := s.idGen.NewID()
	if err != nil {
		return nil, fmt.Errorf("generate guardian id: %w", err)
	}
	g := &guardian.Guardian{
		ID:             guardianID,
		RegistrationID: reg.ID,
		FullName:       strings.TrimSpace(input.GuardianFullName),
		Phone:          strings.TrimSpace(input.GuardianPhone),
		Email:          normalizeEmail(input.GuardianEmail),
		CPF:            strings.TrimSpace(input.GuardianCPF),
		Relationship:   strings.TrimSpace(input.GuardianRelationship),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := g.ValidateBasic(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return g, nil
}
