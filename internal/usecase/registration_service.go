package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skyhigh-allstar/tryouts-api/internal/domain/guardian"
	"github.com/skyhigh-allstar/tryouts-api/internal/domain/registration"
	idgen "github.com/skyhigh-allstar/tryouts-api/internal/platform/id"
)

type SubmitRegistrationInput struct {
	Email     string
	FullName  string
	Phone     string
	BirthDate time.Time
	CPF       string
	City      string
	State     string
	Instagram string
	ShirtSize string

	HasExperience     bool
	ExperienceYears   int
	PreviousTeam      string
	Level             string
	PreferredPosition string

	AvailableDays []string
	CanTravel     bool

	MedicalConditions string
	Allergies         string
	Medications       string

	GuardianFullName     string
	GuardianPhone        string
	GuardianEmail        string
	GuardianCPF          string
	GuardianRelationship string
}

type RegistrationService struct {
	regRepo registration.Repository
	idGen   idgen.Generator
	now     func() time.Time
}

func NewRegistrationService(regRepo registration.Repository, idGen idgen.Generator) *RegistrationService {
	return &RegistrationService{
		regRepo: regRepo,
		idGen:   idGen,
		now:     time.Now,
	}
}

// Submit creates one registration row, plus a guardian row when the applicant
// is a minor. A duplicate email fails the same way whether it is caught by the
// pre-check or by the unique constraint on insert.
func (s *RegistrationService) Submit(ctx context.Context, input SubmitRegistrationInput) (registration.Registration, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.RegistrationService.Submit")
	defer span.End()

	input.Email = normalizeEmail(input.Email)
	input.FullName = strings.TrimSpace(input.FullName)
	input.Phone = strings.TrimSpace(input.Phone)

	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return registration.Registration{}, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if input.FullName == "" {
		return registration.Registration{}, fmt.Errorf("%w: full name is required", ErrInvalidInput)
	}
	if input.Phone == "" {
		return registration.Registration{}, fmt.Errorf("%w: phone is required", ErrInvalidInput)
	}
	if input.BirthDate.IsZero() {
		return registration.Registration{}, fmt.Errorf("%w: birth date is required", ErrInvalidInput)
	}

	level := registration.Level(strings.TrimSpace(input.Level))
	if !level.Valid() {
		return registration.Registration{}, fmt.Errorf("%w: unknown experience level %q", ErrInvalidInput, input.Level)
	}
	if input.HasExperience && input.ExperienceYears < 0 {
		return registration.Registration{}, fmt.Errorf("%w: experience years cannot be negative", ErrInvalidInput)
	}

	now := s.now().UTC()
	isMinor := registration.Age(input.BirthDate, now) < 18
	if isMinor {
		if strings.TrimSpace(input.GuardianFullName) == "" {
			return registration.Registration{}, fmt.Errorf("%w: guardian name is required for minors", ErrInvalidInput)
		}
		if strings.TrimSpace(input.GuardianPhone) == "" {
			return registration.Registration{}, fmt.Errorf("%w: guardian phone is required for minors", ErrInvalidInput)
		}
	}

	exists, err := s.regRepo.EmailExists(ctx, input.Email)
	if err != nil {
		return registration.Registration{}, fmt.Errorf("check duplicate email: %w", err)
	}
	if exists {
		return registration.Registration{}, fmt.Errorf("%w: %s", ErrAlreadyRegistered, input.Email)
	}

	id, err := s.idGen.NewID()
	if err != nil {
		return registration.Registration{}, fmt.Errorf("generate registration id: %w", err)
	}

	reg := registration.Registration{
		ID:                id,
		Email:             input.Email,
		FullName:          input.FullName,
		Phone:             input.Phone,
		BirthDate:         input.BirthDate,
		CPF:               strings.TrimSpace(input.CPF),
		City:              strings.TrimSpace(input.City),
		State:             strings.TrimSpace(input.State),
		Instagram:         strings.TrimSpace(input.Instagram),
		ShirtSize:         strings.TrimSpace(input.ShirtSize),
		HasExperience:     input.HasExperience,
		ExperienceYears:   input.ExperienceYears,
		PreviousTeam:      strings.TrimSpace(input.PreviousTeam),
		Level:             level,
		PreferredPosition: strings.TrimSpace(input.PreferredPosition),
		AvailableDays:     trimAll(input.AvailableDays),
		CanTravel:         input.CanTravel,
		MedicalConditions: strings.TrimSpace(input.MedicalConditions),
		Allergies:         strings.TrimSpace(input.Allergies),
		Medications:       strings.TrimSpace(input.Medications),
		Status:            registration.StatusPending,
		AttendanceStatus:  registration.AttendanceNotChecked,
		PaymentStatus:     registration.PaymentPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := reg.ValidateBasic(); err != nil {
		return registration.Registration{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	var g *guardian.Guardian
	if isMinor {
		guardianID, err := s.idGen.NewID()
		if err != nil {
			return registration.Registration{}, fmt.Errorf("generate guardian id: %w", err)
		}
		g = &guardian.Guardian{
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
			return registration.Registration{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}

	if err := s.regRepo.Create(ctx, reg, g); err != nil {
		if errors.Is(err, registration.ErrDuplicateEmail) {
			return registration.Registration{}, fmt.Errorf("%w: %s", ErrAlreadyRegistered, input.Email)
		}
		return registration.Registration{}, fmt.Errorf("create registration: %w", err)
	}

	saved, found, err := s.regRepo.GetByID(ctx, reg.ID)
	if err != nil {
		return registration.Registration{}, fmt.Errorf("re-fetch registration: %w", err)
	}
	if found {
		return saved, nil
	}
	return reg, nil
}

func normalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
