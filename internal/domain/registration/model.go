package registration

import (
	"fmt"
	"strings"
	"time"
)

// Status is the review state assigned to a registration by staff.
type Status string

const (
	StatusPending     Status = "pending"
	StatusUnderReview Status = "under_review"
	StatusAccepted    Status = "accepted"
	StatusRejected    Status = "rejected"
	StatusWaitlisted  Status = "waitlisted"
)

// AttendanceStatus records whether the applicant checked in at the tryout.
type AttendanceStatus string

const (
	AttendanceNotChecked AttendanceStatus = "not_checked"
	AttendancePresent    AttendanceStatus = "present"
	AttendanceAbsent     AttendanceStatus = "absent"
)

// PaymentStatus tracks the registration fee. Values mirror the values shown
// to applicants, which are Portuguese.
type PaymentStatus string

const (
	PaymentPending PaymentStatus = "comprovante_pendente"
	PaymentPaid    PaymentStatus = "pago"
)

// Level is the self-reported experience level of an applicant.
type Level string

const (
	LevelBeginner     Level = "beginner"
	LevelIntermediate Level = "intermediate"
	LevelAdvanced     Level = "advanced"
	LevelElite        Level = "elite"
)

// Registration is one submitted tryout application.
type Registration struct {
	ID    string
	Email string

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
	Level             Level
	PreferredPosition string

	AvailableDays []string
	CanTravel     bool

	MedicalConditions string
	Allergies         string
	Medications       string

	Status           Status
	AttendanceStatus AttendanceStatus
	PaymentStatus    PaymentStatus

	TeamAssignments     []TeamAssignment
	ScheduledTryoutDate *time.Time
	TryoutNumber        int
	PaymentProofURL     string
	PhotoURL            string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsMinor reports whether the applicant was under 18 at the given reference time.
func (r Registration) IsMinor(at time.Time) bool {
	return Age(r.BirthDate, at) < 18
}

// Age computes full years between birthDate and at.
func Age(birthDate, at time.Time) int {
	years := at.Year() - birthDate.Year()
	anniversary := birthDate.AddDate(years, 0, 0)
	if anniversary.After(at) {
		years--
	}
	return years
}

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusUnderReview, StatusAccepted, StatusRejected, StatusWaitlisted:
		return true
	}
	return false
}

func (s AttendanceStatus) Valid() bool {
	switch s {
	case AttendanceNotChecked, AttendancePresent, AttendanceAbsent:
		return true
	}
	return false
}

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentPending, PaymentPaid:
		return true
	}
	return false
}

func (l Level) Valid() bool {
	switch l {
	case LevelBeginner, LevelIntermediate, LevelAdvanced, LevelElite:
		return true
	}
	return false
}

// ValidateBasic checks invariants that hold for every persisted registration.
func (r Registration) ValidateBasic() error {
	if strings.TrimSpace(r.ID) == "" {
		return fmt.Errorf("registration id is required")
	}
	if strings.TrimSpace(r.Email) == "" {
		return fmt.Errorf("registration email is required")
	}
	if strings.TrimSpace(r.FullName) == "" {
		return fmt.Errorf("registration full name is required")
	}
	if r.BirthDate.IsZero() {
		return fmt.Errorf("registration birth date is required")
	}
	if !r.Status.Valid() {
		return fmt.Errorf("invalid registration status %q", r.Status)
	}
	if !r.AttendanceStatus.Valid() {
		return fmt.Errorf("invalid attendance status %q", r.AttendanceStatus)
	}
	if !r.PaymentStatus.Valid() {
		return fmt.Errorf("invalid payment status %q", r.PaymentStatus)
	}
	if !r.Level.Valid() {
		return fmt.Errorf("invalid experience level %q", r.Level)
	}
	if len(r.TeamAssignments) > MaxTeamAssignments {
		return fmt.Errorf("at most %d team assignments are allowed", MaxTeamAssignments)
	}

	return nil
}
