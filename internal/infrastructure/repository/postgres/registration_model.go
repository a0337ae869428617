package postgres

import (
	"database/sql"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/lib/pq"

	"github.com/skyhigh-allstar/tryouts-api/internal/domain/registration"
)

type registrationTableModel struct {
	ID        string         `db:"id"`
	Email     string         `db:"email"`
	FullName  string         `db:"full_name"`
	Phone     string         `db:"phone"`
	BirthDate time.Time      `db:"birth_date"`
	CPF       sql.NullString `db:"cpf"`
	City      sql.NullString `db:"city"`
	State     sql.NullString `db:"state"`
	Instagram sql.NullString `db:"instagram"`
	ShirtSize sql.NullString `db:"shirt_size"`

	HasExperience     bool           `db:"has_experience"`
	ExperienceYears   int            `db:"experience_years"`
	PreviousTeam      sql.NullString `db:"previous_team"`
	Level             string         `db:"level"`
	PreferredPosition sql.NullString `db:"preferred_position"`

	AvailableDays pq.StringArray `db:"available_days"`
	CanTravel     bool           `db:"can_travel"`

	MedicalConditions sql.NullString `db:"medical_conditions"`
	Allergies         sql.NullString `db:"allergies"`
	Medications       sql.NullString `db:"medications"`

	Status           string `db:"status"`
	AttendanceStatus string `db:"attendance_status"`
	PaymentStatus    string `db:"payment_status"`

	TeamAssignments     []byte         `db:"team_assignments"`
	ScheduledTryoutDate *time.Time     `db:"scheduled_tryout_date"`
	TryoutNumber        int            `db:"tryout_number"`
	PaymentProofURL     sql.NullString `db:"payment_proof_url"`
	PhotoURL            sql.NullString `db:"photo_url"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type registrationInsertModel struct {
	ID        string    `db:"id"`
	Email     string    `db:"email"`
	FullName  string    `db:"full_name"`
	Phone     string    `db:"phone"`
	BirthDate time.Time `db:"birth_date"`
	CPF       *string   `db:"cpf"`
	City      *string   `db:"city"`
	State     *string   `db:"state"`
	Instagram *string   `db:"instagram"`
	ShirtSize *string   `db:"shirt_size"`

	HasExperience     bool    `db:"has_experience"`
	ExperienceYears   int     `db:"experience_years"`
	PreviousTeam      *string `db:"previous_team"`
	Level             string  `db:"level"`
	PreferredPosition *string `db:"preferred_position"`

	AvailableDays pq.StringArray `db:"available_days"`
	CanTravel     bool           `db:"can_travel"`

	MedicalConditions *string `db:"medical_conditions"`
	Allergies         *string `db:"allergies"`
	Medications       *string `db:"medications"`

	Status           string `db:"status"`
	AttendanceStatus string `db:"attendance_status"`
	PaymentStatus    string `db:"payment_status"`

	TryoutNumber int `db:"tryout_number,generated"`

	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

func registrationToInsert(reg registration.Registration) registrationInsertModel {
	return registrationInsertModel{
		ID:                reg.ID,
		Email:             reg.Email,
		FullName:          reg.FullName,
		Phone:             reg.Phone,
		BirthDate:         reg.BirthDate,
		CPF:               optionalString(reg.CPF),
		City:              optionalString(reg.City),
		State:             optionalString(reg.State),
		Instagram:         optionalString(reg.Instagram),
		ShirtSize:         optionalString(reg.ShirtSize),
		HasExperience:     reg.HasExperience,
		ExperienceYears:   reg.ExperienceYears,
		PreviousTeam:      optionalString(reg.PreviousTeam),
		Level:             string(reg.Level),
		PreferredPosition: optionalString(reg.PreferredPosition),
		AvailableDays:     pq.StringArray(reg.AvailableDays),
		CanTravel:         reg.CanTravel,
		MedicalConditions: optionalString(reg.MedicalConditions),
		Allergies:         optionalString(reg.Allergies),
		Medications:       optionalString(reg.Medications),
		Status:            string(reg.Status),
		AttendanceStatus:  string(reg.AttendanceStatus),
		PaymentStatus:     string(reg.PaymentStatus),
		CreatedAt:         reg.CreatedAt,
		UpdatedAt:         reg.UpdatedAt,
	}
}

func registrationFromRow(row registrationTableModel) registration.Registration {
	return registration.Registration{
		ID:                  row.ID,
		Email:               row.Email,
		FullName:            row.FullName,
		Phone:               row.Phone,
		BirthDate:           row.BirthDate,
		CPF:                 strings.TrimSpace(row.CPF.String),
		City:                strings.TrimSpace(row.City.String),
		State:               strings.TrimSpace(row.State.String),
		Instagram:           strings.TrimSpace(row.Instagram.String),
		ShirtSize:           strings.TrimSpace(row.ShirtSize.String),
		HasExperience:       row.HasExperience,
		ExperienceYears:     row.ExperienceYears,
		PreviousTeam:        strings.TrimSpace(row.PreviousTeam.String),
		Level:               registration.Level(row.Level),
		PreferredPosition:   strings.TrimSpace(row.PreferredPosition.String),
		AvailableDays:       append([]string(nil), row.AvailableDays...),
		CanTravel:           row.CanTravel,
		MedicalConditions:   strings.TrimSpace(row.MedicalConditions.String),
		Allergies:           strings.TrimSpace(row.Allergies.String),
		Medications:         strings.TrimSpace(row.Medications.String),
		Status:              registration.Status(row.Status),
		AttendanceStatus:    registration.AttendanceStatus(row.AttendanceStatus),
		PaymentStatus:       registration.PaymentStatus(row.PaymentStatus),
		TeamAssignments:     decodeAssignments(row.TeamAssignments),
		ScheduledTryoutDate: row.ScheduledTryoutDate,
		TryoutNumber:        row.TryoutNumber,
		PaymentProofURL:     strings.TrimSpace(row.PaymentProofURL.String),
		PhotoURL:            strings.TrimSpace(row.PhotoURL.String),
		CreatedAt:           row.CreatedAt,
		UpdatedAt:           row.UpdatedAt,
	}
}

// decodeAssignments tolerates malformed stored JSON. Entries are re-validated
// by the domain filter on every read, so a bad payload degrades to "no
// assignments" instead of failing the lookup.
func decodeAssignments(raw []byte) []registration.TeamAssignment {
	if len(raw) == 0 {
		return nil
	}
	var out []registration.TeamAssignment
	if err := jsoniter.Unmarshal(raw, &out); err != nil {
		return nil
	}
	return out
}

func encodeAssignments(assignments []registration.TeamAssignment) (string, error) {
	if assignments == nil {
		assignments = []registration.TeamAssignment{}
	}
	raw, err := jsoniter.MarshalToString(assignments)
	if err != nil {
		return "", err
	}
	return raw, nil
}

func optionalString(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
