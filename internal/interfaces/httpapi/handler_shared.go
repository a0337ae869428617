package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/skyhigh-allstar/tryouts-api/internal/domain/athlete"
	"github.com/skyhigh-allstar/tryouts-api/internal/domain/guardian"
	"github.com/skyhigh-allstar/tryouts-api/internal/domain/registration"
	"github.com/skyhigh-allstar/tryouts-api/internal/domain/stats"
	"github.com/skyhigh-allstar/tryouts-api/internal/usecase"
)

const dateLayout = "2006-01-02"

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func decodeJSONBody(r *http.Request, dst any) error {
	decoder := jsoniter.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func parseDate(field, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must use the YYYY-MM-DD format", usecase.ErrInvalidInput, field)
	}
	return parsed, nil
}

// parseDateTime accepts both a bare date and a full RFC 3339 timestamp.
func parseDateTime(field, raw string) (time.Time, error) {
	if parsed, err := time.Parse(dateLayout, raw); err == nil {
		return parsed, nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s must be a date or an RFC 3339 timestamp", usecase.ErrInvalidInput, field)
	}
	return parsed, nil
}

type guardianPayload struct {
	FullName     string `json:"full_name" validate:"required,max=200"`
	Phone        string `json:"phone" validate:"required,max=30"`
	Email        string `json:"email" validate:"omitempty,email"`
	CPF          string `json:"cpf" validate:"omitempty,max=14"`
	Relationship string `json:"relationship" validate:"omitempty,max=40"`
}

type submitRegistrationRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FullName  string `json:"full_name" validate:"required,max=200"`
	Phone     string `json:"phone" validate:"required,max=30"`
	BirthDate string `json:"birth_date" validate:"required,datetime=2006-01-02"`
	CPF       string `json:"cpf" validate:"omitempty,max=14"`
	City      string `json:"city" validate:"omitempty,max=100"`
	State     string `json:"state" validate:"omitempty,max=40"`
	Instagram string `json:"instagram" validate:"omitempty,max=100"`
	ShirtSize string `json:"shirt_size" validate:"omitempty,max=5"`

	HasExperience     bool   `json:"has_experience"`
	ExperienceYears   int    `json:"experience_years" validate:"min=0,max=40"`
	PreviousTeam      string `json:"previous_team" validate:"omitempty,max=200"`
	Level             string `json:"level" validate:"required,oneof=beginner intermediate advanced elite"`
	PreferredPosition string `json:"preferred_position" validate:"omitempty,max=60"`

	AvailableDays []string `json:"available_days" validate:"omitempty,dive,required"`
	CanTravel     bool     `json:"can_travel"`

	MedicalConditions string `json:"medical_conditions" validate:"omitempty,max=1000"`
	Allergies         string `json:"allergies" validate:"omitempty,max=1000"`
	Medications       string `json:"medications" validate:"omitempty,max=1000"`

	Guardian *guardianPayload `json:"guardian" validate:"omitempty"`
}

type completeProfileRequest struct {
	Email string `json:"email" validate:"required,email"`

	FullLegalName string `json:"full_legal_name" validate:"required,max=200"`
	CPF           string `json:"cpf" validate:"required,max=14"`
	RG            string `json:"rg" validate:"omitempty,max=20"`
	BirthDate     string `json:"birth_date" validate:"omitempty,datetime=2006-01-02"`
	Nationality   string `json:"nationality" validate:"omitempty,max=60"`
	Instagram     string `json:"instagram" validate:"omitempty,max=100"`
	ShirtSize     string `json:"shirt_size" validate:"omitempty,max=5"`

	EmergencyContactName         string `json:"emergency_contact_name" validate:"required,max=200"`
	EmergencyContactPhone        string `json:"emergency_contact_phone" validate:"required,max=30"`
	EmergencyContactRelationship string `json:"emergency_contact_relationship" validate:"omitempty,max=40"`

	Guardian *guardianPayload `json:"guardian" validate:"omitempty"`
}

type updateAttendanceRequest struct {
	Status string `json:"status" validate:"required"`
}

type updatePaymentRequest struct {
	Status string `json:"status" validate:"required"`
}

type setPhotoURLRequest struct {
	URL string `json:"url" validate:"required,url"`
}

type setTryoutNumberRequest struct {
	Number int `json:"number" validate:"required,gt=0"`
}

type setScheduledDateRequest struct {
	// Date null or empty clears the scheduled tryout date.
	Date *string `json:"date"`
}

type teamAssignmentPayload struct {
	Team     string `json:"team" validate:"required"`
	Position string `json:"position" validate:"required"`
}

type reviewRequest struct {
	Status          string                  `json:"status" validate:"required"`
	TeamAssignments []teamAssignmentPayload `json:"team_assignments" validate:"omitempty,max=2,dive"`
}

type bulkCheckInRequest struct {
	RegistrationIDs []string `json:"registration_ids" validate:"required,min=1,dive,required"`
	Status          string   `json:"status" validate:"required"`
}

type registrationDTO struct {
	ID    string `json:"id"`
	Email string `json:"email"`

	FullName  string `json:"full_name"`
	Phone     string `json:"phone"`
	BirthDate string `json:"birth_date"`
	CPF       string `json:"cpf,omitempty"`
	City      string `json:"city,omitempty"`
	State     string `json:"state,omitempty"`
	Instagram string `json:"instagram,omitempty"`
	ShirtSize string `json:"shirt_size,omitempty"`

	HasExperience     bool   `json:"has_experience"`
	ExperienceYears   int    `json:"experience_years"`
	PreviousTeam      string `json:"previous_team,omitempty"`
	Level             string `json:"level"`
	PreferredPosition string `json:"preferred_position,omitempty"`

	AvailableDays []string `json:"available_days,omitempty"`
	CanTravel     bool     `json:"can_travel"`

	MedicalConditions string `json:"medical_conditions,omitempty"`
	Allergies         string `json:"allergies,omitempty"`
	Medications       string `json:"medications,omitempty"`

	Status           string `json:"status"`
	AttendanceStatus string `json:"attendance_status"`
	PaymentStatus    string `json:"payment_status"`

	TeamAssignments     []teamAssignmentPayload `json:"team_assignments,omitempty"`
	ScheduledTryoutDate *string                 `json:"scheduled_tryout_date,omitempty"`
	TryoutNumber        int                     `json:"tryout_number,omitempty"`
	PaymentProofURL     string                  `json:"payment_proof_url,omitempty"`
	PhotoURL            string                  `json:"photo_url,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type athleteDTO struct {
	ID             string `json:"id"`
	RegistrationID string `json:"registration_id"`

	FullLegalName string `json:"full_legal_name"`
	CPF           string `json:"cpf"`
	RG            string `json:"rg,omitempty"`
	BirthDate     string `json:"birth_date"`
	Nationality   string `json:"nationality,omitempty"`
	Instagram     string `json:"instagram,omitempty"`
	ShirtSize     string `json:"shirt_size,omitempty"`

	EmergencyContactName         string `json:"emergency_contact_name"`
	EmergencyContactPhone        string `json:"emergency_contact_phone"`
	EmergencyContactRelationship string `json:"emergency_contact_relationship,omitempty"`

	PhotoURL  string    `json:"photo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type guardianDTO struct {
	ID             string `json:"id"`
	RegistrationID string `json:"registration_id"`
	FullName       string `json:"full_name"`
	Phone          string `json:"phone"`
	Email          string `json:"email,omitempty"`
	CPF            string `json:"cpf,omitempty"`
	Relationship   string `json:"relationship,omitempty"`
}

type statusCheckDTO struct {
	State            string                  `json:"state"`
	Message          string                  `json:"message"`
	ProfileCompleted bool                    `json:"profile_completed"`
	Registration     *registrationDTO        `json:"registration,omitempty"`
	TeamAssignments  []teamAssignmentPayload `json:"team_assignments,omitempty"`
	Athlete          *athleteDTO             `json:"athlete,omitempty"`
	Guardian         *guardianDTO            `json:"guardian,omitempty"`
}

type registrationDetailDTO struct {
	Registration registrationDTO `json:"registration"`
	Athlete      *athleteDTO     `json:"athlete,omitempty"`
	Guardian     *guardianDTO    `json:"guardian,omitempty"`
}

type registrationPageDTO struct {
	Items   []registrationDTO `json:"items"`
	Total   int               `json:"total"`
	Page    int               `json:"page"`
	PerPage int               `json:"per_page"`
}

type bulkCheckInFailureDTO struct {
	RegistrationID string `json:"registration_id"`
	Reason         string `json:"reason"`
}

type bulkCheckInResultDTO struct {
	Updated int                     `json:"updated"`
	Failed  []bulkCheckInFailureDTO `json:"failed,omitempty"`
}

type statsSummaryDTO struct {
	Total        int            `json:"total"`
	ByStatus     map[string]int `json:"by_status"`
	ByAttendance map[string]int `json:"by_attendance"`
	ByPayment    map[string]int `json:"by_payment"`
	ByLevel      map[string]int `json:"by_level"`
	ByPosition   map[string]int `json:"by_position"`
}

// checkStateMessages are the Portuguese sentences rendered by the status page
// for each terminal state.
var checkStateMessages = map[registration.CheckStateKind]string{
	registration.CheckNotFound:      "Inscrição não encontrada. Verifique o e-mail informado.",
	registration.CheckScheduled:     "Seu tryout está agendado! Confira a data e chegue com antecedência.",
	registration.CheckAbsent:        "Você não compareceu ao tryout. Entre em contato com a equipe.",
	registration.CheckApproved:      "Parabéns! Você foi aprovada e já tem equipe definida.",
	registration.CheckTryoutPending: "Inscrição aprovada! Aguarde a definição das equipes.",
	registration.CheckPending:       "Inscrição recebida. Aguarde a análise da equipe.",
	registration.CheckUnderReview:   "Sua inscrição está em análise.",
	registration.CheckRejected:      "Infelizmente você não foi selecionada desta vez.",
	registration.CheckWaitlisted:    "Você está na lista de espera. Avisaremos se uma vaga abrir.",
}

func registrationToDTO(reg registration.Registration) registrationDTO {
	dto := registrationDTO{
		ID:                reg.ID,
		Email:             reg.Email,
		FullName:          reg.FullName,
		Phone:             reg.Phone,
		BirthDate:         reg.BirthDate.Format(dateLayout),
		CPF:               reg.CPF,
		City:              reg.City,
		State:             reg.State,
		Instagram:         reg.Instagram,
		ShirtSize:         reg.ShirtSize,
		HasExperience:     reg.HasExperience,
		ExperienceYears:   reg.ExperienceYears,
		PreviousTeam:      reg.PreviousTeam,
		Level:             string(reg.Level),
		PreferredPosition: reg.PreferredPosition,
		AvailableDays:     reg.AvailableDays,
		CanTravel:         reg.CanTravel,
		MedicalConditions: reg.MedicalConditions,
		Allergies:         reg.Allergies,
		Medications:       reg.Medications,
		Status:            string(reg.Status),
		AttendanceStatus:  string(reg.AttendanceStatus),
		PaymentStatus:     string(reg.PaymentStatus),
		TeamAssignments:   assignmentsToDTO(reg.TeamAssignments),
		TryoutNumber:      reg.TryoutNumber,
		PaymentProofURL:   reg.PaymentProofURL,
		PhotoURL:          reg.PhotoURL,
		CreatedAt:         reg.CreatedAt,
		UpdatedAt:         reg.UpdatedAt,
	}
	if reg.ScheduledTryoutDate != nil && !reg.ScheduledTryoutDate.IsZero() {
		formatted := reg.ScheduledTryoutDate.Format(time.RFC3339)
		dto.ScheduledTryoutDate = &formatted
	}
	return dto
}

func assignmentsToDTO(assignments []registration.TeamAssignment) []teamAssignmentPayload {
	if len(assignments) == 0 {
		return nil
	}
	out := make([]teamAssignmentPayload, 0, len(assignments))
	for _, a := range assignments {
		out = append(out, teamAssignmentPayload{Team: string(a.Team), Position: a.Position})
	}
	return out
}

func assignmentsFromDTO(payloads []teamAssignmentPayload) []registration.TeamAssignment {
	if len(payloads) == 0 {
		return nil
	}
	out := make([]registration.TeamAssignment, 0, len(payloads))
	for _, p := range payloads {
		out = append(out, registration.TeamAssignment{
			Team:     registration.Team(p.Team),
			Position: p.Position,
		})
	}
	return out
}

func athleteToDTO(a *athlete.Athlete) *athleteDTO {
	if a == nil {
		return nil
	}
	return &athleteDTO{
		ID:                           a.ID,
		RegistrationID:               a.RegistrationID,
		FullLegalName:                a.FullLegalName,
		CPF:                          a.CPF,
		RG:                           a.RG,
		BirthDate:                    a.BirthDate.Format(dateLayout),
		Nationality:                  a.Nationality,
		Instagram:                    a.Instagram,
		ShirtSize:                    a.ShirtSize,
		EmergencyContactName:         a.EmergencyContactName,
		EmergencyContactPhone:        a.EmergencyContactPhone,
		EmergencyContactRelationship: a.EmergencyContactRelationship,
		PhotoURL:                     a.PhotoURL,
		CreatedAt:                    a.CreatedAt,
		UpdatedAt:                    a.UpdatedAt,
	}
}

func guardianToDTO(g *guardian.Guardian) *guardianDTO {
	if g == nil {
		return nil
	}
	return &guardianDTO{
		ID:             g.ID,
		RegistrationID: g.RegistrationID,
		FullName:       g.FullName,
		Phone:          g.Phone,
		Email:          g.Email,
		CPF:            g.CPF,
		Relationship:   g.Relationship,
	}
}

func checkResultToDTO(result usecase.CheckResult) statusCheckDTO {
	dto := statusCheckDTO{
		State:            string(result.State.Kind),
		Message:          checkStateMessages[result.State.Kind],
		ProfileCompleted: result.ProfileCompleted,
		TeamAssignments:  assignmentsToDTO(result.State.Assignments),
		Athlete:          athleteToDTO(result.Athlete),
		Guardian:         guardianToDTO(result.Guardian),
	}
	if result.State.Registration != nil {
		reg := registrationToDTO(*result.State.Registration)
		dto.Registration = &reg
	}
	return dto
}

func registrationPageToDTO(page usecase.RegistrationPage) registrationPageDTO {
	items := make([]registrationDTO, 0, len(page.Items))
	for _, reg := range page.Items {
		items = append(items, registrationToDTO(reg))
	}
	return registrationPageDTO{
		Items:   items,
		Total:   page.Total,
		Page:    page.Page,
		PerPage: page.PerPage,
	}
}

func statsSummaryToDTO(summary stats.Summary) statsSummaryDTO {
	return statsSummaryDTO{
		Total:        summary.Total,
		ByStatus:     summary.ByStatus,
		ByAttendance: summary.ByAttendance,
		ByPayment:    summary.ByPayment,
		ByLevel:      summary.ByLevel,
		ByPosition:   summary.ByPosition,
	}
}
