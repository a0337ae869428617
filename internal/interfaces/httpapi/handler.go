package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/skyhigh-allstar/tryouts-api/internal/usecase"
)

type Handler struct {
	registrationService *usecase.RegistrationService
	approvalService     *usecase.ApprovalService
	athleteService      *usecase.AthleteService
	adminService        *usecase.AdminService
	logger              *slog.Logger
	validator           *validator.Validate
}

func NewHandler(
	registrationService *usecase.RegistrationService,
	approvalService *usecase.ApprovalService,
	athleteService *usecase.AthleteService,
	adminService *usecase.AdminService,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		registrationService: registrationService,
		approvalService:     approvalService,
		athleteService:      athleteService,
		adminService:        adminService,
		logger:              logger,
		validator:           validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) SubmitRegistration(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SubmitRegistration")
	defer span.End()

	var req submitRegistrationRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	birthDate, err := parseDate("birth_date", req.BirthDate)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.SubmitRegistrationInput{
		Email:             req.Email,
		FullName:          req.FullName,
		Phone:             req.Phone,
		BirthDate:         birthDate,
		CPF:               req.CPF,
		City:              req.City,
		State:             req.State,
		Instagram:         req.Instagram,
		ShirtSize:         req.ShirtSize,
		HasExperience:     req.HasExperience,
		ExperienceYears:   req.ExperienceYears,
		PreviousTeam:      req.PreviousTeam,
		Level:             req.Level,
		PreferredPosition: req.PreferredPosition,
		AvailableDays:     req.AvailableDays,
		CanTravel:         req.CanTravel,
		MedicalConditions: req.MedicalConditions,
		Allergies:         req.Allergies,
		Medications:       req.Medications,
	}
	if req.Guardian != nil {
		input.GuardianFullName = req.Guardian.FullName
		input.GuardianPhone = req.Guardian.Phone
		input.GuardianEmail = req.Guardian.Email
		input.GuardianCPF = req.Guardian.CPF
		input.GuardianRelationship = req.Guardian.Relationship
	}

	reg, err := h.registrationService.Submit(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "submit registration failed", "email", req.Email, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, registrationToDTO(reg))
}

func (h *Handler) CheckRegistrationStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CheckRegistrationStatus")
	defer span.End()

	email := r.URL.Query().Get("email")
	result, err := h.approvalService.Check(ctx, email)
	if err != nil {
		h.logger.WarnContext(ctx, "status check failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, checkResultToDTO(result))
}

func (h *Handler) CompleteAthleteProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CompleteAthleteProfile")
	defer span.End()

	var req completeProfileRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	birthDate, err := parseDate("birth_date", req.BirthDate)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	input := usecase.CompleteProfileInput{
		Email:                        req.Email,
		FullLegalName:                req.FullLegalName,
		CPF:                          req.CPF,
		RG:                           req.RG,
		BirthDate:                    birthDate,
		Nationality:                  req.Nationality,
		Instagram:                    req.Instagram,
		ShirtSize:                    req.ShirtSize,
		EmergencyContactName:         req.EmergencyContactName,
		EmergencyContactPhone:        req.EmergencyContactPhone,
		EmergencyContactRelationship: req.EmergencyContactRelationship,
	}
	if req.Guardian != nil {
		input.GuardianFullName = req.Guardian.FullName
		input.GuardianPhone = req.Guardian.Phone
		input.GuardianEmail = req.Guardian.Email
		input.GuardianCPF = req.Guardian.CPF
		input.GuardianRelationship = req.Guardian.Relationship
	}

	created, err := h.athleteService.CompleteProfile(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "complete athlete profile failed", "email", req.Email, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, athleteToDTO(&created))
}
