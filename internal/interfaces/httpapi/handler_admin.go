package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/skyhigh-allstar/tryouts-api/internal/usecase"
)

// uploadBytesLimit bounds how much of a multipart file the handler reads. One
// byte over the 5MB cap is enough for the service to reject the file.
const uploadBytesLimit = 5<<20 + 1

func (h *Handler) AdminListRegistrations(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminListRegistrations")
	defer span.End()

	query := r.URL.Query()
	input := usecase.ListRegistrationsInput{
		Status:           query.Get("status"),
		AttendanceStatus: query.Get("attendance_status"),
		PaymentStatus:    query.Get("payment_status"),
		Search:           query.Get("search"),
	}

	var err error
	if input.Page, err = parseQueryInt(query.Get("page"), "page"); err != nil {
		writeError(ctx, w, err)
		return
	}
	if input.PerPage, err = parseQueryInt(query.Get("per_page"), "per_page"); err != nil {
		writeError(ctx, w, err)
		return
	}

	page, err := h.adminService.List(ctx, input)
	if err != nil {
		h.logger.WarnContext(ctx, "list registrations failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, registrationPageToDTO(page))
}

func (h *Handler) AdminGetRegistration(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminGetRegistration")
	defer span.End()

	id := r.PathValue("registrationID")
	detail, err := h.adminService.Get(ctx, id)
	if err != nil {
		h.logger.WarnContext(ctx, "get registration failed", "registration_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, registrationDetailDTO{
		Registration: registrationToDTO(detail.Registration),
		Athlete:      athleteToDTO(detail.Athlete),
		Guardian:     guardianToDTO(detail.Guardian),
	})
}

func (h *Handler) AdminUpdateAttendance(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminUpdateAttendance")
	defer span.End()

	var req updateAttendanceRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	id := r.PathValue("registrationID")
	reg, err := h.adminService.UpdateAttendance(ctx, id, req.Status)
	if err != nil {
		h.logger.WarnContext(ctx, "update attendance failed", "registration_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, registrationToDTO(reg))
}

func (h *Handler) AdminUpdatePayment(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminUpdatePayment")
	defer span.End()

	var req updatePaymentRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	id := r.PathValue("registrationID")
	reg, err := h.adminService.UpdatePayment(ctx, id, req.Status)
	if err != nil {
		h.logger.WarnContext(ctx, "update payment failed", "registration_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, registrationToDTO(reg))
}

func (h *Handler) AdminUploadPaymentProof(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminUploadPaymentProof")
	defer span.End()

	data, contentType, err := readMultipartFile(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	id := r.PathValue("registrationID")
	reg, err := h.adminService.UploadPaymentProof(ctx, id, contentType, data)
	if err != nil {
		h.logger.WarnContext(ctx, "upload payment proof failed", "registration_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, registrationToDTO(reg))
}

func (h *Handler) AdminUploadPhoto(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminUploadPhoto")
	defer span.End()

	data, contentType, err := readMultipartFile(ctx, r)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	id := r.PathValue("registrationID")
	reg, err := h.adminService.UploadPhoto(ctx, id, contentType, data)
	if err != nil {
		h.logger.WarnContext(ctx, "upload photo failed", "registration_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, registrationToDTO(reg))
}

func (h *Handler) AdminSetPhotoURL(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminSetPhotoURL")
	defer span.End()

	var req setPhotoURLRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	id := r.PathValue("registrationID")
	reg, err := h.adminService.SetPhotoURL(ctx, id, req.URL)
	if err != nil {
		h.logger.WarnContext(ctx, "set photo url failed", "registration_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, registrationToDTO(reg))
}

func (h *Handler) AdminSetTryoutNumber(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminSetTryoutNumber")
	defer span.End()

	var req setTryoutNumberRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	id := r.PathValue("registrationID")
	reg, err := h.adminService.SetTryoutNumber(ctx, id, req.Number)
	if err != nil {
		h.logger.WarnContext(ctx, "set tryout number failed", "registration_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, registrationToDTO(reg))
}

func (h *Handler) AdminSetScheduledDate(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminSetScheduledDate")
	defer span.End()

	var req setScheduledDateRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}

	var date *time.Time
	if req.Date != nil && strings.TrimSpace(*req.Date) != "" {
		parsed, err := parseDateTime("date", strings.TrimSpace(*req.Date))
		if err != nil {
			writeError(ctx, w, err)
			return
		}
		date = &parsed
	}

	id := r.PathValue("registrationID")
	reg, err := h.adminService.SetScheduledDate(ctx, id, date)
	if err != nil {
		h.logger.WarnContext(ctx, "set scheduled date failed", "registration_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, registrationToDTO(reg))
}

func (h *Handler) AdminReview(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminReview")
	defer span.End()

	var req reviewRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	id := r.PathValue("registrationID")
	reg, err := h.adminService.Review(ctx, id, req.Status, assignmentsFromDTO(req.TeamAssignments))
	if err != nil {
		h.logger.WarnContext(ctx, "review registration failed", "registration_id", id, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, registrationToDTO(reg))
}

func (h *Handler) AdminBulkCheckIn(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminBulkCheckIn")
	defer span.End()

	var req bulkCheckInRequest
	if err := decodeJSONBody(r, &req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	result, err := h.adminService.BulkCheckIn(ctx, req.RegistrationIDs, req.Status)
	if err != nil {
		h.logger.WarnContext(ctx, "bulk check-in failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	dto := bulkCheckInResultDTO{Updated: result.Updated}
	for _, failure := range result.Failed {
		dto.Failed = append(dto.Failed, bulkCheckInFailureDTO{
			RegistrationID: failure.RegistrationID,
			Reason:         failure.Reason,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, dto)
}

func (h *Handler) AdminStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.AdminStats")
	defer span.End()

	summary, err := h.adminService.Stats(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "load stats failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, statsSummaryToDTO(summary))
}

func readMultipartFile(ctx context.Context, r *http.Request) ([]byte, string, error) {
	_, span := startSpan(ctx, "httpapi.readMultipartFile")
	defer span.End()

	if err := r.ParseMultipartForm(uploadBytesLimit); err != nil {
		return nil, "", fmt.Errorf("%w: invalid multipart payload: %v", usecase.ErrInvalidInput, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", fmt.Errorf("%w: the \"file\" form field is required", usecase.ErrInvalidInput)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, uploadBytesLimit))
	if err != nil {
		return nil, "", fmt.Errorf("%w: read uploaded file: %v", usecase.ErrInvalidInput, err)
	}

	return data, header.Header.Get("Content-Type"), nil
}

func parseQueryInt(raw, name string) (int, error) {
	if strings.TrimSpace(raw) == "" {
		return 0, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, name)
	}
	return value, nil
}
