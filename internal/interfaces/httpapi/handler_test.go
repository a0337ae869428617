package httpapi

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/skyhigh-allstar/tryouts-api/internal/infrastructure/repository/memory"
	"github.com/skyhigh-allstar/tryouts-api/internal/platform/cache"
	idgen "github.com/skyhigh-allstar/tryouts-api/internal/platform/id"
	"github.com/skyhigh-allstar/tryouts-api/internal/usecase"
)

const testAdminToken = "secret-token"

type routerFileStore struct {
	uploads int
}

func (f *routerFileStore) Upload(_ context.Context, key, _ string, _ []byte) (string, error) {
	f.uploads++
	return "https://cdn.example.com/uploads/" + key, nil
}

func (f *routerFileStore) Remove(context.Context, string) error { return nil }

func newTestRouter(t *testing.T) (http.Handler, *routerFileStore) {
	t.Helper()

	guardians := memory.NewGuardianRepository()
	regRepo := memory.NewRegistrationRepository(guardians, memory.SeedRegistrations()...)
	athleteRepo := memory.NewAthleteRepository(guardians)
	statsRepo := memory.NewStatsRepository(regRepo)
	files := &routerFileStore{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	registrationService := usecase.NewRegistrationService(regRepo, idgen.NewRandomGenerator())
	approvalService := usecase.NewApprovalService(regRepo, athleteRepo, guardians)
	athleteService := usecase.NewAthleteService(regRepo, athleteRepo, guardians, idgen.NewRandomGenerator())
	adminService := usecase.NewAdminService(regRepo, athleteRepo, guardians, statsRepo, files, cache.NewStore(time.Minute))

	handler := NewHandler(registrationService, approvalService, athleteService, adminService, logger)
	return NewRouter(handler, testAdminToken, logger, []string{"*"}), files
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := sonic.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal request payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeData(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var envelope map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	data, _ := envelope["data"].(map[string]any)
	return data
}

func validSubmitPayload() map[string]any {
	return map[string]any{
		"email":          "nova@example.com",
		"full_name":      "Nova Atleta",
		"phone":          "+55 11 90000-0000",
		"birth_date":     "2003-05-14",
		"city":           "São Paulo",
		"state":          "SP",
		"level":          "intermediate",
		"has_experience": true,
		"available_days": []string{"saturday", "sunday"},
	}
}

func TestSubmitRegistration_Created(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/registrations", validSubmitPayload())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	if data["email"] != "nova@example.com" {
		t.Fatalf("unexpected email %v", data["email"])
	}
	if data["status"] != "pending" {
		t.Fatalf("expected pending status, got %v", data["status"])
	}
}

func TestSubmitRegistration_DuplicateEmailConflict(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := validSubmitPayload()
	payload["email"] = "pending@example.com"

	rec := doJSON(t, router, http.MethodPost, "/v1/registrations", payload)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSubmitRegistration_RejectsUnknownFields(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := validSubmitPayload()
	payload["surprise"] = true

	rec := doJSON(t, router, http.MethodPost, "/v1/registrations", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestSubmitRegistration_MissingRequiredFields(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := validSubmitPayload()
	delete(payload, "full_name")

	rec := doJSON(t, router, http.MethodPost, "/v1/registrations", payload)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestCheckRegistrationStatus_States(t *testing.T) {
	router, _ := newTestRouter(t)

	tests := []struct {
		name  string
		email string
		state string
	}{
		{name: "unknown email", email: "ghost@example.com", state: "not_found"},
		{name: "pending", email: "pending@example.com", state: "pending"},
		{name: "approved with teams", email: "accepted@example.com", state: "approved"},
		{name: "scheduled wins over accepted", email: "scheduled@example.com", state: "scheduled"},
		{name: "absent", email: "absent@example.com", state: "absent"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doJSON(t, router, http.MethodGet, "/v1/registrations/status?email="+tt.email, nil)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
			}

			data := decodeData(t, rec)
			if data["state"] != tt.state {
				t.Fatalf("expected state %q, got %v", tt.state, data["state"])
			}
			if msg, _ := data["message"].(string); msg == "" {
				t.Fatal("expected a user facing message")
			}
		})
	}
}

func TestCheckRegistrationStatus_MissingEmail(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/registrations/status", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func validProfilePayload() map[string]any {
	return map[string]any{
		"email":                   "accepted@example.com",
		"full_legal_name":         "Beatriz Nogueira da Silva",
		"cpf":                     "123.456.789-00",
		"instagram":               "https://instagram.com/Bia.Nogueira/",
		"emergency_contact_name":  "Marta Nogueira",
		"emergency_contact_phone": "+55 11 97777-0000",
	}
}

func TestCompleteAthleteProfile_CreatedAndIdempotencyGuard(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/v1/athletes", validProfilePayload())
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	if data["instagram"] != "bia.nogueira" {
		t.Fatalf("expected normalized instagram handle, got %v", data["instagram"])
	}

	rec = doJSON(t, router, http.MethodPost, "/v1/athletes", validProfilePayload())
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected status 409 on resubmit, got %d", rec.Code)
	}
}

func TestCompleteAthleteProfile_NotApproved(t *testing.T) {
	router, _ := newTestRouter(t)

	payload := validProfilePayload()
	payload["email"] = "pending@example.com"

	rec := doJSON(t, router, http.MethodPost, "/v1/athletes", payload)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected status 422, got %d: %s", rec.Code, rec.Body.String())
	}
}

func adminPath(suffix string) string {
	return "/v1/admin/" + testAdminToken + suffix
}

func TestAdminRoutes_WrongTokenIs404(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/v1/admin/wrong-token/registrations", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}

func TestAdminListRegistrations_FilterAndPaginate(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, adminPath("/registrations?status=accepted"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	items, _ := data["items"].([]any)
	// Three seeded rows are accepted; the scheduled and absent ones keep the
	// accepted status too.
	if len(items) != 3 {
		t.Fatalf("expected 3 accepted registrations, got %d", len(items))
	}

	rec = doJSON(t, router, http.MethodGet, adminPath("/registrations?page=2&per_page=3"), nil)
	data = decodeData(t, rec)
	items, _ = data["items"].([]any)
	if len(items) != 1 {
		t.Fatalf("expected 1 item on page 2, got %d", len(items))
	}
}

func TestAdminGetRegistration_Detail(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, adminPath("/registrations/"+memory.SeedRegistrationAccepted), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	reg, _ := data["registration"].(map[string]any)
	if reg["email"] != "accepted@example.com" {
		t.Fatalf("unexpected registration payload: %v", data)
	}
}

func TestAdminUpdateAttendance(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPatch,
		adminPath("/registrations/"+memory.SeedRegistrationPending+"/attendance"),
		map[string]string{"status": "present"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	if data["attendance_status"] != "present" {
		t.Fatalf("expected present, got %v", data["attendance_status"])
	}
}

func TestAdminUploadPaymentProof_Multipart(t *testing.T) {
	router, files := newTestRouter(t)

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreatePart(textproto.MIMEHeader{
		"Content-Disposition": {`form-data; name="file"; filename="comprovante.png"`},
		"Content-Type":        {"image/png"},
	})
	if err != nil {
		t.Fatalf("create multipart part: %v", err)
	}
	if _, err := part.Write([]byte("png-bytes")); err != nil {
		t.Fatalf("write multipart part: %v", err)
	}
	_ = writer.Close()

	req := httptest.NewRequest(http.MethodPost,
		adminPath("/registrations/"+memory.SeedRegistrationPending+"/payment-proof"), &body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if files.uploads != 1 {
		t.Fatalf("expected one storage upload, got %d", files.uploads)
	}

	data := decodeData(t, rec)
	url, _ := data["payment_proof_url"].(string)
	if !strings.HasPrefix(url, "https://cdn.example.com/uploads/"+memory.SeedRegistrationPending+"-") {
		t.Fatalf("unexpected payment proof url %q", url)
	}
}

func TestAdminReview_AssignsTeams(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost,
		adminPath("/registrations/"+memory.SeedRegistrationPending+"/review"),
		map[string]any{
			"status": "accepted",
			"team_assignments": []map[string]string{
				{"team": "thunderbolt", "position": "base"},
			},
		})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	if data["status"] != "accepted" {
		t.Fatalf("expected accepted, got %v", data["status"])
	}
	assignments, _ := data["team_assignments"].([]any)
	if len(assignments) != 1 {
		t.Fatalf("expected one assignment, got %v", data["team_assignments"])
	}
}

func TestAdminSetScheduledDate_SetAndClear(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPatch,
		adminPath("/registrations/"+memory.SeedRegistrationPending+"/scheduled-date"),
		map[string]any{"date": "2026-04-25"})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data := decodeData(t, rec)
	if data["scheduled_tryout_date"] == nil {
		t.Fatal("expected scheduled date to be set")
	}

	rec = doJSON(t, router, http.MethodPatch,
		adminPath("/registrations/"+memory.SeedRegistrationPending+"/scheduled-date"),
		map[string]any{"date": nil})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	data = decodeData(t, rec)
	if _, set := data["scheduled_tryout_date"]; set {
		t.Fatalf("expected scheduled date to be cleared, got %v", data["scheduled_tryout_date"])
	}
}

func TestAdminBulkCheckIn(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, adminPath("/registrations/check-in"),
		map[string]any{
			"registration_ids": []string{memory.SeedRegistrationPending, "missing-id"},
			"status":           "present",
		})
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	if updated, _ := data["updated"].(float64); updated != 1 {
		t.Fatalf("expected 1 updated, got %v", data["updated"])
	}
	failed, _ := data["failed"].([]any)
	if len(failed) != 1 {
		t.Fatalf("expected 1 failure, got %v", data["failed"])
	}
}

func TestAdminStats(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, adminPath("/stats"), nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	data := decodeData(t, rec)
	if total, _ := data["total"].(float64); total != 4 {
		t.Fatalf("expected total=4, got %v", data["total"])
	}
	byStatus, _ := data["by_status"].(map[string]any)
	if byStatus["pending"] != float64(1) {
		t.Fatalf("expected one pending registration, got %v", byStatus)
	}
}

func TestHealthz(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/healthz", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}
