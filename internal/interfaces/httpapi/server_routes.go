package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("POST /v1/registrations", handler.SubmitRegistration)
	mux.HandleFunc("GET /v1/registrations/status", handler.CheckRegistrationStatus)
	mux.HandleFunc("POST /v1/athletes", handler.CompleteAthleteProfile)
}

func registerAdminRoutes(mux *http.ServeMux, handler *Handler, adminToken string) {
	admin := func(h http.HandlerFunc) http.Handler {
		return RequireAdminToken(adminToken, h)
	}

	mux.Handle("GET /v1/admin/{token}/registrations", admin(handler.AdminListRegistrations))
	mux.Handle("GET /v1/admin/{token}/registrations/{registrationID}", admin(handler.AdminGetRegistration))
	mux.Handle("PATCH /v1/admin/{token}/registrations/{registrationID}/attendance", admin(handler.AdminUpdateAttendance))
	mux.Handle("PATCH /v1/admin/{token}/registrations/{registrationID}/payment", admin(handler.AdminUpdatePayment))
	mux.Handle("POST /v1/admin/{token}/registrations/{registrationID}/payment-proof", admin(handler.AdminUploadPaymentProof))
	mux.Handle("POST /v1/admin/{token}/registrations/{registrationID}/photo", admin(handler.AdminUploadPhoto))
	mux.Handle("PUT /v1/admin/{token}/registrations/{registrationID}/photo-url", admin(handler.AdminSetPhotoURL))
	mux.Handle("PATCH /v1/admin/{token}/registrations/{registrationID}/tryout-number", admin(handler.AdminSetTryoutNumber))
	mux.Handle("PATCH /v1/admin/{token}/registrations/{registrationID}/scheduled-date", admin(handler.AdminSetScheduledDate))
	mux.Handle("POST /v1/admin/{token}/registrations/{registrationID}/review", admin(handler.AdminReview))
	mux.Handle("POST /v1/admin/{token}/registrations/check-in", admin(handler.AdminBulkCheckIn))
	mux.Handle("GET /v1/admin/{token}/stats", admin(handler.AdminStats))
}
