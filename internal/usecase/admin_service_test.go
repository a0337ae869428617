package usecase

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/skyhigh-allstar/tryouts-api/internal/domain/registration"
	"github.com/skyhigh-allstar/tryouts-api/internal/domain/stats"
	"github.com/skyhigh-allstar/tryouts-api/internal/infrastructure/repository/memory"
	"github.com/skyhigh-allstar/tryouts-api/internal/platform/cache"
)

type fakeFileStore struct {
	uploads int
	lastKey string
	removed []string
	fail    error
}

func (f *fakeFileStore) Upload(_ context.Context, key, _ string, _ []byte) (string, error) {
	if f.fail != nil {
		return "", f.fail
	}
	f.uploads++
	f.lastKey = key
	return "https://cdn.example.com/uploads/" + key, nil
}

func (f *fakeFileStore) Remove(_ context.Context, key string) error {
	f.removed = append(f.removed, key)
	return nil
}

type countingStatsRepo struct {
	inner stats.Repository
	calls atomic.Int32
}

func (r *countingStatsRepo) Summary(ctx context.Context) (stats.Summary, error) {
	r.calls.Add(1)
	return r.inner.Summary(ctx)
}

func newAdminFixture(t *testing.T) (*AdminService, *memory.RegistrationRepository, *fakeFileStore, *countingStatsRepo) {
	t.Helper()
	guardians := memory.NewGuardianRepository()
	regRepo := memory.NewRegistrationRepository(guardians, memory.SeedRegistrations()...)
	athleteRepo := memory.NewAthleteRepository(guardians)
	statsRepo := &countingStatsRepo{inner: memory.NewStatsRepository(regRepo)}
	files := &fakeFileStore{}

	svc := NewAdminService(regRepo, athleteRepo, guardians, statsRepo, files, cache.NewStore(time.Minute))
	svc.now = func() time.Time { return time.Date(2026, time.March, 2, 15, 4, 5, 0, time.UTC) }
	return svc, regRepo, files, statsRepo
}

func TestAdminService_List_FilterAndSearch(t *testing.T) {
	svc, _, _, _ := newAdminFixture(t)

	page, err := svc.List(t.Context(), ListRegistrationsInput{Status: "accepted", Search: "nogueira"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page.Total != 1 || len(page.Items) != 1 {
		t.Fatalf("expected one match, got total=%d items=%d", page.Total, len(page.Items))
	}
	if page.Items[0].ID != memory.SeedRegistrationAccepted {
		t.Fatalf("unexpected match: %s", page.Items[0].ID)
	}
}

func TestAdminService_List_Pagination(t *testing.T) {
	svc, _, _, _ := newAdminFixture(t)

	page, err := svc.List(t.Context(), ListRegistrationsInput{Page: 2, PerPage: 3})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page.Total != 4 {
		t.Fatalf("expected total 4, got %d", page.Total)
	}
	if len(page.Items) != 1 {
		t.Fatalf("expected one item on page 2, got %d", len(page.Items))
	}
}

func TestAdminService_List_UnknownStatus(t *testing.T) {
	svc, _, _, _ := newAdminFixture(t)

	_, err := svc.List(t.Context(), ListRegistrationsInput{Status: "archived"})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAdminService_UpdateAttendance(t *testing.T) {
	svc, _, _, _ := newAdminFixture(t)

	reg, err := svc.UpdateAttendance(t.Context(), memory.SeedRegistrationPending, "present")
	if err != nil {
		t.Fatalf("update attendance failed: %v", err)
	}
	if reg.AttendanceStatus != registration.AttendancePresent {
		t.Fatalf("unexpected attendance: %s", reg.AttendanceStatus)
	}

	if _, err := svc.UpdateAttendance(t.Context(), "missing", "present"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := svc.UpdateAttendance(t.Context(), memory.SeedRegistrationPending, "late"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestAdminService_UploadPaymentProof(t *testing.T) {
	svc, _, files, _ := newAdminFixture(t)

	reg, err := svc.UploadPaymentProof(t.Context(), memory.SeedRegistrationPending, "image/png", []byte("png-bytes"))
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}

	wantKey := memory.SeedRegistrationPending + "-1772463845000.png"
	if files.lastKey != wantKey {
		t.Fatalf("unexpected object key:\nwant: %s\ngot:  %s", wantKey, files.lastKey)
	}
	if reg.PaymentProofURL == "" {
		t.Fatal("expected payment proof url to be attached")
	}
}

func TestAdminService_UploadPaymentProof_RemovesReplacedObject(t *testing.T) {
	svc, _, files, _ := newAdminFixture(t)

	if _, err := svc.UploadPaymentProof(t.Context(), memory.SeedRegistrationPending, "image/png", []byte("first")); err != nil {
		t.Fatalf("first upload failed: %v", err)
	}
	firstKey := files.lastKey

	svc.now = func() time.Time { return time.Date(2026, time.March, 3, 9, 0, 0, 0, time.UTC) }
	if _, err := svc.UploadPaymentProof(t.Context(), memory.SeedRegistrationPending, "image/png", []byte("second")); err != nil {
		t.Fatalf("second upload failed: %v", err)
	}

	if len(files.removed) != 1 || files.removed[0] != firstKey {
		t.Fatalf("expected replaced object %q to be removed, got %v", firstKey, files.removed)
	}
}

func TestAdminService_UploadPaymentProof_RejectsBeforeNetwork(t *testing.T) {
	svc, _, files, _ := newAdminFixture(t)

	if _, err := svc.UploadPaymentProof(t.Context(), memory.SeedRegistrationPending, "image/gif", []byte("gif")); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for mime type, got %v", err)
	}

	huge := bytes.Repeat([]byte("a"), maxUploadBytes+1)
	if _, err := svc.UploadPaymentProof(t.Context(), memory.SeedRegistrationPending, "image/png", huge); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for oversize file, got %v", err)
	}

	if files.uploads != 0 {
		t.Fatalf("expected no storage calls, got %d", files.uploads)
	}
}

func TestAdminService_UploadPaymentProof_StorageDown(t *testing.T) {
	svc, _, files, _ := newAdminFixture(t)
	files.fail = errors.New("bucket unreachable")

	_, err := svc.UploadPaymentProof(t.Context(), memory.SeedRegistrationPending, "image/png", []byte("png"))
	if !errors.Is(err, ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestAdminService_Review_FiltersAssignments(t *testing.T) {
	svc, _, _, _ := newAdminFixture(t)

	reg, err := svc.Review(t.Context(), memory.SeedRegistrationPending, "accepted", []registration.TeamAssignment{
		{Team: registration.TeamSnowstorm, Position: "flyer"},
		{Team: "unknown", Position: "flyer"},
		{Team: registration.TeamEclipse, Position: "base/backspot"},
		{Team: registration.TeamAvalanche, Position: "tumbler"},
	})
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}

	if len(reg.TeamAssignments) != 2 {
		t.Fatalf("expected assignments capped at 2, got %d", len(reg.TeamAssignments))
	}
	if reg.TeamAssignments[0].Team != registration.TeamSnowstorm || reg.TeamAssignments[1].Team != registration.TeamEclipse {
		t.Fatalf("unexpected assignment order: %+v", reg.TeamAssignments)
	}
}

func TestAdminService_Review_NonAcceptedDropsAssignments(t *testing.T) {
	svc, _, _, _ := newAdminFixture(t)

	reg, err := svc.Review(t.Context(), memory.SeedRegistrationAccepted, "waitlisted", []registration.TeamAssignment{
		{Team: registration.TeamSnowstorm, Position: "flyer"},
	})
	if err != nil {
		t.Fatalf("review failed: %v", err)
	}
	if len(reg.TeamAssignments) != 0 {
		t.Fatalf("expected no assignments for waitlisted, got %d", len(reg.TeamAssignments))
	}
}

func TestAdminService_BulkCheckIn(t *testing.T) {
	svc, regRepo, _, _ := newAdminFixture(t)

	result, err := svc.BulkCheckIn(t.Context(), []string{
		memory.SeedRegistrationPending,
		memory.SeedRegistrationAccepted,
		memory.SeedRegistrationPending, // duplicate, counted once
		"missing",
	}, "present")
	if err != nil {
		t.Fatalf("bulk check-in failed: %v", err)
	}

	if result.Updated != 2 {
		t.Fatalf("expected 2 updates, got %d", result.Updated)
	}
	if len(result.Failed) != 1 || result.Failed[0].RegistrationID != "missing" {
		t.Fatalf("unexpected failures: %+v", result.Failed)
	}

	reg, _, err := regRepo.GetByID(t.Context(), memory.SeedRegistrationPending)
	if err != nil {
		t.Fatalf("get registration: %v", err)
	}
	if reg.AttendanceStatus != registration.AttendancePresent {
		t.Fatalf("expected present after bulk check-in, got %s", reg.AttendanceStatus)
	}
}

func TestAdminService_Stats_CachedUntilWrite(t *testing.T) {
	svc, _, _, statsRepo := newAdminFixture(t)

	first, err := svc.Stats(t.Context())
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if first.Total != 4 {
		t.Fatalf("expected total 4, got %d", first.Total)
	}

	if _, err := svc.Stats(t.Context()); err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if got := statsRepo.calls.Load(); got != 1 {
		t.Fatalf("expected one summary load, got %d", got)
	}

	if _, err := svc.UpdatePayment(t.Context(), memory.SeedRegistrationPending, "pago"); err != nil {
		t.Fatalf("update payment failed: %v", err)
	}
	if _, err := svc.Stats(t.Context()); err != nil {
		t.Fatalf("stats failed: %v", err)
	}
	if got := statsRepo.calls.Load(); got != 2 {
		t.Fatalf("expected cache invalidation after write, got %d loads", got)
	}
}
