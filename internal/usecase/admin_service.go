package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/skyhigh-allstar/tryouts-api/internal/domain/athlete"
	"github.com/skyhigh-allstar/tryouts-api/internal/domain/guardian"
	"github.com/skyhigh-allstar/tryouts-api/internal/domain/registration"
	"github.com/skyhigh-allstar/tryouts-api/internal/domain/stats"
	"github.com/skyhigh-allstar/tryouts-api/internal/platform/cache"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100

	maxUploadBytes = 5 << 20

	bulkCheckInWorkers = 8

	statsCacheKey = "admin:stats"
)

// uploadExtensions maps the accepted MIME types to the stored file extension.
// Anything outside this set is rejected before the storage call.
var uploadExtensions = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// FileStore uploads files to the public bucket and returns the public URL.
// Remove is best effort; callers use it to clean up superseded objects.
type FileStore interface {
	Upload(ctx context.Context, key, contentType string, data []byte) (string, error)
	Remove(ctx context.Context, key string) error
}

type ListRegistrationsInput struct {
	Status           string
	AttendanceStatus string
	PaymentStatus    string
	Search           string
	Page             int
	PerPage          int
}

type RegistrationPage struct {
	Items   []registration.Registration
	Total   int
	Page    int
	PerPage int
}

// RegistrationDetail is the flattened per-registration view shown to staff.
type RegistrationDetail struct {
	Registration registration.Registration
	Athlete      *athlete.Athlete
	Guardian     *guardian.Guardian
}

type BulkCheckInFailure struct {
	RegistrationID string
	Reason         string
}

type BulkCheckInResult struct {
	Updated int
	Failed  []BulkCheckInFailure
}

type AdminService struct {
	regRepo      registration.Repository
	athleteRepo  athlete.Repository
	guardianRepo guardian.Repository
	statsRepo    stats.Repository
	files        FileStore
	statsCache   *cache.Store
	now          func() time.Time
}

func NewAdminService(
	regRepo registration.Repository,
	athleteRepo athlete.Repository,
	guardianRepo guardian.Repository,
	statsRepo stats.Repository,
	files FileStore,
	statsCache *cache.Store,
) *AdminService {
	return &AdminService{
		regRepo:      regRepo,
		athleteRepo:  athleteRepo,
		guardianRepo: guardianRepo,
		statsRepo:    statsRepo,
		files:        files,
		statsCache:   statsCache,
		now:          time.Now,
	}
}

func (s *AdminService) List(ctx context.Context, input ListRegistrationsInput) (RegistrationPage, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.List")
	defer span.End()

	filter := registration.ListFilter{Search: strings.TrimSpace(input.Search)}

	if v := strings.TrimSpace(input.Status); v != "" {
		status := registration.Status(v)
		if !status.Valid() {
			return RegistrationPage{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, v)
		}
		filter.Status = status
	}
	if v := strings.TrimSpace(input.AttendanceStatus); v != "" {
		attendance := registration.AttendanceStatus(v)
		if !attendance.Valid() {
			return RegistrationPage{}, fmt.Errorf("%w: unknown attendance status %q", ErrInvalidInput, v)
		}
		filter.AttendanceStatus = attendance
	}
	if v := strings.TrimSpace(input.PaymentStatus); v != "" {
		payment := registration.PaymentStatus(v)
		if !payment.Valid() {
			return RegistrationPage{}, fmt.Errorf("%w: unknown payment status %q", ErrInvalidInput, v)
		}
		filter.PaymentStatus = payment
	}

	page := input.Page
	if page < 1 {
		page = 1
	}
	perPage := input.PerPage
	if perPage < 1 {
		perPage = defaultPageSize
	}
	if perPage > maxPageSize {
		perPage = maxPageSize
	}
	filter.Limit = perPage
	filter.Offset = (page - 1) * perPage

	items, total, err := s.regRepo.List(ctx, filter)
	if err != nil {
		return RegistrationPage{}, fmt.Errorf("list registrations: %w", err)
	}

	return RegistrationPage{Items: items, Total: total, Page: page, PerPage: perPage}, nil
}

func (s *AdminService) Get(ctx context.Context, id string) (RegistrationDetail, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.Get")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return RegistrationDetail{}, fmt.Errorf("%w: registration id is required", ErrInvalidInput)
	}

	reg, found, err := s.regRepo.GetByID(ctx, id)
	if err != nil {
		return RegistrationDetail{}, fmt.Errorf("get registration: %w", err)
	}
	if !found {
		return RegistrationDetail{}, fmt.Errorf("%w: registration %s", ErrNotFound, id)
	}

	detail := RegistrationDetail{Registration: reg}
	if a, exists, err := s.athleteRepo.GetByRegistrationID(ctx, id); err != nil {
		return RegistrationDetail{}, fmt.Errorf("get athlete: %w", err)
	} else if exists {
		detail.Athlete = &a
	}
	if g, exists, err := s.guardianRepo.GetByRegistrationID(ctx, id); err != nil {
		return RegistrationDetail{}, fmt.Errorf("get guardian: %w", err)
	} else if exists {
		detail.Guardian = &g
	}

	return detail, nil
}

func (s *AdminService) UpdateAttendance(ctx context.Context, id, status string) (registration.Registration, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.UpdateAttendance")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return registration.Registration{}, fmt.Errorf("%w: registration id is required", ErrInvalidInput)
	}
	attendance := registration.AttendanceStatus(strings.TrimSpace(status))
	if !attendance.Valid() {
		return registration.Registration{}, fmt.Errorf("%w: unknown attendance status %q", ErrInvalidInput, status)
	}

	reg, err := s.regRepo.UpdateAttendance(ctx, id, attendance)
	if err != nil {
		return registration.Registration{}, wrapRegistrationErr("update attendance", id, err)
	}
	s.statsCache.Invalidate(ctx, statsCacheKey)
	return reg, nil
}

func (s *AdminService) UpdatePayment(ctx context.Context, id, status string) (registration.Registration, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.UpdatePayment")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return registration.Registration{}, fmt.Errorf("%w: registration id is required", ErrInvalidInput)
	}
	payment := registration.PaymentStatus(strings.TrimSpace(status))
	if !payment.Valid() {
		return registration.Registration{}, fmt.Errorf("%w: unknown payment status %q", ErrInvalidInput, status)
	}

	reg, err := s.regRepo.UpdatePayment(ctx, id, payment)
	if err != nil {
		return registration.Registration{}, wrapRegistrationErr("update payment", id, err)
	}
	s.statsCache.Invalidate(ctx, statsCacheKey)
	return reg, nil
}

// UploadPaymentProof validates the file, stores it under
// "{registration id}-{timestamp}.{ext}" and attaches the public URL.
func (s *AdminService) UploadPaymentProof(ctx context.Context, id, contentType string, data []byte) (registration.Registration, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.UploadPaymentProof")
	defer span.End()

	url, prev, err := s.uploadFile(ctx, id, contentType, data)
	if err != nil {
		return registration.Registration{}, err
	}

	reg, err := s.regRepo.UpdatePaymentProofURL(ctx, id, url)
	if err != nil {
		return registration.Registration{}, wrapRegistrationErr("attach payment proof", id, err)
	}
	s.removeReplacedObject(ctx, prev.PaymentProofURL)
	return reg, nil
}

// UploadPhoto stores an athlete photo and attaches the public URL to the
// registration and, when the athlete row exists, to the athlete profile.
func (s *AdminService) UploadPhoto(ctx context.Context, id, contentType string, data []byte) (registration.Registration, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.UploadPhoto")
	defer span.End()

	url, prev, err := s.uploadFile(ctx, id, contentType, data)
	if err != nil {
		return registration.Registration{}, err
	}
	reg, err := s.SetPhotoURL(ctx, id, url)
	if err != nil {
		return registration.Registration{}, err
	}
	s.removeReplacedObject(ctx, prev.PhotoURL)
	return reg, nil
}

func (s *AdminService) SetPhotoURL(ctx context.Context, id, url string) (registration.Registration, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.SetPhotoURL")
	defer span.End()

	id = strings.TrimSpace(id)
	url = strings.TrimSpace(url)
	if id == "" {
		return registration.Registration{}, fmt.Errorf("%w: registration id is required", ErrInvalidInput)
	}
	if url == "" {
		return registration.Registration{}, fmt.Errorf("%w: photo url is required", ErrInvalidInput)
	}

	reg, err := s.regRepo.UpdatePhotoURL(ctx, id, url)
	if err != nil {
		return registration.Registration{}, wrapRegistrationErr("set photo url", id, err)
	}

	if _, exists, err := s.athleteRepo.GetByRegistrationID(ctx, id); err != nil {
		return registration.Registration{}, fmt.Errorf("get athlete for photo: %w", err)
	} else if exists {
		if _, err := s.athleteRepo.UpdatePhotoURL(ctx, id, url); err != nil {
			return registration.Registration{}, fmt.Errorf("set athlete photo url: %w", err)
		}
	}
	return reg, nil
}

func (s *AdminService) SetTryoutNumber(ctx context.Context, id string, number int) (registration.Registration, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.SetTryoutNumber")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return registration.Registration{}, fmt.Errorf("%w: registration id is required", ErrInvalidInput)
	}
	if number <= 0 {
		return registration.Registration{}, fmt.Errorf("%w: tryout number must be positive", ErrInvalidInput)
	}

	reg, err := s.regRepo.UpdateTryoutNumber(ctx, id, number)
	if err != nil {
		return registration.Registration{}, wrapRegistrationErr("set tryout number", id, err)
	}
	return reg, nil
}

// SetScheduledDate sets or, with a nil date, clears the scheduled tryout date.
// A set date overrides every status on the applicant's status page.
func (s *AdminService) SetScheduledDate(ctx context.Context, id string, date *time.Time) (registration.Registration, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.SetScheduledDate")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return registration.Registration{}, fmt.Errorf("%w: registration id is required", ErrInvalidInput)
	}
	if date != nil && date.IsZero() {
		return registration.Registration{}, fmt.Errorf("%w: scheduled date cannot be the zero time", ErrInvalidInput)
	}

	reg, err := s.regRepo.UpdateScheduledTryoutDate(ctx, id, date)
	if err != nil {
		return registration.Registration{}, wrapRegistrationErr("set scheduled date", id, err)
	}
	return reg, nil
}

// Review records the staff decision and, for accepted applicants, the team
// assignments. Assignments are filtered to known teams and positions and
// capped before the write.
func (s *AdminService) Review(ctx context.Context, id, status string, assignments []registration.TeamAssignment) (registration.Registration, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.Review")
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return registration.Registration{}, fmt.Errorf("%w: registration id is required", ErrInvalidInput)
	}
	decided := registration.Status(strings.TrimSpace(status))
	if !decided.Valid() {
		return registration.Registration{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	filtered := registration.FilterAssignments(assignments)
	if decided != registration.StatusAccepted {
		filtered = nil
	}

	reg, err := s.regRepo.UpdateReview(ctx, id, decided, filtered)
	if err != nil {
		return registration.Registration{}, wrapRegistrationErr("update review", id, err)
	}
	s.statsCache.Invalidate(ctx, statsCacheKey)
	return reg, nil
}

// BulkCheckIn marks a batch of registrations with one attendance status using
// a bounded worker pool. Per-row failures are collected, not fatal.
func (s *AdminService) BulkCheckIn(ctx context.Context, ids []string, status string) (BulkCheckInResult, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.BulkCheckIn")
	defer span.End()

	attendance := registration.AttendanceStatus(strings.TrimSpace(status))
	if !attendance.Valid() {
		return BulkCheckInResult{}, fmt.Errorf("%w: unknown attendance status %q", ErrInvalidInput, status)
	}

	unique := make([]string, 0, len(ids))
	seen := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	if len(unique) == 0 {
		return BulkCheckInResult{}, fmt.Errorf("%w: at least one registration id is required", ErrInvalidInput)
	}

	workerCount := bulkCheckInWorkers
	if len(unique) < workerCount {
		workerCount = len(unique)
	}
	pool, err := ants.NewPool(workerCount)
	if err != nil {
		return BulkCheckInResult{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var mu sync.Mutex
	result := BulkCheckInResult{}

	var workers sync.WaitGroup
	for _, id := range unique {
		id := id
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()

			_, err := s.regRepo.UpdateAttendance(ctx, id, attendance)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.Failed = append(result.Failed, BulkCheckInFailure{
					RegistrationID: id,
					Reason:         err.Error(),
				})
				return
			}
			result.Updated++
		}); err != nil {
			workers.Done()
			return BulkCheckInResult{}, fmt.Errorf("submit check-in to worker pool: %w", err)
		}
	}
	workers.Wait()

	s.statsCache.Invalidate(ctx, statsCacheKey)
	return result, nil
}

// Stats serves the aggregate dashboard view through a short-lived cache so
// repeated loads during a check-in event do not hammer the database.
func (s *AdminService) Stats(ctx context.Context) (stats.Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.AdminService.Stats")
	defer span.End()

	value, err := s.statsCache.GetOrLoad(ctx, statsCacheKey, func(ctx context.Context) (any, error) {
		summary, err := s.statsRepo.Summary(ctx)
		if err != nil {
			return nil, fmt.Errorf("load stats summary: %w", err)
		}
		return summary, nil
	})
	if err != nil {
		return stats.Summary{}, err
	}

	summary, ok := value.(stats.Summary)
	if !ok {
		return stats.Summary{}, fmt.Errorf("unexpected stats cache payload %T", value)
	}
	return summary, nil
}

func (s *AdminService) uploadFile(ctx context.Context, id, contentType string, data []byte) (string, registration.Registration, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", registration.Registration{}, fmt.Errorf("%w: registration id is required", ErrInvalidInput)
	}
	if len(data) == 0 {
		return "", registration.Registration{}, fmt.Errorf("%w: file is empty", ErrInvalidInput)
	}
	if len(data) > maxUploadBytes {
		return "", registration.Registration{}, fmt.Errorf("%w: file exceeds the 5MB limit", ErrInvalidInput)
	}
	ext, ok := uploadExtensions[normalizeContentType(contentType)]
	if !ok {
		return "", registration.Registration{}, fmt.Errorf("%w: unsupported file type %q", ErrInvalidInput, contentType)
	}

	prev, found, err := s.regRepo.GetByID(ctx, id)
	if err != nil {
		return "", registration.Registration{}, fmt.Errorf("get registration for upload: %w", err)
	}
	if !found {
		return "", registration.Registration{}, fmt.Errorf("%w: registration %s", ErrNotFound, id)
	}

	key := fmt.Sprintf("%s-%d%s", id, s.now().UTC().UnixMilli(), ext)
	url, err := s.files.Upload(ctx, key, normalizeContentType(contentType), data)
	if err != nil {
		return "", registration.Registration{}, fmt.Errorf("%w: upload %s: %v", ErrDependencyUnavailable, key, err)
	}
	return url, prev, nil
}

// removeReplacedObject deletes the object behind a superseded URL. Failures
// are swallowed; the new upload already owns the row.
func (s *AdminService) removeReplacedObject(ctx context.Context, oldURL string) {
	key := objectKeyFromURL(oldURL)
	if key == "" {
		return
	}
	_ = s.files.Remove(ctx, key)
}

func objectKeyFromURL(rawURL string) string {
	rawURL = strings.TrimSpace(strings.TrimRight(rawURL, "/"))
	if rawURL == "" {
		return ""
	}
	idx := strings.LastIndexByte(rawURL, '/')
	if idx < 0 {
		return ""
	}
	return rawURL[idx+1:]
}

func normalizeContentType(raw string) string {
	if idx := strings.Index(raw, ";"); idx >= 0 {
		raw = raw[:idx]
	}
	return strings.ToLower(strings.TrimSpace(raw))
}

func wrapRegistrationErr(op, id string, err error) error {
	if errors.Is(err, registration.ErrNotFound) {
		return fmt.Errorf("%w: registration %s", ErrNotFound, id)
	}
	return fmt.Errorf("%s: %w", op, err)
}
