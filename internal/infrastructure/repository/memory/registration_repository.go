package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/skyhigh-allstar/tryouts-api/internal/domain/guardian"
	"github.com/skyhigh-allstar/tryouts-api/internal/domain/registration"
)

type RegistrationRepository struct {
	mu        sync.RWMutex
	items     map[string]registration.Registration
	guardians *GuardianRepository
}

// NewRegistrationRepository builds an in-memory store. Guardian rows created
// through Create land in guardians, which may be shared with an
// AthleteRepository.
func NewRegistrationRepository(guardians *GuardianRepository, seed ...registration.Registration) *RegistrationRepository {
	if guardians == nil {
		guardians = NewGuardianRepository()
	}
	r := &RegistrationRepository{
		items:     make(map[string]registration.Registration),
		guardians: guardians,
	}
	for _, item := range seed {
		r.items[item.ID] = cloneRegistration(item)
	}
	return r
}

func (r *RegistrationRepository) Create(_ context.Context, reg registration.Registration, g *guardian.Guardian) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.items {
		if strings.EqualFold(existing.Email, reg.Email) {
			return registration.ErrDuplicateEmail
		}
	}

	if reg.TryoutNumber == 0 {
		reg.TryoutNumber = len(r.items) + 1
	}
	r.items[reg.ID] = cloneRegistration(reg)
	if g != nil {
		r.guardians.put(*g)
	}
	return nil
}

func (r *RegistrationRepository) GetByID(_ context.Context, id string) (registration.Registration, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[id]
	if !ok {
		return registration.Registration{}, false, nil
	}
	return cloneRegistration(item), true, nil
}

func (r *RegistrationRepository) GetByEmail(_ context.Context, email string) (registration.Registration, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if strings.EqualFold(item.Email, email) {
			return cloneRegistration(item), true, nil
		}
	}
	return registration.Registration{}, false, nil
}

func (r *RegistrationRepository) EmailExists(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, item := range r.items {
		if strings.EqualFold(item.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (r *RegistrationRepository) List(_ context.Context, filter registration.ListFilter) ([]registration.Registration, int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]registration.Registration, 0, len(r.items))
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	for _, item := range r.items {
		if filter.Status != "" && item.Status != filter.Status {
			continue
		}
		if filter.AttendanceStatus != "" && item.AttendanceStatus != filter.AttendanceStatus {
			continue
		}
		if filter.PaymentStatus != "" && item.PaymentStatus != filter.PaymentStatus {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(item.FullName), search) &&
			!strings.Contains(strings.ToLower(item.Email), search) {
			continue
		}
		matched = append(matched, cloneRegistration(item))
	}

	sort.SliceStable(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID < matched[j].ID
	})

	total := len(matched)
	if filter.Offset > 0 {
		if filter.Offset >= total {
			return []registration.Registration{}, total, nil
		}
		matched = matched[filter.Offset:]
	}
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (r *RegistrationRepository) UpdateAttendance(ctx context.Context, id string, status registration.AttendanceStatus) (registration.Registration, error) {
	return r.update(id, func(item *registration.Registration) {
		item.AttendanceStatus = status
	})
}

func (r *RegistrationRepository) UpdatePayment(ctx context.Context, id string, status registration.PaymentStatus) (registration.Registration, error) {
	return r.update(id, func(item *registration.Registration) {
		item.PaymentStatus = status
	})
}

func (r *RegistrationRepository) UpdatePaymentProofURL(ctx context.Context, id, url string) (registration.Registration, error) {
	return r.update(id, func(item *registration.Registration) {
		item.PaymentProofURL = url
	})
}

func (r *RegistrationRepository) UpdatePhotoURL(ctx context.Context, id, url string) (registration.Registration, error) {
	return r.update(id, func(item *registration.Registration) {
		item.PhotoURL = url
	})
}

func (r *RegistrationRepository) UpdateTryoutNumber(ctx context.Context, id string, number int) (registration.Registration, error) {
	return r.update(id, func(item *registration.Registration) {
		item.TryoutNumber = number
	})
}

func (r *RegistrationRepository) UpdateScheduledTryoutDate(ctx context.Context, id string, date *time.Time) (registration.Registration, error) {
	return r.update(id, func(item *registration.Registration) {
		if date == nil {
			item.ScheduledTryoutDate = nil
			return
		}
		d := *date
		item.ScheduledTryoutDate = &d
	})
}

func (r *RegistrationRepository) UpdateReview(ctx context.Context, id string, status registration.Status, assignments []registration.TeamAssignment) (registration.Registration, error) {
	return r.update(id, func(item *registration.Registration) {
		item.Status = status
		item.TeamAssignments = append([]registration.TeamAssignment(nil), assignments...)
	})
}

func (r *RegistrationRepository) update(id string, mutate func(*registration.Registration)) (registration.Registration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[id]
	if !ok {
		return registration.Registration{}, registration.ErrNotFound
	}
	mutate(&item)
	item.UpdatedAt = time.Now().UTC()
	r.items[id] = cloneRegistration(item)
	return cloneRegistration(item), nil
}

func cloneRegistration(item registration.Registration) registration.Registration {
	copied := item
	copied.AvailableDays = append([]string(nil), item.AvailableDays...)
	copied.TeamAssignments = append([]registration.TeamAssignment(nil), item.TeamAssignments...)
	if item.ScheduledTryoutDate != nil {
		d := *item.ScheduledTryoutDate
		copied.ScheduledTryoutDate = &d
	}
	return copied
}
