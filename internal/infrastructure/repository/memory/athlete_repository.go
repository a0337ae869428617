package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/skyhigh-allstar/tryouts-api/internal/domain/athlete"
	"github.com/skyhigh-allstar/tryouts-api/internal/domain/guardian"
)

type AthleteRepository struct {
	mu        sync.RWMutex
	items     map[string]athlete.Athlete
	guardians *GuardianRepository
}

func NewAthleteRepository(guardians *GuardianRepository, seed ...athlete.Athlete) *AthleteRepository {
	if guardians == nil {
		guardians = NewGuardianRepository()
	}
	r := &AthleteRepository{
		items:     make(map[string]athlete.Athlete),
		guardians: guardians,
	}
	for _, item := range seed {
		r.items[item.RegistrationID] = item
	}
	return r
}

func (r *AthleteRepository) CreateWithGuardian(_ context.Context, a athlete.Athlete, g *guardian.Guardian) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.items[a.RegistrationID]; exists {
		return fmt.Errorf("%w: registration %s", athlete.ErrAlreadyExists, a.RegistrationID)
	}

	r.items[a.RegistrationID] = a
	if g != nil {
		r.guardians.put(*g)
	}
	return nil
}

func (r *AthleteRepository) GetByRegistrationID(_ context.Context, registrationID string) (athlete.Athlete, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[registrationID]
	if !ok {
		return athlete.Athlete{}, false, nil
	}
	return item, true, nil
}

func (r *AthleteRepository) UpdatePhotoURL(_ context.Context, registrationID, url string) (athlete.Athlete, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.items[registrationID]
	if !ok {
		return athlete.Athlete{}, fmt.Errorf("no athlete for registration %s", registrationID)
	}
	item.PhotoURL = url
	item.UpdatedAt = time.Now().UTC()
	r.items[registrationID] = item
	return item, nil
}
