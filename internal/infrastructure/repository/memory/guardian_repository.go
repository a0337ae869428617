package memory

import (
	"context"
	"sync"

	"github.com/skyhigh-allstar/tryouts-api/internal/domain/guardian"
)

// GuardianRepository stores guardian rows keyed by registration id. The
// registration and athlete repositories write into the same instance,
// mirroring the shared table behind both transactions.
type GuardianRepository struct {
	mu    sync.RWMutex
	items map[string]guardian.Guardian
}

func NewGuardianRepository(seed ...guardian.Guardian) *GuardianRepository {
	r := &GuardianRepository{items: make(map[string]guardian.Guardian)}
	for _, item := range seed {
		r.items[item.RegistrationID] = item
	}
	return r
}

func (r *GuardianRepository) GetByRegistrationID(_ context.Context, registrationID string) (guardian.Guardian, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	item, ok := r.items[registrationID]
	if !ok {
		return guardian.Guardian{}, false, nil
	}
	return item, true, nil
}

func (r *GuardianRepository) put(g guardian.Guardian) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.items[g.RegistrationID] = g
}
