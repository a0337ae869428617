package guardian

import (
	"fmt"
	"strings"
	"time"
)

// Guardian is the legal responsible party for a minor applicant. One guardian
// row exists per minor's registration; it is created atomically alongside the
// registration or the athlete profile.
type Guardian struct {
	ID             string
	RegistrationID string
	FullName       string
	Phone          string
	Email          string
	CPF            string
	Relationship   string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (g Guardian) ValidateBasic() error {
	if strings.TrimSpace(g.ID) == "" {
		return fmt.Errorf("guardian id is required")
	}
	if strings.TrimSpace(g.RegistrationID) == "" {
		return fmt.Errorf("guardian registration id is required")
	}
	if strings.TrimSpace(g.FullName) == "" {
		return fmt.Errorf("guardian full name is required")
	}
	if strings.TrimSpace(g.Phone) == "" {
		return fmt.Errorf("guardian phone is required")
	}

	return nil
}
