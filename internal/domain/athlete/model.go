package athlete

import (
	"fmt"
	"strings"
	"time"
)

// Athlete is the post-approval profile completed by an accepted applicant.
// At most one athlete row exists per registration; its existence is the signal
// that the completion form was already filled.
type Athlete struct {
	ID             string
	RegistrationID string

	FullLegalName string
	CPF           string
	RG            string
	BirthDate     time.Time
	Nationality   string
	Instagram     string
	ShirtSize     string

	EmergencyContactName         string
	EmergencyContactPhone        string
	EmergencyContactRelationship string

	PhotoURL  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (a Athlete) ValidateBasic() error {
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("athlete id is required")
	}
	if strings.TrimSpace(a.RegistrationID) == "" {
		return fmt.Errorf("athlete registration id is required")
	}
	if strings.TrimSpace(a.FullLegalName) == "" {
		return fmt.Errorf("athlete legal name is required")
	}
	if strings.TrimSpace(a.CPF) == "" {
		return fmt.Errorf("athlete cpf is required")
	}
	if strings.TrimSpace(a.EmergencyContactName) == "" {
		return fmt.Errorf("emergency contact name is required")
	}
	if strings.TrimSpace(a.EmergencyContactPhone) == "" {
		return fmt.Errorf("emergency contact phone is required")
	}

	return nil
}

// NormalizeInstagram reduces a profile URL or @handle to the bare lowercase
// handle. "https://instagram.com/SkyFlyer" and "@SkyFlyer" both become
// "skyflyer".
func NormalizeInstagram(raw string) string {
	handle := strings.TrimSpace(raw)
	if handle == "" {
		return ""
	}

	lowered := strings.ToLower(handle)
	for _, prefix := range []string{
		"https://www.instagram.com/",
		"http://www.instagram.com/",
		"https://instagram.com/",
		"http://instagram.com/",
		"www.instagram.com/",
		"instagram.com/",
	} {
		if strings.HasPrefix(lowered, prefix) {
			handle = handle[len(prefix):]
			break
		}
	}

	handle = strings.TrimPrefix(handle, "@")
	if idx := strings.IndexAny(handle, "/?"); idx >= 0 {
		handle = handle[:idx]
	}

	return strings.ToLower(strings.TrimSpace(handle))
}
