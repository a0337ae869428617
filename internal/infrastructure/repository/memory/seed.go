package memory

import (
	"time"

	"github.com/skyhigh-allstar/tryouts-api/internal/domain/registration"
)

// Registration ids used by the seed data and the tests built on it.
const (
	SeedRegistrationPending   = "reg-pending"
	SeedRegistrationAccepted  = "reg-accepted"
	SeedRegistrationScheduled = "reg-scheduled"
	SeedRegistrationAbsent    = "reg-absent"
)

// SeedRegistrations returns a small representative data set covering the
// status branches of the check ladder.
func SeedRegistrations() []registration.Registration {
	created := time.Date(2026, time.March, 1, 12, 0, 0, 0, time.UTC)
	scheduled := time.Date(2026, time.April, 18, 9, 0, 0, 0, time.UTC)

	return []registration.Registration{
		{
			ID:                SeedRegistrationPending,
			Email:             "pending@example.com",
			FullName:          "Larissa Prado",
			Phone:             "+55 11 91111-0001",
			BirthDate:         time.Date(2004, time.June, 2, 0, 0, 0, 0, time.UTC),
			City:              "São Paulo",
			State:             "SP",
			Level:             registration.LevelBeginner,
			PreferredPosition: registration.PositionBase,
			Status:            registration.StatusPending,
			AttendanceStatus:  registration.AttendanceNotChecked,
			PaymentStatus:     registration.PaymentPending,
			TryoutNumber:      1,
			CreatedAt:         created,
			UpdatedAt:         created,
		},
		{
			ID:                SeedRegistrationAccepted,
			Email:             "accepted@example.com",
			FullName:          "Beatriz Nogueira",
			Phone:             "+55 11 91111-0002",
			BirthDate:         time.Date(2002, time.January, 20, 0, 0, 0, 0, time.UTC),
			City:              "Campinas",
			State:             "SP",
			Level:             registration.LevelAdvanced,
			PreferredPosition: registration.PositionFlyer,
			Status:            registration.StatusAccepted,
			AttendanceStatus:  registration.AttendancePresent,
			PaymentStatus:     registration.PaymentPaid,
			TeamAssignments: []registration.TeamAssignment{
				{Team: registration.TeamSnowstorm, Position: "flyer/base"},
			},
			TryoutNumber: 2,
			CreatedAt:    created.Add(time.Minute),
			UpdatedAt:    created.Add(time.Minute),
		},
		{
			ID:                  SeedRegistrationScheduled,
			Email:               "scheduled@example.com",
			FullName:            "Carolina Dias",
			Phone:               "+55 11 91111-0003",
			BirthDate:           time.Date(2006, time.October, 9, 0, 0, 0, 0, time.UTC),
			City:                "Santos",
			State:               "SP",
			Level:               registration.LevelIntermediate,
			PreferredPosition:   registration.PositionTumbler,
			Status:              registration.StatusAccepted,
			AttendanceStatus:    registration.AttendanceNotChecked,
			PaymentStatus:       registration.PaymentPending,
			ScheduledTryoutDate: &scheduled,
			TryoutNumber:        3,
			CreatedAt:           created.Add(2 * time.Minute),
			UpdatedAt:           created.Add(2 * time.Minute),
		},
		{
			ID:                SeedRegistrationAbsent,
			Email:             "absent@example.com",
			FullName:          "Duda Ferreira",
			Phone:             "+55 11 91111-0004",
			BirthDate:         time.Date(2003, time.February, 14, 0, 0, 0, 0, time.UTC),
			City:              "Sorocaba",
			State:             "SP",
			Level:             registration.LevelElite,
			PreferredPosition: registration.PositionBackspot,
			Status:            registration.StatusAccepted,
			AttendanceStatus:  registration.AttendanceAbsent,
			PaymentStatus:     registration.PaymentPending,
			TryoutNumber:      4,
			CreatedAt:         created.Add(3 * time.Minute),
			UpdatedAt:         created.Add(3 * time.Minute),
		},
	}
}
