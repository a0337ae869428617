package registration

import (
	"testing"
	"time"
)

func TestDeriveCheckState_NotFound(t *testing.T) {
	t.Parallel()

	state := DeriveCheckState(nil)
	if state.Kind != CheckNotFound {
		t.Fatalf("expected %s, got %s", CheckNotFound, state.Kind)
	}
}

func TestDeriveCheckState_ScheduledDateWinsOverEverything(t *testing.T) {
	t.Parallel()

	date := time.Date(2026, 10, 3, 9, 0, 0, 0, time.UTC)
	for _, status := range []Status{StatusPending, StatusUnderReview, StatusAccepted, StatusRejected, StatusWaitlisted} {
		for _, attendance := range []AttendanceStatus{AttendanceNotChecked, AttendancePresent, AttendanceAbsent} {
			reg := &Registration{
				Status:              status,
				AttendanceStatus:    attendance,
				ScheduledTryoutDate: &date,
				TeamAssignments:     []TeamAssignment{{Team: TeamSnowstorm, Position: PositionFlyer}},
			}
			state := DeriveCheckState(reg)
			if state.Kind != CheckScheduled {
				t.Fatalf("status=%s attendance=%s: expected %s, got %s", status, attendance, CheckScheduled, state.Kind)
			}
		}
	}
}

func TestDeriveCheckState_AbsentWinsOverAccepted(t *testing.T) {
	t.Parallel()

	reg := &Registration{
		Status:           StatusAccepted,
		AttendanceStatus: AttendanceAbsent,
		TeamAssignments:  []TeamAssignment{{Team: TeamSnowstorm, Position: PositionFlyer}},
	}
	state := DeriveCheckState(reg)
	if state.Kind != CheckAbsent {
		t.Fatalf("expected %s, got %s", CheckAbsent, state.Kind)
	}
}

func TestDeriveCheckState_AcceptedBranchesOnAssignments(t *testing.T) {
	t.Parallel()

	withTeam := &Registration{
		Status:           StatusAccepted,
		AttendanceStatus: AttendancePresent,
		TeamAssignments:  []TeamAssignment{{Team: TeamSnowstorm, Position: "flyer/base"}},
	}
	state := DeriveCheckState(withTeam)
	if state.Kind != CheckApproved {
		t.Fatalf("expected %s, got %s", CheckApproved, state.Kind)
	}
	if len(state.Assignments) != 1 {
		t.Fatalf("expected 1 assignment, got %d", len(state.Assignments))
	}

	noTeam := &Registration{Status: StatusAccepted, AttendanceStatus: AttendancePresent}
	state = DeriveCheckState(noTeam)
	if state.Kind != CheckTryoutPending {
		t.Fatalf("expected %s, got %s", CheckTryoutPending, state.Kind)
	}

	// Assignments that filter down to nothing behave like no assignments.
	invalidOnly := &Registration{
		Status:           StatusAccepted,
		AttendanceStatus: AttendancePresent,
		TeamAssignments:  []TeamAssignment{{Team: "galaxy", Position: PositionFlyer}},
	}
	state = DeriveCheckState(invalidOnly)
	if state.Kind != CheckTryoutPending {
		t.Fatalf("expected %s after filtering, got %s", CheckTryoutPending, state.Kind)
	}
}

func TestDeriveCheckState_FixedMessageStates(t *testing.T) {
	t.Parallel()

	cases := map[Status]CheckStateKind{
		StatusPending:     CheckPending,
		StatusUnderReview: CheckUnderReview,
		StatusRejected:    CheckRejected,
		StatusWaitlisted:  CheckWaitlisted,
	}
	for status, want := range cases {
		state := DeriveCheckState(&Registration{Status: status, AttendanceStatus: AttendanceNotChecked})
		if state.Kind != want {
			t.Fatalf("status=%s: expected %s, got %s", status, want, state.Kind)
		}
	}
}
