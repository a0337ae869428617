package registration

// CheckStateKind tags the page state derived for an approval-status check.
type CheckStateKind string

const (
	CheckNotFound      CheckStateKind = "not_found"
	CheckScheduled     CheckStateKind = "scheduled"
	CheckAbsent        CheckStateKind = "absent"
	CheckApproved      CheckStateKind = "approved"
	CheckTryoutPending CheckStateKind = "tryout_pending"
	CheckPending       CheckStateKind = "pending"
	CheckUnderReview   CheckStateKind = "under_review"
	CheckRejected      CheckStateKind = "rejected"
	CheckWaitlisted    CheckStateKind = "waitlisted"
)

// CheckState is the tagged union rendered by the status-check page. Exactly one
// kind is set; the payload fields are populated only for the kinds that carry
// them.
type CheckState struct {
	Kind         CheckStateKind
	Registration *Registration
	// Assignments is the filtered team assignment list; non-empty only for
	// CheckApproved.
	Assignments []TeamAssignment
}

// DeriveCheckState runs the ordered decision ladder over a looked-up
// registration. The order is load-bearing and must not be rearranged: a
// scheduled tryout date takes priority over every status, including accepted,
// and an absence mark takes priority over the status branch.
func DeriveCheckState(reg *Registration) CheckState {
	if reg == nil {
		return CheckState{Kind: CheckNotFound}
	}

	if reg.ScheduledTryoutDate != nil && !reg.ScheduledTryoutDate.IsZero() {
		return CheckState{Kind: CheckScheduled, Registration: reg}
	}

	if reg.AttendanceStatus == AttendanceAbsent {
		return CheckState{Kind: CheckAbsent, Registration: reg}
	}

	switch reg.Status {
	case StatusAccepted:
		assignments := FilterAssignments(reg.TeamAssignments)
		if len(assignments) > 0 {
			return CheckState{Kind: CheckApproved, Registration: reg, Assignments: assignments}
		}
		return CheckState{Kind: CheckTryoutPending, Registration: reg}
	case StatusUnderReview:
		return CheckState{Kind: CheckUnderReview, Registration: reg}
	case StatusRejected:
		return CheckState{Kind: CheckRejected, Registration: reg}
	case StatusWaitlisted:
		return CheckState{Kind: CheckWaitlisted, Registration: reg}
	default:
		return CheckState{Kind: CheckPending, Registration: reg}
	}
}
