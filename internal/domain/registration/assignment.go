package registration

import "strings"

// Team is one of the program's competitive teams.
type Team string

const (
	TeamSnowstorm   Team = "snowstorm"
	TeamThunderbolt Team = "thunderbolt"
	TeamAvalanche   Team = "avalanche"
	TeamEclipse     Team = "eclipse"
)

// Position tokens an athlete can be assigned to. A stored position may be a
// single token or a "/"-joined combination, e.g. "flyer/base".
const (
	PositionFlyer    = "flyer"
	PositionBase     = "base"
	PositionBackspot = "backspot"
	PositionTumbler  = "tumbler"
)

// MaxTeamAssignments caps how many teams one athlete can be placed on.
const MaxTeamAssignments = 2

// TeamAssignment is a (team, position) pair assigned by staff after approval.
type TeamAssignment struct {
	Team     Team   `json:"team"`
	Position string `json:"position"`
}

func (t Team) Valid() bool {
	switch t {
	case TeamSnowstorm, TeamThunderbolt, TeamAvalanche, TeamEclipse:
		return true
	}
	return false
}

// ValidPosition accepts a single position token or a "/"-joined combination
// of known tokens.
func ValidPosition(position string) bool {
	position = strings.TrimSpace(position)
	if position == "" {
		return false
	}

	for _, token := range strings.Split(position, "/") {
		switch strings.TrimSpace(token) {
		case PositionFlyer, PositionBase, PositionBackspot, PositionTumbler:
		default:
			return false
		}
	}
	return true
}

// FilterAssignments drops entries whose team or position is not a known enum
// member and truncates the remainder to MaxTeamAssignments, preserving order.
// Stored assignment JSON is untyped, so every read goes through this filter.
func FilterAssignments(raw []TeamAssignment) []TeamAssignment {
	out := make([]TeamAssignment, 0, MaxTeamAssignments)
	for _, a := range raw {
		if !a.Team.Valid() || !ValidPosition(a.Position) {
			continue
		}
		out = append(out, TeamAssignment{
			Team:     a.Team,
			Position: strings.TrimSpace(a.Position),
		})
		if len(out) == MaxTeamAssignments {
			break
		}
	}
	return out
}
