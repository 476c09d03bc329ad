package catalog

import "github.com/wonny/cohesion/internal/contracts"

// TopPairLimit is the number of pairs a state summary lists
const TopPairLimit = 15

// RosterFallbackLimit caps the registry players listed when nothing has snaps
const RosterFallbackLimit = 100

// StateListing is one system state with its team snap total
type StateListing struct {
	contracts.SystemState
	TotalSnaps int    `json:"total_snaps"`
	Label      string `json:"label"`
}

// StateSummary describes what happened inside one system state
type StateSummary struct {
	SystemStateID   string               `json:"system_state_id"`
	Label           string               `json:"label"`
	TeamSnaps       int                  `json:"team_snaps"`
	DistinctPlayers int                  `json:"distinct_players"`
	TopPairs        []contracts.PairEdge `json:"top_pairs"`
	PositionMix     map[string]int       `json:"position_mix"`
}

// RosterPlayer is one roster row
type RosterPlayer struct {
	GSISID            string         `json:"gsis_id"`
	Name              string         `json:"name"`
	Position          string         `json:"position,omitempty"`
	PositionGroup     string         `json:"position_group,omitempty"`
	SnapsInState      int            `json:"snaps_in_state"`
	IUS               float64        `json:"ius"`
	RolesBreakdown    map[string]int `json:"roles_breakdown"`
	NSystemStatesSeen int            `json:"n_system_states_seen"`
}

// ActiveCoaches are the coaching windows active for a team on a date.
// Play-caller slots fall back to the coordinator.
type ActiveCoaches struct {
	Team              string                 `json:"team"`
	Date              string                 `json:"date"`
	OffensePlaycaller *contracts.CoachWindow `json:"offense_playcaller"`
	DefensePlaycaller *contracts.CoachWindow `json:"defense_playcaller"`
	OC                *contracts.CoachWindow `json:"oc"`
	DC                *contracts.CoachWindow `json:"dc"`
}
