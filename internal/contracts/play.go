package contracts

import "time"

// Game is a scheduled game
type Game struct {
	GameID   string     `json:"game_id"`
	Season   int        `json:"season"`
	Week     int        `json:"week"`
	GameDate *time.Time `json:"game_date,omitempty"`
	HomeTeam string     `json:"home_team"`
	AwayTeam string     `json:"away_team"`
}

// Play is a single play of a game
type Play struct {
	PlayID       string `json:"play_id"` // <game_id>-<play sequence>
	GameID       string `json:"game_id"`
	DriveID      string `json:"drive_id,omitempty"`
	Quarter      int    `json:"quarter"`
	ClockSeconds int    `json:"clock_seconds"`
	OffenseTeam  string `json:"offense_team"`
	DefenseTeam  string `json:"defense_team"`
	PlayType     string `json:"play_type"`
	SpecialTeams bool   `json:"special_teams"`
}

// PlayID builds the play identifier from the game and its play sequence
func PlayID(gameID, sequence string) string {
	return gameID + "-" + sequence
}

// Participation is one player on the field for one side of one play
type Participation struct {
	PlayID       string `json:"play_id"`
	Side         Side   `json:"side"`
	GSISID       string `json:"gsis_id"`
	Position     string `json:"position"`
	JerseyNumber *int   `json:"jersey_number,omitempty"`
}

// Player is a registry entry
type Player struct {
	GSISID      string   `json:"gsis_id"`
	DisplayName string   `json:"display_name"`
	Position    string   `json:"position"`
	TeamHistory []string `json:"team_history"`
}

// PlayForResolution is the play metadata the resolver needs
type PlayForResolution struct {
	PlayID      string
	OffenseTeam string
	DefenseTeam string
	GameDate    *time.Time
}

// ParticipationRow is a participation record joined with play metadata
// and the play's system-state assignment
type ParticipationRow struct {
	PlayID         string
	Side           Side
	GSISID         string
	Position       string
	OffenseTeam    string
	DefenseTeam    string
	SpecialTeams   bool
	OffenseStateID string // empty when unassigned
	DefenseStateID string
}
