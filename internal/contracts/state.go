package contracts

import (
	"fmt"
	"time"
)

// SystemState is a (team, side, coach tenure window) identity.
// Every aggregate is keyed on its ID.
type SystemState struct {
	ID          string     `json:"system_state_id"`
	Team        string     `json:"team"`
	Side        Side       `json:"side"`
	CoachID     string     `json:"coach_id"`
	CoachName   string     `json:"coach_name,omitempty"`
	Role        CoachRole  `json:"role,omitempty"`
	WindowStart *time.Time `json:"window_start,omitempty"`
	WindowEnd   *time.Time `json:"window_end,omitempty"`
	StartGameID string     `json:"start_game_id,omitempty"`
	EndGameID   string     `json:"end_game_id,omitempty"`
}

// Label renders "<coach> (<role>) — <start> to <end>" for display.
// The coach name falls back to the coach id; the role to "Play Caller".
func (s *SystemState) Label() string {
	name := s.CoachName
	if name == "" {
		name = s.CoachID
	}
	role := string(s.Role)
	if role == "" {
		role = "Play Caller"
	}

	label := fmt.Sprintf("%s (%s)", name, role)
	switch {
	case s.WindowStart != nil && s.WindowEnd != nil:
		label += fmt.Sprintf(" — %s to %s", s.WindowStart.Format(DateLayout), s.WindowEnd.Format(DateLayout))
	case s.WindowStart != nil:
		label += fmt.Sprintf(" — from %s", s.WindowStart.Format(DateLayout))
	}
	return label
}

// PlayAssignment assigns a play to one offense and one defense state
type PlayAssignment struct {
	PlayID         string `json:"play_id"`
	OffenseStateID string `json:"offense_system_state_id"`
	DefenseStateID string `json:"defense_system_state_id"`
}

// ResolutionGap records a play skipped because a side had no active coach
type ResolutionGap struct {
	PlayID string    `json:"play_id"`
	Team   string    `json:"team"`
	Side   Side      `json:"side"`
	Date   time.Time `json:"date"`
}

// ResolutionReport is the outcome of resolving a batch of plays
type ResolutionReport struct {
	States      []SystemState    `json:"states"`
	Assignments []PlayAssignment `json:"assignments"`
	Gaps        []ResolutionGap  `json:"gaps"`
	Skipped     int              `json:"skipped"` // plays missing teams or a game date
}
