package contracts

import (
	"fmt"
	"time"
)

// CoachRole is a coaching role that can drive a system state
type CoachRole string

const (
	RoleOffPlayCaller CoachRole = "OffPlayCaller"
	RoleDefPlayCaller CoachRole = "DefPlayCaller"
	RoleOC            CoachRole = "OC"
	RoleDC            CoachRole = "DC"
)

// Valid reports whether r is one of the four known roles
func (r CoachRole) Valid() bool {
	switch r {
	case RoleOffPlayCaller, RoleDefPlayCaller, RoleOC, RoleDC:
		return true
	}
	return false
}

// ParseCoachRole validates a raw role value
func ParseCoachRole(raw string) (CoachRole, error) {
	r := CoachRole(raw)
	if !r.Valid() {
		return "", &ValidationError{Field: "role", Message: fmt.Sprintf("unknown coach role %q", raw)}
	}
	return r, nil
}

// RolePriority returns the roles consulted for a side, highest priority first
// ⭐ SSOT: 플레이콜러 우선순위
func RolePriority(side Side) []CoachRole {
	switch side {
	case SideOffense:
		return []CoachRole{RoleOffPlayCaller, RoleOC}
	case SideDefense:
		return []CoachRole{RoleDefPlayCaller, RoleDC}
	}
	return nil
}

// CoachWindow is one coaching tenure window
type CoachWindow struct {
	CoachID     string     `json:"coach_id"`
	CoachName   string     `json:"coach_name"`
	Team        string     `json:"team"`
	Role        CoachRole  `json:"role"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date,omitempty"` // nil = still active
	StartGameID string     `json:"start_game_id,omitempty"`
	EndGameID   string     `json:"end_game_id,omitempty"`
}

// ActiveOn reports whether the window covers the given date (inclusive)
func (w *CoachWindow) ActiveOn(date time.Time) bool {
	d := DateOnly(date)
	if d.Before(DateOnly(w.StartDate)) {
		return false
	}
	if w.EndDate != nil && d.After(DateOnly(*w.EndDate)) {
		return false
	}
	return true
}

// Validate checks required fields
func (w *CoachWindow) Validate() error {
	if w.CoachID == "" {
		return &ValidationError{Field: "coach_id", Message: "coach_id is required"}
	}
	if w.CoachName == "" {
		return &ValidationError{Field: "coach_name", Message: "coach_name is required"}
	}
	if w.Team == "" {
		return &ValidationError{Field: "team", Message: "team is required"}
	}
	if !w.Role.Valid() {
		return &ValidationError{Field: "role", Message: fmt.Sprintf("unknown coach role %q", w.Role)}
	}
	if w.StartDate.IsZero() {
		return &ValidationError{Field: "start_date", Message: "start_date is required"}
	}
	if w.EndDate != nil && w.EndDate.Before(w.StartDate) {
		return &ValidationError{Field: "end_date", Message: "end_date is before start_date"}
	}
	return nil
}

// DateOnly truncates t to a UTC calendar date
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateLayout is the ISO calendar date layout used everywhere dates are printed
const DateLayout = "2006-01-02"
