package systemstate

import (
	"errors"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/cohesion/internal/contracts"
)

// Resolver finds the effective play caller for a team, side and date
type Resolver struct {
	// team -> role -> windows sorted by start date
	windows map[string]map[contracts.CoachRole][]contracts.CoachWindow
	log     zerolog.Logger
}

// NewResolver indexes coach windows by team and role
func NewResolver(windows []contracts.CoachWindow, log zerolog.Logger) *Resolver {
	index := make(map[string]map[contracts.CoachRole][]contracts.CoachWindow)
	for _, w := range windows {
		byRole, ok := index[w.Team]
		if !ok {
			byRole = make(map[contracts.CoachRole][]contracts.CoachWindow)
			index[w.Team] = byRole
		}
		byRole[w.Role] = append(byRole[w.Role], w)
	}

	for _, byRole := range index {
		for _, list := range byRole {
			sort.SliceStable(list, func(i, j int) bool {
				return list[i].StartDate.Before(list[j].StartDate)
			})
		}
	}

	return &Resolver{
		windows: index,
		log:     log.With().Str("component", "systemstate.resolver").Logger(),
	}
}

// Window returns the winning tenure window for (team, side, date).
// Roles are tried in priority order; among simultaneously active windows
// of one role the latest start wins.
func (r *Resolver) Window(team string, side contracts.Side, date time.Time) (*contracts.CoachWindow, error) {
	byRole := r.windows[team]
	for _, role := range contracts.RolePriority(side) {
		if w := selectWindow(byRole[role], date); w != nil {
			return w, nil
		}
	}
	return nil, &contracts.NoActiveCoachError{Team: team, Side: side, Date: contracts.DateOnly(date)}
}

// Resolve returns the system state in effect for (team, side, date)
func (r *Resolver) Resolve(team string, side contracts.Side, date time.Time) (contracts.SystemState, error) {
	w, err := r.Window(team, side, date)
	if err != nil {
		return contracts.SystemState{}, err
	}
	return FromWindow(team, side, *w), nil
}

// selectWindow picks the active window with the latest start.
// windows is sorted ascending, so the last active one wins.
func selectWindow(windows []contracts.CoachWindow, date time.Time) *contracts.CoachWindow {
	for i := len(windows) - 1; i >= 0; i-- {
		if windows[i].ActiveOn(date) {
			return &windows[i]
		}
	}
	return nil
}

// ResolvePlays assigns each play an offense and a defense system state.
// Plays missing a team or game date are counted as skipped. Plays where
// either side has no active coach are recorded as gaps and left unassigned.
func (r *Resolver) ResolvePlays(plays []contracts.PlayForResolution) *contracts.ResolutionReport {
	report := &contracts.ResolutionReport{}
	seen := make(map[string]struct{})

	addState := func(s contracts.SystemState) {
		if _, ok := seen[s.ID]; ok {
			return
		}
		seen[s.ID] = struct{}{}
		report.States = append(report.States, s)
	}

	for _, p := range plays {
		if p.OffenseTeam == "" || p.DefenseTeam == "" || p.GameDate == nil {
			report.Skipped++
			continue
		}

		off, offErr := r.Resolve(p.OffenseTeam, contracts.SideOffense, *p.GameDate)
		def, defErr := r.Resolve(p.DefenseTeam, contracts.SideDefense, *p.GameDate)

		if offErr != nil || defErr != nil {
			for _, err := range []error{offErr, defErr} {
				var gapErr *contracts.NoActiveCoachError
				if !errors.As(err, &gapErr) {
					continue
				}
				report.Gaps = append(report.Gaps, contracts.ResolutionGap{
					PlayID: p.PlayID,
					Team:   gapErr.Team,
					Side:   gapErr.Side,
					Date:   gapErr.Date,
				})
			}
			continue
		}

		addState(off)
		addState(def)
		report.Assignments = append(report.Assignments, contracts.PlayAssignment{
			PlayID:         p.PlayID,
			OffenseStateID: off.ID,
			DefenseStateID: def.ID,
		})
	}

	if len(report.Gaps) > 0 {
		r.log.Warn().
			Int("gaps", len(report.Gaps)).
			Msg("plays skipped: no active coach window")
	}

	r.log.Info().
		Int("plays", len(plays)).
		Int("assigned", len(report.Assignments)).
		Int("states", len(report.States)).
		Int("skipped", report.Skipped).
		Msg("system state resolution completed")

	return report
}
