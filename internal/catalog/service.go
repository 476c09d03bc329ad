package catalog

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/cohesion/internal/cohesion"
	"github.com/wonny/cohesion/internal/contracts"
)

// Store is the read model the catalog queries
type Store interface {
	Seasons(ctx context.Context) ([]int, error)
	Teams(ctx context.Context, season *int) ([]string, error)
	States(ctx context.Context, team string, side contracts.Side) ([]contracts.SystemState, error)
	State(ctx context.Context, team string, side contracts.Side, id string) (*contracts.SystemState, error)
	TeamSnaps(ctx context.Context, scope cohesion.Scope) (int, error)
	DistinctPlayers(ctx context.Context, scope cohesion.Scope) (int, error)
	TopPairs(ctx context.Context, scope cohesion.Scope, limit int) ([]contracts.PairEdge, error)
	PositionMix(ctx context.Context, scope cohesion.Scope) (map[string]int, error)

	// stateID "" sums over every state of the team and side
	Snaps(ctx context.Context, team string, side contracts.Side, stateID string) (map[string]int, error)
	Roles(ctx context.Context, team string, side contracts.Side, stateID string) (map[string]map[string]int, error)
	StatesSeen(ctx context.Context, team string, side contracts.Side) (map[string]int, error)
	Players(ctx context.Context, ids []string) (map[string]contracts.Player, error)
	FirstPlayers(ctx context.Context, limit int) ([]contracts.Player, error)

	// ActiveWindow returns nil when no window of the role is active
	ActiveWindow(ctx context.Context, team string, role contracts.CoachRole, date time.Time) (*contracts.CoachWindow, error)
}

// Service answers the presentation-layer queries
type Service struct {
	store Store
	log   zerolog.Logger
}

// NewService 새 서비스 생성
func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
	}
}

// Seasons returns the distinct seasons, ascending
func (s *Service) Seasons(ctx context.Context) ([]int, error) {
	seasons, err := s.store.Seasons(ctx)
	if err != nil {
		return nil, fmt.Errorf("list seasons: %w", err)
	}
	sort.Ints(seasons)
	return seasons, nil
}

// Teams returns home and away teams, optionally for one season, sorted
func (s *Service) Teams(ctx context.Context, season *int) ([]string, error) {
	teams, err := s.store.Teams(ctx, season)
	if err != nil {
		return nil, fmt.Errorf("list teams: %w", err)
	}
	sort.Strings(teams)
	return teams, nil
}

// SystemStates lists the team's states for a side with total snaps.
// Order: window start ascending with open starts first, then id.
func (s *Service) SystemStates(ctx context.Context, team string, side contracts.Side) ([]StateListing, error) {
	if err := checkScope(team, side); err != nil {
		return nil, err
	}

	states, err := s.store.States(ctx, team, side)
	if err != nil {
		return nil, fmt.Errorf("list system states: %w", err)
	}

	out := make([]StateListing, 0, len(states))
	for _, st := range states {
		snaps, err := s.store.TeamSnaps(ctx, cohesion.Scope{Team: team, Side: side, SystemStateID: st.ID})
		if err != nil {
			return nil, fmt.Errorf("team snaps for %s: %w", st.ID, err)
		}
		out = append(out, StateListing{SystemState: st, TotalSnaps: snaps, Label: st.Label()})
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i].WindowStart, out[j].WindowStart
		switch {
		case a == nil && b != nil:
			return true
		case a != nil && b == nil:
			return false
		case a != nil && b != nil && !a.Equal(*b):
			return a.Before(*b)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

// Summary describes one state: snaps, distinct players, strongest pairs, position mix
func (s *Service) Summary(ctx context.Context, team string, side contracts.Side, stateID string) (*StateSummary, error) {
	if err := checkScope(team, side); err != nil {
		return nil, err
	}
	if stateID == "" {
		return nil, &contracts.ValidationError{Field: "system_state_id", Message: "system_state_id is required"}
	}

	state, err := s.store.State(ctx, team, side, stateID)
	if err != nil {
		return nil, err
	}

	scope := cohesion.Scope{Team: team, Side: side, SystemStateID: stateID}
	snaps, err := s.store.TeamSnaps(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("team snaps: %w", err)
	}
	distinct, err := s.store.DistinctPlayers(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("distinct players: %w", err)
	}
	pairs, err := s.store.TopPairs(ctx, scope, TopPairLimit)
	if err != nil {
		return nil, fmt.Errorf("top pairs: %w", err)
	}
	mix, err := s.store.PositionMix(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("position mix: %w", err)
	}

	// summary pairs are unweighted
	for i := range pairs {
		pairs[i].Weight = 1.0
		pairs[i].Jaccard = cohesion.Jaccard(pairs[i].CoSnaps, pairs[i].NI, pairs[i].NJ)
	}
	if pairs == nil {
		pairs = []contracts.PairEdge{}
	}
	if mix == nil {
		mix = map[string]int{}
	}

	return &StateSummary{
		SystemStateID:   stateID,
		Label:           state.Label(),
		TeamSnaps:       snaps,
		DistinctPlayers: distinct,
		TopPairs:        pairs,
		PositionMix:     mix,
	}, nil
}

// Roster lists players with snaps for the team and side, optionally within one state.
// Sorted by snaps descending then name. With no state and no snaps it falls back
// to the first registry players.
func (s *Service) Roster(ctx context.Context, team string, side contracts.Side, stateID string) ([]RosterPlayer, error) {
	if err := checkScope(team, side); err != nil {
		return nil, err
	}
	if stateID != "" {
		if _, err := s.store.State(ctx, team, side, stateID); err != nil {
			return nil, err
		}
	}

	snaps, err := s.store.Snaps(ctx, team, side, stateID)
	if err != nil {
		return nil, fmt.Errorf("roster snaps: %w", err)
	}
	roles, err := s.store.Roles(ctx, team, side, stateID)
	if err != nil {
		return nil, fmt.Errorf("roster roles: %w", err)
	}
	seen, err := s.store.StatesSeen(ctx, team, side)
	if err != nil {
		return nil, fmt.Errorf("roster states seen: %w", err)
	}

	var players map[string]contracts.Player
	ids := make([]string, 0, len(snaps))
	for id := range snaps {
		ids = append(ids, id)
	}

	if len(ids) == 0 && stateID == "" {
		first, err := s.store.FirstPlayers(ctx, RosterFallbackLimit)
		if err != nil {
			return nil, fmt.Errorf("roster fallback: %w", err)
		}
		players = make(map[string]contracts.Player, len(first))
		for _, p := range first {
			players[p.GSISID] = p
			ids = append(ids, p.GSISID)
		}
		s.log.Debug().Str("team", team).Str("side", string(side)).Int("players", len(ids)).Msg("Roster fallback to registry")
	} else if len(ids) > 0 {
		players, err = s.store.Players(ctx, ids)
		if err != nil {
			return nil, fmt.Errorf("roster players: %w", err)
		}
	}

	roster := make([]RosterPlayer, 0, len(ids))
	for _, id := range ids {
		p := players[id]
		name := p.DisplayName
		if name == "" {
			name = id
		}

		breakdown := roles[id]
		if breakdown == nil {
			breakdown = map[string]int{}
		}
		group := cohesion.DominantRole(breakdown)
		if group == "" {
			group = contracts.PositionGroup(p.Position, side)
		}

		roster = append(roster, RosterPlayer{
			GSISID:            id,
			Name:              name,
			Position:          p.Position,
			PositionGroup:     group,
			SnapsInState:      snaps[id],
			IUS:               cohesion.IUS(breakdown),
			RolesBreakdown:    breakdown,
			NSystemStatesSeen: seen[id],
		})
	}

	sort.Slice(roster, func(i, j int) bool {
		if roster[i].SnapsInState != roster[j].SnapsInState {
			return roster[i].SnapsInState > roster[j].SnapsInState
		}
		if roster[i].Name != roster[j].Name {
			return roster[i].Name < roster[j].Name
		}
		return roster[i].GSISID < roster[j].GSISID
	})
	return roster, nil
}

// ActiveCoaches returns the windows of every coaching role active on date
func (s *Service) ActiveCoaches(ctx context.Context, team string, date time.Time) (*ActiveCoaches, error) {
	if team == "" {
		return nil, &contracts.ValidationError{Field: "team", Message: "team is required"}
	}
	if date.IsZero() {
		return nil, &contracts.ValidationError{Field: "date", Message: "date is required"}
	}
	date = contracts.DateOnly(date)

	active := make(map[contracts.CoachRole]*contracts.CoachWindow, 4)
	for _, role := range []contracts.CoachRole{
		contracts.RoleOffPlayCaller, contracts.RoleDefPlayCaller, contracts.RoleOC, contracts.RoleDC,
	} {
		w, err := s.store.ActiveWindow(ctx, team, role, date)
		if err != nil {
			return nil, fmt.Errorf("active %s: %w", role, err)
		}
		active[role] = w
	}

	out := &ActiveCoaches{
		Team:              team,
		Date:              date.Format(contracts.DateLayout),
		OffensePlaycaller: active[contracts.RoleOffPlayCaller],
		DefensePlaycaller: active[contracts.RoleDefPlayCaller],
		OC:                active[contracts.RoleOC],
		DC:                active[contracts.RoleDC],
	}
	if out.OffensePlaycaller == nil {
		out.OffensePlaycaller = out.OC
	}
	if out.DefensePlaycaller == nil {
		out.DefensePlaycaller = out.DC
	}
	return out, nil
}

func checkScope(team string, side contracts.Side) error {
	if team == "" {
		return &contracts.ValidationError{Field: "team", Message: "team is required"}
	}
	if !side.Valid() {
		return &contracts.ValidationError{Field: "side", Message: fmt.Sprintf("unknown side %q (want offense or defense)", side)}
	}
	return nil
}
