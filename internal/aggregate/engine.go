package aggregate

import (
	"sort"

	"github.com/rs/zerolog"

	"github.com/wonny/cohesion/internal/contracts"
)

// StateKey scopes every aggregate row
type StateKey struct {
	SystemStateID string
	Team          string
	Side          contracts.Side
}

// SnapCount is one player_snaps_in_state row
type SnapCount struct {
	StateKey
	GSISID string
	Snaps  int
}

// RoleCount is one player_role_counts_in_state row
type RoleCount struct {
	StateKey
	GSISID string
	Role   string
	Snaps  int
}

// PairCount is one co_snaps row; A < B by byte order
type PairCount struct {
	StateKey
	A       string
	B       string
	CoSnaps int
}

// Result holds the freshly computed aggregate tables
type Result struct {
	Snaps []SnapCount
	Roles []RoleCount
	Pairs []PairCount
	Rows  int // participation rows that contributed
}

type playerKey struct {
	StateKey
	gsis string
}

type roleKey struct {
	StateKey
	gsis string
	role string
}

type playKey struct {
	StateKey
	playID string
}

type pairKey struct {
	StateKey
	a, b string
}

// Engine computes per-state snap, role and co-snap counts
type Engine struct {
	log zerolog.Logger
}

// NewEngine 새 집계 엔진 생성
func NewEngine(log zerolog.Logger) *Engine {
	return &Engine{
		log: log.With().Str("component", "aggregate.engine").Logger(),
	}
}

// Compute folds participation rows into the three aggregate tables.
// Special-teams plays and rows without a state or team are skipped.
func (e *Engine) Compute(rows []contracts.ParticipationRow) *Result {
	snaps := make(map[playerKey]int)
	roles := make(map[roleKey]int)
	lineups := make(map[playKey]map[string]struct{})
	used := 0

	for _, row := range rows {
		if row.SpecialTeams || row.GSISID == "" {
			continue
		}

		key, ok := stateKeyFor(row)
		if !ok {
			continue
		}
		used++

		snaps[playerKey{key, row.GSISID}]++

		if role := contracts.PositionGroup(row.Position, row.Side); role != "" {
			roles[roleKey{key, row.GSISID, role}]++
		}

		pk := playKey{key, row.PlayID}
		onField, ok := lineups[pk]
		if !ok {
			onField = make(map[string]struct{})
			lineups[pk] = onField
		}
		onField[row.GSISID] = struct{}{}
	}

	pairs := make(map[pairKey]int)
	for pk, onField := range lineups {
		ids := make([]string, 0, len(onField))
		for id := range onField {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		for i := 0; i < len(ids); i++ {
			for j := i + 1; j < len(ids); j++ {
				pairs[pairKey{pk.StateKey, ids[i], ids[j]}]++
			}
		}
	}

	result := &Result{Rows: used}

	for k, n := range snaps {
		result.Snaps = append(result.Snaps, SnapCount{StateKey: k.StateKey, GSISID: k.gsis, Snaps: n})
	}
	for k, n := range roles {
		result.Roles = append(result.Roles, RoleCount{StateKey: k.StateKey, GSISID: k.gsis, Role: k.role, Snaps: n})
	}
	for k, n := range pairs {
		result.Pairs = append(result.Pairs, PairCount{StateKey: k.StateKey, A: k.a, B: k.b, CoSnaps: n})
	}
	sortResult(result)

	e.log.Info().
		Int("rows", len(rows)).
		Int("used", used).
		Int("plays", len(lineups)).
		Int("snap_rows", len(result.Snaps)).
		Int("role_rows", len(result.Roles)).
		Int("pair_rows", len(result.Pairs)).
		Msg("aggregation completed")

	return result
}

func stateKeyFor(row contracts.ParticipationRow) (StateKey, bool) {
	var stateID, team string
	switch row.Side {
	case contracts.SideOffense:
		stateID, team = row.OffenseStateID, row.OffenseTeam
	case contracts.SideDefense:
		stateID, team = row.DefenseStateID, row.DefenseTeam
	default:
		return StateKey{}, false
	}
	if stateID == "" || team == "" {
		return StateKey{}, false
	}
	return StateKey{SystemStateID: stateID, Team: team, Side: row.Side}, true
}

func (k StateKey) less(o StateKey) bool {
	if k.SystemStateID != o.SystemStateID {
		return k.SystemStateID < o.SystemStateID
	}
	if k.Team != o.Team {
		return k.Team < o.Team
	}
	return k.Side < o.Side
}

// sortResult orders rows so repeated runs produce identical output
func sortResult(r *Result) {
	sort.Slice(r.Snaps, func(i, j int) bool {
		a, b := r.Snaps[i], r.Snaps[j]
		if a.StateKey != b.StateKey {
			return a.StateKey.less(b.StateKey)
		}
		return a.GSISID < b.GSISID
	})
	sort.Slice(r.Roles, func(i, j int) bool {
		a, b := r.Roles[i], r.Roles[j]
		if a.StateKey != b.StateKey {
			return a.StateKey.less(b.StateKey)
		}
		if a.GSISID != b.GSISID {
			return a.GSISID < b.GSISID
		}
		return a.Role < b.Role
	})
	sort.Slice(r.Pairs, func(i, j int) bool {
		a, b := r.Pairs[i], r.Pairs[j]
		if a.StateKey != b.StateKey {
			return a.StateKey.less(b.StateKey)
		}
		if a.A != b.A {
			return a.A < b.A
		}
		return a.B < b.B
	})
}
