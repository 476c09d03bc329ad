package cohesion

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/cohesion/internal/contracts"
	"github.com/wonny/cohesion/internal/systemstate"
	"github.com/wonny/cohesion/internal/weights"
)

// Repository reads scoring aggregates from Postgres
type Repository struct {
	pool    *pgxpool.Pool
	states  *systemstate.Repository
	weights *weights.Repository
}

// NewRepository 새 저장소 생성
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool:    pool,
		states:  systemstate.NewRepository(pool),
		weights: weights.NewRepository(pool),
	}
}

// TeamSnaps counts non-special-teams plays where the team was on the side
// and the side's state assignment matches
func (r *Repository) TeamSnaps(ctx context.Context, scope Scope) (int, error) {
	return TeamSnaps(ctx, r.pool, scope)
}

// TeamSnaps runs the team snap count query (also used by the catalog)
func TeamSnaps(ctx context.Context, pool *pgxpool.Pool, scope Scope) (int, error) {
	stateColumn, teamColumn := "pss.offense_system_state_id", "p.offense_team"
	if scope.Side == contracts.SideDefense {
		stateColumn, teamColumn = "pss.defense_system_state_id", "p.defense_team"
	}

	query := fmt.Sprintf(`
		SELECT COUNT(*)
		FROM plays p
		JOIN play_system_state pss ON pss.play_id = p.play_id
		WHERE %s = $1 AND %s = $2 AND p.special_teams = false`, stateColumn, teamColumn)

	var n int
	if err := pool.QueryRow(ctx, query, scope.SystemStateID, scope.Team).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// PlayerSnaps returns snaps in the state for the given players
func (r *Repository) PlayerSnaps(ctx context.Context, scope Scope, ids []string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT gsis_id, snaps
		FROM player_snaps_in_state
		WHERE system_state_id = $1 AND team = $2 AND side = $3 AND gsis_id = ANY($4)`,
		scope.SystemStateID, scope.Team, string(scope.Side), ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int, len(ids))
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		out[id] = n
	}
	return out, rows.Err()
}

// RoleCounts returns role -> snaps per player in the state
func (r *Repository) RoleCounts(ctx context.Context, scope Scope, ids []string) (map[string]map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT gsis_id, role, snaps
		FROM player_role_counts_in_state
		WHERE system_state_id = $1 AND team = $2 AND side = $3 AND gsis_id = ANY($4)`,
		scope.SystemStateID, scope.Team, string(scope.Side), ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]map[string]int, len(ids))
	for rows.Next() {
		var id, role string
		var n int
		if err := rows.Scan(&id, &role, &n); err != nil {
			return nil, err
		}
		if out[id] == nil {
			out[id] = make(map[string]int)
		}
		out[id][role] = n
	}
	return out, rows.Err()
}

// CoSnaps returns co-snap counts for pairs within ids
func (r *Repository) CoSnaps(ctx context.Context, scope Scope, ids []string) (map[PlayerPair]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a_gsis, b_gsis, co_snaps
		FROM co_snaps
		WHERE system_state_id = $1 AND team = $2 AND side = $3
		  AND a_gsis = ANY($4) AND b_gsis = ANY($4)`,
		scope.SystemStateID, scope.Team, string(scope.Side), ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[PlayerPair]int)
	for rows.Next() {
		var a, b string
		var n int
		if err := rows.Scan(&a, &b, &n); err != nil {
			return nil, err
		}
		out[NewPlayerPair(a, b)] = n
	}
	return out, rows.Err()
}

// Positions returns raw registry positions
func (r *Repository) Positions(ctx context.Context, ids []string) (map[string]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT gsis_id, COALESCE(position, '') FROM players WHERE gsis_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]string, len(ids))
	for rows.Next() {
		var id, pos string
		if err := rows.Scan(&id, &pos); err != nil {
			return nil, err
		}
		out[id] = pos
	}
	return out, rows.Err()
}

// RoleWeights returns the weight table for a side
func (r *Repository) RoleWeights(ctx context.Context, side contracts.Side) (weights.Table, error) {
	return r.weights.BySide(ctx, side)
}

// SystemState returns the state for the playcaller label
func (r *Repository) SystemState(ctx context.Context, id string) (*contracts.SystemState, error) {
	return r.states.GetByID(ctx, id)
}
