package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/cohesion/internal/cohesion"
	"github.com/wonny/cohesion/internal/contracts"
	"github.com/wonny/cohesion/internal/systemstate"
)

// Repository catalog 조회 저장소
type Repository struct {
	pool   *pgxpool.Pool
	states *systemstate.Repository
}

// NewRepository 새 저장소 생성
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool:   pool,
		states: systemstate.NewRepository(pool),
	}
}

// Seasons returns the distinct game seasons
func (r *Repository) Seasons(ctx context.Context) ([]int, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT season FROM games ORDER BY season`)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[int])
}

// Teams returns every home or away team, optionally for one season
func (r *Repository) Teams(ctx context.Context, season *int) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT team FROM (
			SELECT home_team AS team FROM games WHERE $1::int IS NULL OR season = $1
			UNION
			SELECT away_team FROM games WHERE $1::int IS NULL OR season = $1
		) t
		WHERE team <> ''
		ORDER BY team`, season)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowTo[string])
}

// States returns the team's states for a side
func (r *Repository) States(ctx context.Context, team string, side contracts.Side) ([]contracts.SystemState, error) {
	return r.states.List(ctx, team, side)
}

// State returns one state or ErrSystemStateNotFound
func (r *Repository) State(ctx context.Context, team string, side contracts.Side, id string) (*contracts.SystemState, error) {
	return r.states.Get(ctx, team, side, id)
}

// TeamSnaps counts the team's non-special-teams plays in the state
func (r *Repository) TeamSnaps(ctx context.Context, scope cohesion.Scope) (int, error) {
	return cohesion.TeamSnaps(ctx, r.pool, scope)
}

// DistinctPlayers counts players with snaps in the state
func (r *Repository) DistinctPlayers(ctx context.Context, scope cohesion.Scope) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(DISTINCT gsis_id)
		FROM player_snaps_in_state
		WHERE system_state_id = $1 AND team = $2 AND side = $3`,
		scope.SystemStateID, scope.Team, string(scope.Side)).Scan(&n)
	return n, err
}

// TopPairs returns the pairs with the most co-snaps and both players' snap counts
func (r *Repository) TopPairs(ctx context.Context, scope cohesion.Scope, limit int) ([]contracts.PairEdge, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT c.a_gsis, c.b_gsis, c.co_snaps,
		       COALESCE(sa.snaps, 0), COALESCE(sb.snaps, 0)
		FROM co_snaps c
		LEFT JOIN player_snaps_in_state sa
		       ON sa.system_state_id = c.system_state_id AND sa.team = c.team
		      AND sa.side = c.side AND sa.gsis_id = c.a_gsis
		LEFT JOIN player_snaps_in_state sb
		       ON sb.system_state_id = c.system_state_id AND sb.team = c.team
		      AND sb.side = c.side AND sb.gsis_id = c.b_gsis
		WHERE c.system_state_id = $1 AND c.team = $2 AND c.side = $3
		ORDER BY c.co_snaps DESC, c.a_gsis, c.b_gsis
		LIMIT $4`,
		scope.SystemStateID, scope.Team, string(scope.Side), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []contracts.PairEdge
	for rows.Next() {
		var e contracts.PairEdge
		if err := rows.Scan(&e.A, &e.B, &e.CoSnaps, &e.NI, &e.NJ); err != nil {
			return nil, fmt.Errorf("scan pair: %w", err)
		}
		pairs = append(pairs, e)
	}
	return pairs, rows.Err()
}

// PositionMix sums role snaps in the state
func (r *Repository) PositionMix(ctx context.Context, scope cohesion.Scope) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT role, SUM(snaps)::int
		FROM player_role_counts_in_state
		WHERE system_state_id = $1 AND team = $2 AND side = $3
		GROUP BY role`,
		scope.SystemStateID, scope.Team, string(scope.Side))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	mix := make(map[string]int)
	for rows.Next() {
		var role string
		var n int
		if err := rows.Scan(&role, &n); err != nil {
			return nil, fmt.Errorf("scan position mix: %w", err)
		}
		mix[role] = n
	}
	return mix, rows.Err()
}

// Snaps returns snaps per player, summed across states when stateID is empty
func (r *Repository) Snaps(ctx context.Context, team string, side contracts.Side, stateID string) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT gsis_id, SUM(snaps)::int
		FROM player_snaps_in_state
		WHERE team = $1 AND side = $2 AND ($3 = '' OR system_state_id = $3)
		GROUP BY gsis_id`, team, string(side), stateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan snaps: %w", err)
		}
		out[id] = n
	}
	return out, rows.Err()
}

// Roles returns role snaps per player, summed across states when stateID is empty
func (r *Repository) Roles(ctx context.Context, team string, side contracts.Side, stateID string) (map[string]map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT gsis_id, role, SUM(snaps)::int
		FROM player_role_counts_in_state
		WHERE team = $1 AND side = $2 AND ($3 = '' OR system_state_id = $3)
		GROUP BY gsis_id, role`, team, string(side), stateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]map[string]int)
	for rows.Next() {
		var id, role string
		var n int
		if err := rows.Scan(&id, &role, &n); err != nil {
			return nil, fmt.Errorf("scan roles: %w", err)
		}
		if out[id] == nil {
			out[id] = make(map[string]int)
		}
		out[id][role] = n
	}
	return out, rows.Err()
}

// StatesSeen counts the distinct states each player has snaps in
func (r *Repository) StatesSeen(ctx context.Context, team string, side contracts.Side) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT gsis_id, COUNT(DISTINCT system_state_id)::int
		FROM player_snaps_in_state
		WHERE team = $1 AND side = $2
		GROUP BY gsis_id`, team, string(side))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, fmt.Errorf("scan states seen: %w", err)
		}
		out[id] = n
	}
	return out, rows.Err()
}

// Players returns registry rows by id
func (r *Repository) Players(ctx context.Context, ids []string) (map[string]contracts.Player, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT gsis_id, COALESCE(display_name, ''), COALESCE(position, ''), team_history
		FROM players
		WHERE gsis_id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	players, err := collectPlayers(rows)
	if err != nil {
		return nil, err
	}

	out := make(map[string]contracts.Player, len(players))
	for _, p := range players {
		out[p.GSISID] = p
	}
	return out, nil
}

// FirstPlayers returns up to limit registry players ordered by id
func (r *Repository) FirstPlayers(ctx context.Context, limit int) ([]contracts.Player, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT gsis_id, COALESCE(display_name, ''), COALESCE(position, ''), team_history
		FROM players
		ORDER BY gsis_id
		LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	return collectPlayers(rows)
}

// ActiveWindow returns the latest-starting window of the role active on date, or nil
func (r *Repository) ActiveWindow(ctx context.Context, team string, role contracts.CoachRole, date time.Time) (*contracts.CoachWindow, error) {
	var w contracts.CoachWindow
	err := r.pool.QueryRow(ctx, `
		SELECT coach_id, coach_name, team, role, start_date, end_date,
		       COALESCE(start_game_id, ''), COALESCE(end_game_id, '')
		FROM coach_roles
		WHERE team = $1 AND role = $2
		  AND start_date <= $3 AND (end_date IS NULL OR end_date >= $3)
		ORDER BY start_date DESC
		LIMIT 1`, team, string(role), date).
		Scan(&w.CoachID, &w.CoachName, &w.Team, &w.Role, &w.StartDate, &w.EndDate, &w.StartGameID, &w.EndGameID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func collectPlayers(rows pgx.Rows) ([]contracts.Player, error) {
	defer rows.Close()

	var players []contracts.Player
	for rows.Next() {
		var p contracts.Player
		if err := rows.Scan(&p.GSISID, &p.DisplayName, &p.Position, &p.TeamHistory); err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}
