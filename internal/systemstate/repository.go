package systemstate

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/cohesion/internal/contracts"
	"github.com/wonny/cohesion/pkg/database"
)

// Repository system state 저장소
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository 새 저장소 생성
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LoadWindows returns every coach tenure window
func (r *Repository) LoadWindows(ctx context.Context) ([]contracts.CoachWindow, error) {
	query := `
		SELECT coach_id, coach_name, team, role, start_date, end_date,
		       COALESCE(start_game_id, ''), COALESCE(end_game_id, '')
		FROM coach_roles
		ORDER BY team, role, start_date`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query coach windows: %w", err)
	}
	defer rows.Close()

	var windows []contracts.CoachWindow
	for rows.Next() {
		var w contracts.CoachWindow
		if err := rows.Scan(&w.CoachID, &w.CoachName, &w.Team, &w.Role, &w.StartDate, &w.EndDate, &w.StartGameID, &w.EndGameID); err != nil {
			return nil, fmt.Errorf("scan coach window: %w", err)
		}
		windows = append(windows, w)
	}

	return windows, rows.Err()
}

// LoadPlays returns every play joined with its game date
func (r *Repository) LoadPlays(ctx context.Context) ([]contracts.PlayForResolution, error) {
	query := `
		SELECT p.play_id, COALESCE(p.offense_team, ''), COALESCE(p.defense_team, ''), g.game_date
		FROM plays p
		JOIN games g ON g.game_id = p.game_id
		ORDER BY p.play_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query plays: %w", err)
	}
	defer rows.Close()

	var plays []contracts.PlayForResolution
	for rows.Next() {
		var p contracts.PlayForResolution
		if err := rows.Scan(&p.PlayID, &p.OffenseTeam, &p.DefenseTeam, &p.GameDate); err != nil {
			return nil, fmt.Errorf("scan play: %w", err)
		}
		plays = append(plays, p)
	}

	return plays, rows.Err()
}

// SaveReport writes the states and assignments of a resolution batch in
// one transaction. Assignments of gap plays are cleared.
func (r *Repository) SaveReport(ctx context.Context, report *contracts.ResolutionReport) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		batch := &pgx.Batch{}

		stateQuery := `
			INSERT INTO system_states
				(system_state_id, team, side, coach_id, coach_name, role,
				 window_start, window_end, start_game_id, end_game_id)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), NULLIF($10, ''))
			ON CONFLICT (system_state_id) DO UPDATE SET
				coach_name = EXCLUDED.coach_name,
				role = EXCLUDED.role`

		for _, s := range report.States {
			batch.Queue(stateQuery, s.ID, s.Team, s.Side, s.CoachID, s.CoachName, s.Role,
				s.WindowStart, s.WindowEnd, s.StartGameID, s.EndGameID)
		}

		assignQuery := `
			INSERT INTO play_system_state (play_id, offense_system_state_id, defense_system_state_id)
			VALUES ($1, $2, $3)
			ON CONFLICT (play_id) DO UPDATE SET
				offense_system_state_id = EXCLUDED.offense_system_state_id,
				defense_system_state_id = EXCLUDED.defense_system_state_id`

		for _, a := range report.Assignments {
			batch.Queue(assignQuery, a.PlayID, a.OffenseStateID, a.DefenseStateID)
		}

		gapPlays := make(map[string]struct{})
		for _, g := range report.Gaps {
			if _, ok := gapPlays[g.PlayID]; ok {
				continue
			}
			gapPlays[g.PlayID] = struct{}{}
			batch.Queue(`DELETE FROM play_system_state WHERE play_id = $1`, g.PlayID)
		}

		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("save resolution batch: %w", err)
			}
		}
		return br.Close()
	})
}

// Get returns one system state scoped to team and side
func (r *Repository) Get(ctx context.Context, team string, side contracts.Side, id string) (*contracts.SystemState, error) {
	query := `
		SELECT system_state_id, team, side, coach_id, COALESCE(coach_name, ''), COALESCE(role, ''),
		       window_start, window_end, COALESCE(start_game_id, ''), COALESCE(end_game_id, '')
		FROM system_states
		WHERE system_state_id = $1 AND team = $2 AND side = $3`

	s, err := scanState(r.pool.QueryRow(ctx, query, id, team, side))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrSystemStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get system state %s: %w", id, err)
	}
	return s, nil
}

// GetByID returns one system state regardless of team and side
func (r *Repository) GetByID(ctx context.Context, id string) (*contracts.SystemState, error) {
	query := `
		SELECT system_state_id, team, side, coach_id, COALESCE(coach_name, ''), COALESCE(role, ''),
		       window_start, window_end, COALESCE(start_game_id, ''), COALESCE(end_game_id, '')
		FROM system_states
		WHERE system_state_id = $1`

	s, err := scanState(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrSystemStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get system state %s: %w", id, err)
	}
	return s, nil
}

// List returns the states of a team and side, unordered
func (r *Repository) List(ctx context.Context, team string, side contracts.Side) ([]contracts.SystemState, error) {
	query := `
		SELECT system_state_id, team, side, coach_id, COALESCE(coach_name, ''), COALESCE(role, ''),
		       window_start, window_end, COALESCE(start_game_id, ''), COALESCE(end_game_id, '')
		FROM system_states
		WHERE team = $1 AND side = $2`

	rows, err := r.pool.Query(ctx, query, team, side)
	if err != nil {
		return nil, fmt.Errorf("list system states: %w", err)
	}
	defer rows.Close()

	var states []contracts.SystemState
	for rows.Next() {
		s, err := scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("scan system state: %w", err)
		}
		states = append(states, *s)
	}
	return states, rows.Err()
}

func scanState(row pgx.Row) (*contracts.SystemState, error) {
	var s contracts.SystemState
	var start, end *time.Time
	err := row.Scan(&s.ID, &s.Team, &s.Side, &s.CoachID, &s.CoachName, &s.Role,
		&start, &end, &s.StartGameID, &s.EndGameID)
	if err != nil {
		return nil, err
	}
	s.WindowStart = start
	s.WindowEnd = end
	return &s, nil
}
