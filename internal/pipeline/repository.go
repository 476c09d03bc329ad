package pipeline

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository pipeline_runs 저장소
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository 새 저장소 생성
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Start inserts the run record
func (r *Repository) Start(ctx context.Context, run *Run) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO pipeline_runs (run_id, started_at) VALUES ($1, $2)`,
		run.ID, run.StartedAt)
	if err != nil {
		return fmt.Errorf("insert pipeline run: %w", err)
	}
	return nil
}

// Finish stores the run outcome
func (r *Repository) Finish(ctx context.Context, run *Run) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE pipeline_runs SET
			finished_at = $2,
			plays_resolved = $3,
			resolution_gaps = $4,
			states = $5,
			snap_rows = $6,
			role_rows = $7,
			pair_rows = $8,
			error = NULLIF($9, '')
		WHERE run_id = $1`,
		run.ID, run.FinishedAt, run.PlaysResolved, run.ResolutionGaps, run.States,
		run.SnapRows, run.RoleRows, run.PairRows, run.Error)
	if err != nil {
		return fmt.Errorf("update pipeline run: %w", err)
	}
	return nil
}

// Recent returns the latest runs, newest first
func (r *Repository) Recent(ctx context.Context, limit int) ([]Run, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT run_id, started_at, finished_at, plays_resolved, resolution_gaps,
		       states, snap_rows, role_rows, pair_rows, COALESCE(error, '')
		FROM pipeline_runs
		ORDER BY started_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("query pipeline runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.FinishedAt, &run.PlaysResolved,
			&run.ResolutionGaps, &run.States, &run.SnapRows, &run.RoleRows, &run.PairRows, &run.Error); err != nil {
			return nil, fmt.Errorf("scan pipeline run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
