package aggregate

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/cohesion/internal/contracts"
	"github.com/wonny/cohesion/pkg/database"
)

// Repository aggregate 저장소
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository 새 저장소 생성
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// LoadParticipation returns participation rows joined with play metadata
// and state assignments. Plays without an assignment are excluded.
func (r *Repository) LoadParticipation(ctx context.Context) ([]contracts.ParticipationRow, error) {
	query := `
		SELECT pp.play_id, pp.side, pp.gsis_id, COALESCE(pp.position, ''),
		       COALESCE(p.offense_team, ''), COALESCE(p.defense_team, ''), p.special_teams,
		       COALESCE(pss.offense_system_state_id, ''), COALESCE(pss.defense_system_state_id, '')
		FROM play_participation pp
		JOIN plays p ON p.play_id = pp.play_id
		JOIN play_system_state pss ON pss.play_id = p.play_id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query participation: %w", err)
	}
	defer rows.Close()

	var out []contracts.ParticipationRow
	for rows.Next() {
		var row contracts.ParticipationRow
		if err := rows.Scan(
			&row.PlayID, &row.Side, &row.GSISID, &row.Position,
			&row.OffenseTeam, &row.DefenseTeam, &row.SpecialTeams,
			&row.OffenseStateID, &row.DefenseStateID,
		); err != nil {
			return nil, fmt.Errorf("scan participation: %w", err)
		}
		out = append(out, row)
	}

	return out, rows.Err()
}

// ReplaceAll swaps the contents of the three aggregate tables in one
// transaction. Readers see either the old or the new tables, never a mix.
func (r *Repository) ReplaceAll(ctx context.Context, result *Result) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		for _, table := range []string{"player_snaps_in_state", "player_role_counts_in_state", "co_snaps"} {
			if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"player_snaps_in_state"},
			[]string{"system_state_id", "team", "side", "gsis_id", "snaps"},
			pgx.CopyFromSlice(len(result.Snaps), func(i int) ([]any, error) {
				s := result.Snaps[i]
				return []any{s.SystemStateID, s.Team, string(s.Side), s.GSISID, s.Snaps}, nil
			}),
		); err != nil {
			return fmt.Errorf("copy player_snaps_in_state: %w", err)
		}

		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"player_role_counts_in_state"},
			[]string{"system_state_id", "team", "side", "gsis_id", "role", "snaps"},
			pgx.CopyFromSlice(len(result.Roles), func(i int) ([]any, error) {
				c := result.Roles[i]
				return []any{c.SystemStateID, c.Team, string(c.Side), c.GSISID, c.Role, c.Snaps}, nil
			}),
		); err != nil {
			return fmt.Errorf("copy player_role_counts_in_state: %w", err)
		}

		if _, err := tx.CopyFrom(ctx,
			pgx.Identifier{"co_snaps"},
			[]string{"system_state_id", "team", "side", "a_gsis", "b_gsis", "co_snaps"},
			pgx.CopyFromSlice(len(result.Pairs), func(i int) ([]any, error) {
				p := result.Pairs[i]
				return []any{p.SystemStateID, p.Team, string(p.Side), p.A, p.B, p.CoSnaps}, nil
			}),
		); err != nil {
			return fmt.Errorf("copy co_snaps: %w", err)
		}

		return nil
	})
}
