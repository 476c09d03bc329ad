package aggregate

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/cohesion/pkg/database/dbtest"
)

func countRows(t *testing.T, repo *Repository, table string) int {
	t.Helper()
	var n int
	require.NoError(t, repo.pool.QueryRow(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func TestRepository_RunAndAtomicReplace(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	seed := []string{
		`INSERT INTO games (game_id, season, week, game_date, home_team, away_team)
		 VALUES ('g1', 2023, 1, '2023-09-07', 'KC', 'DET')`,
		`INSERT INTO plays (play_id, game_id, offense_team, defense_team, special_teams)
		 VALUES ('g1-1', 'g1', 'KC', 'DET', false), ('g1-2', 'g1', 'KC', 'DET', true)`,
		`INSERT INTO play_participation (play_id, side, gsis_id, position) VALUES
		 ('g1-1', 'offense', 'QB1', 'QB'), ('g1-1', 'offense', 'WR1', 'WR'),
		 ('g1-2', 'offense', 'K1', 'K')`,
		`INSERT INTO play_system_state (play_id, offense_system_state_id, defense_system_state_id)
		 VALUES ('g1-1', 'off1', 'def1'), ('g1-2', 'off1', 'def1')`,
	}
	for _, q := range seed {
		_, err := db.Pool.Exec(ctx, q)
		require.NoError(t, err)
	}

	repo := NewRepository(db.Pool)
	result, err := NewService(repo, zerolog.Nop()).Run(ctx)
	require.NoError(t, err)
	assert.Len(t, result.Snaps, 2)

	assert.Equal(t, 2, countRows(t, repo, "player_snaps_in_state"))
	assert.Equal(t, 2, countRows(t, repo, "player_role_counts_in_state"))
	assert.Equal(t, 1, countRows(t, repo, "co_snaps"))

	// duplicate primary key forces the copy to fail mid-transaction
	bad := &Result{
		Snaps: []SnapCount{result.Snaps[0], result.Snaps[0]},
	}
	require.Error(t, repo.ReplaceAll(ctx, bad))

	assert.Equal(t, 2, countRows(t, repo, "player_snaps_in_state"), "failed replace must keep the previous snapshot")
	assert.Equal(t, 1, countRows(t, repo, "co_snaps"))
}
