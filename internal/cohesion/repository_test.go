package cohesion

import (
	"context"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/cohesion/internal/contracts"
	"github.com/wonny/cohesion/internal/weights"
	"github.com/wonny/cohesion/pkg/database/dbtest"
)

func TestRepository_ReferenceFixture(t *testing.T) {
	db := dbtest.Open(t)
	ctx := context.Background()

	var offense []contracts.RolePairWeight
	for _, w := range weights.Default() {
		if w.Side == contracts.SideOffense {
			offense = append(offense, w)
		}
	}
	_, err := weights.NewRepository(db.Pool).Replace(ctx, offense)
	require.NoError(t, err)

	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO games (game_id, season, week, game_date, home_team, away_team) VALUES ('G1', 2024, 1, '2024-09-08', 'KC', 'LV')`)
	batch.Queue(`INSERT INTO system_states (system_state_id, team, side, coach_id) VALUES ('state-off', 'KC', 'offense', 'c1'), ('state-def', 'LV', 'defense', 'c2')`)
	for i := 0; i < 100; i++ {
		playID := fmt.Sprintf("G1-%d", i)
		batch.Queue(`INSERT INTO plays (play_id, game_id, offense_team, defense_team, play_type, special_teams) VALUES ($1, 'G1', 'KC', 'LV', 'pass', false)`, playID)
		batch.Queue(`INSERT INTO play_system_state (play_id, offense_system_state_id, defense_system_state_id) VALUES ($1, 'state-off', 'state-def')`, playID)
	}
	// a special-teams play must not count toward team snaps
	batch.Queue(`INSERT INTO plays (play_id, game_id, offense_team, defense_team, play_type, special_teams) VALUES ('G1-st', 'G1', 'KC', 'LV', 'punt', true)`)
	batch.Queue(`INSERT INTO play_system_state (play_id, offense_system_state_id, defense_system_state_id) VALUES ('G1-st', 'state-off', 'state-def')`)

	ids := lineupIDs()
	for i, id := range ids {
		role := scenarioRoles[i]
		batch.Queue(`INSERT INTO players (gsis_id, display_name, position) VALUES ($1, $1, $2)`, id, role)
		batch.Queue(`INSERT INTO player_snaps_in_state VALUES ('state-off', 'KC', 'offense', $1, 90)`, id)
		batch.Queue(`INSERT INTO player_role_counts_in_state VALUES ('state-off', 'KC', 'offense', $1, $2, 90)`, id, role)
		for _, other := range ids[i+1:] {
			pair := NewPlayerPair(id, other)
			batch.Queue(`INSERT INTO co_snaps VALUES ('state-off', 'KC', 'offense', $1, $2, 80)`, pair.A, pair.B)
		}
	}
	require.NoError(t, db.Pool.SendBatch(ctx, batch).Close())

	repo := NewRepository(db.Pool)
	scope := Scope{Team: "KC", Side: contracts.SideOffense, SystemStateID: "state-off"}

	teamSnaps, err := repo.TeamSnaps(ctx, scope)
	require.NoError(t, err)
	assert.Equal(t, 100, teamSnaps)

	score, err := NewScorer(repo, zerolog.Nop()).Score(ctx, contracts.LineupRequest{
		Team: "KC", Side: contracts.SideOffense, SystemStateID: "state-off", Lineup: ids,
	})
	require.NoError(t, err)

	assert.InDelta(t, 0.9, score.LSU, 1e-9)
	assert.InDelta(t, 1.0, score.LIU, 1e-9)
	assert.InDelta(t, 0.8, score.LIC, 1e-9)
	expected := 0.35*0.9 + 0.20*1.0 + 0.45*0.8
	assert.InDelta(t, expected, score.Cohesion, 1e-9)
	require.NotNil(t, score.PlaycallerLabel)
	assert.Equal(t, "c1 (Play Caller)", *score.PlaycallerLabel)
}
