// Package dbtest opens a migrated, emptied database for integration tests.
package dbtest

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wonny/cohesion/pkg/config"
	"github.com/wonny/cohesion/pkg/database"
)

// Tables lists every application table in dependency order (children first)
var Tables = []string{
	"co_snaps",
	"player_role_counts_in_state",
	"player_snaps_in_state",
	"play_system_state",
	"system_states",
	"play_participation",
	"plays",
	"games",
	"players",
	"coach_roles",
	"role_pair_weights",
	"pipeline_runs",
}

// Open connects to DATABASE_URL, applies migrations and truncates every
// table. The test is skipped when DATABASE_URL is unset or with -short.
func Open(t testing.TB) *database.DB {
	t.Helper()

	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if os.Getenv("DATABASE_URL") == "" {
		t.Skip("DATABASE_URL not set, skipping integration test")
	}

	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Database.AutoMigrate = true

	db, err := database.New(cfg)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	_, err = db.Pool.Exec(context.Background(), "TRUNCATE "+strings.Join(Tables, ", ")+" CASCADE")
	require.NoError(t, err)

	return db
}
