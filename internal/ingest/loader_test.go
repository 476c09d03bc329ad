package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/cohesion/internal/contracts"
)

type fakeStore struct {
	games         []contracts.Game
	plays         []contracts.Play
	participation []contracts.Participation
	players       []contracts.Player
	windows       []contracts.CoachWindow
	storedGames   map[string]bool
	replaced      bool
}

func (f *fakeStore) UpsertGames(_ context.Context, games []contracts.Game) (int, error) {
	f.games = append(f.games, games...)
	return len(games), nil
}

func (f *fakeStore) UpsertPlays(_ context.Context, plays []contracts.Play) (int, error) {
	f.plays = append(f.plays, plays...)
	return len(plays), nil
}

func (f *fakeStore) InsertParticipation(_ context.Context, rows []contracts.Participation) (int, error) {
	f.participation = append(f.participation, rows...)
	return len(rows), nil
}

func (f *fakeStore) UpsertPlayers(_ context.Context, players []contracts.Player) (int, error) {
	f.players = append(f.players, players...)
	return len(players), nil
}

func (f *fakeStore) ReplaceCoachRoles(_ context.Context, windows []contracts.CoachWindow) error {
	f.windows = windows
	f.replaced = true
	return nil
}

func (f *fakeStore) GameIDs(_ context.Context, ids []string) (map[string]bool, error) {
	found := make(map[string]bool)
	for _, id := range ids {
		if f.storedGames[id] {
			found[id] = true
		}
	}
	return found, nil
}

func writeFile(t *testing.T, dir, name string, data []byte) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o644))
}

func seasonDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	writeFile(t, dir, "games_2023.csv", []byte(`game_id,season,week,game_date,home_team,away_team
G1,2023,1,2023-09-07,KC,DET
`))
	// plays arrive compressed
	writeFile(t, dir, "plays_2023.csv.gz", gzipped(t, `game_id,play_id,qtr,posteam,defteam,special_teams_play
G1,1,1,KC,DET,0
G1,2,1,KC,DET,1
G0,1,1,KC,DET,0
G9,1,1,BUF,NYJ,0
`))
	writeFile(t, dir, "participation_2023.csv", []byte(`game_id,play_id,side,gsis_id,position
G1,1,offense,00-001,QB
G1,1,defense,00-101,CB
G1,2,offense,00-001,QB
G9,1,offense,00-900,QB
`))
	writeFile(t, dir, "players.csv", []byte(`gsis_id,display_name,position
00-001,Patrick Mahomes,QB
00-101,Trent McDuffie,CB
`))
	return dir
}

func TestLoader_LoadSeason(t *testing.T) {
	store := &fakeStore{storedGames: map[string]bool{"G0": true}}
	loader := NewLoader(NewLocalSource(seasonDir(t)), store, zerolog.Nop())

	res, err := loader.LoadSeason(context.Background(), 2023)
	require.NoError(t, err)

	assert.Equal(t, 2023, res.Season)
	assert.Equal(t, 1, res.Games)
	// G9 is neither in the feed nor stored
	assert.Equal(t, 3, res.Plays)
	assert.Equal(t, 1, res.SkippedPlays)
	assert.Equal(t, 3, res.Participation)
	assert.Equal(t, 1, res.SkippedParticipation)
	assert.Equal(t, 2, res.Players)

	ids := make([]string, 0, len(store.plays))
	for _, p := range store.plays {
		ids = append(ids, p.PlayID)
	}
	assert.Equal(t, []string{"G1-1", "G1-2", "G0-1"}, ids)
	for _, p := range store.participation {
		assert.NotEqual(t, "G9-1", p.PlayID)
	}
}

func TestLoader_LoadSeason_MissingFeed(t *testing.T) {
	loader := NewLoader(NewLocalSource(t.TempDir()), &fakeStore{}, zerolog.Nop())

	_, err := loader.LoadSeason(context.Background(), 2023)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "games_2023.csv")
}

func TestLoader_LoadSeason_ParseErrorStopsBeforeWrites(t *testing.T) {
	dir := seasonDir(t)
	writeFile(t, dir, "participation_2023.csv", []byte("game_id,play_id,side,gsis_id\nG1,1,kicking,00-001\n"))

	store := &fakeStore{}
	loader := NewLoader(NewLocalSource(dir), store, zerolog.Nop())

	_, err := loader.LoadSeason(context.Background(), 2023)
	require.Error(t, err)
	assert.True(t, contracts.IsValidation(err))
	assert.Empty(t, store.games)
}

func TestLoader_LoadCoaches(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "coach_roles.csv", []byte(`coach_id,coach_name,team,role,start_date,end_date
reid,Andy Reid,KC,OffPlayCaller,2013-01-01,
spagnuolo,Steve Spagnuolo,KC,DC,2019-01-01,
`))
	writeFile(t, dir, "staff.html", []byte(staffHTML))

	store := &fakeStore{}
	loader := NewLoader(NewLocalSource(dir), store, zerolog.Nop())

	n, err := loader.LoadCoaches(context.Background(), "coach_roles.csv")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, store.replaced)

	n, err = loader.LoadCoaches(context.Background(), "staff.html")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestLoader_LoadCoaches_RejectsDuplicateWindow(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "coach_roles.csv", []byte(`coach_id,coach_name,team,role,start_date
reid,Andy Reid,KC,OC,2013-01-01
reid,Andy Reid,KC,OC,2013-01-01
`))

	store := &fakeStore{}
	loader := NewLoader(NewLocalSource(dir), store, zerolog.Nop())

	_, err := loader.LoadCoaches(context.Background(), "coach_roles.csv")
	require.Error(t, err)
	assert.True(t, contracts.IsValidation(err))
	assert.False(t, store.replaced)
}

func TestSeasonFeed(t *testing.T) {
	assert.Equal(t, "plays_2023.csv", SeasonFeed(FeedPlays, 2023))
}
