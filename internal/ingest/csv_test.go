package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/cohesion/internal/contracts"
)

func TestParseGames(t *testing.T) {
	in := `home_team,away_team,game_id,season,week,game_date
KC,DET,2023_01_DET_KC,2023,1,2023-09-07
KC,DET,2023_01_DET_KC,2023,1,2023-09-07
BUF,NYJ,2023_01_BUF_NYJ,2023,NA,NA
`
	games, err := ParseGames(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, games, 2)

	assert.Equal(t, "2023_01_DET_KC", games[0].GameID)
	assert.Equal(t, 2023, games[0].Season)
	assert.Equal(t, 1, games[0].Week)
	require.NotNil(t, games[0].GameDate)
	assert.Equal(t, "2023-09-07", games[0].GameDate.Format(contracts.DateLayout))
	assert.Equal(t, "KC", games[0].HomeTeam)
	assert.Equal(t, "DET", games[0].AwayTeam)

	assert.Equal(t, 0, games[1].Week)
	assert.Nil(t, games[1].GameDate)
}

func TestParseGames_MissingColumn(t *testing.T) {
	_, err := ParseGames(strings.NewReader("game_id,season\nG1,2023\n"))
	require.Error(t, err)
	assert.True(t, contracts.IsValidation(err))
}

func TestParseGames_Empty(t *testing.T) {
	games, err := ParseGames(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, games)
}

func TestParsePlays(t *testing.T) {
	in := `game_id,play_id,drive,qtr,game_seconds_remaining,posteam,defteam,play_type,special_teams_play
G1,1,,1,3600,,,,
G1,56.0,3.0,1,3400.0,KC,DET,pass,0
G1,57,3,1,3390,KC,DET,punt,1.0
G1,,3,1,3390,KC,DET,no_play,0
G1,56,3,1,3400,KC,DET,pass,0
`
	plays, err := ParsePlays(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, plays, 3)

	assert.Equal(t, "G1-1", plays[0].PlayID)
	assert.Empty(t, plays[0].OffenseTeam)

	p := plays[1]
	assert.Equal(t, "G1-56", p.PlayID)
	assert.Equal(t, "G1", p.GameID)
	assert.Equal(t, "3", p.DriveID)
	assert.Equal(t, 1, p.Quarter)
	assert.Equal(t, 3400, p.ClockSeconds)
	assert.Equal(t, "KC", p.OffenseTeam)
	assert.Equal(t, "DET", p.DefenseTeam)
	assert.Equal(t, "pass", p.PlayType)
	assert.False(t, p.SpecialTeams)

	assert.Equal(t, "G1-57", plays[2].PlayID)
	assert.True(t, plays[2].SpecialTeams)
}

func TestParsePlays_InvalidQuarter(t *testing.T) {
	in := "game_id,play_id,qtr\nG1,1,first\n"
	_, err := ParsePlays(strings.NewReader(in))
	require.Error(t, err)
	assert.True(t, contracts.IsValidation(err))
	assert.Contains(t, err.Error(), "line 2")
}

func TestParseParticipation(t *testing.T) {
	in := `game_id,play_id,side,gsis_id,position,jersey_number
G1,56,OFFENSE,00-001,qb,15
G1,56,defense,00-101,CB,
G1,56,offense,,WR,11
`
	rows, err := ParseParticipation(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "G1-56", rows[0].PlayID)
	assert.Equal(t, contracts.SideOffense, rows[0].Side)
	assert.Equal(t, "QB", rows[0].Position)
	require.NotNil(t, rows[0].JerseyNumber)
	assert.Equal(t, 15, *rows[0].JerseyNumber)

	assert.Equal(t, contracts.SideDefense, rows[1].Side)
	assert.Nil(t, rows[1].JerseyNumber)
}

func TestParseParticipation_InvalidSide(t *testing.T) {
	in := "game_id,play_id,side,gsis_id\nG1,56,special,00-001\n"
	_, err := ParseParticipation(strings.NewReader(in))
	require.Error(t, err)
	assert.True(t, contracts.IsValidation(err))
}

func TestParsePlayers_MergesTeamHistory(t *testing.T) {
	in := `gsis_id,display_name,position,team
00-001,Patrick Mahomes,QB,KC
00-002,Travis Kelce,TE,KC
00-001,Patrick Mahomes,QB,KC
00-003,Someone Else,WR,BUF
00-003,Someone Else,WR,KC
`
	players, err := ParsePlayers(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, players, 3)

	assert.Equal(t, []string{"KC"}, players[0].TeamHistory)
	assert.Equal(t, "Travis Kelce", players[1].DisplayName)
	assert.Equal(t, []string{"BUF", "KC"}, players[2].TeamHistory)
}

func TestParsePlayers_NoTeamColumn(t *testing.T) {
	players, err := ParsePlayers(strings.NewReader("gsis_id,display_name,position\n00-001,A,QB\n"))
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.NotNil(t, players[0].TeamHistory)
	assert.Empty(t, players[0].TeamHistory)
}

func TestParseCoachRoles(t *testing.T) {
	in := `coach_id,coach_name,team,role,start_date,end_date,start_game_id,end_game_id
reid,Andy Reid,KC,OffPlayCaller,2013-01-01,,,
bieniemy,Eric Bieniemy,KC,OC,2018-01-01,2022-12-31,2018_01_KC_LAC,
`
	windows, err := ParseCoachRoles(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, windows, 2)

	assert.Equal(t, contracts.RoleOffPlayCaller, windows[0].Role)
	assert.Nil(t, windows[0].EndDate)
	assert.Empty(t, windows[0].StartGameID)

	require.NotNil(t, windows[1].EndDate)
	assert.Equal(t, "2022-12-31", windows[1].EndDate.Format(contracts.DateLayout))
	assert.Equal(t, "2018_01_KC_LAC", windows[1].StartGameID)
}

func TestParseCoachRoles_Invalid(t *testing.T) {
	cases := map[string]string{
		"unknown role":  "x,X,KC,HeadCoach,2020-01-01,",
		"missing start": "x,X,KC,OC,,",
		"bad date":      "x,X,KC,OC,01/02/2020,",
		"end before":    "x,X,KC,OC,2020-01-01,2019-01-01",
		"missing coach": ",X,KC,OC,2020-01-01,",
	}
	for name, row := range cases {
		t.Run(name, func(t *testing.T) {
			in := "coach_id,coach_name,team,role,start_date,end_date\n" + row + "\n"
			_, err := ParseCoachRoles(strings.NewReader(in))
			require.Error(t, err)
			assert.True(t, contracts.IsValidation(err))
		})
	}
}

func TestParseInt(t *testing.T) {
	n, err := parseInt("12.0")
	require.NoError(t, err)
	assert.Equal(t, 12, *n)

	n, err = parseInt("NA")
	require.NoError(t, err)
	assert.Nil(t, n)

	_, err = parseInt("12.5")
	assert.Error(t, err)
}
