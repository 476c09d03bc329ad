package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/wonny/cohesion/internal/contracts"
)

// Feed file names, relative to the source root.
// Season feeds are looked up as <name>_<season>.csv with optional .gz/.zst.
const (
	FeedGames         = "games"
	FeedPlays         = "plays"
	FeedParticipation = "participation"
	FeedPlayers       = "players"
)

// header maps lower-cased column names to their index
type header map[string]int

// record is one CSV row addressed by column name
type record struct {
	line   int
	fields []string
	cols   header
}

func (r record) get(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

func (r record) errorf(field, format string, args ...interface{}) error {
	return &contracts.ValidationError{
		Field:   field,
		Message: fmt.Sprintf("line %d: %s", r.line, fmt.Sprintf(format, args...)),
	}
}

// readTable reads a header-driven CSV, calling fn for every data row.
// Columns may appear in any order; required columns must be present.
func readTable(r io.Reader, required []string, fn func(record) error) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = false

	first, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}

	cols := make(header, len(first))
	for i, name := range first {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		if _, dup := cols[name]; !dup {
			cols[name] = i
		}
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return &contracts.ValidationError{Field: name, Message: "missing required column " + name}
		}
	}

	line := 1
	for {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		line++
		if err != nil {
			return fmt.Errorf("read line %d: %w", line, err)
		}
		if err := fn(record{line: line, fields: fields, cols: cols}); err != nil {
			return err
		}
	}
}

// ParseGames reads the games feed. Rows repeating a game_id are ignored.
func ParseGames(r io.Reader) ([]contracts.Game, error) {
	var games []contracts.Game
	seen := make(map[string]bool)

	err := readTable(r, []string{"game_id", "season", "home_team", "away_team"}, func(rec record) error {
		id := rec.get("game_id")
		if id == "" {
			return rec.errorf("game_id", "game_id is required")
		}
		if seen[id] {
			return nil
		}
		seen[id] = true

		season, err := parseInt(rec.get("season"))
		if err != nil || season == nil {
			return rec.errorf("season", "invalid season %q", rec.get("season"))
		}
		week, err := parseInt(rec.get("week"))
		if err != nil {
			return rec.errorf("week", "invalid week %q", rec.get("week"))
		}
		date, err := parseDate(rec.get("game_date"))
		if err != nil {
			return rec.errorf("game_date", "%v", err)
		}

		g := contracts.Game{
			GameID:   id,
			Season:   *season,
			GameDate: date,
			HomeTeam: rec.get("home_team"),
			AwayTeam: rec.get("away_team"),
		}
		if week != nil {
			g.Week = *week
		}
		games = append(games, g)
		return nil
	})
	return games, err
}

// ParsePlays reads the play-by-play feed.
// Rows without a play sequence number are skipped; duplicates keep the first row.
func ParsePlays(r io.Reader) ([]contracts.Play, error) {
	var plays []contracts.Play
	seen := make(map[string]bool)

	err := readTable(r, []string{"game_id", "play_id"}, func(rec record) error {
		gameID := rec.get("game_id")
		seq, err := parseInt(rec.get("play_id"))
		if err != nil {
			return rec.errorf("play_id", "invalid play_id %q", rec.get("play_id"))
		}
		if seq == nil || gameID == "" {
			return nil
		}

		id := contracts.PlayID(gameID, strconv.Itoa(*seq))
		if seen[id] {
			return nil
		}
		seen[id] = true

		quarter, err := parseInt(rec.get("qtr"))
		if err != nil {
			return rec.errorf("qtr", "invalid qtr %q", rec.get("qtr"))
		}
		clock, err := parseInt(rec.get("game_seconds_remaining"))
		if err != nil {
			return rec.errorf("game_seconds_remaining", "invalid clock %q", rec.get("game_seconds_remaining"))
		}
		special, err := parseBool(rec.get("special_teams_play"))
		if err != nil {
			return rec.errorf("special_teams_play", "%v", err)
		}

		p := contracts.Play{
			PlayID:       id,
			GameID:       gameID,
			DriveID:      trimFloat(rec.get("drive")),
			OffenseTeam:  rec.get("posteam"),
			DefenseTeam:  rec.get("defteam"),
			PlayType:     rec.get("play_type"),
			SpecialTeams: special,
		}
		if quarter != nil {
			p.Quarter = *quarter
		}
		if clock != nil {
			p.ClockSeconds = *clock
		}
		plays = append(plays, p)
		return nil
	})
	return plays, err
}

// ParseParticipation reads the participation feed, one row per player per side per play
func ParseParticipation(r io.Reader) ([]contracts.Participation, error) {
	var rows []contracts.Participation

	err := readTable(r, []string{"game_id", "play_id", "side", "gsis_id"}, func(rec record) error {
		seq, err := parseInt(rec.get("play_id"))
		if err != nil {
			return rec.errorf("play_id", "invalid play_id %q", rec.get("play_id"))
		}
		gameID := rec.get("game_id")
		gsis := rec.get("gsis_id")
		if seq == nil || gameID == "" || gsis == "" {
			return nil
		}

		side, err := contracts.ParseSide(strings.ToLower(rec.get("side")))
		if err != nil {
			return rec.errorf("side", "%v", err)
		}
		jersey, err := parseInt(rec.get("jersey_number"))
		if err != nil {
			return rec.errorf("jersey_number", "invalid jersey_number %q", rec.get("jersey_number"))
		}

		rows = append(rows, contracts.Participation{
			PlayID:       contracts.PlayID(gameID, strconv.Itoa(*seq)),
			Side:         side,
			GSISID:       gsis,
			Position:     strings.ToUpper(rec.get("position")),
			JerseyNumber: jersey,
		})
		return nil
	})
	return rows, err
}

// ParsePlayers reads the player registry feed.
// Repeated gsis_ids merge, with each distinct team value appended to the team history.
func ParsePlayers(r io.Reader) ([]contracts.Player, error) {
	var players []contracts.Player
	index := make(map[string]int)

	err := readTable(r, []string{"gsis_id"}, func(rec record) error {
		id := rec.get("gsis_id")
		if id == "" {
			return nil
		}
		team := rec.get("team")

		i, ok := index[id]
		if !ok {
			index[id] = len(players)
			players = append(players, contracts.Player{
				GSISID:      id,
				DisplayName: rec.get("display_name"),
				Position:    rec.get("position"),
				TeamHistory: []string{},
			})
			i = len(players) - 1
		}
		if team != "" && !contains(players[i].TeamHistory, team) {
			players[i].TeamHistory = append(players[i].TeamHistory, team)
		}
		return nil
	})
	return players, err
}

// coachColumns are the coach table columns, shared by the CSV and HTML readers
var coachColumns = []string{"coach_id", "coach_name", "team", "role", "start_date"}

// ParseCoachRoles reads the coaching staff CSV
func ParseCoachRoles(r io.Reader) ([]contracts.CoachWindow, error) {
	var windows []contracts.CoachWindow
	err := readTable(r, coachColumns, func(rec record) error {
		w, err := coachWindow(rec)
		if err != nil {
			return err
		}
		windows = append(windows, w)
		return nil
	})
	return windows, err
}

func coachWindow(rec record) (contracts.CoachWindow, error) {
	role, err := contracts.ParseCoachRole(rec.get("role"))
	if err != nil {
		return contracts.CoachWindow{}, rec.errorf("role", "%v", err)
	}
	start, err := parseDate(rec.get("start_date"))
	if err != nil {
		return contracts.CoachWindow{}, rec.errorf("start_date", "%v", err)
	}
	end, err := parseDate(rec.get("end_date"))
	if err != nil {
		return contracts.CoachWindow{}, rec.errorf("end_date", "%v", err)
	}

	w := contracts.CoachWindow{
		CoachID:     rec.get("coach_id"),
		CoachName:   rec.get("coach_name"),
		Team:        rec.get("team"),
		Role:        role,
		EndDate:     end,
		StartGameID: rec.get("start_game_id"),
		EndGameID:   rec.get("end_game_id"),
	}
	if start != nil {
		w.StartDate = *start
	}
	if err := w.Validate(); err != nil {
		return contracts.CoachWindow{}, rec.errorf(fieldOf(err), "%v", err)
	}
	return w, nil
}

// Helper functions

// parseInt accepts integers and integral floats ("12", "12.0"); blank and NA are nil
func parseInt(s string) (*int, error) {
	if isBlank(s) {
		return nil, nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) {
		return nil, fmt.Errorf("not an integer: %q", s)
	}
	n := int(f)
	return &n, nil
}

func parseBool(s string) (bool, error) {
	if isBlank(s) {
		return false, nil
	}
	switch strings.ToLower(s) {
	case "1", "1.0", "true", "t", "yes":
		return true, nil
	case "0", "0.0", "false", "f", "no":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

// parseDate accepts YYYY-MM-DD and RFC 3339 timestamps; blank is nil
func parseDate(s string) (*time.Time, error) {
	if isBlank(s) {
		return nil, nil
	}
	if t, err := time.Parse(contracts.DateLayout, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q", s)
	}
	d := contracts.DateOnly(t)
	return &d, nil
}

func isBlank(s string) bool {
	switch strings.ToUpper(s) {
	case "", "NA", "NAN", "NULL":
		return true
	}
	return false
}

// trimFloat renders "3.0" as "3"
func trimFloat(s string) string {
	if isBlank(s) {
		return ""
	}
	if n, err := parseInt(s); err == nil && n != nil {
		return strconv.Itoa(*n)
	}
	return s
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func fieldOf(err error) string {
	var ve *contracts.ValidationError
	if errors.As(err, &ve) {
		return ve.Field
	}
	return ""
}
