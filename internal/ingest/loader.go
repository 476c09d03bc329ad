package ingest

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/wonny/cohesion/internal/contracts"
)

// Store is the persistence the loaders write to
type Store interface {
	UpsertGames(ctx context.Context, games []contracts.Game) (int, error)
	UpsertPlays(ctx context.Context, plays []contracts.Play) (int, error)
	InsertParticipation(ctx context.Context, rows []contracts.Participation) (int, error)
	UpsertPlayers(ctx context.Context, players []contracts.Player) (int, error)
	ReplaceCoachRoles(ctx context.Context, windows []contracts.CoachWindow) error
	GameIDs(ctx context.Context, ids []string) (map[string]bool, error)
}

// SeasonResult counts what one season load wrote
type SeasonResult struct {
	Season               int `json:"season"`
	Games                int `json:"games"`
	Plays                int `json:"plays"`
	Participation        int `json:"participation"`
	Players              int `json:"players"`
	SkippedPlays         int `json:"skipped_plays"`
	SkippedParticipation int `json:"skipped_participation"`
}

// Loader reads feeds from a Source into the store
type Loader struct {
	source Source
	store  Store
	log    zerolog.Logger
}

// NewLoader 새 로더 생성
func NewLoader(source Source, store Store, log zerolog.Logger) *Loader {
	return &Loader{
		source: source,
		store:  store,
		log:    log,
	}
}

// SeasonFeed is the file name of a per-season feed
func SeasonFeed(feed string, season int) string {
	return feed + "_" + strconv.Itoa(season) + ".csv"
}

// LoadSeason loads games, plays, participation and the player registry for one season.
// Plays whose game is unknown and participation of plays not loaded are skipped.
func (l *Loader) LoadSeason(ctx context.Context, season int) (*SeasonResult, error) {
	res := &SeasonResult{Season: season}

	var games []contracts.Game
	if err := l.read(ctx, SeasonFeed(FeedGames, season), func(r io.Reader) (err error) {
		games, err = ParseGames(r)
		return err
	}); err != nil {
		return nil, err
	}

	var plays []contracts.Play
	if err := l.read(ctx, SeasonFeed(FeedPlays, season), func(r io.Reader) (err error) {
		plays, err = ParsePlays(r)
		return err
	}); err != nil {
		return nil, err
	}

	var participation []contracts.Participation
	if err := l.read(ctx, SeasonFeed(FeedParticipation, season), func(r io.Reader) (err error) {
		participation, err = ParseParticipation(r)
		return err
	}); err != nil {
		return nil, err
	}

	var players []contracts.Player
	if err := l.read(ctx, FeedPlayers+".csv", func(r io.Reader) (err error) {
		players, err = ParsePlayers(r)
		return err
	}); err != nil {
		return nil, err
	}

	n, err := l.store.UpsertGames(ctx, games)
	if err != nil {
		return nil, err
	}
	res.Games = n

	parsed := len(plays)
	plays, err = l.knownGames(ctx, games, plays)
	if err != nil {
		return nil, err
	}
	res.SkippedPlays = parsed - len(plays)
	n, err = l.store.UpsertPlays(ctx, plays)
	if err != nil {
		return nil, err
	}
	res.Plays = n

	loaded := make(map[string]bool, len(plays))
	for _, p := range plays {
		loaded[p.PlayID] = true
	}
	kept := participation[:0]
	for _, p := range participation {
		if loaded[p.PlayID] {
			kept = append(kept, p)
		}
	}
	res.SkippedParticipation = len(participation) - len(kept)

	n, err = l.store.InsertParticipation(ctx, kept)
	if err != nil {
		return nil, err
	}
	res.Participation = n

	n, err = l.store.UpsertPlayers(ctx, players)
	if err != nil {
		return nil, err
	}
	res.Players = n

	l.log.Info().
		Int("season", season).
		Int("games", res.Games).
		Int("plays", res.Plays).
		Int("participation", res.Participation).
		Int("players", res.Players).
		Int("skipped_plays", res.SkippedPlays).
		Int("skipped_participation", res.SkippedParticipation).
		Msg("Season loaded")

	return res, nil
}

// LoadCoaches replaces every coach tenure window with the named file (CSV or HTML)
func (l *Loader) LoadCoaches(ctx context.Context, name string) (int, error) {
	var windows []contracts.CoachWindow
	if err := l.read(ctx, name, func(r io.Reader) (err error) {
		windows, err = ParseCoachRolesAuto(name, r)
		return err
	}); err != nil {
		return 0, err
	}

	if err := CheckUniqueWindows(windows); err != nil {
		return 0, err
	}
	if err := l.store.ReplaceCoachRoles(ctx, windows); err != nil {
		return 0, err
	}

	l.log.Info().Str("file", name).Int("windows", len(windows)).Msg("Coach roles loaded")
	return len(windows), nil
}

// CheckUniqueWindows rejects two windows sharing (coach, team, role, start date)
func CheckUniqueWindows(windows []contracts.CoachWindow) error {
	type key struct {
		coach, team string
		role        contracts.CoachRole
		start       string
	}
	seen := make(map[key]bool, len(windows))
	for _, w := range windows {
		k := key{w.CoachID, w.Team, w.Role, w.StartDate.Format(contracts.DateLayout)}
		if seen[k] {
			return &contracts.ValidationError{
				Field:   "coach_roles",
				Message: fmt.Sprintf("duplicate window %s/%s/%s starting %s", k.coach, k.team, k.role, k.start),
			}
		}
		seen[k] = true
	}
	return nil
}

// read opens name, or name.gz / name.zst when the plain file is missing
func (l *Loader) read(ctx context.Context, name string, parse func(io.Reader) error) error {
	var errs []error
	for _, candidate := range []string{name, name + ".gz", name + ".zst"} {
		rc, err := l.source.Open(ctx, candidate)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		body, err := Decompress(candidate, rc)
		if err != nil {
			return err
		}
		err = parse(body)
		body.Close()
		if err != nil {
			return fmt.Errorf("parse %s: %w", candidate, err)
		}

		l.log.Debug().Str("feed", candidate).Str("source", l.source.String()).Msg("Feed read")
		return nil
	}
	return fmt.Errorf("feed %s not found in %s: %w", name, l.source, errors.Join(errs...))
}

// knownGames drops plays whose game is neither in this load nor already stored
func (l *Loader) knownGames(ctx context.Context, games []contracts.Game, plays []contracts.Play) ([]contracts.Play, error) {
	known := make(map[string]bool, len(games))
	for _, g := range games {
		known[g.GameID] = true
	}

	var missing []string
	for _, p := range plays {
		if !known[p.GameID] && !contains(missing, p.GameID) {
			missing = append(missing, p.GameID)
		}
	}
	if len(missing) > 0 {
		stored, err := l.store.GameIDs(ctx, missing)
		if err != nil {
			return nil, err
		}
		for id, ok := range stored {
			if ok {
				known[id] = true
			}
		}
	}

	kept := make([]contracts.Play, 0, len(plays))
	for _, p := range plays {
		if known[p.GameID] {
			kept = append(kept, p)
		}
	}
	if dropped := len(plays) - len(kept); dropped > 0 {
		l.log.Warn().Int("plays", dropped).Msg("Plays skipped: unknown game")
	}
	return kept, nil
}
