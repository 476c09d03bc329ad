package ingest

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/cohesion/internal/contracts"
	"github.com/wonny/cohesion/pkg/database"
)

// batchSize rows per transaction
const batchSize = 500

// Repository 원천 데이터 저장소
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository 새 저장소 생성
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// UpsertGames inserts or updates games
func (r *Repository) UpsertGames(ctx context.Context, games []contracts.Game) (int, error) {
	query := `
		INSERT INTO games (game_id, season, week, game_date, home_team, away_team)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (game_id) DO UPDATE SET
			season = EXCLUDED.season,
			week = EXCLUDED.week,
			game_date = EXCLUDED.game_date,
			home_team = EXCLUDED.home_team,
			away_team = EXCLUDED.away_team`

	return r.execChunked(ctx, "games", len(games), func(b *pgx.Batch, i int) {
		g := games[i]
		b.Queue(query, g.GameID, g.Season, g.Week, g.GameDate, g.HomeTeam, g.AwayTeam)
	})
}

// UpsertPlays inserts or updates plays. Parent games must exist.
func (r *Repository) UpsertPlays(ctx context.Context, plays []contracts.Play) (int, error) {
	query := `
		INSERT INTO plays (play_id, game_id, drive_id, quarter, clock_seconds,
		                   offense_team, defense_team, play_type, special_teams)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, NULLIF($6, ''), NULLIF($7, ''), NULLIF($8, ''), $9)
		ON CONFLICT (play_id) DO UPDATE SET
			drive_id = EXCLUDED.drive_id,
			quarter = EXCLUDED.quarter,
			clock_seconds = EXCLUDED.clock_seconds,
			offense_team = EXCLUDED.offense_team,
			defense_team = EXCLUDED.defense_team,
			play_type = EXCLUDED.play_type,
			special_teams = EXCLUDED.special_teams`

	return r.execChunked(ctx, "plays", len(plays), func(b *pgx.Batch, i int) {
		p := plays[i]
		b.Queue(query, p.PlayID, p.GameID, p.DriveID, p.Quarter, p.ClockSeconds,
			p.OffenseTeam, p.DefenseTeam, p.PlayType, p.SpecialTeams)
	})
}

// InsertParticipation inserts participation rows; existing (play, side, player) keys are kept
func (r *Repository) InsertParticipation(ctx context.Context, rows []contracts.Participation) (int, error) {
	query := `
		INSERT INTO play_participation (play_id, side, gsis_id, position, jersey_number)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5)
		ON CONFLICT (play_id, side, gsis_id) DO NOTHING`

	return r.execChunked(ctx, "participation", len(rows), func(b *pgx.Batch, i int) {
		p := rows[i]
		b.Queue(query, p.PlayID, string(p.Side), p.GSISID, p.Position, p.JerseyNumber)
	})
}

// UpsertPlayers inserts or updates registry players, merging team history
func (r *Repository) UpsertPlayers(ctx context.Context, players []contracts.Player) (int, error) {
	query := `
		INSERT INTO players (gsis_id, display_name, position, team_history)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), $4)
		ON CONFLICT (gsis_id) DO UPDATE SET
			display_name = COALESCE(EXCLUDED.display_name, players.display_name),
			position = COALESCE(EXCLUDED.position, players.position),
			team_history = COALESCE((
				SELECT jsonb_agg(DISTINCT t)
				FROM jsonb_array_elements(players.team_history || EXCLUDED.team_history) AS t
			), '[]'::jsonb)`

	return r.execChunked(ctx, "players", len(players), func(b *pgx.Batch, i int) {
		p := players[i]
		history := p.TeamHistory
		if history == nil {
			history = []string{}
		}
		b.Queue(query, p.GSISID, p.DisplayName, p.Position, history)
	})
}

// ReplaceCoachRoles replaces the whole coach_roles table in one transaction
func (r *Repository) ReplaceCoachRoles(ctx context.Context, windows []contracts.CoachWindow) error {
	return database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM coach_roles`); err != nil {
			return fmt.Errorf("clear coach roles: %w", err)
		}

		batch := &pgx.Batch{}
		for _, w := range windows {
			batch.Queue(`
				INSERT INTO coach_roles
					(coach_id, coach_name, team, role, start_date, end_date, start_game_id, end_game_id)
				VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''))`,
				w.CoachID, w.CoachName, w.Team, string(w.Role), w.StartDate, w.EndDate, w.StartGameID, w.EndGameID)
		}

		br := tx.SendBatch(ctx, batch)
		for _, w := range windows {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("insert coach window %s/%s/%s: %w", w.CoachID, w.Team, w.Role, err)
			}
		}
		return br.Close()
	})
}

// GameIDs returns the ids of games already stored
func (r *Repository) GameIDs(ctx context.Context, ids []string) (map[string]bool, error) {
	rows, err := r.pool.Query(ctx, `SELECT game_id FROM games WHERE game_id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("query game ids: %w", err)
	}
	defer rows.Close()

	found := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan game id: %w", err)
		}
		found[id] = true
	}
	return found, rows.Err()
}

// execChunked sends n queued statements in transactions of batchSize
func (r *Repository) execChunked(ctx context.Context, what string, n int, queue func(b *pgx.Batch, i int)) (int, error) {
	saved := 0
	for start := 0; start < n; start += batchSize {
		end := start + batchSize
		if end > n {
			end = n
		}

		err := database.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
			batch := &pgx.Batch{}
			for i := start; i < end; i++ {
				queue(batch, i)
			}

			br := tx.SendBatch(ctx, batch)
			for i := start; i < end; i++ {
				if _, err := br.Exec(); err != nil {
					br.Close()
					return err
				}
			}
			return br.Close()
		})
		if err != nil {
			return saved, fmt.Errorf("save %s (batch %d): %w", what, start/batchSize, err)
		}
		saved += end - start
	}
	return saved, nil
}
