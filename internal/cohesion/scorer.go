package cohesion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/wonny/cohesion/internal/contracts"
	"github.com/wonny/cohesion/internal/weights"
)

// Scope identifies the aggregates a lineup is scored against
type Scope struct {
	Team          string
	Side          contracts.Side
	SystemStateID string
}

// PlayerPair is an unordered player pair with A < B
type PlayerPair struct {
	A string
	B string
}

// NewPlayerPair orders the two ids canonically
func NewPlayerPair(a, b string) PlayerPair {
	if b < a {
		a, b = b, a
	}
	return PlayerPair{A: a, B: b}
}

// Store is the aggregate read path the scorer needs.
// Missing rows are simply absent from the returned maps.
type Store interface {
	TeamSnaps(ctx context.Context, scope Scope) (int, error)
	PlayerSnaps(ctx context.Context, scope Scope, ids []string) (map[string]int, error)
	RoleCounts(ctx context.Context, scope Scope, ids []string) (map[string]map[string]int, error)
	CoSnaps(ctx context.Context, scope Scope, ids []string) (map[PlayerPair]int, error)
	Positions(ctx context.Context, ids []string) (map[string]string, error)
	RoleWeights(ctx context.Context, side contracts.Side) (weights.Table, error)
	SystemState(ctx context.Context, id string) (*contracts.SystemState, error)
}

// Recorder receives scoring metrics; *metrics.Manager satisfies it
type Recorder interface {
	ObserveScoring(d time.Duration)
	IncValidationFailure()
}

// Scorer computes lineup cohesion
// ⭐ SSOT: LSU / LIU / LIC / cohesion 계산
type Scorer struct {
	store    Store
	recorder Recorder
	log      zerolog.Logger
}

// NewScorer 새 스코어러 생성
func NewScorer(store Store, log zerolog.Logger) *Scorer {
	return &Scorer{
		store: store,
		log:   log.With().Str("component", "cohesion.scorer").Logger(),
	}
}

// WithRecorder attaches a metrics recorder
func (s *Scorer) WithRecorder(r Recorder) *Scorer {
	s.recorder = r
	return s
}

// Score validates the request and computes the four scores.
// Validation happens before any store access.
func (s *Scorer) Score(ctx context.Context, req contracts.LineupRequest) (*contracts.LineupScore, error) {
	if err := req.Validate(); err != nil {
		if s.recorder != nil {
			s.recorder.IncValidationFailure()
		}
		return nil, err
	}

	start := time.Now()
	scope := Scope{Team: req.Team, Side: req.Side, SystemStateID: req.SystemStateID}
	lineup := req.Lineup

	teamSnaps, err := s.store.TeamSnaps(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("team snaps: %w", err)
	}
	snaps, err := s.store.PlayerSnaps(ctx, scope, lineup)
	if err != nil {
		return nil, fmt.Errorf("player snaps: %w", err)
	}
	roles, err := s.store.RoleCounts(ctx, scope, lineup)
	if err != nil {
		return nil, fmt.Errorf("role counts: %w", err)
	}
	co, err := s.store.CoSnaps(ctx, scope, lineup)
	if err != nil {
		return nil, fmt.Errorf("co-snaps: %w", err)
	}
	positions, err := s.store.Positions(ctx, lineup)
	if err != nil {
		return nil, fmt.Errorf("positions: %w", err)
	}
	table, err := s.store.RoleWeights(ctx, req.Side)
	if err != nil {
		return nil, fmt.Errorf("role weights: %w", err)
	}

	result := &contracts.LineupScore{
		Warnings:  []string{},
		PerPlayer: make([]contracts.PlayerScore, 0, len(lineup)),
		PairEdges: []contracts.PairEdge{},
	}

	// LSU, LIU
	lsu := make([]float64, 0, len(lineup))
	ius := make([]float64, 0, len(lineup))
	dominant := make(map[string]string, len(lineup))

	for _, id := range lineup {
		n := snaps[id]
		counts := roles[id]
		if counts == nil {
			counts = map[string]int{}
		}

		util := 0.0
		if teamSnaps > 0 {
			util = clamp01(float64(n) / float64(teamSnaps))
		}
		lsu = append(lsu, util)

		usage := IUS(counts)
		ius = append(ius, usage)

		role := DominantRole(counts)
		if role == "" {
			role = positions[id]
		}
		dominant[id] = role

		if n == 0 {
			result.Warnings = append(result.Warnings, fmt.Sprintf("Player %s has zero snaps in this system state", id))
		}

		result.PerPlayer = append(result.PerPlayer, contracts.PlayerScore{
			GSISID:       id,
			SnapsInState: n,
			IUS:          usage,
			Roles:        counts,
		})
	}

	// LIC
	weightSum := 0.0
	weighted := 0.0
	for i := 0; i < len(lineup); i++ {
		for j := i + 1; j < len(lineup); j++ {
			a, b := lineup[i], lineup[j]
			roleA, roleB := dominant[a], dominant[b]
			if roleA == "" || roleB == "" {
				continue
			}
			w, ok := table.Lookup(roleA, roleB)
			if !ok {
				continue
			}

			coSnaps := co[NewPlayerPair(a, b)]
			jac := Jaccard(coSnaps, snaps[a], snaps[b])

			weighted += w * jac
			weightSum += w
			result.PairEdges = append(result.PairEdges, contracts.PairEdge{
				A:       a,
				B:       b,
				Weight:  w,
				Jaccard: jac,
				CoSnaps: coSnaps,
				NI:      snaps[a],
				NJ:      snaps[b],
			})
		}
	}

	result.LSU = mean(lsu)
	result.LIU = mean(ius)
	if weightSum > 0 {
		result.LIC = clamp01(weighted / weightSum)
	}
	result.Cohesion = contracts.Composite(result.LSU, result.LIU, result.LIC)

	state, err := s.store.SystemState(ctx, req.SystemStateID)
	switch {
	case err == nil:
		label := state.Label()
		result.PlaycallerLabel = &label
	case errors.Is(err, contracts.ErrSystemStateNotFound):
	default:
		return nil, fmt.Errorf("system state: %w", err)
	}

	elapsed := time.Since(start)
	if s.recorder != nil {
		s.recorder.ObserveScoring(elapsed)
	}

	s.log.Debug().
		Str("team", req.Team).
		Str("side", string(req.Side)).
		Str("system_state_id", req.SystemStateID).
		Int("team_snaps", teamSnaps).
		Int("pairs", len(result.PairEdges)).
		Float64("cohesion", result.Cohesion).
		Dur("elapsed", elapsed).
		Msg("lineup scored")

	return result, nil
}
