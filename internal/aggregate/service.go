package aggregate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wonny/cohesion/internal/contracts"
)

// Store is the persistence the aggregation batch needs
type Store interface {
	LoadParticipation(ctx context.Context) ([]contracts.ParticipationRow, error)
	ReplaceAll(ctx context.Context, result *Result) error
}

// Service runs the full-recompute aggregation batch
type Service struct {
	store  Store
	engine *Engine
}

// NewService 새 서비스 생성
func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{
		store:  store,
		engine: NewEngine(log),
	}
}

// Run recomputes and atomically replaces every aggregate table
func (s *Service) Run(ctx context.Context) (*Result, error) {
	rows, err := s.store.LoadParticipation(ctx)
	if err != nil {
		return nil, fmt.Errorf("load participation: %w", err)
	}

	result := s.engine.Compute(rows)

	if err := s.store.ReplaceAll(ctx, result); err != nil {
		return nil, fmt.Errorf("replace aggregates: %w", err)
	}

	return result, nil
}
