package systemstate

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/wonny/cohesion/internal/contracts"
)

// Store is the persistence the resolution batch needs
type Store interface {
	LoadWindows(ctx context.Context) ([]contracts.CoachWindow, error)
	LoadPlays(ctx context.Context) ([]contracts.PlayForResolution, error)
	SaveReport(ctx context.Context, report *contracts.ResolutionReport) error
}

// Service runs the resolution batch: load windows and plays, resolve, save
type Service struct {
	store Store
	log   zerolog.Logger
}

// NewService 새 서비스 생성
func NewService(store Store, log zerolog.Logger) *Service {
	return &Service{
		store: store,
		log:   log,
	}
}

// Compute resolves every play and persists states and assignments
func (s *Service) Compute(ctx context.Context) (*contracts.ResolutionReport, error) {
	windows, err := s.store.LoadWindows(ctx)
	if err != nil {
		return nil, fmt.Errorf("load coach windows: %w", err)
	}

	plays, err := s.store.LoadPlays(ctx)
	if err != nil {
		return nil, fmt.Errorf("load plays: %w", err)
	}

	report := NewResolver(windows, s.log).ResolvePlays(plays)

	if err := s.store.SaveReport(ctx, report); err != nil {
		return nil, fmt.Errorf("save resolution: %w", err)
	}

	return report, nil
}
