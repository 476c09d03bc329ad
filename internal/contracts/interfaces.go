package contracts

import (
	"context"
	"time"
)

// LineupScorer scores a lineup within a system state
// ⭐ SSOT: 라인업 응집도 계산 인터페이스
type LineupScorer interface {
	Score(ctx context.Context, req LineupRequest) (*LineupScore, error)
}

// RunEvent describes one pipeline run transition
type RunEvent struct {
	RunID          string    `json:"run_id"`
	Status         string    `json:"status"` // started, succeeded, failed
	Timestamp      time.Time `json:"timestamp"`
	PlaysResolved  int       `json:"plays_resolved"`
	ResolutionGaps int       `json:"resolution_gaps"`
	States         int       `json:"states"`
	SnapRows       int       `json:"snap_rows"`
	RoleRows       int       `json:"role_rows"`
	PairRows       int       `json:"pair_rows"`
	Error          string    `json:"error,omitempty"`
}

// RunNotifier receives pipeline run events
type RunNotifier interface {
	Publish(event RunEvent)
}
