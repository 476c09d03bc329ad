package systemstate

import (
	"crypto/sha1"
	"encoding/hex"
	"strings"
	"time"

	"github.com/wonny/cohesion/internal/contracts"
)

// StateID derives the deterministic system-state identifier.
// Nil dates and empty game ids contribute empty fields.
// ⭐ SSOT: 시스템 상태 ID 해시 (모든 집계 테이블의 조인 키)
func StateID(team string, side contracts.Side, coachID string, start, end *time.Time, startGameID, endGameID string) string {
	payload := strings.Join([]string{
		team,
		string(side),
		coachID,
		isoDate(start),
		isoDate(end),
		startGameID,
		endGameID,
	}, "|")

	sum := sha1.Sum([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// FromWindow builds the system state a winning window produces for a team and side
func FromWindow(team string, side contracts.Side, w contracts.CoachWindow) contracts.SystemState {
	start := contracts.DateOnly(w.StartDate)
	var end *time.Time
	if w.EndDate != nil {
		e := contracts.DateOnly(*w.EndDate)
		end = &e
	}

	return contracts.SystemState{
		ID:          StateID(team, side, w.CoachID, &start, end, w.StartGameID, w.EndGameID),
		Team:        team,
		Side:        side,
		CoachID:     w.CoachID,
		CoachName:   w.CoachName,
		Role:        w.Role,
		WindowStart: &start,
		WindowEnd:   end,
		StartGameID: w.StartGameID,
		EndGameID:   w.EndGameID,
	}
}

func isoDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(contracts.DateLayout)
}
