package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/wonny/cohesion/internal/contracts"
	"github.com/wonny/cohesion/pkg/logger"
)

// maxScoreBody caps the lineup request body
const maxScoreBody = 64 << 10

// ScoreHandler handles lineup scoring
type ScoreHandler struct {
	scorer contracts.LineupScorer
	logger *logger.Logger
}

// NewScoreHandler creates a new score handler
func NewScoreHandler(scorer contracts.LineupScorer, log *logger.Logger) *ScoreHandler {
	return &ScoreHandler{
		scorer: scorer,
		logger: log,
	}
}

// ScoreLineup scores an 11-player lineup within a system state
// POST /api/score/lineup
func (h *ScoreHandler) ScoreLineup(w http.ResponseWriter, r *http.Request) {
	var req contracts.LineupRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxScoreBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	score, err := h.scorer.Score(r.Context(), req)
	if err != nil {
		respondServiceError(w, h.logger, err, "score lineup")
		return
	}
	respondJSON(w, http.StatusOK, score)
}
