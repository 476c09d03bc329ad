package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/wonny/cohesion/internal/catalog"
	"github.com/wonny/cohesion/internal/contracts"
	"github.com/wonny/cohesion/pkg/logger"
)

// Catalog is the read-side the catalog endpoints query
type Catalog interface {
	Seasons(ctx context.Context) ([]int, error)
	Teams(ctx context.Context, season *int) ([]string, error)
	SystemStates(ctx context.Context, team string, side contracts.Side) ([]catalog.StateListing, error)
	Summary(ctx context.Context, team string, side contracts.Side, stateID string) (*catalog.StateSummary, error)
	Roster(ctx context.Context, team string, side contracts.Side, stateID string) ([]catalog.RosterPlayer, error)
	ActiveCoaches(ctx context.Context, team string, date time.Time) (*catalog.ActiveCoaches, error)
}

// CatalogHandler handles meta, system state, roster and coach endpoints
// ⭐ SSOT: 조회 API 핸들러는 이 구조체에서만
type CatalogHandler struct {
	catalog Catalog
	logger  *logger.Logger
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(c Catalog, log *logger.Logger) *CatalogHandler {
	return &CatalogHandler{
		catalog: c,
		logger:  log,
	}
}

// GetSeasons returns the loaded seasons
// GET /api/meta/seasons
func (h *CatalogHandler) GetSeasons(w http.ResponseWriter, r *http.Request) {
	seasons, err := h.catalog.Seasons(r.Context())
	if err != nil {
		respondServiceError(w, h.logger, err, "retrieve seasons")
		return
	}
	if seasons == nil {
		seasons = []int{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"seasons": seasons})
}

// GetTeams returns the teams of a season (all seasons when omitted)
// GET /api/teams?season=
func (h *CatalogHandler) GetTeams(w http.ResponseWriter, r *http.Request) {
	var season *int
	if raw := r.URL.Query().Get("season"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "season must be an integer")
			return
		}
		season = &n
	}

	teams, err := h.catalog.Teams(r.Context(), season)
	if err != nil {
		respondServiceError(w, h.logger, err, "retrieve teams")
		return
	}
	if teams == nil {
		teams = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"season": season, "teams": teams})
}

// GetSystemStates lists states for a team and side
// GET /api/system_state?team=&side=
func (h *CatalogHandler) GetSystemStates(w http.ResponseWriter, r *http.Request) {
	team, side, err := scopeParams(r)
	if err != nil {
		respondServiceError(w, h.logger, err, "list system states")
		return
	}

	states, err := h.catalog.SystemStates(r.Context(), team, side)
	if err != nil {
		respondServiceError(w, h.logger, err, "list system states")
		return
	}
	respondJSON(w, http.StatusOK, states)
}

// GetSummary describes one state
// GET /api/system_state/summary?team=&side=&system_state_id=
func (h *CatalogHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	team, side, err := scopeParams(r)
	if err != nil {
		respondServiceError(w, h.logger, err, "summarize system state")
		return
	}

	summary, err := h.catalog.Summary(r.Context(), team, side, r.URL.Query().Get("system_state_id"))
	if err != nil {
		respondServiceError(w, h.logger, err, "summarize system state")
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// GetRoster lists players for a team and side
// GET /api/roster?team=&side=[&system_state_id=]
func (h *CatalogHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	team, side, err := scopeParams(r)
	if err != nil {
		respondServiceError(w, h.logger, err, "retrieve roster")
		return
	}

	roster, err := h.catalog.Roster(r.Context(), team, side, r.URL.Query().Get("system_state_id"))
	if err != nil {
		respondServiceError(w, h.logger, err, "retrieve roster")
		return
	}
	respondJSON(w, http.StatusOK, roster)
}

// GetActiveCoaches returns the coaches active on a date (today by default)
// GET /api/coaches/active?team=&date=
func (h *CatalogHandler) GetActiveCoaches(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date")
	if err != nil {
		respondServiceError(w, h.logger, err, "retrieve active coaches")
		return
	}

	coaches, err := h.catalog.ActiveCoaches(r.Context(), r.URL.Query().Get("team"), date)
	if err != nil {
		respondServiceError(w, h.logger, err, "retrieve active coaches")
		return
	}
	respondJSON(w, http.StatusOK, coaches)
}
