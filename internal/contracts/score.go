package contracts

import "fmt"

// LineupSize is the number of players a scored lineup must contain
const LineupSize = 11

// Composite weights
// ⭐ SSOT: 응집도 합성 가중치 (호출 시 변경 불가)
const (
	WeightLSU = 0.35
	WeightLIU = 0.20
	WeightLIC = 0.45
)

// Composite combines the three sub-scores
func Composite(lsu, liu, lic float64) float64 {
	return WeightLSU*lsu + WeightLIU*liu + WeightLIC*lic
}

// LineupRequest is the scorer input
type LineupRequest struct {
	Team          string   `json:"team"`
	Side          Side     `json:"side"`
	SystemStateID string   `json:"system_state_id"`
	Lineup        []string `json:"lineup"`
}

// Validate checks the request before any aggregate lookup
func (r *LineupRequest) Validate() error {
	if r.Team == "" {
		return &ValidationError{Field: "team", Message: "team is required"}
	}
	if !r.Side.Valid() {
		return &ValidationError{Field: "side", Message: fmt.Sprintf("unknown side %q (want offense or defense)", r.Side)}
	}
	if r.SystemStateID == "" {
		return &ValidationError{Field: "system_state_id", Message: "system_state_id is required"}
	}
	if len(r.Lineup) != LineupSize {
		return &ValidationError{Field: "lineup", Message: fmt.Sprintf("lineup must contain exactly %d players, got %d", LineupSize, len(r.Lineup))}
	}

	seen := make(map[string]struct{}, len(r.Lineup))
	for _, id := range r.Lineup {
		if id == "" {
			return &ValidationError{Field: "lineup", Message: "lineup contains an empty player id"}
		}
		if _, dup := seen[id]; dup {
			return &ValidationError{Field: "lineup", Message: fmt.Sprintf("lineup contains duplicate player %s", id)}
		}
		seen[id] = struct{}{}
	}
	return nil
}

// PlayerScore is the per-player breakdown of a scored lineup
type PlayerScore struct {
	GSISID       string         `json:"gsis_id"`
	SnapsInState int            `json:"snaps_in_state"`
	IUS          float64        `json:"ius"`
	Roles        map[string]int `json:"roles"`
}

// PairEdge is one weighted pair that contributed to LIC
type PairEdge struct {
	A       string  `json:"a"`
	B       string  `json:"b"`
	Weight  float64 `json:"weight"`
	Jaccard float64 `json:"jaccard"`
	CoSnaps int     `json:"co_snaps"`
	NI      int     `json:"n_i"`
	NJ      int     `json:"n_j"`
}

// LineupScore is the scorer output
type LineupScore struct {
	LSU             float64       `json:"LSU"`
	LIU             float64       `json:"LIU"`
	LIC             float64       `json:"LIC"`
	Cohesion        float64       `json:"cohesion"`
	Warnings        []string      `json:"warnings"`
	PerPlayer       []PlayerScore `json:"per_player"`
	PairEdges       []PairEdge    `json:"pair_edges"`
	PlaycallerLabel *string       `json:"playcaller_label"`
}

// RolePairKey identifies one ordered role pair for a side
type RolePairKey struct {
	Side  Side
	RoleA string
	RoleB string
}

// RolePairWeight is one entry of the role-pair weight table
type RolePairWeight struct {
	Side   Side    `json:"side" yaml:"side" toml:"side"`
	RoleA  string  `json:"role_a" yaml:"role_a" toml:"role_a"`
	RoleB  string  `json:"role_b" yaml:"role_b" toml:"role_b"`
	Weight float64 `json:"weight" yaml:"weight" toml:"weight"`
}
