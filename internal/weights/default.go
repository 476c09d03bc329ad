package weights

import "github.com/wonny/cohesion/internal/contracts"

// Default returns the curated weight table, one ordering per pair
// ⭐ SSOT: 기본 역할쌍 가중치
func Default() []contracts.RolePairWeight {
	off := contracts.SideOffense
	def := contracts.SideDefense

	return []contracts.RolePairWeight{
		// offense
		{Side: off, RoleA: "OL", RoleB: "OL", Weight: 1.0},
		{Side: off, RoleA: "QB", RoleB: "OL", Weight: 0.8},
		{Side: off, RoleA: "QB", RoleB: "WR", Weight: 0.85},
		{Side: off, RoleA: "QB", RoleB: "TE", Weight: 0.8},
		{Side: off, RoleA: "QB", RoleB: "RB", Weight: 0.7},
		{Side: off, RoleA: "WR", RoleB: "WR", Weight: 0.4},
		{Side: off, RoleA: "WR", RoleB: "TE", Weight: 0.5},
		{Side: off, RoleA: "RB", RoleB: "OL", Weight: 0.7},
		{Side: off, RoleA: "RB", RoleB: "TE", Weight: 0.55},
		{Side: off, RoleA: "RB", RoleB: "WR", Weight: 0.4},
		{Side: off, RoleA: "TE", RoleB: "OL", Weight: 0.7},

		// defense
		{Side: def, RoleA: "DL", RoleB: "DL", Weight: 1.0},
		{Side: def, RoleA: "DL", RoleB: "LB", Weight: 0.8},
		{Side: def, RoleA: "LB", RoleB: "LB", Weight: 0.85},
		{Side: def, RoleA: "LB", RoleB: "S", Weight: 0.7},
		{Side: def, RoleA: "CB", RoleB: "S", Weight: 0.8},
		{Side: def, RoleA: "CB", RoleB: "CB", Weight: 0.6},
		{Side: def, RoleA: "S", RoleB: "S", Weight: 0.9},
		{Side: def, RoleA: "DL", RoleB: "CB", Weight: 0.3},
		{Side: def, RoleA: "DL", RoleB: "S", Weight: 0.4},
		{Side: def, RoleA: "LB", RoleB: "CB", Weight: 0.6},
	}
}
