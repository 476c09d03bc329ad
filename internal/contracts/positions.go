package contracts

import "strings"

var offensePositionGroups = map[string]string{
	"QB": "QB",
	"RB": "RB", "FB": "RB", "HB": "RB", "TB": "RB",
	"WR": "WR",
	"TE": "TE",
	"OL": "OL", "LT": "OL", "RT": "OL", "LG": "OL", "RG": "OL", "C": "OL", "G": "OL", "OT": "OL",
}

var defensePositionGroups = map[string]string{
	"DL": "DL", "DT": "DL", "NT": "DL", "DE": "DL", "EDGE": "DL",
	"LB": "LB", "ILB": "LB", "OLB": "LB", "MLB": "LB",
	"CB": "CB", "DB": "CB",
	"S": "S", "SS": "S", "FS": "S",
}

// PositionGroup maps a raw position to its coarse role for a side.
// Unmapped positions pass through uppercased; an empty position yields "".
// ⭐ SSOT: 포지션 → 역할 그룹 매핑
func PositionGroup(position string, side Side) string {
	pos := strings.ToUpper(strings.TrimSpace(position))
	if pos == "" {
		return ""
	}

	groups := defensePositionGroups
	if side == SideOffense {
		groups = offensePositionGroups
	}
	if group, ok := groups[pos]; ok {
		return group
	}
	return pos
}

// AnyPositionGroup maps a raw position without knowing the side.
// Used by the roster when a player has no role counts.
func AnyPositionGroup(position string) string {
	pos := strings.ToUpper(strings.TrimSpace(position))
	if pos == "" {
		return ""
	}
	if group, ok := offensePositionGroups[pos]; ok {
		return group
	}
	if group, ok := defensePositionGroups[pos]; ok {
		return group
	}
	return pos
}
