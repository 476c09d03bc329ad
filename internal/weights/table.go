package weights

import (
	"fmt"

	"github.com/wonny/cohesion/internal/contracts"
)

// Pair is an ordered role pair
type Pair struct {
	A string
	B string
}

// Table maps ordered role pairs of one side to their weight
type Table map[Pair]float64

// Lookup returns the weight for (a, b), falling back to (b, a)
func (t Table) Lookup(a, b string) (float64, bool) {
	if w, ok := t[Pair{a, b}]; ok {
		return w, true
	}
	w, ok := t[Pair{b, a}]
	return w, ok
}

// TableFor builds the lookup table of one side from weight entries
func TableFor(side contracts.Side, entries []contracts.RolePairWeight) Table {
	t := make(Table)
	for _, e := range entries {
		if e.Side == side {
			t[Pair{e.RoleA, e.RoleB}] = e.Weight
		}
	}
	return t
}

// Validate checks sides, roles, weight bounds and duplicate pairs.
// (a, b) and (b, a) are the same pair and may appear only once.
func Validate(entries []contracts.RolePairWeight) error {
	seen := make(map[contracts.RolePairKey]int, len(entries))

	for i, e := range entries {
		field := fmt.Sprintf("weights[%d]", i)

		if !e.Side.Valid() {
			return &contracts.ValidationError{Field: field, Message: fmt.Sprintf("unknown side %q", e.Side)}
		}
		if e.RoleA == "" || e.RoleB == "" {
			return &contracts.ValidationError{Field: field, Message: "role_a and role_b are required"}
		}
		if e.Weight < 0 || e.Weight > 1 {
			return &contracts.ValidationError{Field: field, Message: fmt.Sprintf("weight %v outside [0, 1]", e.Weight)}
		}

		key := canonicalKey(e)
		if prev, dup := seen[key]; dup {
			return &contracts.ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate pair %s %s-%s (first at weights[%d])", e.Side, e.RoleA, e.RoleB, prev),
			}
		}
		seen[key] = i
	}
	return nil
}

// Expand returns the entries with both orderings stored for every
// pair of distinct roles
func Expand(entries []contracts.RolePairWeight) []contracts.RolePairWeight {
	out := make([]contracts.RolePairWeight, 0, len(entries)*2)
	for _, e := range entries {
		out = append(out, e)
		if e.RoleA != e.RoleB {
			out = append(out, contracts.RolePairWeight{Side: e.Side, RoleA: e.RoleB, RoleB: e.RoleA, Weight: e.Weight})
		}
	}
	return out
}

func canonicalKey(e contracts.RolePairWeight) contracts.RolePairKey {
	a, b := e.RoleA, e.RoleB
	if b < a {
		a, b = b, a
	}
	return contracts.RolePairKey{Side: e.Side, RoleA: a, RoleB: b}
}
