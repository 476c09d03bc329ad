package cohesion

import (
	"math"
	"sort"
)

// IUS is one minus the normalized Shannon entropy of a role distribution.
// Zero total snaps give 0, a single role gives 1.
func IUS(roles map[string]int) float64 {
	total := 0
	distinct := 0
	for _, n := range roles {
		if n > 0 {
			total += n
			distinct++
		}
	}
	if total == 0 {
		return 0
	}
	if distinct == 1 {
		return 1
	}

	entropy := 0.0
	for _, n := range roles {
		if n <= 0 {
			continue
		}
		p := float64(n) / float64(total)
		entropy -= p * math.Log(p)
	}

	ius := 1 - entropy/math.Log(float64(distinct))
	return clamp01(ius)
}

// DominantRole returns the role with the most snaps.
// Ties go to the lexicographically smallest role; no roles gives "".
func DominantRole(roles map[string]int) string {
	names := make([]string, 0, len(roles))
	for role := range roles {
		names = append(names, role)
	}
	sort.Strings(names)

	best := ""
	bestSnaps := 0
	for _, role := range names {
		if n := roles[role]; best == "" || n > bestSnaps {
			best, bestSnaps = role, n
		}
	}
	return best
}

// Jaccard is co / (ni + nj - co), or 0 when the denominator is not positive
func Jaccard(co, ni, nj int) float64 {
	denom := ni + nj - co
	if denom <= 0 {
		return 0
	}
	return float64(co) / float64(denom)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// clamp01 absorbs floating-point drift at the interval ends
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
