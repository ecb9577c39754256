package main

import (
	"fmt"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/elodex/catalog/internal/config"
)

var (
	buildTargets = []string{config.KindSpecies, config.KindForms, config.KindMoves, config.KindItems, "all"}
	publishKinds = []string{config.KindSpecies, config.KindLearnsets, config.KindForms, config.KindMoves, config.KindItems}
)

// checkKind returns an error naming the closest valid choice when input is
// not one of valid.
func checkKind(input string, valid []string) error {
	for _, v := range valid {
		if input == v {
			return nil
		}
	}
	if s := suggest(input, valid); s != "" {
		return fmt.Errorf("unknown kind %q, did you mean %q?", input, s)
	}
	return fmt.Errorf("unknown kind %q (valid: %s)", input, strings.Join(valid, ", "))
}

// suggest returns the closest candidate within the edit-distance limit for
// its length, or "".
func suggest(input string, candidates []string) string {
	best, bestDist := "", -1
	for _, cand := range candidates {
		if strings.HasPrefix(cand, input) && len(input) >= 2 {
			return cand
		}
		dist := levenshtein.ComputeDistance(input, cand)
		if dist > distanceLimit(len(cand)) {
			continue
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = cand, dist
		}
	}
	return best
}

func distanceLimit(length int) int {
	switch {
	case length <= 4:
		return 1
	case length <= 8:
		return 2
	default:
		return 3
	}
}
