package provider

import (
	"math"
	"strconv"
	"strings"
)

// DecimetersToMeters converts an upstream height, rounded to one decimal.
func DecimetersToMeters(dm int) float64 {
	return round1(float64(dm) / 10)
}

// HectogramsToKg converts an upstream weight, rounded to one decimal.
func HectogramsToKg(hg int) float64 {
	return round1(float64(hg) / 10)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

var romanGenerations = map[string]int{
	"i": 1, "ii": 2, "iii": 3, "iv": 4, "v": 5,
	"vi": 6, "vii": 7, "viii": 8, "ix": 9,
}

// ParseGeneration maps a "generation-<roman>" slug to 1..9.
// Anything else yields nil.
func ParseGeneration(slug string) *int {
	roman, ok := strings.CutPrefix(strings.ToLower(slug), "generation-")
	if !ok {
		return nil
	}
	n, ok := romanGenerations[roman]
	if !ok {
		return nil
	}
	return &n
}

// StepsToHatch derives the hatch step count; nil when the counter is unknown.
func StepsToHatch(hatchCounter *int) *int {
	if hatchCounter == nil {
		return nil
	}
	steps := StepsPerCycle * (*hatchCounter + 1)
	return &steps
}

// Humanize turns a slug like "charizard-mega-x" into "Charizard Mega X".
func Humanize(slug string) string {
	parts := strings.Split(slug, "-")
	for i, p := range parts {
		parts[i] = Capitalize(p)
	}
	return strings.Join(parts, " ")
}

// Capitalize upper-cases the first byte of an ASCII slug.
func Capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// IDFromURL extracts the trailing numeric path segment of a resource URL,
// e.g. ".../evolution-chain/67/" -> 67.
func IDFromURL(u string) (int, bool) {
	trimmed := strings.TrimRight(u, "/")
	idx := strings.LastIndex(trimmed, "/")
	n, err := strconv.Atoi(trimmed[idx+1:])
	if err != nil {
		return 0, false
	}
	return n, true
}
