package catalog

import (
	"fmt"
	"sort"
	"strconv"
)

// Failure reasons shared by every stage.
const (
	ReasonPokemonNotFound     = "pokeapi_pokemon_404"
	ReasonSpeciesNotFound     = "pokeapi_species_404"
	ReasonBaseSpeciesMissing  = "base_species_not_found_in_species_json"
	ReasonVariantIncomplete   = "variant_payload_incomplete"
	ReasonPayloadIncomplete   = "payload_incomplete"
	ReasonUpstreamUnavailable = "upstream_unavailable"
	ReasonUpstreamRejected    = "upstream_rejected"
	ReasonNetwork             = "network_error"
	ReasonMalformedPayload    = "malformed_payload"
	ReasonTypeMatchupsFailed  = "type_matchups_failed"
	ReasonMachineFetchFailed  = "machine_fetch_failed"
	ReasonPanic               = "worker_panic"
	ReasonCancelled           = "cancelled"
	ReasonListingFailed       = "listing_failed"
)

// Failure is one entity that could not be normalized, with enough context
// to re-run just that entity.
type Failure struct {
	ID         string `json:"id"`
	Reason     string `json:"reason"`
	URL        string `json:"url,omitempty"`
	UpstreamID *int   `json:"upstreamId,omitempty"`
	BaseName   string `json:"baseName,omitempty"`
	Detail     string `json:"error,omitempty"`
}

// Error lets a worker return a Failure directly.
func (f *Failure) Error() string {
	if f.Detail != "" {
		return fmt.Sprintf("%s: %s: %s", f.ID, f.Reason, f.Detail)
	}
	return fmt.Sprintf("%s: %s", f.ID, f.Reason)
}

// WriteReport writes the failure report for kind, sorted so that reruns over
// the same upstream data produce the same bytes. The report is written even
// when empty.
func WriteReport(dir, kind string, failures []Failure) (string, error) {
	out := make([]Failure, len(failures))
	copy(out, failures)
	SortFailures(out)

	path := ReportPath(dir, kind)
	if err := writeJSON(path, out); err != nil {
		return "", fmt.Errorf("write %s report: %w", kind, err)
	}
	return path, nil
}

// SortFailures orders failures by id (numerically when both ids are
// numbers), then by reason.
func SortFailures(fs []Failure) {
	sort.SliceStable(fs, func(i, j int) bool {
		a, b := fs[i], fs[j]
		if a.ID != b.ID {
			an, aErr := strconv.Atoi(a.ID)
			bn, bErr := strconv.Atoi(b.ID)
			if aErr == nil && bErr == nil {
				return an < bn
			}
			return a.ID < b.ID
		}
		return a.Reason < b.Reason
	})
}

// NotFoundReason is the reason code for a missing upstream resource,
// e.g. "pokeapi_move_404".
func NotFoundReason(resource string) string {
	return "pokeapi_" + resource + "_404"
}
