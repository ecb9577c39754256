package main

import (
	"strings"
	"testing"
)

func TestSuggest(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"specis", "species"},
		{"mvoes", "moves"},
		{"item", "items"},
		{"for", "forms"},
		{"learnset", "learnsets"},
		{"pokedex", ""},
		{"x", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := suggest(tt.input, publishKinds); got != tt.want {
				t.Errorf("suggest(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestCheckKind(t *testing.T) {
	if err := checkKind("all", buildTargets); err != nil {
		t.Errorf("checkKind(all) = %v", err)
	}
	err := checkKind("spceies", buildTargets)
	if err == nil || !strings.Contains(err.Error(), `did you mean "species"`) {
		t.Errorf("checkKind(spceies) = %v, want suggestion", err)
	}
	err = checkKind("learnsets", buildTargets)
	if err == nil || strings.Contains(err.Error(), "did you mean") {
		t.Errorf("checkKind(learnsets) = %v, want plain rejection", err)
	}
}
