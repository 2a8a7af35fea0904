package suggest

import (
	"reflect"
	"testing"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"abc", "", 3},
		{"", "abc", 3},
		{"kitten", "sitting", 3},
		{"zoom", "zoom", 0},
		{"maskBuidlings", "maskBuildings", 2},
	}
	for _, tt := range tests {
		if got := levenshtein(tt.a, tt.b); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestClosest(t *testing.T) {
	masks := []string{"maskLandscape", "maskVegetation", "maskBuildings", "maskInfrastrukture", "maskIntegratedMesh"}

	tests := []struct {
		name    string
		unknown string
		valid   []string
		first   string
	}{
		{"prefix", "maskBuilding", masks, "maskBuildings"},
		{"transposed letters", "maskBuidlings", masks, "maskBuildings"},
		{"english spelling", "maskInfrastructure", masks, "maskInfrastrukture"},
		{"config key", "map.zom", []string{"map.zoom", "map.wkid", "timeout"}, "map.zoom"},
		{"leading dashes", "--timeot", []string{"timeout", "token"}, "timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Closest(tt.unknown, tt.valid)
			if len(got) == 0 || got[0] != tt.first {
				t.Errorf("Closest(%q) = %v, want %q first", tt.unknown, got, tt.first)
			}
			if len(got) > maxSuggestions {
				t.Errorf("Closest returned %d names", len(got))
			}
		})
	}

	if got := Closest("zzzzzzzzzzzzzz", []string{"ab"}); got != nil {
		t.Errorf("Closest(far) = %v, want nil", got)
	}
}

func TestHint(t *testing.T) {
	tests := []struct {
		in   []string
		want string
	}{
		{nil, ""},
		{[]string{"a"}, " (did you mean a?)"},
		{[]string{"a", "b"}, " (did you mean a or b?)"},
		{[]string{"a", "b", "c"}, " (did you mean a, b or c?)"},
	}
	for _, tt := range tests {
		if got := Hint(tt.in); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Hint(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
