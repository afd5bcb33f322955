package language

import "testing"

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"EN", "en"},
		{"eng", "en"},
		{"fra", "fr"},
		{"fre", "fr"},
		{"ger", "de"},
		{"chi", "zh"},
		{"english", "en"},
		{" deu ", "de"},
		{"xx", "xx"},
		{"xyz", ""},
		{"", ""},
	}
	for _, tc := range tests {
		if got := ToISO2(tc.input); got != tc.expected {
			t.Errorf("ToISO2(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestToISO3(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "eng"},
		{"fre", "fra"},
		{"de", "deu"},
		{"japanese", "jpn"},
		{"qqq", "qqq"},
		{"q", "und"},
		{"", "und"},
	}
	for _, tc := range tests {
		if got := ToISO3(tc.input); got != tc.expected {
			t.Errorf("ToISO3(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		a, b  string
		match bool
	}{
		{"en", "eng", true},
		{"eng", "en", true},
		{"fre", "fra", true},
		{"French", "fra", true},
		{"en", "spa", false},
		{"xx", "xxq", true}, // prefix rule for unrecognized codes
		{"", "eng", false},
		{"eng", "", false},
	}
	for _, tc := range tests {
		if got := Matches(tc.a, tc.b); got != tc.match {
			t.Errorf("Matches(%q, %q) = %v, want %v", tc.a, tc.b, got, tc.match)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "English"},
		{"fra", "French"},
		{"fre", "French"},
		{"deu", "German"},
		{"", "Unknown"},
		{"klingon", "Klingon"},
		{"XYZ", "Xyz"},
	}
	for _, tc := range tests {
		if got := DisplayName(tc.input); got != tc.expected {
			t.Errorf("DisplayName(%q) = %q, want %q", tc.input, got, tc.expected)
		}
	}
}

func TestExtractFromTags(t *testing.T) {
	if got := ExtractFromTags(map[string]string{"LANGUAGE": " ENG "}); got != "eng" {
		t.Errorf("ExtractFromTags = %q, want eng", got)
	}
	if got := ExtractFromTags(map[string]string{"title": "Director Commentary"}); got != "" {
		t.Errorf("ExtractFromTags = %q, want empty", got)
	}
	if got := ExtractFromTags(nil); got != "" {
		t.Errorf("ExtractFromTags(nil) = %q, want empty", got)
	}
}
