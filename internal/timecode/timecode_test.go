package timecode

import (
	"testing"
	"time"
)

func TestParse(t *testing.T) {
	cases := []struct {
		input string
		want  time.Duration
	}{
		{"0:00:14", 14 * time.Second},
		{"00:01:45", 105 * time.Second},
		{"1:01:01", time.Hour + time.Minute + time.Second},
		{"01:30", 90 * time.Second},
		{"45", 45 * time.Second},
		{"30.5", 30*time.Second + 500*time.Millisecond},
	}
	for _, tc := range cases {
		got, err := Parse(tc.input)
		if err != nil {
			t.Fatalf("Parse(%q) failed: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("Parse(%q) = %v, want %v", tc.input, got, tc.want)
		}
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	for _, input := range []string{"", "1:2:3:4", "abc", "-5", "1:-2"} {
		if _, err := Parse(input); err == nil {
			t.Fatalf("Parse(%q) should fail", input)
		}
	}
}

func TestFormat(t *testing.T) {
	cases := []struct {
		input time.Duration
		want  string
	}{
		{0, "00:00:00.00"},
		{90 * time.Second, "00:01:30.00"},
		{time.Hour + time.Minute + time.Second, "01:01:01.00"},
		{30*time.Second + 530*time.Millisecond, "00:00:30.53"},
	}
	for _, tc := range cases {
		if got := Format(tc.input); got != tc.want {
			t.Fatalf("Format(%v) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestParseFormatRoundTrip(t *testing.T) {
	const input = "01:23:45.50"
	parsed, err := Parse(input)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if got := Format(parsed); got != input {
		t.Fatalf("round trip mismatch: %q != %q", got, input)
	}
}
