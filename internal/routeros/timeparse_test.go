package routeros

import (
	"testing"
	"time"
)

func TestParseDuration(t *testing.T) {
	cases := map[string]time.Duration{
		"5s":         5 * time.Second,
		"2m10s":      2*time.Minute + 10*time.Second,
		"1h2m3s":     time.Hour + 2*time.Minute + 3*time.Second,
		"1d":         24 * time.Hour,
		"1w2d":       9 * 24 * time.Hour,
		"00:01:05":   time.Minute + 5*time.Second,
		"10":         10 * time.Second,
	}
	for in, expected := range cases {
		got, err := ParseDuration(in)
		if err != nil {
			t.Fatalf("unexpected parse error for %s: %v", in, err)
		}
		if got != expected {
			t.Fatalf("duration mismatch for %s: expected %v got %v", in, expected, got)
		}
	}
}

func TestParseDurationInvalid(t *testing.T) {
	for _, in := range []string{"", "N/A", "x5s", "1:02"} {
		if _, err := ParseDuration(in); err == nil {
			t.Fatalf("expected error for %q", in)
		}
	}
	if got := parseDurationOrZero("N/A"); got != 0 {
		t.Fatalf("expected zero for N/A, got %v", got)
	}
}
