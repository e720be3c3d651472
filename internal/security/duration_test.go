package security

import (
	"testing"
	"time"
)

func TestParseTTL_Valid(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
	}{
		{"30s", 30 * time.Second},
		{"1m", time.Minute},
		{"15m", 15 * time.Minute},
		{"12h", 12 * time.Hour},
		{"7d", 7 * 24 * time.Hour},
		{"365d", 365 * 24 * time.Hour},
	}
	for _, c := range cases {
		got, err := ParseTTL(c.in)
		if err != nil {
			t.Errorf("ParseTTL(%q): %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseTTL(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestParseTTL_Invalid(t *testing.T) {
	cases := []string{"", "m", "10", "10w", "-5m", "1h30m", "1.5h", "0s", "m10", " 5m"}
	for _, c := range cases {
		if _, err := ParseTTL(c); err != ErrInvalidDurationFormat {
			t.Errorf("ParseTTL(%q): want ErrInvalidDurationFormat, got %v", c, err)
		}
	}
}
