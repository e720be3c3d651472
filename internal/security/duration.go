package security

import (
	"errors"
	"time"
)

// ErrInvalidDurationFormat is returned when a TTL string does not match the
// Ns/Nm/Nh/Nd grammar.
var ErrInvalidDurationFormat = errors.New("invalid duration format")

// ParseTTL parses a token lifetime written as "<N><unit>" where N is a
// positive integer and unit is s, m, h, or d. This is the only accepted
// grammar; Go's native duration forms (e.g. "1h30m") are rejected.
func ParseTTL(s string) (time.Duration, error) {
	if len(s) < 2 {
		return 0, ErrInvalidDurationFormat
	}
	unit := s[len(s)-1]
	digits := s[:len(s)-1]
	var n int64
	for i := 0; i < len(digits); i++ {
		c := digits[i]
		if c < '0' || c > '9' {
			return 0, ErrInvalidDurationFormat
		}
		n = n*10 + int64(c-'0')
	}
	if n <= 0 {
		return 0, ErrInvalidDurationFormat
	}
	switch unit {
	case 's':
		return time.Duration(n) * time.Second, nil
	case 'm':
		return time.Duration(n) * time.Minute, nil
	case 'h':
		return time.Duration(n) * time.Hour, nil
	case 'd':
		return time.Duration(n) * 24 * time.Hour, nil
	default:
		return 0, ErrInvalidDurationFormat
	}
}
