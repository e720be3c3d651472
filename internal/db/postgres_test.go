package db

import "testing"

func TestOpen_InvalidDSN(t *testing.T) {
	testCases := []struct {
		name string
		dsn  string
	}{
		{"empty", ""},
		{"invalid format", "invalid-dsn"},
		{"missing driver", "://localhost/test"},
		{"malformed", "postgres://"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			pool, err := Open(tc.dsn)
			if err == nil {
				if pool != nil {
					pool.Close()
				}
				t.Errorf("Open(%q) should return an error", tc.dsn)
			}
			if pool != nil {
				t.Error("Open should return a nil pool on error")
			}
		})
	}
}
