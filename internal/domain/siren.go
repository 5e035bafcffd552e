package domain

import "strings"

const (
	MinDepth     = 1
	MaxDepth     = 6
	DefaultDepth = 3
)

// ValidateSIREN returns the canonical 9-digit form of raw. Spaces are dropped
// so "552 100 554" is accepted; no checksum is applied.
func ValidateSIREN(raw string) (string, error) {
	s := strings.ReplaceAll(strings.TrimSpace(raw), " ", "")
	if len(s) != 9 {
		return "", ErrInvalidSIREN
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", ErrInvalidSIREN
		}
	}
	return s, nil
}

// NormalizeDepth applies the default when d is nil and enforces bounds.
func NormalizeDepth(d *int) (int, error) {
	if d == nil {
		return DefaultDepth, nil
	}
	if *d < MinDepth || *d > MaxDepth {
		return 0, ErrInvalidDepth
	}
	return *d, nil
}
