// Package tariff answers whether an HTS code exists in a reference registry.
//
// Codes are compared on their digits only. A registry entry matches when it
// equals the full code or one of its 8 or 6 digit headings, so a registry of
// subheadings still recognizes fully qualified statistical codes.
package tariff

import (
	"context"
	"errors"
	"strings"
)

// ErrUnavailable reports that a backend could not answer
var ErrUnavailable = errors.New("tariff registry unavailable")

// Registry looks up tariff codes
type Registry interface {
	Contains(ctx context.Context, code string) (bool, error)
}

// Normalize strips everything but digits
func Normalize(code string) string {
	var b strings.Builder
	for _, r := range code {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// candidates returns the normalized code followed by its shorter headings,
// longest first. Codes under 6 digits have no candidates.
func candidates(code string) []string {
	digits := Normalize(code)
	if len(digits) < 6 {
		return nil
	}
	out := []string{digits}
	for _, n := range []int{10, 8, 6} {
		if n < len(digits) {
			out = append(out, digits[:n])
		}
	}
	return out
}
