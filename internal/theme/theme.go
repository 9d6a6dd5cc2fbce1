// Package theme holds the light/dark display preference.
package theme

import "strings"

type Theme string

const (
	Light Theme = "light"
	Dark  Theme = "dark"
)

// Parse accepts "light" or "dark" in any case.
func Parse(s string) (Theme, bool) {
	switch Theme(strings.ToLower(strings.TrimSpace(s))) {
	case Light:
		return Light, true
	case Dark:
		return Dark, true
	}
	return "", false
}

func (t Theme) Toggle() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Resolve picks the stored preference, then the system hint, then fallback.
func Resolve(stored, systemHint string, fallback Theme) Theme {
	if t, ok := Parse(stored); ok {
		return t
	}
	if t, ok := Parse(systemHint); ok {
		return t
	}
	if fallback == Dark {
		return Dark
	}
	return Light
}
