// Package util provides common string helpers used across the simulator.
package util

import (
	"strconv"
	"strings"
)

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// ParseStringArray parses a stringified array of quoted strings as sent by
// the host over the bridge. Input format: ["a","b","c"]. A malformed input
// yields a single-element slice holding the raw input so callers can log it.
func ParseStringArray(s string) []string {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return []string{s}
	}

	inner := s[1 : len(s)-1]
	if strings.TrimSpace(inner) == "" {
		return nil
	}

	parts := strings.Split(inner, `","`)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		// Trim at most one delimiter quote per side; inner quotes are
		// escaped as "" and must survive until FixEscapeQuotes runs.
		p = strings.TrimPrefix(p, `"`)
		p = strings.TrimSuffix(p, `"`)
		out = append(out, FixEscapeQuotes(p))
	}
	return out
}

// ParseFloat parses a host-supplied float, tolerating surrounding quotes.
func ParseFloat(s string) (float64, error) {
	return strconv.ParseFloat(TrimQuotes(strings.TrimSpace(s)), 64)
}

// ParseInt parses a host-supplied integer, tolerating surrounding quotes
// and a fractional tail (hosts send whole numbers as "3.0000").
func ParseInt(s string) (int, error) {
	f, err := ParseFloat(s)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}

// ParseBool parses the host's boolean encodings: true/false and 1/0.
func ParseBool(s string) bool {
	switch strings.ToLower(TrimQuotes(strings.TrimSpace(s))) {
	case "true", "1":
		return true
	}
	return false
}

// FormatWeaponText builds a display string for a weapon and its loaded
// magazine. Format: "Weapon [Magazine]" with empty parts omitted.
func FormatWeaponText(weapon, magazine string) string {
	var b strings.Builder
	b.WriteString(weapon)
	if magazine != "" {
		b.WriteString(" [")
		b.WriteString(magazine)
		b.WriteByte(']')
	}
	return b.String()
}
