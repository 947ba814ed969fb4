// Package util provides argument helpers for the host text protocol.
package util

import (
	"fmt"
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

// CleanArg strips surrounding whitespace and host quoting from one argument.
func CleanArg(s string) string {
	return FixEscapeQuotes(TrimQuotes(strings.TrimSpace(s)))
}

// ParseFloat parses a quoted or bare decimal argument. name labels the error.
func ParseFloat(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(CleanArg(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return v, nil
}

// ParseInt32 parses a quoted or bare integer argument. Hosts often send whole
// numbers as floats, so "2.0" is accepted while "2.5" is not.
func ParseInt32(name, s string) (int32, error) {
	clean := CleanArg(s)
	if v, err := strconv.ParseInt(clean, 10, 32); err == nil {
		return int32(v), nil
	}
	f, err := strconv.ParseFloat(clean, 64)
	if err != nil || f != float64(int32(f)) {
		return 0, fmt.Errorf("invalid %s %q: not an integer", name, s)
	}
	return int32(f), nil
}

// FormatFloat renders v in the shortest form that parses back exactly.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// SplitFields splits a command line on whitespace. Double-quoted fields may
// contain spaces and keep their quotes, so CleanArg handles them like host
// arguments.
func SplitFields(line string) ([]string, error) {
	var (
		fields  []string
		current strings.Builder
		quoted  bool
		inField bool
	)

	for _, r := range line {
		switch {
		case r == '"':
			quoted = !quoted
			inField = true
			current.WriteRune(r)
		case !quoted && (r == ' ' || r == '\t'):
			if inField {
				fields = append(fields, current.String())
				current.Reset()
				inField = false
			}
		default:
			inField = true
			current.WriteRune(r)
		}
	}

	if quoted {
		return nil, fmt.Errorf("unterminated quote in %q", line)
	}
	if inField {
		fields = append(fields, current.String())
	}
	return fields, nil
}
