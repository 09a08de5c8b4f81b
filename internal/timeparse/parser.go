// Package timeparse provides layered time parsing for relative date/time
// expressions such as the --since flag.
//
// Layers, tried in order:
//  1. Compact duration (+6h, -1d, +2w)
//  2. Natural language (yesterday, next monday, 3 days ago)
//  3. Date-only (2026-08-01)
//  4. RFC3339 (2026-08-01T14:30:00Z)
package timeparse

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// compactDurationRe matches compact duration patterns: [+-]?(\d+)([hdwmy])
var compactDurationRe = regexp.MustCompile(`^([+-]?)(\d+)([hdwmy])$`)

// ParseCompactDuration parses compact duration syntax relative to now.
//
// Units: h hours, d days, w weeks, m months, y years. The sign defaults
// to positive, so "3m" means three months ahead and "-1d" one day back.
func ParseCompactDuration(s string, now time.Time) (time.Time, error) {
	matches := compactDurationRe.FindStringSubmatch(s)
	if matches == nil {
		return time.Time{}, fmt.Errorf("not a compact duration: %q", s)
	}

	amount, err := strconv.Atoi(matches[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid duration amount: %q", matches[2])
	}
	if matches[1] == "-" {
		amount = -amount
	}

	return applyDuration(now, amount, matches[3]), nil
}

func applyDuration(base time.Time, amount int, unit string) time.Time {
	switch unit {
	case "h":
		return base.Add(time.Duration(amount) * time.Hour)
	case "d":
		return base.AddDate(0, 0, amount)
	case "w":
		return base.AddDate(0, 0, amount*7)
	case "m":
		return base.AddDate(0, amount, 0)
	case "y":
		return base.AddDate(amount, 0, 0)
	default:
		return base
	}
}

// IsCompactDuration reports whether s matches compact duration syntax.
func IsCompactDuration(s string) bool {
	return compactDurationRe.MatchString(s)
}

// ParseRelativeTime resolves a time expression relative to now by trying
// each layer in order. Compact durations win over natural language so
// "+1d" never reaches the NLP rules.
func ParseRelativeTime(s string, now time.Time) (time.Time, error) {
	if t, err := ParseCompactDuration(s, now); err == nil {
		return t, nil
	}
	if t, err := ParseNaturalLanguage(s, now); err == nil {
		return t, nil
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("unrecognized time expression: %q", s)
}

// ParseSince interprets an expression as a point in the past for
// filtering. Bare Go durations ("90m", "1h30m", "-2h") mean that long
// ago regardless of sign; every other shape goes through
// ParseRelativeTime unchanged, so "-1d", "yesterday", and absolute dates
// behave as written.
func ParseSince(s string, now time.Time) (time.Time, error) {
	if d, err := time.ParseDuration(s); err == nil && d != 0 {
		if d < 0 {
			d = -d
		}
		return now.Add(-d), nil
	}
	return ParseRelativeTime(s, now)
}
