package service

import (
	"fmt"
	"strings"
	"time"
)

// NormalizeEmail lowercases and trims an email candidate. Empty input stays empty.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// NormalizeEmails normalizes a candidate list, dropping blanks and duplicates.
func NormalizeEmails(raw ...string) []string {
	seen := make(map[string]struct{}, len(raw))
	out := make([]string, 0, len(raw))
	for _, r := range raw {
		e := NormalizeEmail(r)
		if e == "" {
			continue
		}
		if _, ok := seen[e]; ok {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
	"01/02/2006 15:04",
	"01/02/2006",
}

// ParseDate accepts the datetime shapes seen across export files, ISO-8601 first.
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized date %q", raw)
}

// SplitName breaks a display name into first/last on the final space.
func SplitName(full string) (first, last string) {
	full = strings.TrimSpace(full)
	if full == "" {
		return "", ""
	}
	idx := strings.LastIndex(full, " ")
	if idx < 0 {
		return full, ""
	}
	return strings.TrimSpace(full[:idx]), strings.TrimSpace(full[idx+1:])
}

// AcademicYear labels the school year containing t, e.g. "2025-2026" for any
// date from startMonth 2025 through the month before startMonth 2026.
func AcademicYear(t time.Time, startMonth int) string {
	if startMonth < 1 || startMonth > 12 {
		startMonth = 7
	}
	year := t.Year()
	if int(t.Month()) < startMonth {
		year--
	}
	return fmt.Sprintf("%d-%d", year, year+1)
}

func optional(value string) *string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

func derefString(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
