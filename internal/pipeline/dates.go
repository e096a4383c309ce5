package pipeline

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"horse.fit/bulletin/internal/globaltime"
)

// Admission window around "today" in the reference zone, inclusive at
// day granularity. The future day absorbs feeds that stamp articles
// ahead of their own midnight.
const (
	windowPastDays   = 6
	windowFutureDays = 1
)

const (
	dayLabelLayout = "Monday, January 2, 2006"
	clockLayout    = "3:04PM"
)

var clock24Pattern = regexp.MustCompile(`24:(\d{2}):(\d{2})`)

// resolvePublishDate parses a raw feed date. The canonical day is the
// civil date in the zone the string was written in, materialized as
// midnight in the reference zone; the display time is the same instant
// converted to the reference zone.
func resolvePublishDate(raw string, zones map[string]string) (day time.Time, display time.Time, err error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, time.Time{}, fmt.Errorf("empty date")
	}

	repaired, rollDay := repairClock(trimmed)
	cleaned, loc := splitZoneAbbreviation(repaired, zones)
	if loc == nil {
		loc = globaltime.Reference()
	}

	parsed, err := dateparse.ParseIn(cleaned, loc)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	if rollDay {
		parsed = parsed.AddDate(0, 0, 1)
	}

	year, month, dayOfMonth := parsed.Date()
	day = time.Date(year, month, dayOfMonth, 0, 0, 0, 0, globaltime.Reference())
	return day, parsed.In(globaltime.Reference()), nil
}

// repairClock rewrites hour-24 timestamps to hour zero and reports that
// the date must roll forward one day.
func repairClock(raw string) (string, bool) {
	if !clock24Pattern.MatchString(raw) {
		return raw, false
	}
	return clock24Pattern.ReplaceAllString(raw, "00:$1:$2"), true
}

// splitZoneAbbreviation removes the first recognized timezone
// abbreviation token and returns the location it names. Feed dates
// carry abbreviations the standard parsers treat as zero-offset noise,
// so the token is resolved against the embedded table instead.
func splitZoneAbbreviation(s string, zones map[string]string) (string, *time.Location) {
	fields := strings.Fields(s)
	for i, field := range fields {
		token := strings.Trim(field, "(),")
		name, ok := zones[strings.ToUpper(token)]
		if !ok {
			continue
		}
		loc, err := time.LoadLocation(name)
		if err != nil {
			return s, nil
		}
		rest := make([]string, 0, len(fields)-1)
		rest = append(rest, fields[:i]...)
		rest = append(rest, fields[i+1:]...)
		return strings.Join(rest, " "), loc
	}
	return s, nil
}

func digestWindow(today time.Time) (lower, upper time.Time) {
	return today.AddDate(0, 0, -windowPastDays), today.AddDate(0, 0, windowFutureDays)
}

func withinWindow(day, lower, upper time.Time) bool {
	return !day.Before(lower) && !day.After(upper)
}

// formatDayLabel renders a full day heading such as "Monday, May 5, 2025".
func formatDayLabel(t time.Time) string {
	return t.Format(dayLabelLayout)
}

func formatClock(t time.Time) string {
	return t.Format(clockLayout)
}

// parseDayLabel recovers the day a heading names. Labels that fail to
// parse sort to the oldest end.
func parseDayLabel(label string) time.Time {
	day, err := time.ParseInLocation(dayLabelLayout, label, globaltime.Reference())
	if err != nil {
		return time.Time{}
	}
	return day
}
