package parse

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	applog "nlcal/internal/log"
	"nlcal/internal/model"
)

// timeOfDay is a wall-clock time not yet bound to a date.
type timeOfDay struct {
	hour   int
	minute int
}

// defaultTimeOfDay is assumed when the text carries a date but no usable
// time expression.
var defaultTimeOfDay = timeOfDay{hour: 12}

// Named time-of-day vocabulary.
var namedTimes = map[string]timeOfDay{
	"morning":   {hour: 8},
	"afternoon": {hour: 16},
	"evening":   {hour: 18},
	"night":     {hour: 22},
	"noon":      {hour: 12},
	"midnight":  {hour: 0},
}

// Time-of-day patterns, tried in order: explicit range, numeric "at",
// named word. The range form must come first because the numeric form is
// a prefix of it.
var (
	reTimeRange = regexp.MustCompile(
		`(?i)(?:\bat\s+)?\b(\d{1,2})(?::(\d{2}))?\s*(?:-|\bto\b|\buntil\b)\s*(\d{1,2})(?::(\d{2}))?\b`)
	reTimeAt    = regexp.MustCompile(`(?i)\bat\s+(\d{1,2})(?::(\d{2}))?\b`)
	reTimeNamed = regexp.MustCompile(`(?i)\b(morning|afternoon|evening|night|noon|midnight)\b`)
)

// ExtractDateTime classifies the date expression in text, resolves it
// against the reference instant ref (whose Location supplies the user's
// timezone), extracts an orthogonal time-of-day from the remaining text,
// and returns the resulting TimeRange together with the text stripped of
// both matches.
//
// A nil TimeRange means no date expression was found; that is not an
// error here (unscheduled tasks are legitimate), the composer decides
// whether a missing date is fatal for the item type.
func ExtractDateTime(ref time.Time, text string) (*model.TimeRange, string) {
	tag, idx, ok := matchDate(text)
	if !ok {
		return nil, text
	}

	loc := ref.Location()
	rest := removeSpan(text, idx[0], idx[1])

	switch tag {
	case DateCaseAbsoluteRange:
		start, ok1 := absoluteInstant(text, idx, 1, loc)
		end, ok2 := absoluteInstant(text, idx, 6, loc)
		if !ok1 || !ok2 {
			return nil, rest
		}
		if end.Before(start) {
			applog.Warn("datetime: range end before start, dropping end", "start", start, "end", end)
			return &model.TimeRange{Start: start.UTC()}, rest
		}
		endUTC := end.UTC()
		return &model.TimeRange{Start: start.UTC(), End: &endUTC}, rest

	case DateCaseAbsoluteDayRange:
		start, ok1 := absoluteInstant(text, idx, 1, loc)
		if !ok1 {
			return nil, rest
		}
		endTod, okT := parseClock(group(text, idx, 6), group(text, idx, 7))
		if !okT {
			return &model.TimeRange{Start: start.UTC()}, rest
		}
		end := localInstant(start.Year(), start.Month(), start.Day(), endTod.hour, endTod.minute, loc)
		if end.Before(start) {
			// A range like 22:00-06:00 wraps past midnight.
			end = end.Add(24 * time.Hour)
		}
		endUTC := end.UTC()
		return &model.TimeRange{Start: start.UTC(), End: &endUTC}, rest

	case DateCaseAbsolute:
		start, ok1 := absoluteInstant(text, idx, 1, loc)
		if !ok1 {
			return nil, rest
		}
		return &model.TimeRange{Start: start.UTC()}, rest
	}

	// Relative cases resolve to a day offset from the reference date; the
	// time-of-day is then extracted independently from what remains.
	offset, ok := relativeOffset(tag, text, idx, ref)
	if !ok {
		return nil, rest
	}

	day := ref.AddDate(0, 0, offset)
	start, end, rest := extractTimeOfDay(rest)

	startInstant := localInstant(day.Year(), day.Month(), day.Day(), start.hour, start.minute, loc)
	tr := &model.TimeRange{Start: startInstant.UTC()}
	if end != nil {
		endInstant := localInstant(day.Year(), day.Month(), day.Day(), end.hour, end.minute, loc)
		if endInstant.Before(startInstant) {
			endInstant = endInstant.Add(24 * time.Hour)
		}
		endUTC := endInstant.UTC()
		tr.End = &endUTC
	}
	return tr, rest
}

// relativeOffset computes the day offset for the relative date cases.
func relativeOffset(tag DateCase, text string, idx []int, ref time.Time) (int, bool) {
	switch tag {
	case DateCaseTomorrow:
		return 1, true
	case DateCaseToday:
		return 0, true
	case DateCaseNextWeek:
		return 7, true
	case DateCaseNextWeekday:
		target, ok := lookupWeekday(group(text, idx, 1))
		if !ok {
			return 0, false
		}
		return daysUntil(ref.Weekday(), target), true
	case DateCaseInCount:
		n, err := strconv.Atoi(group(text, idx, 1))
		if err != nil {
			return 0, false
		}
		if strings.EqualFold(group(text, idx, 2), "week") {
			n *= 7
		}
		return n, true
	default:
		return 0, false
	}
}

// daysUntil is the minimal non-negative forward distance in days from the
// reference weekday to target: always in [0, 6], and 0 only when the two
// weekdays are equal.
func daysUntil(from, target time.Weekday) int {
	return (int(target) - int(from) + 7) % 7
}

// extractTimeOfDay scans text for a time expression and removes it. The
// default of 12:00 with no end applies when nothing usable is found.
// Out-of-range numeric values are logged and dropped from the text, then
// treated as absent.
func extractTimeOfDay(text string) (timeOfDay, *timeOfDay, string) {
	if idx := reTimeRange.FindStringSubmatchIndex(text); idx != nil {
		rest := removeSpan(text, idx[0], idx[1])
		start, ok1 := parseClock(group(text, idx, 1), group(text, idx, 2))
		end, ok2 := parseClock(group(text, idx, 3), group(text, idx, 4))
		if !ok1 || !ok2 {
			return defaultTimeOfDay, nil, rest
		}
		return start, &end, rest
	}

	if idx := reTimeAt.FindStringSubmatchIndex(text); idx != nil {
		rest := removeSpan(text, idx[0], idx[1])
		tod, ok := parseClock(group(text, idx, 1), group(text, idx, 2))
		if !ok {
			return defaultTimeOfDay, nil, rest
		}
		return tod, nil, rest
	}

	if idx := reTimeNamed.FindStringSubmatchIndex(text); idx != nil {
		rest := removeSpan(text, idx[0], idx[1])
		if tod, ok := namedTimes[strings.ToLower(group(text, idx, 1))]; ok {
			return tod, nil, rest
		}
		return defaultTimeOfDay, nil, rest
	}

	return defaultTimeOfDay, nil, text
}

// parseClock validates an hour/minute pair. Hours above 23 or minutes
// above 59 are rejected outright, never clamped.
func parseClock(hourStr, minStr string) (timeOfDay, bool) {
	hour, err := strconv.Atoi(hourStr)
	if err != nil {
		return timeOfDay{}, false
	}
	minute := 0
	if minStr != "" {
		minute, err = strconv.Atoi(minStr)
		if err != nil {
			return timeOfDay{}, false
		}
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		applog.Warn("datetime: time of day out of range", "hour", hour, "minute", minute)
		return timeOfDay{}, false
	}
	return timeOfDay{hour: hour, minute: minute}, true
}

// absoluteInstant parses the DD/MM/YY HH:MM groups starting at submatch
// base into an instant in loc. Two-digit years map into 2000-2099.
func absoluteInstant(text string, idx []int, base int, loc *time.Location) (time.Time, bool) {
	day, err1 := strconv.Atoi(group(text, idx, base))
	month, err2 := strconv.Atoi(group(text, idx, base+1))
	year, err3 := strconv.Atoi(group(text, idx, base+2))
	if err1 != nil || err2 != nil || err3 != nil {
		return time.Time{}, false
	}
	if month < 1 || month > 12 || day < 1 || day > 31 {
		applog.Warn("datetime: calendar date out of range", "day", day, "month", month)
		return time.Time{}, false
	}

	tod, ok := parseClock(group(text, idx, base+3), group(text, idx, base+4))
	if !ok {
		tod = defaultTimeOfDay
	}

	return localInstant(2000+year, time.Month(month), day, tod.hour, tod.minute, loc), true
}

// localInstant builds the instant for the given wall-clock time in loc.
// When a DST fold makes the wall time ambiguous (it occurs twice), the
// earlier absolute instant is chosen.
func localInstant(year int, month time.Month, day, hour, minute int, loc *time.Location) time.Time {
	t := time.Date(year, month, day, hour, minute, 0, 0, loc)
	if prev := t.Add(-time.Hour); prev.Year() == year && prev.Month() == month &&
		prev.Day() == day && prev.Hour() == hour && prev.Minute() == minute {
		return prev
	}
	return t
}
