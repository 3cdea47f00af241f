// Package parse implements the bidirectional mapping between free-form
// item text ("tomorrow at 9 every weekday #health %todo") and the
// structured UpsertRecord. Every extractor is a pure function of
// (reference instant, text); the reference instant is always supplied by
// the caller, never read from the process clock.
package parse

import (
	"regexp"
	"strings"
	"time"
)

// DateCase identifies one recognized natural-language date/time shape.
type DateCase int

const (
	DateCaseNone DateCase = iota
	DateCaseAbsoluteRange
	DateCaseAbsoluteDayRange
	DateCaseAbsolute
	DateCaseTomorrow
	DateCaseToday
	DateCaseNextWeek
	DateCaseNextWeekday
	DateCaseInCount
)

func (c DateCase) String() string {
	switch c {
	case DateCaseAbsoluteRange:
		return "absolute-range"
	case DateCaseAbsoluteDayRange:
		return "absolute-day-range"
	case DateCaseAbsolute:
		return "absolute"
	case DateCaseTomorrow:
		return "tomorrow"
	case DateCaseToday:
		return "today"
	case DateCaseNextWeek:
		return "next-week"
	case DateCaseNextWeekday:
		return "next-weekday"
	case DateCaseInCount:
		return "in-count"
	default:
		return "none"
	}
}

// weekdayAlt lists the recognized weekday tokens, full names before the
// 3-letter forms so the regexp prefers the longer match.
const weekdayAlt = `monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tue|wed|thu|fri|sat|sun`

var weekdayNames = map[string]time.Weekday{
	"monday": time.Monday, "mon": time.Monday,
	"tuesday": time.Tuesday, "tue": time.Tuesday,
	"wednesday": time.Wednesday, "wed": time.Wednesday,
	"thursday": time.Thursday, "thu": time.Thursday,
	"friday": time.Friday, "fri": time.Friday,
	"saturday": time.Saturday, "sat": time.Saturday,
	"sunday": time.Sunday, "sun": time.Sunday,
}

// lookupWeekday resolves a weekday token (any case, full or abbreviated).
func lookupWeekday(token string) (time.Weekday, bool) {
	d, ok := weekdayNames[strings.ToLower(strings.TrimSpace(token))]
	return d, ok
}

type dateMatcher struct {
	tag DateCase
	re  *regexp.Regexp
}

// dateMatchers is evaluated in array order and the first hit wins. The
// order is load-bearing: the absolute forms contain substrings that the
// shorter patterns would otherwise claim.
var dateMatchers = []dateMatcher{
	{DateCaseAbsoluteRange, regexp.MustCompile(
		`(?i)\bat\s+(\d{2})/(\d{2})/(\d{2})\s+(\d{1,2}):(\d{2})\s*-\s*(\d{2})/(\d{2})/(\d{2})\s+(\d{1,2}):(\d{2})\b`)},
	{DateCaseAbsoluteDayRange, regexp.MustCompile(
		`(?i)\bat\s+(\d{2})/(\d{2})/(\d{2})\s+(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})\b`)},
	{DateCaseAbsolute, regexp.MustCompile(
		`(?i)\bat\s+(\d{2})/(\d{2})/(\d{2})\s+(\d{1,2}):(\d{2})\b`)},
	{DateCaseTomorrow, regexp.MustCompile(`(?i)\btomorrow\b`)},
	{DateCaseToday, regexp.MustCompile(`(?i)\btoday\b`)},
	{DateCaseNextWeek, regexp.MustCompile(`(?i)\bnext\s+week\b`)},
	{DateCaseNextWeekday, regexp.MustCompile(`(?i)\bnext\s+(` + weekdayAlt + `)\b`)},
	{DateCaseInCount, regexp.MustCompile(`(?i)\bin\s+(\d+)\s+(day|week)s?\b`)},
}

// matchDate classifies the date expression embedded in text. It returns
// the matched case and the submatch index slice of the winning pattern
// (as produced by FindStringSubmatchIndex), or false when no case
// matches.
func matchDate(text string) (DateCase, []int, bool) {
	for _, m := range dateMatchers {
		if idx := m.re.FindStringSubmatchIndex(text); idx != nil {
			return m.tag, idx, true
		}
	}
	return DateCaseNone, nil, false
}

// removeSpan returns text with the [start, end) byte range removed and
// the surrounding whitespace collapsed. The input is never mutated.
func removeSpan(text string, start, end int) string {
	return collapseSpaces(text[:start] + " " + text[end:])
}

// collapseSpaces trims the string and squeezes internal whitespace runs
// down to single spaces.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// group extracts one submatch from a FindStringSubmatchIndex result, or
// "" when the group did not participate in the match.
func group(text string, idx []int, n int) string {
	lo, hi := idx[2*n], idx[2*n+1]
	if lo < 0 {
		return ""
	}
	return text[lo:hi]
}
