package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"nlcal/internal/rule"
)

// dayListAlt captures a comma-separated list of weekday tokens.
const dayListAlt = `((?:` + weekdayAlt + `)(?:\s*,\s*(?:` + weekdayAlt + `))*)`

type recMatcher struct {
	tag rule.Case
	re  *regexp.Regexp
}

// recMatchers is evaluated in array order, first match wins. "every N
// days" must precede "every day", and the day-list form must precede the
// month and interval forms so that each phrase lands on exactly one case.
var recMatchers = []recMatcher{
	{rule.CaseEveryXDays, regexp.MustCompile(`(?i)\bevery\s+(\d+)\s+days?\b`)},
	{rule.CaseEveryWeekday, regexp.MustCompile(`(?i)\bevery\s+weekday\b`)},
	{rule.CaseEveryWeekend, regexp.MustCompile(`(?i)\bevery\s+weekend\b`)},
	{rule.CaseEveryDay, regexp.MustCompile(`(?i)\bevery\s+day\b`)},
	{rule.CaseWeekOnXDays, regexp.MustCompile(`(?i)\bevery\s+` + dayListAlt + `\b`)},
	{rule.CaseMonthOnXDays, regexp.MustCompile(`(?i)\bevery\s+month\s+on\s+` + dayListAlt + `\b`)},
	{rule.CaseEveryXWeeksOnXDays, regexp.MustCompile(`(?i)\bevery\s+(\d+)\s+on\s+` + dayListAlt + `\b`)},
}

// ExtractRecurrence scans text for a recurrence phrase, builds the
// canonical rule for the first matching case and returns the text with
// the phrase removed. No match yields a nil rule and the text unchanged;
// an unparseable phrase is never an error.
func ExtractRecurrence(text string) (*rule.RecurrenceRule, string) {
	for _, m := range recMatchers {
		idx := m.re.FindStringSubmatchIndex(text)
		if idx == nil {
			continue
		}

		r, ok := buildRule(m.tag, text, idx)
		if !ok {
			continue
		}
		return &r, removeSpan(text, idx[0], idx[1])
	}
	return nil, text
}

func buildRule(tag rule.Case, text string, idx []int) (rule.RecurrenceRule, bool) {
	switch tag {
	case rule.CaseEveryXDays:
		n, err := strconv.Atoi(group(text, idx, 1))
		if err != nil {
			return rule.RecurrenceRule{}, false
		}
		return rule.RecurrenceRule{Freq: rule.Daily, Interval: n}.Normalized(), true

	case rule.CaseEveryWeekday:
		return rule.RecurrenceRule{Freq: rule.Weekly, Interval: 1, ByWeekday: rule.Workweek}, true

	case rule.CaseEveryWeekend:
		return rule.RecurrenceRule{Freq: rule.Weekly, Interval: 1, ByWeekday: rule.Weekend}, true

	case rule.CaseEveryDay:
		return rule.RecurrenceRule{Freq: rule.Weekly, Interval: 1, ByWeekday: rule.EveryDay}, true

	case rule.CaseWeekOnXDays:
		days, ok := parseDayList(group(text, idx, 1))
		if !ok {
			return rule.RecurrenceRule{}, false
		}
		return rule.RecurrenceRule{Freq: rule.Weekly, Interval: 1, ByWeekday: days}, true

	case rule.CaseMonthOnXDays:
		days, ok := parseDayList(group(text, idx, 1))
		if !ok {
			return rule.RecurrenceRule{}, false
		}
		return rule.RecurrenceRule{Freq: rule.Monthly, Interval: 1, ByWeekday: days}, true

	case rule.CaseEveryXWeeksOnXDays:
		n, err := strconv.Atoi(group(text, idx, 1))
		if err != nil {
			return rule.RecurrenceRule{}, false
		}
		days, ok := parseDayList(group(text, idx, 2))
		if !ok {
			return rule.RecurrenceRule{}, false
		}
		return rule.RecurrenceRule{Freq: rule.Weekly, Interval: n, ByWeekday: days}.Normalized(), true

	default:
		return rule.RecurrenceRule{}, false
	}
}

// parseDayList resolves a comma-separated weekday token list. At least
// one recognized weekday is required or the match is discarded.
func parseDayList(list string) (rule.WeekdaySet, bool) {
	var days rule.WeekdaySet
	for _, token := range strings.Split(list, ",") {
		if d, ok := lookupWeekday(token); ok {
			days = days.Add(d)
		}
	}
	if days.Empty() {
		return days, false
	}
	return days, true
}

// Display names for rendered day lists, always Monday-first via
// WeekdaySet.Weekdays.
var weekdayShort = map[time.Weekday]string{
	time.Monday:    "Mon",
	time.Tuesday:   "Tue",
	time.Wednesday: "Wed",
	time.Thursday:  "Thu",
	time.Friday:    "Fri",
	time.Saturday:  "Sat",
	time.Sunday:    "Sun",
}

func renderDayList(days rule.WeekdaySet) string {
	parts := make([]string, 0, 7)
	for _, d := range days.Weekdays() {
		parts = append(parts, weekdayShort[d])
	}
	return strings.Join(parts, ", ")
}

// RenderRecurrence reclassifies an arbitrary rule into one of the seven
// natural-language cases and formats it. Rules that fit none of the
// cases yield rule.ErrUnrenderable; no textual form is ever guessed.
func RenderRecurrence(r rule.RecurrenceRule) (string, error) {
	c, err := rule.Classify(r)
	if err != nil {
		return "", err
	}

	r = r.Normalized()
	switch c {
	case rule.CaseEveryXDays:
		return fmt.Sprintf("every %d days", r.Interval), nil
	case rule.CaseEveryWeekday:
		return "every weekday", nil
	case rule.CaseEveryWeekend:
		return "every weekend", nil
	case rule.CaseEveryDay:
		return "every day", nil
	case rule.CaseWeekOnXDays:
		return "every " + renderDayList(r.ByWeekday), nil
	case rule.CaseMonthOnXDays:
		return "every month on " + renderDayList(r.ByWeekday), nil
	case rule.CaseEveryXWeeksOnXDays:
		return fmt.Sprintf("every %d on %s", r.Interval, renderDayList(r.ByWeekday)), nil
	default:
		return "", rule.ErrUnrenderable
	}
}
