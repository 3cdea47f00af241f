package rule

import (
	"errors"
	"time"
)

// Frequency is the repeat frequency of a recurrence rule.
type Frequency int

const (
	Daily Frequency = iota
	Weekly
	Monthly
)

func (f Frequency) String() string {
	switch f {
	case Daily:
		return "daily"
	case Weekly:
		return "weekly"
	case Monthly:
		return "monthly"
	default:
		return "unknown"
	}
}

// WeekdaySet is a set of weekdays stored as a bitmask (bit 0 = Sunday,
// matching time.Weekday numbering).
type WeekdaySet uint8

// NewWeekdaySet builds a set from the given weekdays.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		s = s.Add(d)
	}
	return s
}

func (s WeekdaySet) Add(d time.Weekday) WeekdaySet {
	return s | 1<<uint(d)
}

func (s WeekdaySet) Has(d time.Weekday) bool {
	return s&(1<<uint(d)) != 0
}

func (s WeekdaySet) Empty() bool {
	return s == 0
}

func (s WeekdaySet) Count() int {
	n := 0
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			n++
		}
	}
	return n
}

// mondayFirst is the display ordering used everywhere a WeekdaySet is
// rendered: calendar weeks start on Monday.
var mondayFirst = []time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// Weekdays returns the members of the set in Monday-first order. The
// ordering is stable so that rendered day lists do not jitter between
// edits of the same item.
func (s WeekdaySet) Weekdays() []time.Weekday {
	out := make([]time.Weekday, 0, 7)
	for _, d := range mondayFirst {
		if s.Has(d) {
			out = append(out, d)
		}
	}
	return out
}

// Common sets used by the classifier.
var (
	Workweek = NewWeekdaySet(time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday)
	Weekend  = NewWeekdaySet(time.Saturday, time.Sunday)
	EveryDay = NewWeekdaySet(time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday, time.Saturday)
)

// RecurrenceRule is the canonical recurrence description produced by the
// phrase parser and consumed by the renderer and the occurrence iterator.
// It is an immutable value type; absence of recurrence is expressed as a
// nil *RecurrenceRule at the record level.
type RecurrenceRule struct {
	Freq      Frequency
	Interval  int // >= 1
	ByWeekday WeekdaySet
}

// Normalized returns a copy with Interval clamped to at least 1.
func (r RecurrenceRule) Normalized() RecurrenceRule {
	if r.Interval < 1 {
		r.Interval = 1
	}
	return r
}

// Equal compares two rules for semantic equality; weekday order is
// irrelevant because WeekdaySet is a bitmask.
func (r RecurrenceRule) Equal(o RecurrenceRule) bool {
	return r.Freq == o.Freq &&
		r.Normalized().Interval == o.Normalized().Interval &&
		r.ByWeekday == o.ByWeekday
}

// ErrUnrenderable is returned when a rule does not fit any of the natural
// language shapes the renderer knows. The caller must surface it; the
// renderer never guesses a textual form for such rules.
var ErrUnrenderable = errors.New("recurrence rule has no natural-language form")

// Case identifies one natural-language recurrence shape.
type Case int

const (
	CaseNone Case = iota
	CaseEveryXDays
	CaseEveryWeekday
	CaseEveryWeekend
	CaseEveryDay
	CaseWeekOnXDays
	CaseMonthOnXDays
	CaseEveryXWeeksOnXDays
)

func (c Case) String() string {
	switch c {
	case CaseEveryXDays:
		return "every-x-days"
	case CaseEveryWeekday:
		return "every-weekday"
	case CaseEveryWeekend:
		return "every-weekend"
	case CaseEveryDay:
		return "every-day"
	case CaseWeekOnXDays:
		return "week-on-x-days"
	case CaseMonthOnXDays:
		return "month-on-x-days"
	case CaseEveryXWeeksOnXDays:
		return "every-x-weeks-on-x-days"
	default:
		return "none"
	}
}

// Classify maps an arbitrary rule back onto one of the renderable cases.
// The predicates are checked in a fixed order; the first hit wins. Rules
// that fall through every predicate (weekly with an empty day set, daily
// with interval 1, monthly without weekdays) are unrenderable.
func Classify(r RecurrenceRule) (Case, error) {
	r = r.Normalized()

	switch {
	case r.Freq == Daily && r.Interval > 1:
		return CaseEveryXDays, nil
	case r.Freq == Weekly && r.ByWeekday == Workweek:
		return CaseEveryWeekday, nil
	case r.Freq == Weekly && r.ByWeekday == Weekend:
		return CaseEveryWeekend, nil
	case r.Freq == Weekly && r.ByWeekday == EveryDay:
		return CaseEveryDay, nil
	case r.Freq == Weekly && r.ByWeekday.Empty():
		return CaseNone, ErrUnrenderable
	case r.Freq == Weekly && r.Interval > 1:
		return CaseEveryXWeeksOnXDays, nil
	case r.Freq == Weekly:
		return CaseWeekOnXDays, nil
	case r.Freq == Monthly && !r.ByWeekday.Empty():
		return CaseMonthOnXDays, nil
	default:
		return CaseNone, ErrUnrenderable
	}
}
