package rule

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// Iterator produces concrete occurrence instants for one rule. It is the
// only seam through which the core touches the recurrence library, so the
// classification and rendering logic stays testable with a stub.
type Iterator interface {
	// NextAfter returns the first occurrence strictly after t, or false
	// when the rule produces no further instances.
	NextAfter(t time.Time) (time.Time, bool)
}

// BuildFunc constructs an Iterator for a rule anchored at dtstart. The
// default is NewIterator; tests may substitute a stub.
type BuildFunc func(r RecurrenceRule, dtstart time.Time) (Iterator, error)

var weekdayToRRule = map[time.Weekday]rrule.Weekday{
	time.Monday:    rrule.MO,
	time.Tuesday:   rrule.TU,
	time.Wednesday: rrule.WE,
	time.Thursday:  rrule.TH,
	time.Friday:    rrule.FR,
	time.Saturday:  rrule.SA,
	time.Sunday:    rrule.SU,
}

// rruleDayIndex maps the library's weekday numbering (0 = Monday) back to
// time.Weekday.
var rruleDayIndex = [7]time.Weekday{
	time.Monday, time.Tuesday, time.Wednesday, time.Thursday,
	time.Friday, time.Saturday, time.Sunday,
}

// ROption converts the rule into the recurrence library's option form,
// anchored at dtstart. A zero dtstart leaves the anchor unset, which is
// what the textual RRULE form wants.
func (r RecurrenceRule) ROption(dtstart time.Time) rrule.ROption {
	r = r.Normalized()

	opt := rrule.ROption{
		Interval: r.Interval,
		Dtstart:  dtstart,
	}

	switch r.Freq {
	case Daily:
		opt.Freq = rrule.DAILY
	case Weekly:
		opt.Freq = rrule.WEEKLY
	case Monthly:
		opt.Freq = rrule.MONTHLY
	}

	for _, d := range r.ByWeekday.Weekdays() {
		opt.Byweekday = append(opt.Byweekday, weekdayToRRule[d])
	}

	return opt
}

// RRule builds a library rule object for occurrence computation.
func (r RecurrenceRule) RRule(dtstart time.Time) (*rrule.RRule, error) {
	opt := r.ROption(dtstart)
	rr, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("rule: build rrule: %w", err)
	}
	return rr, nil
}

// RRuleString returns the canonical RRULE value ("FREQ=...;INTERVAL=...")
// without the "RRULE:" prefix, as used on the iCalendar wire.
func (r RecurrenceRule) RRuleString() string {
	opt := r.ROption(time.Time{})
	return opt.RRuleString()
}

// FromROption maps a parsed library option back into a RecurrenceRule.
// Frequencies outside daily/weekly/monthly are rejected rather than
// approximated.
func FromROption(opt *rrule.ROption) (RecurrenceRule, error) {
	var r RecurrenceRule

	switch opt.Freq {
	case rrule.DAILY:
		r.Freq = Daily
	case rrule.WEEKLY:
		r.Freq = Weekly
	case rrule.MONTHLY:
		r.Freq = Monthly
	default:
		return r, fmt.Errorf("rule: unsupported frequency %v: %w", opt.Freq, ErrUnrenderable)
	}

	r.Interval = opt.Interval
	if r.Interval < 1 {
		r.Interval = 1
	}

	for _, wd := range opt.Byweekday {
		// Positional BYDAY (e.g. 2MO) carries an offset; keep only the
		// plain weekday, matching what the natural language can express.
		day := wd.Day()
		if day < 0 || day > 6 {
			continue
		}
		r.ByWeekday = r.ByWeekday.Add(rruleDayIndex[day])
	}

	return r, nil
}

// ParseRRuleString parses a canonical RRULE value (with or without the
// "RRULE:" prefix) into a RecurrenceRule.
func ParseRRuleString(s string) (RecurrenceRule, error) {
	opt, err := rrule.StrToROption(s)
	if err != nil {
		return RecurrenceRule{}, fmt.Errorf("rule: parse rrule %q: %w", s, err)
	}
	return FromROption(opt)
}

type rruleIterator struct {
	rr *rrule.RRule
}

func (it rruleIterator) NextAfter(t time.Time) (time.Time, bool) {
	next := it.rr.After(t, false)
	if next.IsZero() {
		return time.Time{}, false
	}
	return next, true
}

// NewIterator returns the library-backed Iterator for the rule.
func NewIterator(r RecurrenceRule, dtstart time.Time) (Iterator, error) {
	rr, err := r.RRule(dtstart)
	if err != nil {
		return nil, err
	}
	return rruleIterator{rr: rr}, nil
}
