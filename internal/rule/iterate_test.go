package rule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRRuleStringRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		rule RecurrenceRule
	}{
		{"daily interval", RecurrenceRule{Freq: Daily, Interval: 2}},
		{"workweek", RecurrenceRule{Freq: Weekly, Interval: 1, ByWeekday: Workweek}},
		{"biweekly tuesday", RecurrenceRule{Freq: Weekly, Interval: 2, ByWeekday: NewWeekdaySet(time.Tuesday)}},
		{"monthly mon fri", RecurrenceRule{Freq: Monthly, Interval: 1, ByWeekday: NewWeekdaySet(time.Monday, time.Friday)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := tt.rule.RRuleString()
			assert.Contains(t, s, "FREQ=")

			back, err := ParseRRuleString(s)
			require.NoError(t, err)
			assert.True(t, tt.rule.Equal(back), "round trip changed rule: %q -> %+v", s, back)
		})
	}
}

func TestParseRRuleStringRejectsUnsupportedFrequency(t *testing.T) {
	_, err := ParseRRuleString("FREQ=YEARLY")
	require.ErrorIs(t, err, ErrUnrenderable)
}

func TestIteratorNextAfter(t *testing.T) {
	// Weekly on Mondays, anchored on a Monday morning.
	r := RecurrenceRule{Freq: Weekly, Interval: 1, ByWeekday: NewWeekdaySet(time.Monday)}
	dtstart := time.Date(2024, 3, 18, 9, 0, 0, 0, time.UTC)

	it, err := NewIterator(r, dtstart)
	require.NoError(t, err)

	next, ok := it.NextAfter(dtstart)
	require.True(t, ok)
	assert.True(t, next.Equal(time.Date(2024, 3, 25, 9, 0, 0, 0, time.UTC)), "got %v", next)

	// Strictly after: an instant just before the anchor yields the anchor.
	next, ok = it.NextAfter(dtstart.Add(-time.Minute))
	require.True(t, ok)
	assert.True(t, next.Equal(dtstart), "got %v", next)
}

// stubIterator verifies the Iterator seam is satisfiable without the
// recurrence library.
type stubIterator struct {
	at time.Time
}

func (s stubIterator) NextAfter(t time.Time) (time.Time, bool) {
	if s.at.After(t) {
		return s.at, true
	}
	return time.Time{}, false
}

func TestIteratorSeamAcceptsStub(t *testing.T) {
	var build BuildFunc = func(RecurrenceRule, time.Time) (Iterator, error) {
		return stubIterator{at: time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)}, nil
	}

	it, err := build(RecurrenceRule{}, time.Time{})
	require.NoError(t, err)

	next, ok := it.NextAfter(time.Date(2029, 1, 1, 0, 0, 0, 0, time.UTC))
	require.True(t, ok)
	assert.Equal(t, 2030, next.Year())
}
