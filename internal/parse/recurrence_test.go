package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nlcal/internal/rule"
)

func TestExtractRecurrence(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		want     rule.RecurrenceRule
		wantRest string
	}{
		{
			name:     "every n days",
			text:     "water plants every 2 days",
			want:     rule.RecurrenceRule{Freq: rule.Daily, Interval: 2},
			wantRest: "water plants",
		},
		{
			name:     "every weekday",
			text:     "standup every weekday",
			want:     rule.RecurrenceRule{Freq: rule.Weekly, Interval: 1, ByWeekday: rule.Workweek},
			wantRest: "standup",
		},
		{
			name:     "every weekend",
			text:     "every weekend hike",
			want:     rule.RecurrenceRule{Freq: rule.Weekly, Interval: 1, ByWeekday: rule.Weekend},
			wantRest: "hike",
		},
		{
			name:     "every day",
			text:     "journal every day",
			want:     rule.RecurrenceRule{Freq: rule.Weekly, Interval: 1, ByWeekday: rule.EveryDay},
			wantRest: "journal",
		},
		{
			name:     "week on listed days",
			text:     "gym every mon, wed, fri",
			want:     rule.RecurrenceRule{Freq: rule.Weekly, Interval: 1, ByWeekday: rule.NewWeekdaySet(time.Monday, time.Wednesday, time.Friday)},
			wantRest: "gym",
		},
		{
			name:     "full weekday names",
			text:     "review every Monday,Thursday",
			want:     rule.RecurrenceRule{Freq: rule.Weekly, Interval: 1, ByWeekday: rule.NewWeekdaySet(time.Monday, time.Thursday)},
			wantRest: "review",
		},
		{
			name:     "month on listed days",
			text:     "invoice every month on fri",
			want:     rule.RecurrenceRule{Freq: rule.Monthly, Interval: 1, ByWeekday: rule.NewWeekdaySet(time.Friday)},
			wantRest: "invoice",
		},
		{
			name:     "every n weeks on listed days",
			text:     "sprint review every 2 on tue",
			want:     rule.RecurrenceRule{Freq: rule.Weekly, Interval: 2, ByWeekday: rule.NewWeekdaySet(time.Tuesday)},
			wantRest: "sprint review",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, rest := ExtractRecurrence(tt.text)
			require.NotNil(t, r)
			assert.True(t, r.Equal(tt.want), "got %+v want %+v", *r, tt.want)
			assert.Equal(t, tt.wantRest, rest)
		})
	}
}

func TestExtractRecurrenceNoMatch(t *testing.T) {
	tests := []string{
		"water plants",
		"every so often",
		"everyone on fri", // "every" must be its own word
	}
	for _, text := range tests {
		t.Run(text, func(t *testing.T) {
			r, rest := ExtractRecurrence(text)
			assert.Nil(t, r)
			assert.Equal(t, text, rest)
		})
	}
}

func TestRenderRecurrence(t *testing.T) {
	tests := []struct {
		name string
		rule rule.RecurrenceRule
		want string
	}{
		{"every n days", rule.RecurrenceRule{Freq: rule.Daily, Interval: 3}, "every 3 days"},
		{"weekday", rule.RecurrenceRule{Freq: rule.Weekly, Interval: 1, ByWeekday: rule.Workweek}, "every weekday"},
		{"weekend", rule.RecurrenceRule{Freq: rule.Weekly, Interval: 1, ByWeekday: rule.Weekend}, "every weekend"},
		{"all days", rule.RecurrenceRule{Freq: rule.Weekly, Interval: 1, ByWeekday: rule.EveryDay}, "every day"},
		{
			"day list is monday-first regardless of insertion order",
			rule.RecurrenceRule{Freq: rule.Weekly, Interval: 1, ByWeekday: rule.NewWeekdaySet(time.Sunday, time.Monday)},
			"every Mon, Sun",
		},
		{
			"month on days",
			rule.RecurrenceRule{Freq: rule.Monthly, Interval: 1, ByWeekday: rule.NewWeekdaySet(time.Monday, time.Friday)},
			"every month on Mon, Fri",
		},
		{
			"interval weeks on days",
			rule.RecurrenceRule{Freq: rule.Weekly, Interval: 2, ByWeekday: rule.NewWeekdaySet(time.Tuesday, time.Thursday)},
			"every 2 on Tue, Thu",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RenderRecurrence(tt.rule)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderRecurrenceUnrenderable(t *testing.T) {
	tests := []struct {
		name string
		rule rule.RecurrenceRule
	}{
		{"weekly with no days", rule.RecurrenceRule{Freq: rule.Weekly, Interval: 1}},
		{"monthly with no days", rule.RecurrenceRule{Freq: rule.Monthly, Interval: 1}},
		{"daily interval one", rule.RecurrenceRule{Freq: rule.Daily, Interval: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RenderRecurrence(tt.rule)
			require.ErrorIs(t, err, rule.ErrUnrenderable)
		})
	}
}

// Rendering then re-parsing any renderable rule must yield an equal rule.
func TestRecurrenceRoundTrip(t *testing.T) {
	rules := []rule.RecurrenceRule{
		{Freq: rule.Daily, Interval: 2},
		{Freq: rule.Daily, Interval: 14},
		{Freq: rule.Weekly, Interval: 1, ByWeekday: rule.Workweek},
		{Freq: rule.Weekly, Interval: 1, ByWeekday: rule.Weekend},
		{Freq: rule.Weekly, Interval: 1, ByWeekday: rule.EveryDay},
		{Freq: rule.Weekly, Interval: 1, ByWeekday: rule.NewWeekdaySet(time.Monday)},
		{Freq: rule.Weekly, Interval: 1, ByWeekday: rule.NewWeekdaySet(time.Wednesday, time.Saturday)},
		{Freq: rule.Weekly, Interval: 3, ByWeekday: rule.NewWeekdaySet(time.Monday, time.Sunday)},
		{Freq: rule.Monthly, Interval: 1, ByWeekday: rule.NewWeekdaySet(time.Thursday)},
		{Freq: rule.Monthly, Interval: 1, ByWeekday: rule.NewWeekdaySet(time.Monday, time.Tuesday, time.Friday)},
	}

	for _, r := range rules {
		text, err := RenderRecurrence(r)
		require.NoError(t, err)

		back, rest := ExtractRecurrence(text)
		require.NotNil(t, back, "phrase %q did not parse", text)
		assert.Empty(t, rest, "phrase %q left residue", text)
		assert.True(t, back.Equal(r), "round trip %q: got %+v want %+v", text, *back, r)
	}
}
