package parse

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nlcal/internal/model"
	"nlcal/internal/rule"
)

func TestParseScenarios(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		wantSummary string
		wantStart   time.Time
		wantStatus  model.ItemStatus
		wantType    model.ItemType
		wantTags    []string
	}{
		{
			name:       "status and type markers with relative date",
			text:       "%done @block Fly tomorrow at 9",
			wantStatus: model.StatusDone,
			wantType:   model.TypeBlock,
			wantStart:  time.Date(2024, 3, 16, 9, 0, 0, 0, time.UTC),

			wantSummary: "Fly",
			wantTags:    []string{},
		},
		{
			name:        "tags before the date expression",
			text:        "#work #urgent meet today at 15:30",
			wantStatus:  model.StatusTodo,
			wantType:    model.TypeEvent,
			wantStart:   time.Date(2024, 3, 15, 15, 30, 0, 0, time.UTC),
			wantSummary: "meet",
			wantTags:    []string{"work", "urgent"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec, err := Parse(ref, tt.text)
			require.NoError(t, err)

			assert.Equal(t, tt.wantSummary, rec.Summary)
			assert.Equal(t, tt.wantStatus, rec.Status)
			assert.Equal(t, tt.wantType, rec.Type)
			assert.Equal(t, tt.wantTags, rec.Tags.All())
			require.NotNil(t, rec.When)
			assert.True(t, rec.When.Start.Equal(tt.wantStart), "got %v", rec.When.Start)
		})
	}
}

func TestParseRecurringItem(t *testing.T) {
	rec, err := Parse(ref, "standup tomorrow at 9 every weekday #team")
	require.NoError(t, err)

	assert.Equal(t, "standup", rec.Summary)
	require.NotNil(t, rec.When)
	assert.True(t, rec.When.Start.Equal(time.Date(2024, 3, 16, 9, 0, 0, 0, time.UTC)))

	require.NotNil(t, rec.Recurrence)
	want := rule.RecurrenceRule{Freq: rule.Weekly, Interval: 1, ByWeekday: rule.Workweek}
	assert.True(t, rec.Recurrence.Equal(want))

	assert.Equal(t, []string{"team"}, rec.Tags.All())
}

func TestParseMissingDate(t *testing.T) {
	// The default type (event) must be scheduled.
	_, err := Parse(ref, "lunch with Sam")
	require.ErrorIs(t, err, ErrMissingDate)

	// Reminders and blocks too.
	_, err = Parse(ref, "@reminder meds")
	require.ErrorIs(t, err, ErrMissingDate)

	// Tasks may be dateless.
	rec, err := Parse(ref, "@task clean desk")
	require.NoError(t, err)
	assert.Nil(t, rec.When)
	assert.Equal(t, model.TypeTask, rec.Type)
	assert.Equal(t, "clean desk", rec.Summary)
}

// A weekday consumed by the date extractor is no longer visible to the
// recurrence pass.
func TestExtractionOrderShieldsWeekdayTokens(t *testing.T) {
	rec, err := Parse(ref, "review next monday")
	require.NoError(t, err)

	assert.Nil(t, rec.Recurrence)
	require.NotNil(t, rec.When)
	assert.True(t, rec.When.Start.Equal(time.Date(2024, 3, 18, 12, 0, 0, 0, time.UTC)))
	assert.Equal(t, "review", rec.Summary)
}

func TestRenderNotation(t *testing.T) {
	tests := []struct {
		name string
		rec  model.UpsertRecord
		want string
	}{
		{
			name: "tomorrow with explicit time",
			rec: model.UpsertRecord{
				Summary: "Fly",
				Status:  model.StatusDone,
				Type:    model.TypeBlock,
				When:    &model.TimeRange{Start: time.Date(2024, 3, 16, 9, 0, 0, 0, time.UTC)},
			},
			want: "@block %done Fly tomorrow at 9:00",
		},
		{
			name: "same-day range renders as today",
			rec: model.UpsertRecord{
				Summary: "meet",
				Status:  model.StatusTodo,
				Type:    model.TypeEvent,
				When: &model.TimeRange{
					Start: time.Date(2024, 3, 15, 15, 30, 0, 0, time.UTC),
					End:   timePtr(time.Date(2024, 3, 15, 16, 30, 0, 0, time.UTC)),
				},
				Tags: model.NewTagSet("work", "urgent"),
			},
			want: "@event %todo meet today at 15:30-16:30 #work #urgent",
		},
		{
			name: "distant date renders absolute",
			rec: model.UpsertRecord{
				Summary: "dentist",
				Status:  model.StatusTodo,
				Type:    model.TypeEvent,
				When:    &model.TimeRange{Start: time.Date(2024, 4, 2, 14, 0, 0, 0, time.UTC)},
			},
			want: "@event %todo dentist at 02/04/24 14:00",
		},
		{
			name: "dateless task",
			rec: model.UpsertRecord{
				Summary: "clean desk",
				Status:  model.StatusTodo,
				Type:    model.TypeTask,
			},
			want: "@task %todo clean desk",
		},
		{
			name: "recurring",
			rec: model.UpsertRecord{
				Summary:    "standup",
				Status:     model.StatusTodo,
				Type:       model.TypeEvent,
				When:       &model.TimeRange{Start: time.Date(2024, 3, 16, 9, 0, 0, 0, time.UTC)},
				Recurrence: &rule.RecurrenceRule{Freq: rule.Weekly, Interval: 1, ByWeekday: rule.Workweek},
			},
			want: "@event %todo standup tomorrow at 9:00 every weekday",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Render(&tt.rec, ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

// A scheduled record on a distant date with no end renders in the bare
// absolute form, which must itself be a recognized date expression.
func TestRenderedAbsoluteSingleDatetimeReparses(t *testing.T) {
	rec := model.UpsertRecord{
		Summary: "dentist",
		Status:  model.StatusBacklog,
		Type:    model.TypeEvent,
		When:    &model.TimeRange{Start: time.Date(2024, 4, 2, 14, 0, 0, 0, time.UTC)},
	}

	text, err := Render(&rec, ref)
	require.NoError(t, err)
	assert.Equal(t, "@event %backlog dentist at 02/04/24 14:00", text)

	back, err := Parse(ref, text)
	require.NoError(t, err)
	assert.Equal(t, "dentist", back.Summary)
	assert.Equal(t, model.StatusBacklog, back.Status)
	require.NotNil(t, back.When)
	assert.True(t, back.When.Start.Equal(rec.When.Start))
	assert.Nil(t, back.When.End)
}

func TestRenderUnrenderableRecurrenceSurfaces(t *testing.T) {
	rec := model.UpsertRecord{
		Summary:    "x",
		Type:       model.TypeEvent,
		When:       &model.TimeRange{Start: ref},
		Recurrence: &rule.RecurrenceRule{Freq: rule.Weekly, Interval: 1},
	}
	_, err := Render(&rec, ref)
	require.ErrorIs(t, err, rule.ErrUnrenderable)
}

// Parsing the rendered notation yields the same record.
func TestParseRenderRoundTrip(t *testing.T) {
	inputs := []string{
		"%done @block Fly tomorrow at 9",
		"#work #urgent meet today at 15:30",
		"standup tomorrow at 9 every weekday #team",
		"@task clean desk",
		"dentist at 02/04/24 14:00-15:00",
		"dentist at 02/04/24 14:00",
		"pay rent at 01/05/24 9:00 every month on mon",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			rec, err := Parse(ref, input)
			require.NoError(t, err)

			text, err := Render(&rec, ref)
			require.NoError(t, err)

			back, err := Parse(ref, text)
			require.NoError(t, err)

			assert.Equal(t, rec.Summary, back.Summary)
			assert.Equal(t, rec.Status, back.Status)
			assert.Equal(t, rec.Type, back.Type)
			assert.True(t, rec.Tags.Equal(back.Tags))

			if rec.When == nil {
				assert.Nil(t, back.When)
			} else {
				require.NotNil(t, back.When)
				assert.True(t, rec.When.Start.Equal(back.When.Start), "start drifted: %v vs %v", rec.When.Start, back.When.Start)
			}

			if rec.Recurrence == nil {
				assert.Nil(t, back.Recurrence)
			} else {
				require.NotNil(t, back.Recurrence)
				assert.True(t, rec.Recurrence.Equal(*back.Recurrence))
			}
		})
	}
}
