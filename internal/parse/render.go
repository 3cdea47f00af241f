package parse

import (
	"fmt"
	"strings"
	"time"

	"nlcal/internal/model"
)

// Render produces the free-text notation for a record, suitable for
// editing and for feeding back through Parse. Field order is fixed: type
// marker, status marker, summary, date/time text, recurrence phrase,
// tags.
//
// The only failure mode is a recurrence rule that fits none of the
// natural-language cases; that is surfaced, never guessed around.
func Render(rec *model.UpsertRecord, ref time.Time) (string, error) {
	parts := []string{rec.Type.Marker(), rec.Status.Marker()}

	if rec.Summary != "" {
		parts = append(parts, rec.Summary)
	}

	if rec.When != nil {
		parts = append(parts, renderTimeRange(rec.When, ref))
	}

	if rec.Recurrence != nil {
		phrase, err := RenderRecurrence(*rec.Recurrence)
		if err != nil {
			return "", fmt.Errorf("render: %w", err)
		}
		parts = append(parts, phrase)
	}

	for _, tag := range rec.Tags.All() {
		parts = append(parts, "#"+tag)
	}

	return strings.Join(parts, " "), nil
}

// renderTimeRange picks the shortest phrase that parses back to the same
// range: "today"/"tomorrow" relative forms when the start date allows it,
// the absolute "at DD/MM/YY HH:MM" notation otherwise.
func renderTimeRange(tr *model.TimeRange, ref time.Time) string {
	loc := ref.Location()
	start := tr.Start.In(loc)

	var relative string
	switch {
	case sameDate(start, ref):
		relative = "today"
	case sameDate(start, ref.AddDate(0, 0, 1)):
		relative = "tomorrow"
	}

	if relative != "" {
		if tr.End == nil {
			return fmt.Sprintf("%s at %s", relative, clock(start))
		}
		end := tr.End.In(loc)
		if sameDate(end, start) {
			return fmt.Sprintf("%s at %s-%s", relative, clock(start), clock(end))
		}
		// The relative notation cannot express an end on another day;
		// fall through to the absolute form.
	}

	if tr.End == nil {
		return fmt.Sprintf("at %s %s", date(start), clock(start))
	}
	end := tr.End.In(loc)
	if sameDate(end, start) {
		return fmt.Sprintf("at %s %s-%s", date(start), clock(start), clock(end))
	}
	return fmt.Sprintf("at %s %s-%s %s", date(start), clock(start), date(end), clock(end))
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// clock formats a wall time as H:MM, matching the numeric time-of-day
// grammar.
func clock(t time.Time) string {
	return fmt.Sprintf("%d:%02d", t.Hour(), t.Minute())
}

// date formats a date as DD/MM/YY, matching the absolute date grammar.
func date(t time.Time) string {
	return fmt.Sprintf("%02d/%02d/%02d", t.Day(), int(t.Month()), t.Year()%100)
}
