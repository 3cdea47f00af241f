package parse

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"nlcal/internal/model"
)

// ErrMissingDate is returned when an item type that must be scheduled
// carries no recognizable date expression. Tasks are exempt: they parse
// to a record with no time range.
var ErrMissingDate = errors.New("no date expression found")

// Parse turns one line of free text into a structured record, resolving
// relative expressions against the reference instant ref (whose Location
// supplies the user's timezone).
//
// Extraction runs in a fixed order, each pass consuming its match from
// the text before the next pass sees it: date/time, recurrence, status,
// type, tags. The order matters; a weekday token claimed by the date
// extractor can no longer be mistaken for a recurrence day-list entry.
// Whatever text survives all five passes becomes the summary.
func Parse(ref time.Time, text string) (model.UpsertRecord, error) {
	var rec model.UpsertRecord

	rec.When, text = ExtractDateTime(ref, text)
	rec.Recurrence, text = ExtractRecurrence(text)
	rec.Status, text = ExtractStatus(text)
	rec.Type, text = ExtractType(text)
	rec.Tags, text = ExtractTags(text)
	rec.Summary = strings.TrimSpace(text)

	if rec.When == nil && rec.Type.RequiresStart() {
		return model.UpsertRecord{}, fmt.Errorf("parse: %s item needs a date: %w", rec.Type, ErrMissingDate)
	}

	return rec, nil
}
