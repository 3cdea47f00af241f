// Package schedule expands records into concrete occurrences within a
// time window, for agenda views. Recurring items go through the
// recurrence library; exceptions (EXDATE) are honored; everything is
// normalized into a single display timezone.
package schedule

import (
	"errors"
	"time"

	"github.com/teambition/rrule-go"

	applog "nlcal/internal/log"
	"nlcal/internal/model"
)

const defaultMaxOccurrencesPerItem = 5000

// Entry is one item to expand: the record plus its identity and any
// per-instance exclusions carried over from the wire format.
type Entry struct {
	UID     string
	Record  model.UpsertRecord
	ExDates []time.Time
}

// Config controls how expansion is performed.
type Config struct {
	// DisplayLocation is the timezone to which all occurrences are
	// converted. If nil, time.UTC is used.
	DisplayLocation *time.Location

	// RangeStart / RangeEnd define the inclusive window for occurrences.
	RangeStart time.Time
	RangeEnd   time.Time

	// MaxOccurrencesPerItem caps runaway expansions. If zero,
	// defaultMaxOccurrencesPerItem is used.
	MaxOccurrencesPerItem int
}

// Result wraps the expanded occurrences plus the UIDs of items whose
// expansion hit the cap.
type Result struct {
	Occurrences []model.Occurrence
	Truncated   []string
}

// Expand turns the given entries into occurrences inside the configured
// window. Unscheduled entries (no time range, i.e. dateless tasks) are
// skipped: they have no position on a calendar.
func Expand(entries []Entry, cfg Config) (Result, error) {
	var result Result

	if cfg.RangeEnd.Before(cfg.RangeStart) {
		return result, errors.New("schedule: RangeEnd is before RangeStart")
	}
	if cfg.DisplayLocation == nil {
		cfg.DisplayLocation = time.UTC
	}
	if cfg.MaxOccurrencesPerItem <= 0 {
		cfg.MaxOccurrencesPerItem = defaultMaxOccurrencesPerItem
	}

	all := make([]model.Occurrence, 0)
	for _, e := range entries {
		if e.Record.When == nil {
			continue
		}

		occ, hitCap := expandEntry(e, cfg)
		all = append(all, occ...)

		if hitCap {
			result.Truncated = append(result.Truncated, e.UID)
			applog.Error("schedule: truncated occurrences for item",
				errors.New("max occurrences reached"),
				"uid", e.UID,
				"cap", cfg.MaxOccurrencesPerItem,
			)
		}
	}

	result.Occurrences = all
	return result, nil
}

func expandEntry(e Entry, cfg Config) ([]model.Occurrence, bool) {
	if e.Record.Recurrence == nil {
		return expandSingle(e, cfg), false
	}
	return expandRecurring(e, cfg)
}

func expandSingle(e Entry, cfg Config) []model.Occurrence {
	start := e.Record.When.Start
	end := e.Record.When.ResolvedEnd(e.Record.Type)

	if !rangesOverlap(start, end, cfg.RangeStart, cfg.RangeEnd) {
		return nil
	}
	return []model.Occurrence{makeOccurrence(e, start, end, cfg.DisplayLocation)}
}

func expandRecurring(e Entry, cfg Config) ([]model.Occurrence, bool) {
	out := make([]model.Occurrence, 0)
	hitCap := false

	start := e.Record.When.Start
	duration := e.Record.When.Duration(e.Record.Type)

	rr, err := e.Record.Recurrence.RRule(start)
	if err != nil {
		applog.Error("schedule: failed to build rrule", err, "uid", e.UID)
		return out, false
	}

	var set rrule.Set
	set.RRule(rr)
	for _, ex := range e.ExDates {
		set.ExDate(ex.In(start.Location()))
	}

	rangeStart := cfg.RangeStart.In(start.Location())
	rangeEnd := cfg.RangeEnd.In(start.Location())

	occTimes := set.Between(rangeStart, rangeEnd, true)
	if len(occTimes) > cfg.MaxOccurrencesPerItem {
		occTimes = occTimes[:cfg.MaxOccurrencesPerItem]
		hitCap = true
	}

	for _, occStart := range occTimes {
		out = append(out, makeOccurrence(e, occStart, occStart.Add(duration), cfg.DisplayLocation))
	}

	return out, hitCap
}

// makeOccurrence converts one concrete start/end into an Occurrence
// normalized into displayLoc.
func makeOccurrence(e Entry, start, end time.Time, displayLoc *time.Location) model.Occurrence {
	startLocal := start.In(displayLoc)

	return model.Occurrence{
		UID:     e.UID,
		Summary: e.Record.Summary,
		Type:    e.Record.Type,
		Status:  e.Record.Status,
		Tags:    e.Record.Tags,
		// Stable per-instance key derived from the local start time.
		InstanceKey: startLocal.Format(time.RFC3339Nano),
		Start:       startLocal,
		End:         end.In(displayLoc),
	}
}

func rangesOverlap(aStart, aEnd, bStart, bEnd time.Time) bool {
	if aEnd.Before(bStart) {
		return false
	}
	if bEnd.Before(aStart) {
		return false
	}
	return true
}
