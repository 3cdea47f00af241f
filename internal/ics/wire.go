// Package ics is the boundary to the iCalendar wire format. The core
// treats the calendar text as opaque beyond what it needs: DTSTART/DTEND,
// SUMMARY, CATEGORIES, the RRULE line (frequency, interval, weekday set)
// and EXDATE exceptions.
package ics

import (
	"bytes"
	"errors"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	applog "nlcal/internal/log"
	"nlcal/internal/model"
	"nlcal/internal/rule"
)

// propItemType carries the item type across the wire; plain iCalendar
// has no field for it.
const propItemType = ical.ComponentProperty("X-ITEM-TYPE")

var wireToStatus = map[string]model.ItemStatus{
	"BACKLOG": model.StatusBacklog,
	"TODO":    model.StatusTodo,
	"DOING":   model.StatusInProgress,
	"DONE":    model.StatusDone,
}

var wireToType = map[string]model.ItemType{
	"EVENT":    model.TypeEvent,
	"BLOCK":    model.TypeBlock,
	"REMINDER": model.TypeReminder,
	"TASK":     model.TypeTask,
}

// Item is one VEVENT decoded into the core's terms. EXDATE exceptions
// ride alongside the record because the record itself has no notion of
// per-instance exclusions; occurrence expansion consumes them.
type Item struct {
	UID     string
	Record  model.UpsertRecord
	ExDates []time.Time
}

// Encode serializes a scheduled record as a single-event iCalendar
// payload. now is used only for the DTSTAMP line; it is supplied by the
// caller, never read from the process clock.
func Encode(rec *model.UpsertRecord, uid string, now time.Time) (string, error) {
	if rec == nil {
		return "", errors.New("ics: record is nil")
	}
	if rec.When == nil {
		return "", errors.New("ics: record has no time range")
	}
	if uid == "" {
		return "", errors.New("ics: uid is empty")
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)

	ev := cal.AddEvent(uid)
	ev.SetDtStampTime(now.UTC())
	ev.SetStartAt(rec.When.Start)
	ev.SetEndAt(rec.When.ResolvedEnd(rec.Type))
	if rec.Summary != "" {
		ev.SetSummary(rec.Summary)
	}
	ev.SetProperty(ical.ComponentPropertyStatus, strings.ToUpper(rec.Status.String()))
	ev.SetProperty(propItemType, strings.ToUpper(rec.Type.String()))
	if !rec.Tags.Empty() {
		ev.SetProperty(ical.ComponentPropertyCategories, strings.Join(rec.Tags.All(), ","))
	}
	if rec.Recurrence != nil {
		ev.SetProperty(ical.ComponentPropertyRrule, rec.Recurrence.RRuleString())
	}

	return cal.Serialize(), nil
}

// Decode parses an iCalendar payload into items. Events that cannot be
// decoded are logged and skipped so one broken VEVENT does not discard
// the rest of the payload.
func Decode(body []byte) ([]Item, error) {
	if len(body) == 0 {
		return nil, errors.New("ics: empty payload")
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	items := make([]Item, 0)
	for _, ve := range cal.Events() {
		item, derr := decodeVEvent(ve)
		if derr != nil {
			applog.Error("ics: vevent decode failed", derr)
			continue
		}
		items = append(items, item)
	}

	return items, nil
}

func decodeVEvent(ve *ical.VEvent) (Item, error) {
	var out Item

	uidProp := ve.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return out, errors.New("missing UID")
	}
	out.UID = uidProp.Value

	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		out.Record.Summary = p.Value
	}

	// STATUS and the X- type property fall back to the defaults when the
	// value is absent or foreign (e.g. CONFIRMED from another producer).
	out.Record.Status = model.DefaultStatus
	out.Record.Type = model.DefaultType
	if p := ve.GetProperty(ical.ComponentPropertyStatus); p != nil {
		if s, ok := wireToStatus[strings.ToUpper(strings.TrimSpace(p.Value))]; ok {
			out.Record.Status = s
		}
	}
	if p := ve.GetProperty(propItemType); p != nil {
		if ty, ok := wireToType[strings.ToUpper(strings.TrimSpace(p.Value))]; ok {
			out.Record.Type = ty
		}
	}

	// DTSTART / DTEND via the library's timezone handling.
	start, err := ve.GetStartAt()
	if err != nil {
		return out, err
	}
	tr := model.TimeRange{Start: start}
	if end, eerr := ve.GetEndAt(); eerr == nil && !end.IsZero() && !end.Before(start) {
		tr.End = &end
	}
	out.Record.When = &tr

	if p := ve.GetProperty(ical.ComponentPropertyCategories); p != nil && p.Value != "" {
		for _, tag := range strings.Split(p.Value, ",") {
			out.Record.Tags.Add(tag)
		}
	}

	// RRULE: only frequency/interval/weekday survive the trip into the
	// core's rule type; anything richer is rejected by the rule package.
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil && p.Value != "" {
		r, rerr := rule.ParseRRuleString(p.Value)
		if rerr != nil {
			return out, rerr
		}
		out.Record.Recurrence = &r
	}

	// EXDATE may appear multiple times, each with a comma-separated list.
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, perr := parseWireTime(part); perr == nil {
				out.ExDates = append(out.ExDates, t)
			}
		}
	}

	return out, nil
}

// parseWireTime parses the basic ICS date / date-time forms used by
// EXDATE values.
func parseWireTime(v string) (time.Time, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return time.Time{}, errors.New("empty time value")
	}

	// UTC form, e.g. 20250101T090000Z
	if strings.HasSuffix(v, "Z") {
		const layout = "20060102T150405Z"
		return time.Parse(layout, v)
	}

	// Floating date-time, e.g. 20250101T090000
	if strings.Contains(v, "T") {
		const layout = "20060102T150405"
		return time.ParseInLocation(layout, v, time.UTC)
	}

	// Date-only, e.g. 20250101
	const layoutDate = "20060102"
	return time.ParseInLocation(layoutDate, v, time.UTC)
}
