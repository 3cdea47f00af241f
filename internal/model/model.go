package model

import (
	"strings"
	"time"

	"nlcal/internal/rule"
)

// TimeRange is the resolved scheduling window of an item. Start is always
// an absolute instant (timezone already applied). End is optional; when
// absent, consumers derive a duration from the item type via
// DefaultDuration.
type TimeRange struct {
	Start time.Time
	End   *time.Time
}

// Duration returns the explicit range length, or the type-dependent
// default when no end was given.
func (tr TimeRange) Duration(typ ItemType) time.Duration {
	if tr.End != nil {
		return tr.End.Sub(tr.Start)
	}
	return DefaultDuration(typ)
}

// ResolvedEnd returns the explicit end, or start plus the type default.
func (tr TimeRange) ResolvedEnd(typ ItemType) time.Time {
	if tr.End != nil {
		return *tr.End
	}
	return tr.Start.Add(DefaultDuration(typ))
}

// ItemStatus is the workflow state of an item.
type ItemStatus int

const (
	StatusBacklog ItemStatus = iota
	StatusTodo
	StatusInProgress
	StatusDone
)

// DefaultStatus is used when no status marker is present or the marker
// value is not recognized.
const DefaultStatus = StatusTodo

func (s ItemStatus) String() string {
	switch s {
	case StatusBacklog:
		return "backlog"
	case StatusTodo:
		return "todo"
	case StatusInProgress:
		return "doing"
	case StatusDone:
		return "done"
	default:
		return "todo"
	}
}

// Marker returns the sigil form used in free-text notation.
func (s ItemStatus) Marker() string {
	return "%" + s.String()
}

// ItemType determines the default duration of an item and whether it can
// exist without a start instant.
type ItemType int

const (
	TypeEvent ItemType = iota
	TypeBlock
	TypeReminder
	TypeTask
)

// DefaultType is used when no type marker is present or the marker value
// is not recognized.
const DefaultType = TypeEvent

func (t ItemType) String() string {
	switch t {
	case TypeEvent:
		return "event"
	case TypeBlock:
		return "block"
	case TypeReminder:
		return "reminder"
	case TypeTask:
		return "task"
	default:
		return "event"
	}
}

// Marker returns the sigil form used in free-text notation.
func (t ItemType) Marker() string {
	return "@" + t.String()
}

// RequiresStart reports whether an item of this type must carry a time
// range. Only tasks are schedulable without one.
func (t ItemType) RequiresStart() bool {
	return t != TypeTask
}

// DefaultDuration is the duration assumed for an item whose time range has
// no explicit end.
func DefaultDuration(t ItemType) time.Duration {
	switch t {
	case TypeReminder:
		return 15 * time.Minute
	case TypeTask:
		return 30 * time.Minute
	default: // Event, Block
		return time.Hour
	}
}

// TagSet is an ordered set of free-text tags. Insertion order is preserved
// so that rendering is stable across round trips.
type TagSet struct {
	tags []string
}

// NewTagSet builds a set from the given tags, dropping duplicates while
// keeping first-seen order.
func NewTagSet(tags ...string) TagSet {
	var s TagSet
	for _, t := range tags {
		s.Add(t)
	}
	return s
}

// Add appends the tag unless it is already present (case-sensitive).
func (s *TagSet) Add(tag string) {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return
	}
	for _, t := range s.tags {
		if t == tag {
			return
		}
	}
	s.tags = append(s.tags, tag)
}

func (s TagSet) Has(tag string) bool {
	for _, t := range s.tags {
		if t == tag {
			return true
		}
	}
	return false
}

func (s TagSet) Empty() bool {
	return len(s.tags) == 0
}

func (s TagSet) Len() int {
	return len(s.tags)
}

// All returns the tags in insertion order. The returned slice is a copy.
func (s TagSet) All() []string {
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}

func (s TagSet) Equal(o TagSet) bool {
	if len(s.tags) != len(o.tags) {
		return false
	}
	for i := range s.tags {
		if s.tags[i] != o.tags[i] {
			return false
		}
	}
	return true
}

// NumericAttrs carries the scalar attributes of an item. They have no
// free-text notation; callers set them directly.
type NumericAttrs struct {
	Urgency    int
	Load       int
	Importance int
	Postponed  int
}

// UpsertRecord is the structured form of one free-text item line. It is
// built fresh on every parse; identity (row ids, hrefs, sync tokens)
// belongs to the storage collaborator.
type UpsertRecord struct {
	Summary    string
	When       *TimeRange
	Recurrence *rule.RecurrenceRule
	Status     ItemStatus
	Type       ItemType
	Tags       TagSet
	Attrs      NumericAttrs
}

// Occurrence is a single concrete instance of an item after recurrence
// expansion and timezone normalization.
type Occurrence struct {
	UID     string
	Summary string
	Type    ItemType
	Status  ItemStatus
	Tags    TagSet

	// InstanceKey uniquely identifies a single occurrence of a recurring
	// item, derived from the local start time.
	InstanceKey string

	// Start / End are in the configured display timezone.
	Start time.Time
	End   time.Time
}
