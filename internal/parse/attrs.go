package parse

import (
	"regexp"
	"strings"

	applog "nlcal/internal/log"
	"nlcal/internal/model"
)

// Sigil token patterns. Each extractor scans the whole remaining string
// and removes every occurrence in a single pass; tags in particular may
// appear both before and after the date expression.
var (
	reStatusToken = regexp.MustCompile(`%([A-Za-z]+)`)
	reTypeToken   = regexp.MustCompile(`@([A-Za-z]+)`)
	reTagToken    = regexp.MustCompile(`#([\w][\w/-]*)`)
)

// statusAliases maps the accepted status words (case-insensitive) onto
// the canonical values.
var statusAliases = map[string]model.ItemStatus{
	"back":       model.StatusBacklog,
	"backlog":    model.StatusBacklog,
	"todo":       model.StatusTodo,
	"t":          model.StatusTodo,
	"doing":      model.StatusInProgress,
	"inprogress": model.StatusInProgress,
	"i":          model.StatusInProgress,
	"done":       model.StatusDone,
	"d":          model.StatusDone,
}

var typeAliases = map[string]model.ItemType{
	"event":    model.TypeEvent,
	"block":    model.TypeBlock,
	"reminder": model.TypeReminder,
	"task":     model.TypeTask,
}

// ExtractStatus pulls the %status marker out of text. The first
// recognized value wins; unrecognized markers are logged, removed and
// replaced by the default. Absence of any marker yields the default with
// the text untouched.
func ExtractStatus(text string) (model.ItemStatus, string) {
	matches := reStatusToken.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return model.DefaultStatus, text
	}

	status := model.DefaultStatus
	found := false
	for _, m := range matches {
		word := strings.ToLower(text[m[2]:m[3]])
		if s, ok := statusAliases[word]; ok {
			if !found {
				status = s
				found = true
			}
			continue
		}
		applog.Warn("attrs: unknown status token", "token", word)
	}

	return status, removeSpans(text, matches)
}

// ExtractType pulls the @type marker out of text, with the same
// first-wins and default-on-unknown behavior as ExtractStatus.
func ExtractType(text string) (model.ItemType, string) {
	matches := reTypeToken.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return model.DefaultType, text
	}

	typ := model.DefaultType
	found := false
	for _, m := range matches {
		word := strings.ToLower(text[m[2]:m[3]])
		if t, ok := typeAliases[word]; ok {
			if !found {
				typ = t
				found = true
			}
			continue
		}
		applog.Warn("attrs: unknown type token", "token", word)
	}

	return typ, removeSpans(text, matches)
}

// ExtractTags collects every #tag occurrence in first-seen order and
// removes them all. Duplicate tags collapse into one entry.
func ExtractTags(text string) (model.TagSet, string) {
	matches := reTagToken.FindAllStringSubmatchIndex(text, -1)
	if matches == nil {
		return model.TagSet{}, text
	}

	var tags model.TagSet
	for _, m := range matches {
		tags.Add(text[m[2]:m[3]])
	}

	return tags, removeSpans(text, matches)
}

// removeSpans deletes every matched span from text, collapsing the
// whitespace left behind. Spans are assumed non-overlapping and in
// ascending order, as produced by FindAllStringSubmatchIndex.
func removeSpans(text string, matches [][]int) string {
	if len(matches) == 0 {
		return text
	}

	var b strings.Builder
	last := 0
	for _, m := range matches {
		b.WriteString(text[last:m[0]])
		b.WriteString(" ")
		last = m[1]
	}
	b.WriteString(text[last:])

	return collapseSpaces(b.String())
}
