package mapper

import (
	"fmt"
	"strings"
)

// TagState records which one-time tag rewrites already happened
type TagState struct {
	TagsInitialized      bool `json:"tags_initialized"`
	NumberingInitialized bool `json:"numbering_initialized"`
}

// NumberTags rewrites the tag lines for the "numbered tags" toggle.
//
// When no tag line has content every row gets its line number as tag.
// Switching numbering on appends line numbers once; switching it off strips
// trailing digits again. The returned rows are a copy.
func NumberTags(rows []Row, state TagState, numbered bool) ([]Row, TagState) {
	out := make([]Row, len(rows))
	copy(out, rows)

	if len(out) == 0 {
		return out, state
	}

	if !anyTags(out) {
		for i := range out {
			out[i].Tags = fmt.Sprintf("%d", i+1)
		}
		state.NumberingInitialized = true
		return out, state
	}

	switch {
	case numbered && !state.NumberingInitialized:
		for i := range out {
			tags := stripNumbers(ParseTags(out[i].Tags))
			for j, tag := range tags {
				tags[j] = fmt.Sprintf("%s%d", tag, i+1)
			}
			out[i].Tags = strings.Join(tags, ", ")
		}
		state.NumberingInitialized = true
	case !numbered:
		for i := range out {
			out[i].Tags = strings.Join(stripNumbers(ParseTags(out[i].Tags)), ", ")
		}
		state.NumberingInitialized = false
	}

	return out, state
}

// RepeatTags copies the first non-empty tag line to every row when the
// "repeat tags" toggle is switched on. Switching it off falls back to
// NumberTags.
func RepeatTags(rows []Row, state TagState, repeat, numbered bool) ([]Row, TagState) {
	if !repeat {
		state.TagsInitialized = false
		return NumberTags(rows, state, numbered)
	}

	out := make([]Row, len(rows))
	copy(out, rows)

	if state.TagsInitialized {
		return out, state
	}
	state.TagsInitialized = true

	var first []string
	for _, r := range out {
		if tags := ParseTags(r.Tags); len(tags) > 0 {
			first = unique(tags)
			break
		}
	}
	if len(first) == 0 {
		for i := range out {
			out[i].Tags = ""
		}
		return out, state
	}

	line := strings.Join(first, ", ")
	for i := range out {
		out[i].Tags = line
	}
	return out, state
}

func anyTags(rows []Row) bool {
	for _, r := range rows {
		if strings.TrimSpace(r.Tags) != "" {
			return true
		}
	}
	return false
}

func stripNumbers(tags []string) []string {
	var out []string
	for _, tag := range tags {
		if tag = strings.TrimRight(tag, "0123456789"); tag != "" {
			out = append(out, tag)
		}
	}
	return out
}

func unique(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	var out []string
	for _, tag := range tags {
		if !seen[tag] {
			seen[tag] = true
			out = append(out, tag)
		}
	}
	return out
}
