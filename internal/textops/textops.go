// Package textops holds the editing operations applied to the card text
// as a whole: cleanup, cloze handling, line joins and paste conversions.
package textops

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrEmptySelection is returned when an operation needs text to act on
var ErrEmptySelection = errors.New("empty selection")

var (
	spanRe      = regexp.MustCompile(`(?s)<span([^>]*)>(.*?)</span>`)
	quotedRe    = regexp.MustCompile(`"[^"]*"`)
	clozeMarkRe = regexp.MustCompile(`(?s)\{\{c\d+::(.*?)(?:::.*?)?\}\}`)
)

// CleanSpanAttributes replaces ';' inside quoted span attribute values with
// a space so inline styles do not split a card line
func CleanSpanAttributes(text string) string {
	return spanRe.ReplaceAllStringFunc(text, func(m string) string {
		sub := spanRe.FindStringSubmatch(m)
		attrs := quotedRe.ReplaceAllStringFunc(sub[1], func(q string) string {
			return strings.ReplaceAll(q, ";", " ")
		})
		return "<span" + attrs + ">" + sub[2] + "</span>"
	})
}

// ReplaceNBSP turns non-breaking spaces into plain spaces
func ReplaceNBSP(text string) string {
	return strings.ReplaceAll(text, "\u00a0", " ")
}

// RemoveCloze strips cloze markup, keeping the deleted text
func RemoveCloze(text string) string {
	return clozeMarkRe.ReplaceAllString(text, "$1")
}

// WrapCloze wraps the first occurrence of target in text as cloze number n
func WrapCloze(text, target string, n int) (string, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return text, ErrEmptySelection
	}
	if n < 1 {
		return text, fmt.Errorf("invalid cloze number %d", n)
	}
	idx := strings.Index(text, target)
	if idx < 0 {
		return text, fmt.Errorf("%q not found", target)
	}
	return text[:idx] + fmt.Sprintf("{{c%d::%s}}", n, target) + text[idx+len(target):], nil
}

// WrapTag wraps the first occurrence of target in text with an HTML tag
// such as b, i, u or mark
func WrapTag(text, target, tag string) (string, error) {
	if target == "" {
		return text, ErrEmptySelection
	}
	idx := strings.Index(text, target)
	if idx < 0 {
		return text, fmt.Errorf("%q not found", target)
	}
	return text[:idx] + "<" + tag + ">" + target + "</" + tag + ">" + text[idx+len(target):], nil
}

// ToggleJoin joins all lines with spaces and returns the original text as
// saved. Called on single-line text with a saved original it restores
// that original instead.
func ToggleJoin(text, saved string) (result, newSaved string) {
	if !strings.Contains(text, "\n") {
		if saved != "" {
			return saved, ""
		}
		return text, ""
	}
	return strings.ReplaceAll(text, "\n", " "), text
}

// ConcatenateLines appends line i of other to line i of text
func ConcatenateLines(text, other string) string {
	a := strings.Split(strings.TrimSpace(text), "\n")
	b := strings.Split(strings.TrimSpace(other), "\n")

	n := max(len(a), len(b))
	out := make([]string, n)
	for i := range out {
		var left, right string
		if i < len(a) {
			left = a[i]
		}
		if i < len(b) {
			right = b[i]
		}
		out[i] = strings.TrimSpace(left + right)
	}
	return strings.Join(out, "\n")
}

// ReplaceAll replaces every case-insensitive occurrence of search and
// returns the new text with the number of replacements
func ReplaceAll(text, search, repl string) (string, int) {
	search = strings.TrimSpace(search)
	if search == "" {
		return text, 0
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(search))
	count := len(re.FindAllStringIndex(text, -1))
	return re.ReplaceAllLiteralString(text, repl), count
}

// ExcelToDelimited converts tab separated spreadsheet rows into " ; "
// separated card lines
func ExcelToDelimited(text string) string {
	lines := strings.Split(strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n")), "\n")
	for i, line := range lines {
		cols := strings.Split(line, "\t")
		for j := range cols {
			cols[j] = strings.TrimSpace(cols[j])
		}
		lines[i] = strings.Join(cols, " ; ")
	}
	return strings.Join(lines, "\n")
}
