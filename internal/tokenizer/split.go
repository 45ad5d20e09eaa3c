package tokenizer

import (
	"strings"
	"unicode"
)

// SplitParts splits one line of card text on the active delimiters.
//
// A delimiter only splits when the number of unescaped double quotes before
// it is even, so text inside "..." never splits. A quote preceded by a
// backslash does not count. With an odd number of quotes the tail after the
// last quote stays inside the quoted region. Parts are returned untrimmed and
// there is always at least one part.
func SplitParts(line string, set *Set) []string {
	active := set.Active()

	var (
		parts     []string
		start     int
		inQuote   bool
		backslash bool
	)

	for i, r := range line {
		switch {
		case r == '"' && !backslash:
			inQuote = !inQuote
		case !inQuote && isOneOf(r, active):
			parts = append(parts, line[start:i])
			start = i + len(string(r))
		}
		// a backslash only escapes the character right after it
		backslash = r == '\\' && !backslash
	}

	return append(parts, line[start:])
}

// HasDelimiter reports whether line contains any active delimiter
func HasDelimiter(line string, set *Set) bool {
	return strings.ContainsAny(line, string(set.Active()))
}

// IsCardLine reports whether AddCards should turn the line into a note.
// Blank lines are skipped, and so are lines without a delimiter that have
// fewer than two words.
func IsCardLine(line string, set *Set) bool {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}
	if !HasDelimiter(line, set) && len(strings.Fields(line)) < 2 {
		return false
	}
	return true
}

// HasLetter reports whether s contains at least one letter
func HasLetter(s string) bool {
	return strings.IndexFunc(s, unicode.IsLetter) >= 0
}

// IsPreviewLine reports whether a line is a valid card for the card viewer
// and the card counter: non-blank, contains a letter and a delimiter.
func IsPreviewLine(line string, set *Set) bool {
	line = strings.TrimSpace(line)
	return line != "" && HasLetter(line) && HasDelimiter(line, set)
}

// CountCards counts the lines of text that look like cards
func CountCards(text string, set *Set) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		if IsPreviewLine(line, set) {
			count++
		}
	}
	return count
}

// Join re-assembles trimmed parts with the primary delimiter
func Join(parts []string, set *Set) string {
	return strings.Join(parts, string(set.Primary()))
}

func isOneOf(r rune, set []rune) bool {
	for _, s := range set {
		if r == s {
			return true
		}
	}
	return false
}
