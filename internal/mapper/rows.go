package mapper

import (
	"fmt"
	"strings"
)

// Row is one authored card together with its tag line. Keeping both in one
// record keeps card i and tag line i aligned when lines move.
type Row struct {
	CardText string
	Tags     string
}

// Rows pairs the card text area with the tag text area, line by line.
// Only trailing blank lines are dropped from either text, so a leading
// empty tag line still belongs to the first card. Missing tag lines
// become empty.
func Rows(cardsText, tagsText string) []Row {
	cardsText = TrimTrailing(cardsText)
	if cardsText == "" {
		return nil
	}

	cardLines := strings.Split(cardsText, "\n")
	tagLines := strings.Split(TrimTrailing(tagsText), "\n")

	rows := make([]Row, len(cardLines))
	for i, line := range cardLines {
		rows[i].CardText = line
		if i < len(tagLines) {
			rows[i].Tags = tagLines[i]
		}
	}
	return rows
}

// Split turns rows back into the two parallel texts
func Split(rows []Row) (cardsText, tagsText string) {
	cards := make([]string, len(rows))
	tags := make([]string, len(rows))
	for i, r := range rows {
		cards[i] = r.CardText
		tags[i] = r.Tags
	}
	return strings.Join(cards, "\n"), strings.Join(tags, "\n")
}

// AlignTags pads or truncates the tag text so it has one line per card line
func AlignTags(cardsText, tagsText string) string {
	_, tags := Split(Rows(cardsText, tagsText))
	return tags
}

// ParseTags splits a tag line on commas, dropping empty tokens
func ParseTags(line string) []string {
	var tags []string
	for _, tag := range strings.Split(line, ",") {
		if tag = strings.TrimSpace(tag); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// CardTags returns the tags for the card on 1-based line lineNo.
// Numbered tags get the line number appended when they are assigned.
func CardTags(row Row, lineNo int, numbered bool) []string {
	tags := ParseTags(row.Tags)
	if !numbered {
		return tags
	}
	for i, tag := range tags {
		tags[i] = fmt.Sprintf("%s%d", tag, lineNo)
	}
	return tags
}

// TrimTrailing normalizes CRLF line endings and removes trailing blank
// lines and whitespace. Leading lines are kept.
func TrimTrailing(s string) string {
	return strings.TrimRight(strings.ReplaceAll(s, "\r\n", "\n"), "\n\r\t ")
}
