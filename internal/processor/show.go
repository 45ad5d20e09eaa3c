package processor

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"codeberg.org/snonux/delimit/internal/anki"
	"codeberg.org/snonux/delimit/internal/mapper"
	"codeberg.org/snonux/delimit/internal/media"
	"codeberg.org/snonux/delimit/internal/tokenizer"
)

var (
	soundFieldRe = regexp.MustCompile(`\[sound:([^\]]+)\]`)
	imgAltRe     = regexp.MustCompile(`(<img[^>]*)alt="[^"]*"([^>]*>)`)
	styleAttrRe  = regexp.MustCompile(`style="[^"]*"`)
	spacesRe     = regexp.MustCompile(`\s+`)
)

// ShowAllCards loads every note of deck back into card lines, one line per
// note with the fields joined by the primary delimiter. Lines without a
// letter are dropped.
func (p *Processor) ShowAllCards(ctx context.Context, deck string, set *tokenizer.Set) ([]string, error) {
	deckID, err := p.col.DeckID(deck)
	if err != nil {
		return nil, err
	}
	ids, err := p.col.FindNotesInDeck(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("deck %q has no notes: %w", deck, anki.ErrNotFound)
	}

	sep := " " + string(set.Primary()) + " "
	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		n, err := p.col.GetNote(ctx, id)
		if err != nil {
			return nil, err
		}

		values := make([]string, len(n.Fields))
		for i, v := range n.Fields {
			values[i] = cleanFieldValue(v)
		}
		line := strings.Join(values, sep)
		if tokenizer.HasLetter(line) {
			lines = append(lines, line)
		}
	}

	p.log.Debug("Loaded deck", zap.String("deck", deck), zap.Int("notes", len(ids)), zap.Int("lines", len(lines)))
	return lines, nil
}

// cleanFieldValue turns stored field HTML into single-line card text
func cleanFieldValue(v string) string {
	v = html.UnescapeString(v)
	v = soundFieldRe.ReplaceAllString(v, `<audio controls=""><source src="$1" type="audio/mpeg"></audio>`)
	v = imgAltRe.ReplaceAllString(v, "$1$2")
	v = styleAttrRe.ReplaceAllStringFunc(v, func(s string) string {
		return strings.ReplaceAll(s, ";", " ")
	})
	v = strings.ReplaceAll(v, "\u00a0", " ")
	return strings.TrimSpace(spacesRe.ReplaceAllString(v, " "))
}

// AddMediaToField appends the HTML snippet for media name to the part of
// line lineIdx (0-based) that feeds field. The parts are trimmed and
// joined again with the primary delimiter. Rows are returned unchanged
// when the line does not exist or no part feeds the field.
func (p *Processor) AddMediaToField(rows []mapper.Row, lineIdx int, field, name string, sel Selection) ([]mapper.Row, error) {
	nt, err := p.noteType(sel)
	if err != nil {
		return rows, err
	}
	if nt.FieldIndex(field) < 0 {
		return rows, fmt.Errorf("field %q of %s: %w", field, nt.Name, anki.ErrNotFound)
	}
	if lineIdx < 0 || lineIdx >= len(rows) {
		return rows, nil
	}

	out := make([]mapper.Row, len(rows))
	copy(out, rows)
	out[lineIdx].CardText = appendMedia(out[lineIdx].CardText, nt.FieldNames(), field, name, sel)
	return out, nil
}

func appendMedia(line string, fieldNames []string, field, name string, sel Selection) string {
	set := sel.delimiters()
	parts := tokenizer.SplitParts(line, set)
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}

	snippet := media.Snippet(name)
	for _, i := range mapper.TargetIndices(len(parts), sel.Mapping, fieldNames, field) {
		if parts[i] == "" {
			parts[i] = snippet
		} else {
			parts[i] += " " + snippet
		}
	}
	return tokenizer.Join(parts, set)
}
