package anki

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"codeberg.org/snonux/delimit/internal/media"
)

var (
	tagRe      = regexp.MustCompile(`(?s)\{\{(.*?)\}\}`)
	soundTagRe = regexp.MustCompile(`\[sound:(.*?)\]`)
	clozeRe    = regexp.MustCompile(`(?s)\{\{c(\d+)::(.*?)(?:::(.*?))?\}\}`)
)

// RenderOutput is the rendered question and answer of a card
type RenderOutput struct {
	QuestionHTML string
	AnswerHTML   string
	CSS          string
}

type side byte

const (
	question side = 'q'
	answer   side = 'a'
)

// renderContext carries everything a template can reference
type renderContext struct {
	fields    map[string]string
	tags      string
	deck      string
	noteType  string
	card      string
	clozeOrd  int
	side      side
	frontSide string
	sounds    []string
}

func (c *Collection) templateContext(n *Note, ord int, deckID int64) *renderContext {
	rc := &renderContext{
		fields:   n.Items(),
		tags:     strings.Join(n.Tags, " "),
		deck:     c.deckName(deckID),
		noteType: n.NoteType.Name,
		clozeOrd: ord + 1,
		side:     question,
		sounds:   media.SoundNames(n.Fields),
	}
	if tmpl := templateFor(n.NoteType, ord); tmpl != nil {
		rc.card = tmpl.Name
	}
	return rc
}

// templateFor returns the template a card ordinal uses. Cloze note types
// render every card with their single template.
func templateFor(nt *NoteType, ord int) *Template {
	if nt.IsCloze() {
		if len(nt.Templates) == 0 {
			return nil
		}
		return &nt.Templates[0]
	}
	for i := range nt.Templates {
		if nt.Templates[i].Ord == ord {
			return &nt.Templates[i]
		}
	}
	return nil
}

// RenderCard renders question and answer of a stored card. Sound
// references become [anki:play:q|a:N] tokens where N is the position of
// the sound among all sound references of the note's fields.
func (c *Collection) RenderCard(ctx context.Context, card Card) (*RenderOutput, error) {
	n, err := c.GetNote(ctx, card.NoteID)
	if err != nil {
		return nil, err
	}
	return c.renderNote(n, card)
}

func (c *Collection) renderNote(n *Note, card Card) (*RenderOutput, error) {
	tmpl := templateFor(n.NoteType, card.Ord)
	if tmpl == nil {
		return nil, fmt.Errorf("template %d of %q: %w", card.Ord, n.NoteType.Name, ErrNotFound)
	}

	rc := c.templateContext(n, card.Ord, card.DeckID)

	q, err := renderTemplate(tmpl.QFmt, rc)
	if err != nil {
		return nil, fmt.Errorf("failed to render question: %w", err)
	}
	q = rc.playTokens(q)

	rc.side = answer
	rc.frontSide = q
	a, err := renderTemplate(tmpl.AFmt, rc)
	if err != nil {
		return nil, fmt.Errorf("failed to render answer: %w", err)
	}
	a = rc.playTokens(a)

	return &RenderOutput{QuestionHTML: q, AnswerHTML: a, CSS: n.NoteType.CSS}, nil
}

// playTokens replaces [sound:NAME] with play tokens for the current side
func (rc *renderContext) playTokens(html string) string {
	return soundTagRe.ReplaceAllStringFunc(html, func(tag string) string {
		name := soundTagRe.FindStringSubmatch(tag)[1]
		idx := len(rc.sounds)
		for i, s := range rc.sounds {
			if s == name {
				idx = i
				break
			}
		}
		return fmt.Sprintf("[anki:play:%c:%d]", rc.side, idx)
	})
}

// node is a parsed template element: text, a replacement or a section
type node struct {
	text     string
	tag      string
	section  string
	inverted bool
	children []*node
}

// parseTemplate builds the node tree of a template
func parseTemplate(tmpl string) ([]*node, error) {
	root := &node{}
	stack := []*node{root}

	last := 0
	for _, loc := range tagRe.FindAllStringSubmatchIndex(tmpl, -1) {
		cur := stack[len(stack)-1]
		if loc[0] > last {
			cur.children = append(cur.children, &node{text: tmpl[last:loc[0]]})
		}
		last = loc[1]

		tag := strings.TrimSpace(tmpl[loc[2]:loc[3]])
		switch {
		case strings.HasPrefix(tag, "#") || strings.HasPrefix(tag, "^"):
			sec := &node{section: strings.TrimSpace(tag[1:]), inverted: tag[0] == '^'}
			cur.children = append(cur.children, sec)
			stack = append(stack, sec)
		case strings.HasPrefix(tag, "/"):
			name := strings.TrimSpace(tag[1:])
			if len(stack) == 1 || cur.section != name {
				return nil, fmt.Errorf("unbalanced section: unexpected {{/%s}}", name)
			}
			stack = stack[:len(stack)-1]
		default:
			cur.children = append(cur.children, &node{tag: tag})
		}
	}

	if len(stack) > 1 {
		return nil, fmt.Errorf("unbalanced section: missing {{/%s}}", stack[len(stack)-1].section)
	}
	if last < len(tmpl) {
		root.children = append(root.children, &node{text: tmpl[last:]})
	}
	return root.children, nil
}

func renderTemplate(tmpl string, rc *renderContext) (string, error) {
	nodes, err := parseTemplate(tmpl)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := rc.render(&sb, nodes); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (rc *renderContext) render(sb *strings.Builder, nodes []*node) error {
	for _, n := range nodes {
		switch {
		case n.section != "":
			value, err := rc.value(n.section)
			if err != nil {
				return err
			}
			if (strings.TrimSpace(value) != "") != n.inverted {
				if err := rc.render(sb, n.children); err != nil {
					return err
				}
			}
		case n.tag != "":
			out, err := rc.replacement(n.tag)
			if err != nil {
				return err
			}
			sb.WriteString(out)
		default:
			sb.WriteString(n.text)
		}
	}
	return nil
}

// value resolves a field or special name
func (rc *renderContext) value(name string) (string, error) {
	switch name {
	case "FrontSide":
		return rc.frontSide, nil
	case "Tags":
		return rc.tags, nil
	case "Deck":
		return rc.deck, nil
	case "Type":
		return rc.noteType, nil
	case "Card":
		return rc.card, nil
	}
	if v, ok := rc.fields[name]; ok {
		return v, nil
	}
	return "", fmt.Errorf("unknown field %s: %w", name, ErrNotFound)
}

// replacement renders a {{filter:...:Field}} tag. Filters apply right to
// left, as written.
func (rc *renderContext) replacement(tag string) (string, error) {
	parts := strings.Split(tag, ":")
	name := strings.TrimSpace(parts[len(parts)-1])

	value, err := rc.value(name)
	if err != nil {
		return "", err
	}

	for i := len(parts) - 2; i >= 0; i-- {
		switch strings.TrimSpace(parts[i]) {
		case "text":
			value = stripHTML(value)
		case "cloze":
			value = rc.cloze(value)
		case "type":
			value = ""
		}
	}
	return value, nil
}

// cloze renders the deletions of value for the active cloze number
func (rc *renderContext) cloze(value string) string {
	return clozeRe.ReplaceAllStringFunc(value, func(m string) string {
		sub := clozeRe.FindStringSubmatch(m)
		text, hint := sub[2], sub[3]
		if sub[1] != fmt.Sprint(rc.clozeOrd) {
			return text
		}
		if rc.side == answer {
			return `<span class="cloze">` + text + `</span>`
		}
		if hint == "" {
			hint = "..."
		}
		return `<span class="cloze">[` + hint + `]</span>`
	})
}
