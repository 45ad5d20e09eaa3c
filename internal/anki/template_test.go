package anki

import (
	"errors"
	"strings"
	"testing"
)

func testContext() *renderContext {
	return &renderContext{
		fields: map[string]string{
			"Front": "<b>Paris</b>",
			"Back":  "France [sound:fr.mp3]",
			"Empty": "",
		},
		tags:     "geo europe",
		deck:     "Default",
		noteType: "Basic",
		card:     "Card 1",
		clozeOrd: 1,
		side:     question,
		sounds:   []string{"fr.mp3"},
	}
}

func TestRenderTemplate(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
		want string
	}{
		{"field", "{{Front}}", "<b>Paris</b>"},
		{"spaces in tag", "{{ Front }}", "<b>Paris</b>"},
		{"text filter", "{{text:Front}}", "Paris"},
		{"section shown", "{{#Front}}[{{Front}}]{{/Front}}", "[<b>Paris</b>]"},
		{"section hidden", "a{{#Empty}}x{{/Empty}}b", "ab"},
		{"inverted section", "{{^Empty}}none{{/Empty}}", "none"},
		{"specials", "{{Deck}}/{{Type}}/{{Card}}/{{Tags}}", "Default/Basic/Card 1/geo europe"},
		{"type filter", "{{type:Back}}", ""},
		{"plain text", "no tags here", "no tags here"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := renderTemplate(tt.tmpl, testContext())
			if err != nil {
				t.Fatalf("renderTemplate() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("renderTemplate() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRenderTemplateErrors(t *testing.T) {
	tests := []struct {
		name string
		tmpl string
	}{
		{"unknown field", "{{Missing}}"},
		{"unknown section", "{{#Missing}}x{{/Missing}}"},
		{"unclosed section", "{{#Front}}x"},
		{"stray close", "x{{/Front}}"},
		{"mismatched close", "{{#Front}}{{#Back}}{{/Front}}{{/Back}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := renderTemplate(tt.tmpl, testContext()); err == nil {
				t.Errorf("renderTemplate(%q) expected error", tt.tmpl)
			}
		})
	}

	_, err := renderTemplate("{{Missing}}", testContext())
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("unknown field error = %v, want ErrNotFound", err)
	}
}

func TestRenderNotePlayTokens(t *testing.T) {
	col := openTestCollection(t)
	nt, _ := col.NoteType("Basic")

	n := NewNote(nt)
	n.Fields[0] = "hello [sound:a.mp3]"
	n.Fields[1] = "world [sound:b.mp3]"

	out, err := col.renderNote(n, Card{Ord: 0, DeckID: DefaultDeckID})
	if err != nil {
		t.Fatalf("renderNote() error = %v", err)
	}

	if out.QuestionHTML != "hello [anki:play:q:0]" {
		t.Errorf("question = %q", out.QuestionHTML)
	}
	if !strings.HasPrefix(out.AnswerHTML, "hello [anki:play:q:0]") {
		t.Errorf("answer does not start with the front side: %q", out.AnswerHTML)
	}
	if !strings.Contains(out.AnswerHTML, "<hr id=answer>") || !strings.HasSuffix(out.AnswerHTML, "world [anki:play:a:1]") {
		t.Errorf("answer = %q", out.AnswerHTML)
	}
	if !strings.Contains(out.CSS, ".card") {
		t.Errorf("CSS = %q", out.CSS)
	}
}

func TestClozeHint(t *testing.T) {
	rc := testContext()
	rc.clozeOrd = 1

	if got := rc.cloze("{{c1::a}} {{c1::b::hint}} {{c2::c}}"); got != `<span class="cloze">[...]</span> <span class="cloze">[hint]</span> c` {
		t.Errorf("cloze() question = %q", got)
	}

	rc.side = answer
	if got := rc.cloze("{{c1::a}} {{c2::c}}"); got != `<span class="cloze">a</span> c` {
		t.Errorf("cloze() answer = %q", got)
	}
}
