package anki

import (
	"time"
)

// Note type kinds as stored in the collection
const (
	KindStandard = 0
	KindCloze    = 1
)

// Deck is a named bucket notes are filed into
type Deck struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Template renders one card of a note type
type Template struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
	QFmt string `json:"qfmt"`
	AFmt string `json:"afmt"`
}

// Field describes one field of a note type
type Field struct {
	Name string `json:"name"`
	Ord  int    `json:"ord"`
}

// NoteType is a model: ordered fields, card templates and CSS
type NoteType struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Kind      int        `json:"type"`
	Fields    []Field    `json:"flds"`
	Templates []Template `json:"tmpls"`
	CSS       string     `json:"css"`
	SortField int        `json:"sortf"`
	Mod       int64      `json:"mod"`
}

// FieldNames returns the field names in order
func (nt *NoteType) FieldNames() []string {
	names := make([]string, len(nt.Fields))
	for i, f := range nt.Fields {
		names[i] = f.Name
	}
	return names
}

// FieldIndex returns the position of a field, or -1
func (nt *NoteType) FieldIndex(name string) int {
	for i, f := range nt.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// IsCloze reports whether cards are generated from cloze deletions
func (nt *NoteType) IsCloze() bool {
	return nt.Kind == KindCloze
}

const defaultCSS = `.card {
  font-family: arial;
  font-size: 20px;
  text-align: center;
  color: black;
  background-color: white;
}`

const clozeCSS = defaultCSS + `

.cloze {
  font-weight: bold;
  color: blue;
}`

func fields(names ...string) []Field {
	out := make([]Field, len(names))
	for i, n := range names {
		out[i] = Field{Name: n, Ord: i}
	}
	return out
}

// stockNoteTypes are seeded into every new collection
func stockNoteTypes(now time.Time) []*NoteType {
	base := now.UnixMilli()
	return []*NoteType{
		{
			ID:     base,
			Name:   "Basic",
			Kind:   KindStandard,
			Fields: fields("Front", "Back"),
			Templates: []Template{{
				Name: "Card 1",
				Ord:  0,
				QFmt: "{{Front}}",
				AFmt: "{{FrontSide}}\n\n<hr id=answer>\n\n{{Back}}",
			}},
			CSS: defaultCSS,
			Mod: now.Unix(),
		},
		{
			ID:     base + 1,
			Name:   "Basic (and reversed card)",
			Kind:   KindStandard,
			Fields: fields("Front", "Back"),
			Templates: []Template{
				{
					Name: "Card 1",
					Ord:  0,
					QFmt: "{{Front}}",
					AFmt: "{{FrontSide}}\n\n<hr id=answer>\n\n{{Back}}",
				},
				{
					Name: "Card 2",
					Ord:  1,
					QFmt: "{{Back}}",
					AFmt: "{{FrontSide}}\n\n<hr id=answer>\n\n{{Front}}",
				},
			},
			CSS: defaultCSS,
			Mod: now.Unix(),
		},
		{
			ID:     base + 2,
			Name:   "Cloze",
			Kind:   KindCloze,
			Fields: fields("Text", "Back Extra"),
			Templates: []Template{{
				Name: "Cloze",
				Ord:  0,
				QFmt: "{{cloze:Text}}",
				AFmt: "{{cloze:Text}}<br>\n{{Back Extra}}",
			}},
			CSS: clozeCSS,
			Mod: now.Unix(),
		},
	}
}
