package tokenizer

import (
	"fmt"
	"strings"
)

// Delimiter is one toggle-able separator symbol
type Delimiter struct {
	Name   string // Persisted name (as stored in the session file)
	Symbol rune
}

// Known lists the delimiters in display order
var Known = []Delimiter{
	{Name: "Tab", Symbol: '\t'},
	{Name: "Vírgula", Symbol: ','},
	{Name: "Ponto e Vírgula", Symbol: ';'},
	{Name: "Dois Pontos", Symbol: ':'},
	{Name: "Interrogação", Symbol: '?'},
	{Name: "Barra", Symbol: '/'},
	{Name: "Exclamação", Symbol: '!'},
	{Name: "Pipe", Symbol: '|'},
}

// DefaultSymbol is used whenever no delimiter is active
const DefaultSymbol = ';'

// Set holds the toggle state of every known delimiter
type Set struct {
	enabled map[string]bool
}

// NewSet creates a delimiter set with the given symbols enabled
func NewSet(symbols ...rune) *Set {
	s := &Set{enabled: make(map[string]bool)}
	for _, sym := range symbols {
		if d, ok := bySymbol(sym); ok {
			s.enabled[d.Name] = true
		}
	}
	return s
}

// FromStates restores a set from the persisted name→bool map.
// Unknown names are ignored.
func FromStates(states map[string]bool) *Set {
	s := &Set{enabled: make(map[string]bool)}
	for name, on := range states {
		if _, ok := byName(name); ok && on {
			s.enabled[name] = true
		}
	}
	return s
}

// States returns the persisted form of the set, one entry per known delimiter
func (s *Set) States() map[string]bool {
	states := make(map[string]bool, len(Known))
	for _, d := range Known {
		states[d.Name] = s.enabled[d.Name]
	}
	return states
}

// Toggle flips the delimiter identified by name or symbol
func (s *Set) Toggle(key string) error {
	d, err := Lookup(key)
	if err != nil {
		return err
	}
	s.enabled[d.Name] = !s.enabled[d.Name]
	return nil
}

// Enable switches a delimiter on or off
func (s *Set) Enable(key string, on bool) error {
	d, err := Lookup(key)
	if err != nil {
		return err
	}
	if on {
		s.enabled[d.Name] = true
	} else {
		delete(s.enabled, d.Name)
	}
	return nil
}

// Active returns the enabled symbols in display order, falling back to ';'
func (s *Set) Active() []rune {
	var active []rune
	if s != nil {
		for _, d := range Known {
			if s.enabled[d.Name] {
				active = append(active, d.Symbol)
			}
		}
	}
	if len(active) == 0 {
		return []rune{DefaultSymbol}
	}
	return active
}

// Primary returns the first active symbol; it is used to re-join parts
func (s *Set) Primary() rune {
	return s.Active()[0]
}

// Contains reports whether r is an active delimiter
func (s *Set) Contains(r rune) bool {
	for _, a := range s.Active() {
		if a == r {
			return true
		}
	}
	return false
}

// Lookup resolves a delimiter by persisted name, symbol or a few aliases
func Lookup(key string) (Delimiter, error) {
	if d, ok := byName(key); ok {
		return d, nil
	}
	switch strings.ToLower(key) {
	case "tab", `\t`:
		return Known[0], nil
	case "comma":
		return Known[1], nil
	case "semicolon":
		return Known[2], nil
	case "colon":
		return Known[3], nil
	case "question":
		return Known[4], nil
	case "slash":
		return Known[5], nil
	case "exclamation":
		return Known[6], nil
	case "pipe":
		return Known[7], nil
	}
	if r := []rune(key); len(r) == 1 {
		if d, ok := bySymbol(r[0]); ok {
			return d, nil
		}
	}
	return Delimiter{}, fmt.Errorf("unknown delimiter: %q", key)
}

func byName(name string) (Delimiter, bool) {
	for _, d := range Known {
		if d.Name == name {
			return d, true
		}
	}
	return Delimiter{}, false
}

func bySymbol(sym rune) (Delimiter, bool) {
	for _, d := range Known {
		if d.Symbol == sym {
			return d, true
		}
	}
	return Delimiter{}, false
}
