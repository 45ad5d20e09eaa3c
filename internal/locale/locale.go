// Package locale holds the user-facing strings of generated pages and CLI
// messages. Portuguese is the source language; English is a translation.
package locale

import (
	"golang.org/x/text/language"
)

var (
	supported = []language.Tag{language.Portuguese, language.English}
	matcher   = language.NewMatcher(supported)
)

// english maps Portuguese source strings to English
var english = func() map[string]string {
	pairs := [][2]string{
		{"Frente", "Front"},
		{"Verso", "Back"},
		{"Cards Exportados", "Exported Cards"},
		{"Nenhum conteúdo para exibir.", "No content to display."},
		{"Linha vazia.", "Empty line."},
		{"Selecione um deck e um tipo de nota para visualizar.", "Select a deck and a note type to preview."},
		{"Erro na pré-visualização:", "Preview error:"},
		{"Erro ao renderizar card %d:", "Error rendering card %d:"},
		{"Nenhum card válido para visualizar!", "No valid cards to preview!"},
		{"Não há conteúdo para exportar.", "There is no content to export."},
		{"Por favor, selecione um Tipo de Nota para exportar.", "Please select a Note Type to export."},
		{"Por favor, selecione um deck e um tipo de nota.", "Please select a deck and a note type."},
		{"%d cards adicionados com sucesso!", "%d cards added successfully!"},
		{"%d linhas falharam.", "%d lines failed."},
		{"Cards: %d", "Cards: %d"},
		{"Arquivo exportado para %s", "File exported to %s"},
		{"Estado restaurado.", "State restored."},
		{"Nenhum estado salvo para restaurar.", "No saved state to restore."},
		{"Deck %q criado.", "Deck %q created."},
		{"Mídia %s adicionada ao campo %s.", "Media %s added to field %s."},
		{"Observando %s (Ctrl+C para sair)", "Watching %s (Ctrl+C to quit)"},
		{"Pré-visualização atualizada: %s", "Preview updated: %s"},
		{"Nenhum card encontrado no deck %q.", "No cards found in deck %q."},
		{"Renderizando e processando cards...", "Rendering and processing cards..."},
		{"Renderizando pré-visualização dos cards...", "Rendering card previews..."},
		{"Adicionando cards...", "Adding cards..."},
		{"Nenhuma mídia referenciada.", "No media referenced."},
		{"Delimitadores ativos: %s", "Active delimiters: %s"},
		{"Mapeamento de campos: %s", "Field mapping: %s"},
		{"Sem mapeamento (posicional).", "No mapping (positional)."},
		{"Estado arquivado em %s", "State archived to %s"},
	}
	m := make(map[string]string, len(pairs))
	for _, p := range pairs {
		m[p[0]] = p[1]
	}
	return m
}()

// Translator returns strings in one language
type Translator struct {
	tag language.Tag
}

// New returns a translator for the best supported match of the given
// language preferences ("pt", "en-US", "pt-BR,en;q=0.8"). Unknown or empty
// preferences fall back to Portuguese.
func New(prefs ...string) *Translator {
	tag, _ := language.MatchStrings(matcher, prefs...)
	base, _ := tag.Base()
	if base.String() == "en" {
		return &Translator{tag: language.English}
	}
	return &Translator{tag: language.Portuguese}
}

// Code returns the persisted language code, "pt" or "en"
func (t *Translator) Code() string {
	if t == nil {
		return "pt"
	}
	base, _ := t.tag.Base()
	return base.String()
}

// T translates a source string. Missing translations return the source.
func (t *Translator) T(key string) string {
	if t.Code() != "en" {
		return key
	}
	if s, ok := english[key]; ok {
		return s
	}
	return key
}
