package render

import (
	"fmt"
	"html"
	"strings"

	"codeberg.org/snonux/delimit/internal/locale"
)

// DefaultCardsPerRow is the grid width of an exported document
const DefaultCardsPerRow = 3

// Card is one rendered card after media embedding
type Card struct {
	Front string
	Back  string
	CSS   string
	Tags  []string
}

// ExportCard is one card block of an export document
type ExportCard struct {
	HTML string
	CSS  string
}

const previewStyle = `body { background-color: #F0F0F0; font-family: sans-serif; margin: 10px; }
.card-preview-wrapper {
    background-color: #FFF; box-shadow: 0 2px 5px rgba(0,0,0,0.1);
    border-radius: 5px; padding: 15px; overflow-x: auto;
}
.front-title, .back-title {
    text-align: center; font-size: 1.1em; font-weight: bold;
    margin: 10px 0 5px 0; color: #555;
}
.separator { border-top: 2px solid #EEE; margin: 15px 0; }
.tags-preview { margin-top: 15px; font-size: 0.9em; color: #333; }
`

const compactStyle = `body { background-color: #F0F0F0; font-family: sans-serif; margin: 10px; overflow: hidden; }
.preview-scaler {
    transform: scale(0.55);
    transform-origin: top left;
    width: 181.81%;
    height: 181.81%;
}
.card-preview-wrapper {
    background-color: #FFF; box-shadow: 0 2px 5px rgba(0,0,0,0.1);
    border-radius: 5px; padding: 15px; overflow-x: auto;
}
.separator { border-top: 2px solid #EEE; margin: 15px 0; }
`

// PreviewPage builds the page for a single line preview
func PreviewPage(c Card, tr *locale.Translator) string {
	var sb strings.Builder
	sb.WriteString("<html><head><meta charset='utf-8'><style>")
	sb.WriteString(previewStyle)
	sb.WriteString(c.CSS)
	sb.WriteString("</style></head><body>")
	fmt.Fprintf(&sb, `<div class="front-title">%s</div>`, tr.T("Frente"))
	fmt.Fprintf(&sb, `<div class="card-preview-wrapper card">%s</div>`, c.Front)
	sb.WriteString(`<div class="separator"></div>`)
	fmt.Fprintf(&sb, `<div class="back-title">%s</div>`, tr.T("Verso"))
	fmt.Fprintf(&sb, `<div class="card-preview-wrapper card">%s</div>`, c.Back)
	if len(c.Tags) > 0 {
		fmt.Fprintf(&sb, "<div class='tags-preview'><b>Tags:</b> %s</div>", html.EscapeString(strings.Join(c.Tags, ", ")))
	}
	sb.WriteString("</body></html>")
	return sb.String()
}

// CompactPreviewPage builds the scaled-down page used when browsing all
// cards one after another
func CompactPreviewPage(c Card) string {
	var sb strings.Builder
	sb.WriteString("<html><head><meta charset='utf-8'><style>")
	sb.WriteString(compactStyle)
	sb.WriteString(c.CSS)
	sb.WriteString(`</style></head><body><div class="preview-scaler">`)
	fmt.Fprintf(&sb, `<div class="card-preview-wrapper card">%s</div>`, c.Front)
	sb.WriteString(`<div class="separator"></div>`)
	fmt.Fprintf(&sb, `<div class="card-preview-wrapper card">%s</div>`, c.Back)
	sb.WriteString("</div></body></html>")
	return sb.String()
}

// MessagePage wraps a plain message
func MessagePage(msg string) string {
	return "<html><body><p>" + html.EscapeString(msg) + "</p></body></html>"
}

// ErrorPage renders a preview failure with the error text escaped
func ErrorPage(err error, tr *locale.Translator) string {
	return fmt.Sprintf("<html><body><p style='color:red;'><b>%s</b><br>%s</p></body></html>",
		tr.T("Erro na pré-visualização:"), html.EscapeString(err.Error()))
}

// CardErrorPage renders the failure of card n (1-based) in a card listing
func CardErrorPage(n int, err error, tr *locale.Translator) string {
	return fmt.Sprintf("<html><body>%s<br><pre>%s</pre></body></html>",
		fmt.Sprintf(tr.T("Erro ao renderizar card %d:"), n), html.EscapeString(err.Error()))
}

// CombinedCardHTML lays out front and back of one exported card
func CombinedCardHTML(front, back string, tr *locale.Translator) string {
	return fmt.Sprintf(`<div class="front-content"><div class="front-title">%s</div>%s</div>`+
		`<div class="separator"></div>`+
		`<div class="back-content"><div class="back-title">%s</div>%s</div>`,
		tr.T("Frente"), front, tr.T("Verso"), back)
}

// ExportDocument assembles the self-contained export document. Every card
// carries its own style block; the grid has cardsPerRow columns.
func ExportDocument(cards []ExportCard, cardsPerRow int, tr *locale.Translator) string {
	if cardsPerRow < 1 {
		cardsPerRow = DefaultCardsPerRow
	}

	var sb strings.Builder
	sb.WriteString("<html><head><meta charset='utf-8'>")
	sb.WriteString(exportStyle(cardsPerRow))
	sb.WriteString("</head><body>")
	fmt.Fprintf(&sb, `<h1>%s</h1><div class="card-container">`, tr.T("Cards Exportados"))

	for _, c := range cards {
		sb.WriteString(`<div class="card-item">`)
		fmt.Fprintf(&sb, "<style>%s</style>", c.CSS)
		fmt.Fprintf(&sb, `<div class="card-content-wrapper"><div class="card">%s</div></div>`, c.HTML)
		sb.WriteString("</div>")
	}

	sb.WriteString("</div>")
	sb.WriteString(equalizerScript)
	sb.WriteString("</body></html>")
	return sb.String()
}

func exportStyle(cardsPerRow int) string {
	return fmt.Sprintf(`<style>
* { box-sizing: border-box; }
body { background-color: #F0F0F0; font-family: sans-serif; margin: 15px; }
h1 { margin-bottom: 15px; }
.card-container { display: grid; grid-template-columns: repeat(%[1]d, 1fr); gap: 15px; }
.card-item { background-color: #FFF; box-shadow: 0 2px 5px rgba(0,0,0,0.1); border-radius: 5px; overflow: hidden; display: flex; flex-direction: column; }
.card-content-wrapper { padding: 15px; width: 100%%; flex-grow: 1; display: flex; flex-direction: column; max-height: 70vh; overflow-y: auto; }
.card-content-wrapper img { max-width: 100%%; height: auto; display: block; margin: auto; }
.card { flex-grow: 1; display: flex; flex-direction: column; background-size: cover; background-position: center; }
.front-title, .back-title { text-align: center; font-size: 1.1em; font-weight: bold; margin: 10px 0 5px 0; color: #555; }
.separator { border-top: 2px solid #EEE; margin: 15px 0; }
@media print {
    @page { size: A4; margin: 1cm; }
    body { background-color: #FFF !important; -webkit-print-color-adjust: exact; print-color-adjust: exact; margin: 0; }
    h1, .front-title, .back-title, .separator { display: none; }
    .card-container { grid-template-columns: repeat(%[1]d, 1fr); gap: 10px; }
    .card-item { box-shadow: none; border: 1px solid #DDD; page-break-inside: avoid !important; height: auto !important; max-height: none; overflow: visible; }
    .card-content-wrapper { max-height: none; overflow: visible; padding: 5px; }
    audio { display: none !important; }
    .card { display: block; height: auto !important; }
}
</style>`, cardsPerRow)
}

// equalizerScript gives all card blocks the height of the tallest one on
// screen; printing keeps natural heights
const equalizerScript = `<script>
function equalizeCardHeights() {
    if (window.matchMedia('print').matches) return;
    const cards = document.querySelectorAll('.card-item');
    if (cards.length === 0) return;
    let maxHeight = 0;
    cards.forEach(card => { card.style.height = 'auto'; });
    setTimeout(() => {
        cards.forEach(card => { if (card.offsetHeight > maxHeight) maxHeight = card.offsetHeight; });
        if (maxHeight > 0) { cards.forEach(card => { card.style.height = maxHeight + 'px'; }); }
    }, 200);
}
window.addEventListener('load', equalizeCardHeights);
window.addEventListener('resize', equalizeCardHeights);
</script>`
