package render

import (
	"errors"
	"strings"
	"testing"

	"codeberg.org/snonux/delimit/internal/locale"
)

func TestPureBack(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   string
	}{
		{
			name:   "answer marker",
			answer: `Paris<hr id=answer>France`,
			want:   "France",
		},
		{
			name:   "quoted marker splits once",
			answer: `Q<hr id="answer">A<hr id="answer">B`,
			want:   `A<hr id="answer">B`,
		},
		{
			name:   "landmark fallback",
			answer: `<div>front</div><div class="t">Tradução: house</div>`,
			want:   `<div class="t">Tradução: house</div>`,
		},
		{
			name:   "no marker and no landmark",
			answer: `<div>front</div><div>back</div>`,
			want:   `<div>front</div><div>back</div>`,
		},
		{
			name:   "landmark without preceding tag",
			answer: `TRADUÇÃO first`,
			want:   `TRADUÇÃO first`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PureBack(tt.answer, DefaultLandmarks); got != tt.want {
				t.Errorf("PureBack() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestUniquifyIDs(t *testing.T) {
	html, css := UniquifyIDs(`<div id="x">a</div>`, `#x{color:red}`, 7)

	if !strings.Contains(html, `id="x_7"`) {
		t.Errorf("html = %q, want id=\"x_7\"", html)
	}
	if strings.Contains(html, `id="x"`) {
		t.Errorf("html still contains original id: %q", html)
	}
	if css != `#x_7{color:red}` {
		t.Errorf("css = %q, want %q", css, `#x_7{color:red}`)
	}
}

func TestUniquifyIDsScriptsAndPartialSelectors(t *testing.T) {
	html := `<span id = 'ans'>1</span><div id="ans-box"></div>` +
		`<script>document.getElementById('ans').hidden = true; getElementById("other")</script>`
	css := `#ans { color: red } #ans-box { margin: 0 } #answer { x: y } #ansx{}`

	gotHTML, gotCSS := UniquifyIDs(html, css, 42)

	for _, want := range []string{`id="ans_42"`, `id="ans-box_42"`, `getElementById("ans_42")`, `getElementById("other")`} {
		if !strings.Contains(gotHTML, want) {
			t.Errorf("html missing %q: %s", want, gotHTML)
		}
	}

	wantCSS := `#ans_42 { color: red } #ans-box_42 { margin: 0 } #answer { x: y } #ansx{}`
	if gotCSS != wantCSS {
		t.Errorf("css = %q, want %q", gotCSS, wantCSS)
	}
}

func TestUniquifyIDsIgnoresDataAttributes(t *testing.T) {
	html, css := UniquifyIDs(`<div data-id="y" id="x">a</div><p data-id="z"></p>`, `#x{} #y{}`, 7)

	want := `<div data-id="y" id="x_7">a</div><p data-id="z"></p>`
	if html != want {
		t.Errorf("html = %q, want %q", html, want)
	}
	if css != `#x_7{} #y{}` {
		t.Errorf("css = %q, want %q", css, `#x_7{} #y{}`)
	}

	html, _ = UniquifyIDs(`<p data-id="z"></p>`, "", 7)
	if html != `<p data-id="z"></p>` {
		t.Errorf("data-id alone was rewritten: %q", html)
	}
}

func TestUniquifyIDsWithoutIDs(t *testing.T) {
	html, css := UniquifyIDs(`<b>x</b>`, `#x{}`, 1)
	if html != `<b>x</b>` || css != `#x{}` {
		t.Errorf("UniquifyIDs() changed input without ids: %q %q", html, css)
	}
}

func TestPreviewPage(t *testing.T) {
	page := PreviewPage(Card{
		Front: "<b>Paris</b>",
		Back:  "France",
		CSS:   ".card{color:blue}",
		Tags:  []string{"geo1", "europe1"},
	}, locale.New("pt"))

	for _, want := range []string{
		"<meta charset='utf-8'>",
		".card{color:blue}",
		`<div class="front-title">Frente</div>`,
		`<div class="card-preview-wrapper card"><b>Paris</b></div>`,
		`<div class="back-title">Verso</div>`,
		"<div class='tags-preview'><b>Tags:</b> geo1, europe1</div>",
	} {
		if !strings.Contains(page, want) {
			t.Errorf("PreviewPage() missing %q", want)
		}
	}

	if strings.Contains(PreviewPage(Card{}, nil), "tags-preview'") {
		t.Error("PreviewPage() without tags rendered a tags block")
	}
}

func TestCompactPreviewPage(t *testing.T) {
	page := CompactPreviewPage(Card{Front: "F", Back: "B"})
	if !strings.Contains(page, "scale(0.55)") || !strings.Contains(page, `<div class="preview-scaler">`) {
		t.Errorf("CompactPreviewPage() = %s", page)
	}
}

func TestErrorPages(t *testing.T) {
	en := locale.New("en")

	page := ErrorPage(errors.New(`unknown field <Extra>`), en)
	if !strings.Contains(page, "<b>Preview error:</b>") || !strings.Contains(page, "unknown field &lt;Extra&gt;") {
		t.Errorf("ErrorPage() = %s", page)
	}

	page = CardErrorPage(3, errors.New("boom"), en)
	if !strings.Contains(page, "Error rendering card 3:") || !strings.Contains(page, "<pre>boom</pre>") {
		t.Errorf("CardErrorPage() = %s", page)
	}

	if got := MessagePage("Linha vazia."); got != "<html><body><p>Linha vazia.</p></body></html>" {
		t.Errorf("MessagePage() = %s", got)
	}
}

func TestExportDocument(t *testing.T) {
	tr := locale.New("pt")
	cards := []ExportCard{
		{HTML: CombinedCardHTML("Q1", "A1", tr), CSS: "#a_1{}"},
		{HTML: CombinedCardHTML("Q2", "A2", tr), CSS: "#a_2{}"},
	}

	doc := ExportDocument(cards, 0, tr)

	if !strings.HasPrefix(doc, "<html><head><meta charset='utf-8'>") || !strings.HasSuffix(doc, "</body></html>") {
		t.Errorf("ExportDocument() is not a full document")
	}
	if got := strings.Count(doc, `<div class="card-item">`); got != 2 {
		t.Errorf("card-item count = %d, want 2", got)
	}
	for _, want := range []string{
		"repeat(3, 1fr)",
		"<h1>Cards Exportados</h1>",
		"<style>#a_1{}</style>",
		`<div class="front-content"><div class="front-title">Frente</div>Q1</div>`,
		`<div class="back-content"><div class="back-title">Verso</div>A2</div>`,
		"equalizeCardHeights",
		"@media print",
		"width: 100%;",
	} {
		if !strings.Contains(doc, want) {
			t.Errorf("ExportDocument() missing %q", want)
		}
	}

	if doc := ExportDocument(nil, 4, tr); !strings.Contains(doc, "repeat(4, 1fr)") {
		t.Error("ExportDocument() ignored cardsPerRow")
	}
}
