package processor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"codeberg.org/snonux/delimit/internal/anki"
	"codeberg.org/snonux/delimit/internal/locale"
	"codeberg.org/snonux/delimit/internal/mapper"
	"codeberg.org/snonux/delimit/internal/media"
	"codeberg.org/snonux/delimit/internal/render"
	"codeberg.org/snonux/delimit/internal/tokenizer"
)

var (
	// ErrNoSelection is returned when a deck or note type is required but
	// not selected
	ErrNoSelection = errors.New("no deck or note type selected")
	// ErrNoContent is returned when there are no card lines to work on
	ErrNoContent = errors.New("no content")
)

// Progress is called after each processed line
type Progress func(done, total int)

// Selection is everything besides the card text that decides how a line
// becomes a note
type Selection struct {
	Deck         string
	NoteType     string
	Delimiters   *tokenizer.Set
	Mapping      mapper.FieldMapping
	NumberedTags bool
}

func (s Selection) delimiters() *tokenizer.Set {
	if s.Delimiters == nil {
		return tokenizer.NewSet()
	}
	return s.Delimiters
}

// Options configure a Processor
type Options struct {
	Translator  *locale.Translator
	Landmarks   []string // answer landmarks used when the answer marker is missing
	CardsPerRow int      // export grid width
}

// Processor handles the card processing logic
type Processor struct {
	col         *anki.Collection
	media       *media.Store
	tr          *locale.Translator
	landmarks   []string
	cardsPerRow int
	log         *zap.Logger
}

// New creates a processor working on col
func New(col *anki.Collection, opts Options, log *zap.Logger) *Processor {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Translator == nil {
		opts.Translator = locale.New()
	}
	if len(opts.Landmarks) == 0 {
		opts.Landmarks = render.DefaultLandmarks
	}
	if opts.CardsPerRow < 1 {
		opts.CardsPerRow = render.DefaultCardsPerRow
	}
	return &Processor{
		col:         col,
		media:       media.NewStore(col.MediaDir(), log),
		tr:          opts.Translator,
		landmarks:   opts.Landmarks,
		cardsPerRow: opts.CardsPerRow,
		log:         log.Named("processor"),
	}
}

// Media returns the media store of the collection
func (p *Processor) Media() *media.Store {
	return p.media
}

// Translator returns the UI language in use
func (p *Processor) Translator() *locale.Translator {
	return p.tr
}

// Rendered is the raw rendering of one card line
type Rendered struct {
	CardID   int64
	Question string
	Back     string // answer without the repeated front
	CSS      string
	Sounds   []string
}

func (p *Processor) noteType(sel Selection) (*anki.NoteType, error) {
	if sel.NoteType == "" {
		return nil, ErrNoSelection
	}
	return p.col.NoteType(sel.NoteType)
}

func (p *Processor) resolve(sel Selection) (*anki.NoteType, int64, error) {
	if sel.Deck == "" {
		return nil, 0, ErrNoSelection
	}
	nt, err := p.noteType(sel)
	if err != nil {
		return nil, 0, err
	}
	deckID, err := p.col.DeckID(sel.Deck)
	if err != nil {
		return nil, 0, err
	}
	return nt, deckID, nil
}

// buildNote splits line and writes the parts into a new note
func buildNote(nt *anki.NoteType, line string, sel Selection) *anki.Note {
	n := anki.NewNote(nt)
	parts := tokenizer.SplitParts(line, sel.delimiters())
	for idx, value := range mapper.AssignFields(parts, sel.Mapping, nt.FieldNames()) {
		n.Fields[idx] = value
	}
	return n
}

// RenderCard renders the first card of line. The note is added to the
// selected deck only for the duration of the call and removed again even
// when rendering fails.
func (p *Processor) RenderCard(ctx context.Context, line string, sel Selection) (r *Rendered, err error) {
	nt, deckID, err := p.resolve(sel)
	if err != nil {
		return nil, err
	}
	return p.renderTransient(ctx, nt, deckID, line, sel)
}

func (p *Processor) renderTransient(ctx context.Context, nt *anki.NoteType, deckID int64, line string, sel Selection) (r *Rendered, err error) {
	n := buildNote(nt, line, sel)
	if err := p.col.AddNote(ctx, n, deckID); err != nil {
		return nil, fmt.Errorf("failed to register note: %w", err)
	}
	defer func() {
		if rmErr := p.col.RemoveNotes(context.WithoutCancel(ctx), []int64{n.ID}); rmErr != nil {
			p.log.Error("Failed to remove transient note", zap.Int64("id", n.ID), zap.Error(rmErr))
			err = multierr.Append(err, rmErr)
		}
	}()

	cards, err := p.col.Cards(ctx, n.ID)
	if err != nil {
		return nil, err
	}
	out, err := p.col.RenderCard(ctx, cards[0])
	if err != nil {
		return nil, err
	}

	return &Rendered{
		CardID:   cards[0].ID,
		Question: out.QuestionHTML,
		Back:     render.PureBack(out.AnswerHTML, p.landmarks),
		CSS:      out.CSS,
		Sounds:   media.SoundNames(n.Fields),
	}, nil
}

// embed inlines the media of a rendering
func (p *Processor) embed(r *Rendered) render.Card {
	return render.Card{
		Front: p.media.EmbedHTML(r.Question, r.Sounds),
		Back:  p.media.EmbedHTML(r.Back, r.Sounds),
		CSS:   p.media.EmbedCSS(r.CSS),
	}
}

// RenderPreviewHTML returns the preview page of line lineIdx (0-based).
// It never fails: missing content, a blank line or a missing selection
// give a message page and render failures give an escaped error page.
func (p *Processor) RenderPreviewHTML(ctx context.Context, rows []mapper.Row, lineIdx int, sel Selection) string {
	if lineIdx < 0 || lineIdx >= len(rows) {
		return render.MessagePage(p.tr.T("Nenhum conteúdo para exibir."))
	}
	line := strings.TrimSpace(rows[lineIdx].CardText)
	if line == "" {
		return render.MessagePage(p.tr.T("Linha vazia."))
	}
	if sel.Deck == "" || sel.NoteType == "" {
		return render.MessagePage(p.tr.T("Selecione um deck e um tipo de nota para visualizar."))
	}

	r, err := p.RenderCard(ctx, line, sel)
	if err != nil {
		p.log.Error("Preview failed", zap.Int("line", lineIdx+1), zap.Error(err))
		return render.ErrorPage(err, p.tr)
	}

	card := p.embed(r)
	card.Tags = mapper.CardTags(rows[lineIdx], lineIdx+1, sel.NumberedTags)
	return render.PreviewPage(card, p.tr)
}

// PreviewAll renders a compact page for every valid card line. A line that
// fails to render yields an error page in its place. Without a selection
// there is nothing to render.
func (p *Processor) PreviewAll(ctx context.Context, rows []mapper.Row, sel Selection, progress Progress) []string {
	nt, deckID, err := p.resolve(sel)
	if err != nil {
		p.log.Debug("Nothing to preview", zap.Error(err))
		return nil
	}

	var pages []string
	for i, row := range rows {
		report(progress, i+1, len(rows))

		line := strings.TrimSpace(row.CardText)
		if !tokenizer.IsPreviewLine(line, sel.delimiters()) {
			continue
		}

		r, err := p.renderTransient(ctx, nt, deckID, line, sel)
		if err != nil {
			p.log.Warn("Failed to render card", zap.Int("line", i+1), zap.Error(err))
			pages = append(pages, render.CardErrorPage(i+1, err, p.tr))
			continue
		}
		pages = append(pages, render.CompactPreviewPage(p.embed(r)))
	}
	return pages
}

// AddResult summarizes an AddCards run
type AddResult struct {
	Added   int
	Skipped int
	Failed  int
	NoteIDs []int64
}

// AddCards creates one note per card line in the selected deck, with the
// line's tags. A failing line is logged and counted and the loop goes on;
// the returned error aggregates every failure.
func (p *Processor) AddCards(ctx context.Context, rows []mapper.Row, sel Selection, progress Progress) (AddResult, error) {
	var res AddResult

	nt, deckID, err := p.resolve(sel)
	if err != nil {
		return res, err
	}
	if len(rows) == 0 {
		return res, ErrNoContent
	}

	var errs error
	for i, row := range rows {
		report(progress, i+1, len(rows))

		line := strings.TrimSpace(row.CardText)
		if !tokenizer.IsCardLine(line, sel.delimiters()) {
			res.Skipped++
			continue
		}

		n := buildNote(nt, line, sel)
		n.Tags = mapper.CardTags(row, i+1, sel.NumberedTags)
		if err := p.col.AddNote(ctx, n, deckID); err != nil {
			p.log.Error("Failed to add card", zap.Int("line", i+1), zap.Error(err))
			res.Failed++
			errs = multierr.Append(errs, fmt.Errorf("line %d: %w", i+1, err))
			continue
		}
		res.Added++
		res.NoteIDs = append(res.NoteIDs, n.ID)
	}

	p.log.Info("Cards added",
		zap.String("deck", sel.Deck),
		zap.Int("added", res.Added),
		zap.Int("skipped", res.Skipped),
		zap.Int("failed", res.Failed))
	return res, errs
}

// ExportAll renders every non-blank line into one self-contained document.
// Element ids are made unique per card and all media is inlined. A line
// that fails is skipped; the document is returned together with an error
// aggregating the failures. Without a deck the default deck is used.
func (p *Processor) ExportAll(ctx context.Context, rows []mapper.Row, sel Selection, progress Progress) (string, error) {
	nt, err := p.noteType(sel)
	if err != nil {
		return "", err
	}
	deckID := int64(anki.DefaultDeckID)
	if sel.Deck != "" {
		if deckID, err = p.col.DeckID(sel.Deck); err != nil {
			return "", err
		}
	}

	hasContent := false
	for _, row := range rows {
		if strings.TrimSpace(row.CardText) != "" {
			hasContent = true
			break
		}
	}
	if !hasContent {
		return "", ErrNoContent
	}

	var (
		cards []render.ExportCard
		errs  error
	)
	for i, row := range rows {
		report(progress, i+1, len(rows))

		line := strings.TrimSpace(row.CardText)
		if line == "" {
			continue
		}

		r, err := p.renderTransient(ctx, nt, deckID, line, sel)
		if err != nil {
			p.log.Error("Failed to export card", zap.Int("line", i+1), zap.Error(err))
			errs = multierr.Append(errs, fmt.Errorf("line %d: %w", i+1, err))
			continue
		}

		combined := render.CombinedCardHTML(r.Question, r.Back, p.tr)
		html, css := render.UniquifyIDs(combined, r.CSS, r.CardID)
		cards = append(cards, render.ExportCard{
			HTML: p.media.EmbedHTML(html, r.Sounds),
			CSS:  p.media.EmbedCSS(css),
		})
	}

	p.log.Info("Export rendered", zap.Int("cards", len(cards)), zap.Int("failed", len(multierr.Errors(errs))))
	return render.ExportDocument(cards, p.cardsPerRow, p.tr), errs
}

func report(progress Progress, done, total int) {
	if progress != nil {
		progress(done, total)
	}
}
