package anki

import (
	"context"
	"crypto/sha1"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Note is one record of field values of a note type
type Note struct {
	ID       int64
	GUID     string
	NoteType *NoteType
	Fields   []string
	Tags     []string
}

// Card is one reviewable card generated from a note
type Card struct {
	ID     int64
	NoteID int64
	DeckID int64
	Ord    int
}

// NewNote returns an unsaved note with empty fields
func NewNote(nt *NoteType) *Note {
	return &Note{
		NoteType: nt,
		Fields:   make([]string, len(nt.Fields)),
	}
}

// Field returns the value of a named field
func (n *Note) Field(name string) (string, error) {
	idx := n.NoteType.FieldIndex(name)
	if idx < 0 {
		return "", fmt.Errorf("field %q: %w", name, ErrNotFound)
	}
	return n.Fields[idx], nil
}

// SetField sets the value of a named field
func (n *Note) SetField(name, value string) error {
	idx := n.NoteType.FieldIndex(name)
	if idx < 0 {
		return fmt.Errorf("field %q: %w", name, ErrNotFound)
	}
	n.Fields[idx] = value
	return nil
}

// Items returns name/value pairs in field order
func (n *Note) Items() map[string]string {
	items := make(map[string]string, len(n.Fields))
	for i, f := range n.NoteType.Fields {
		if i < len(n.Fields) {
			items[f.Name] = n.Fields[i]
		}
	}
	return items
}

var (
	htmlTagRe   = regexp.MustCompile(`(?s)<[^>]*>`)
	clozeNumRe  = regexp.MustCompile(`\{\{c(\d+)::`)
	tagSpacesRe = regexp.MustCompile(`\s+`)
)

// stripHTML removes tags and media references for sort and checksum fields
func stripHTML(s string) string {
	s = soundTagRe.ReplaceAllString(s, "")
	return strings.TrimSpace(htmlTagRe.ReplaceAllString(s, ""))
}

// isBlankHTML reports whether rendered HTML shows nothing: no text, no
// image and no sound
func isBlankHTML(s string) bool {
	if strings.Contains(s, "<img") || soundTagRe.MatchString(s) {
		return false
	}
	return stripHTML(s) == ""
}

// fieldChecksum is the first 8 hex digits of the SHA1 of the stripped field
func fieldChecksum(s string) int64 {
	sum := sha1.Sum([]byte(stripHTML(s)))
	v, _ := strconv.ParseInt(hex.EncodeToString(sum[:])[:8], 16, 64)
	return v
}

func joinTags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = tagSpacesRe.ReplaceAllString(strings.TrimSpace(t), "_"); t != "" {
			clean = append(clean, t)
		}
	}
	if len(clean) == 0 {
		return ""
	}
	return " " + strings.Join(clean, " ") + " "
}

// cardOrds returns the template ordinals a note generates cards for
func (c *Collection) cardOrds(n *Note) ([]int, error) {
	if n.NoteType.IsCloze() {
		seen := make(map[int]bool)
		for _, f := range n.Fields {
			for _, m := range clozeNumRe.FindAllStringSubmatch(f, -1) {
				if num, err := strconv.Atoi(m[1]); err == nil && num > 0 {
					seen[num-1] = true
				}
			}
		}
		if len(seen) == 0 {
			return nil, ErrNoCards
		}
		ords := make([]int, 0, len(seen))
		for ord := range seen {
			ords = append(ords, ord)
		}
		sort.Ints(ords)
		return ords, nil
	}

	if len(n.NoteType.Templates) == 0 {
		return nil, ErrNoCards
	}

	var ords []int
	for _, tmpl := range n.NoteType.Templates {
		q, err := renderTemplate(tmpl.QFmt, c.templateContext(n, tmpl.Ord, 0))
		if err != nil {
			continue
		}
		if !isBlankHTML(q) {
			ords = append(ords, tmpl.Ord)
		}
	}
	if len(ords) == 0 {
		// An empty note still gets its first card
		ords = []int{n.NoteType.Templates[0].Ord}
	}
	return ords, nil
}

// AddNote stores a new note in deckID and generates its cards.
// The note's ID and GUID are assigned.
func (c *Collection) AddNote(ctx context.Context, n *Note, deckID int64) error {
	if c.deckName(deckID) == "" {
		return fmt.Errorf("deck %d: %w", deckID, ErrNotFound)
	}

	ords, err := c.cardOrds(n)
	if err != nil {
		return err
	}

	now := time.Now()
	noteID := c.nextID()
	guid := uuid.NewString()

	sortIdx := n.NoteType.SortField
	if sortIdx >= len(n.Fields) {
		sortIdx = 0
	}
	sortField, first := "", ""
	if len(n.Fields) > 0 {
		sortField = stripHTML(n.Fields[sortIdx])
		first = n.Fields[0]
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	noteQuery := `INSERT INTO notes VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, noteQuery,
		noteID,                         // id
		guid,                           // guid
		n.NoteType.ID,                  // mid
		now.Unix(),                     // mod
		-1,                             // usn
		joinTags(n.Tags),               // tags
		strings.Join(n.Fields, "\x1f"), // flds
		sortField,                      // sfld (sort field)
		fieldChecksum(first),           // csum
		0,                              // flags
		"",                             // data
	)
	if err != nil {
		return fmt.Errorf("failed to insert note: %w", err)
	}

	var due int64
	if err := tx.QueryRowContext(ctx, "SELECT COALESCE(MAX(due), 0) + 1 FROM cards WHERE type = 0").Scan(&due); err != nil {
		return fmt.Errorf("failed to read next position: %w", err)
	}

	cardQuery := `INSERT INTO cards VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, ord := range ords {
		_, err = tx.ExecContext(ctx, cardQuery,
			c.nextID(), // id
			noteID,     // nid
			deckID,     // did
			ord,        // ord
			now.Unix(), // mod
			-1,         // usn
			0,          // type (0=new)
			0,          // queue (0=new)
			due,        // due (for new cards, this is position)
			0,          // ivl
			0,          // factor
			0,          // reps
			0,          // lapses
			0,          // left
			0,          // odue
			0,          // odid
			0,          // flags
			"",         // data
		)
		if err != nil {
			return fmt.Errorf("failed to insert card: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit note: %w", err)
	}

	n.ID = noteID
	n.GUID = guid
	c.log.Debug("Added note", zap.Int64("id", noteID), zap.Int("cards", len(ords)))
	return nil
}

// RemoveNotes deletes notes with their cards and records graves for them
func (c *Collection) RemoveNotes(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, id := range ids {
		rows, err := tx.QueryContext(ctx, "SELECT id FROM cards WHERE nid = ?", id)
		if err != nil {
			return fmt.Errorf("failed to list cards: %w", err)
		}
		var cardIDs []int64
		for rows.Next() {
			var cid int64
			if err := rows.Scan(&cid); err != nil {
				rows.Close()
				return fmt.Errorf("failed to scan card: %w", err)
			}
			cardIDs = append(cardIDs, cid)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return fmt.Errorf("failed to list cards: %w", err)
		}

		for _, cid := range cardIDs {
			if _, err := tx.ExecContext(ctx, "INSERT INTO graves VALUES (-1, ?, 0)", cid); err != nil {
				return fmt.Errorf("failed to record card grave: %w", err)
			}
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM cards WHERE nid = ?", id); err != nil {
			return fmt.Errorf("failed to delete cards: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "DELETE FROM notes WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to delete note: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO graves VALUES (-1, ?, 1)", id); err != nil {
			return fmt.Errorf("failed to record note grave: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit removal: %w", err)
	}
	c.log.Debug("Removed notes", zap.Int64s("ids", ids))
	return nil
}

// GetNote loads a stored note
func (c *Collection) GetNote(ctx context.Context, id int64) (*Note, error) {
	var (
		guid   string
		mid    int64
		tags   string
		fields string
	)
	err := c.db.QueryRowContext(ctx, "SELECT guid, mid, tags, flds FROM notes WHERE id = ?", id).
		Scan(&guid, &mid, &tags, &fields)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("note %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read note: %w", err)
	}

	nt, err := c.noteTypeByID(mid)
	if err != nil {
		return nil, err
	}

	n := NewNote(nt)
	n.ID = id
	n.GUID = guid
	n.Tags = strings.Fields(tags)
	copy(n.Fields, strings.Split(fields, "\x1f"))
	return n, nil
}

// FindNotesInDeck returns the ids of notes with at least one card in the
// deck, oldest first
func (c *Collection) FindNotesInDeck(ctx context.Context, deckID int64) ([]int64, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT DISTINCT nid FROM cards WHERE did = ? ORDER BY nid", deckID)
	if err != nil {
		return nil, fmt.Errorf("failed to search notes: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan note id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Cards returns the cards of a note ordered by template ordinal
func (c *Collection) Cards(ctx context.Context, noteID int64) ([]Card, error) {
	rows, err := c.db.QueryContext(ctx, "SELECT id, nid, did, ord FROM cards WHERE nid = ? ORDER BY ord", noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list cards: %w", err)
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		var card Card
		if err := rows.Scan(&card.ID, &card.NoteID, &card.DeckID, &card.Ord); err != nil {
			return nil, fmt.Errorf("failed to scan card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("note %d: %w", noteID, ErrNoCards)
	}
	return cards, nil
}

// NoteCount returns the number of stored notes
func (c *Collection) NoteCount(ctx context.Context) (int, error) {
	var n int
	if err := c.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM notes").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count notes: %w", err)
	}
	return n, nil
}
