package anki

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/maruel/natural"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"
)

var (
	// ErrNotFound is returned for unknown decks, note types, notes and fields
	ErrNotFound = errors.New("not found")
	// ErrNoCards is returned when a note would produce no cards
	ErrNoCards = errors.New("note produces no cards")
)

// DefaultDeckID is the id of the deck every collection starts with
const DefaultDeckID = 1

// Collection is a local Anki-style collection: a SQLite database plus a
// media directory next to it
type Collection struct {
	db       *sql.DB
	path     string
	mediaDir string
	log      *zap.Logger

	mu        sync.Mutex
	decks     map[int64]Deck
	noteTypes map[int64]*NoteType
	lastID    int64
}

// Open opens the collection at path, creating and seeding it on first use.
// The media directory is path with ".anki2" replaced by ".media".
func Open(ctx context.Context, path string, log *zap.Logger) (*Collection, error) {
	if log == nil {
		log = zap.NewNop()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create collection directory: %w", err)
	}
	mediaDir := strings.TrimSuffix(path, filepath.Ext(path)) + ".media"
	if err := os.MkdirAll(mediaDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open collection: %w", err)
	}
	db.SetMaxOpenConns(1)

	c := &Collection{
		db:       db,
		path:     path,
		mediaDir: mediaDir,
		log:      log.Named("collection"),
	}

	if err := c.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Collection) init(ctx context.Context) error {
	var n int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name='col'").Scan(&n)
	if err != nil {
		return fmt.Errorf("failed to inspect collection: %w", err)
	}

	if n == 0 {
		if err := c.seed(ctx); err != nil {
			return err
		}
	}

	return c.load(ctx)
}

// seed creates the tables with the Default deck and the stock note types
func (c *Collection) seed(ctx context.Context) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := createTables(ctx, tx); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	decks := []Deck{{ID: DefaultDeckID, Name: "Default"}}
	if err := insertCollection(ctx, tx, decks, stockNoteTypes(time.Now()), time.Now()); err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit collection: %w", err)
	}

	c.log.Info("Created collection", zap.String("path", c.path))
	return nil
}

func (c *Collection) load(ctx context.Context) error {
	var decksData, modelsData string
	err := c.db.QueryRowContext(ctx, "SELECT decks, models FROM col WHERE id = 1").Scan(&decksData, &modelsData)
	if err != nil {
		return fmt.Errorf("failed to read collection metadata: %w", err)
	}

	var decks map[string]Deck
	if err := json.Unmarshal([]byte(decksData), &decks); err != nil {
		return fmt.Errorf("failed to decode decks: %w", err)
	}
	var models map[string]*NoteType
	if err := json.Unmarshal([]byte(modelsData), &models); err != nil {
		return fmt.Errorf("failed to decode note types: %w", err)
	}

	var maxID int64
	err = c.db.QueryRowContext(ctx,
		"SELECT MAX(COALESCE((SELECT MAX(id) FROM notes), 0), COALESCE((SELECT MAX(id) FROM cards), 0))").Scan(&maxID)
	if err != nil {
		return fmt.Errorf("failed to read last id: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.lastID = maxID

	c.decks = make(map[int64]Deck, len(decks))
	for _, d := range decks {
		c.decks[d.ID] = d
	}
	c.noteTypes = make(map[int64]*NoteType, len(models))
	for _, nt := range models {
		c.noteTypes[nt.ID] = nt
	}
	return nil
}

// Close closes the database
func (c *Collection) Close() error {
	return c.db.Close()
}

// Path returns the database path
func (c *Collection) Path() string {
	return c.path
}

// MediaDir returns the media directory
func (c *Collection) MediaDir() string {
	return c.mediaDir
}

// Decks returns all decks in natural name order
func (c *Collection) Decks() []Deck {
	c.mu.Lock()
	defer c.mu.Unlock()

	decks := make([]Deck, 0, len(c.decks))
	for _, d := range c.decks {
		decks = append(decks, d)
	}
	sort.Slice(decks, func(i, j int) bool { return natural.Less(decks[i].Name, decks[j].Name) })
	return decks
}

// DeckID looks up a deck by name
func (c *Collection) DeckID(name string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, d := range c.decks {
		if d.Name == name {
			return d.ID, nil
		}
	}
	return 0, fmt.Errorf("deck %q: %w", name, ErrNotFound)
}

// deckName returns the name of a deck id, or "" if unknown
func (c *Collection) deckName(id int64) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.decks[id].Name
}

// CreateDeck creates a deck and returns its id. An existing deck with the
// same name is returned as is.
func (c *Collection) CreateDeck(ctx context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, errors.New("deck name must not be empty")
	}
	if id, err := c.DeckID(name); err == nil {
		return id, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	deck := Deck{ID: c.nextIDLocked(), Name: name}
	decks := make([]Deck, 0, len(c.decks)+1)
	for _, d := range c.decks {
		decks = append(decks, d)
	}
	decks = append(decks, deck)

	data, err := decksJSON(decks, time.Now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to encode decks: %w", err)
	}
	if _, err := c.db.ExecContext(ctx, "UPDATE col SET decks = ?, mod = ? WHERE id = 1", data, time.Now().UnixMilli()); err != nil {
		return 0, fmt.Errorf("failed to save deck: %w", err)
	}

	c.decks[deck.ID] = deck
	c.log.Info("Created deck", zap.String("name", name), zap.Int64("id", deck.ID))
	return deck.ID, nil
}

// NoteTypes returns the note type names in natural order
func (c *Collection) NoteTypes() []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	names := make([]string, 0, len(c.noteTypes))
	for _, nt := range c.noteTypes {
		names = append(names, nt.Name)
	}
	sort.Sort(natural.StringSlice(names))
	return names
}

// NoteType looks up a note type by name
func (c *Collection) NoteType(name string) (*NoteType, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, nt := range c.noteTypes {
		if nt.Name == name {
			return nt, nil
		}
	}
	return nil, fmt.Errorf("note type %q: %w", name, ErrNotFound)
}

func (c *Collection) noteTypeByID(id int64) (*NoteType, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if nt, ok := c.noteTypes[id]; ok {
		return nt, nil
	}
	return nil, fmt.Errorf("note type %s: %w", strconv.FormatInt(id, 10), ErrNotFound)
}

// nextIDLocked returns a millisecond timestamp id that is strictly larger
// than every id handed out before. c.mu must be held.
func (c *Collection) nextIDLocked() int64 {
	id := time.Now().UnixMilli()
	if id <= c.lastID {
		id = c.lastID + 1
	}
	c.lastID = id
	return id
}

func (c *Collection) nextID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nextIDLocked()
}
