package anki

import (
	"archive/zip"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	cp "github.com/otiai10/copy"
	"go.uber.org/zap"

	"codeberg.org/snonux/delimit/internal/media"
)

// apkgExporter writes one deck of a collection as an Anki package (.apkg)
type apkgExporter struct {
	col          *Collection
	deck         Deck
	noteIDs      []int64
	mediaFiles   map[string]int // maps media filename to media number
	mediaCounter int
}

// ExportAPKG writes every note of the named deck, with its cards and
// referenced media, to an .apkg file. It returns the number of notes.
func (c *Collection) ExportAPKG(ctx context.Context, deckName, outputPath string) (int, error) {
	deckID, err := c.DeckID(deckName)
	if err != nil {
		return 0, err
	}
	noteIDs, err := c.FindNotesInDeck(ctx, deckID)
	if err != nil {
		return 0, err
	}

	e := &apkgExporter{
		col:        c,
		deck:       Deck{ID: deckID, Name: deckName},
		noteIDs:    noteIDs,
		mediaFiles: make(map[string]int),
	}
	if err := e.generate(ctx, outputPath); err != nil {
		return 0, err
	}

	c.log.Info("Exported package",
		zap.String("deck", deckName),
		zap.Int("notes", len(noteIDs)),
		zap.Int("media", len(e.mediaFiles)),
		zap.String("path", outputPath))
	return len(noteIDs), nil
}

func (e *apkgExporter) generate(ctx context.Context, outputPath string) error {
	// Create temporary directory for building the package
	tempDir, err := os.MkdirTemp("", "delimit_apkg_*")
	if err != nil {
		return fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)

	notes := make([]*Note, 0, len(e.noteIDs))
	for _, id := range e.noteIDs {
		n, err := e.col.GetNote(ctx, id)
		if err != nil {
			return err
		}
		notes = append(notes, n)
	}

	if err := e.copyMediaFiles(notes, tempDir); err != nil {
		return fmt.Errorf("failed to copy media files: %w", err)
	}

	if err := e.createMediaMapping(tempDir); err != nil {
		return fmt.Errorf("failed to create media mapping: %w", err)
	}

	dbPath := filepath.Join(tempDir, "collection.anki2")
	if err := e.createDatabase(ctx, dbPath, notes); err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}

	if err := createZipPackage(tempDir, outputPath); err != nil {
		return fmt.Errorf("failed to create zip package: %w", err)
	}

	return nil
}

// createDatabase creates the package database holding the deck's notes
func (e *apkgExporter) createDatabase(ctx context.Context, dbPath string, notes []*Note) error {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := createTables(ctx, db); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	used := make(map[int64]*NoteType)
	for _, n := range notes {
		used[n.NoteType.ID] = n.NoteType
	}
	noteTypes := make([]*NoteType, 0, len(used))
	for _, nt := range used {
		noteTypes = append(noteTypes, nt)
	}

	decks := []Deck{{ID: DefaultDeckID, Name: "Default"}}
	if e.deck.ID != DefaultDeckID {
		decks = append(decks, e.deck)
	}
	if err := insertCollection(ctx, db, decks, noteTypes, time.Now()); err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}

	for _, id := range e.noteIDs {
		if err := copyRows(ctx, e.col.db, db, "notes", 11, "SELECT * FROM notes WHERE id = ?", id); err != nil {
			return fmt.Errorf("failed to copy note %d: %w", id, err)
		}
		if err := copyRows(ctx, e.col.db, db, "cards", 18, "SELECT * FROM cards WHERE nid = ? AND did = ?", id, e.deck.ID); err != nil {
			return fmt.Errorf("failed to copy cards of note %d: %w", id, err)
		}
	}

	return nil
}

// copyRows copies the rows a query returns into the same table of dst
func copyRows(ctx context.Context, src *sql.DB, dst execer, table string, cols int, query string, args ...any) error {
	rows, err := src.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	insert := fmt.Sprintf("INSERT INTO %s VALUES (%s)", table, strings.TrimSuffix(strings.Repeat("?, ", cols), ", "))
	values := make([]any, cols)
	ptrs := make([]any, cols)
	for i := range values {
		ptrs[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return err
		}
		if _, err := dst.ExecContext(ctx, insert, values...); err != nil {
			return err
		}
	}
	return rows.Err()
}

// copyMediaFiles copies referenced media files and assigns them numbers
func (e *apkgExporter) copyMediaFiles(notes []*Note, tempDir string) error {
	// Media files go directly in the temp directory with numeric names
	for _, n := range notes {
		joined := strings.Join(n.Fields, "\n")
		names := append(media.Referenced(joined), media.SoundNames(n.Fields)...)

		for _, name := range names {
			if _, exists := e.mediaFiles[name]; exists {
				continue
			}
			src := filepath.Join(e.col.mediaDir, filepath.FromSlash(name))
			if _, err := os.Stat(src); err != nil {
				e.col.log.Debug("Skipping missing media", zap.String("name", name))
				continue
			}
			targetPath := filepath.Join(tempDir, strconv.Itoa(e.mediaCounter))
			if err := cp.Copy(src, targetPath); err != nil {
				return fmt.Errorf("failed to copy media file %s: %w", name, err)
			}
			e.mediaFiles[name] = e.mediaCounter
			e.mediaCounter++
		}
	}

	return nil
}

// createMediaMapping creates the media mapping JSON file
func (e *apkgExporter) createMediaMapping(tempDir string) error {
	// Create reverse mapping (number -> filename)
	mapping := make(map[string]string)
	for filename, num := range e.mediaFiles {
		mapping[strconv.Itoa(num)] = filename
	}

	data, err := json.Marshal(mapping)
	if err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(tempDir, "media"), data, 0644)
}

// createZipPackage creates the final .apkg zip file
func createZipPackage(tempDir, outputPath string) error {
	if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
		return err
	}

	zipFile, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	defer zipFile.Close()

	archive := zip.NewWriter(zipFile)
	defer archive.Close()

	// Walk the temp directory and add all files to the zip
	return filepath.Walk(tempDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			return nil
		}

		relPath, err := filepath.Rel(tempDir, path)
		if err != nil {
			return err
		}

		writer, err := archive.Create(relPath)
		if err != nil {
			return err
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		_, err = io.Copy(writer, file)
		return err
	})
}
