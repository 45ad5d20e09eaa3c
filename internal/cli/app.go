package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/browser"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"codeberg.org/snonux/delimit/internal/anki"
	"codeberg.org/snonux/delimit/internal/locale"
	"codeberg.org/snonux/delimit/internal/logging"
	"codeberg.org/snonux/delimit/internal/processor"
	"codeberg.org/snonux/delimit/internal/session"
)

// app is what one subcommand run works with: the loaded session and,
// when needed, the open collection
type app struct {
	out   io.Writer
	errw  io.Writer
	log   *zap.Logger
	store *session.Store
	state *session.State
	tr    *locale.Translator
	col   *anki.Collection
	proc  *processor.Processor
}

// openApp loads configuration, logger and session. The collection is only
// opened when withCollection is set.
func openApp(cmd *cobra.Command, withCollection bool) (*app, error) {
	log, err := logging.New(logging.Config{
		Level: viper.GetString("log.level"),
		File:  viper.GetString("log.file"),
	})
	if err != nil {
		return nil, err
	}

	a := &app{
		out:   cmd.OutOrStdout(),
		errw:  cmd.ErrOrStderr(),
		log:   log,
		store: session.NewStore(viper.GetString("state.path"), log),
	}

	if a.state, err = a.store.Load(); err != nil {
		return nil, err
	}
	if lang := viper.GetString("language"); lang != "" {
		a.state.Language = locale.New(lang).Code()
	}
	a.tr = locale.New(a.state.Language)

	if !withCollection {
		return a, nil
	}

	a.col, err = anki.Open(cmd.Context(), viper.GetString("collection.path"), log)
	if err != nil {
		return nil, err
	}
	a.proc = processor.New(a.col, processor.Options{
		Translator:  a.tr,
		Landmarks:   viper.GetStringSlice("render.back_landmarks"),
		CardsPerRow: viper.GetInt("export.cards_per_row"),
	}, log)

	a.log.Debug("Session loaded",
		zap.String("state", a.store.Path()),
		zap.String("collection", a.col.Path()))
	return a, nil
}

func (a *app) close() {
	if a.col != nil {
		if err := a.col.Close(); err != nil {
			a.log.Warn("Failed to close collection", zap.Error(err))
		}
	}
	_ = a.log.Sync()
}

func (a *app) save() error {
	return a.store.Save(a.state)
}

// stateDir holds the session file and generated pages
func (a *app) stateDir() string {
	return filepath.Dir(a.store.Path())
}

func (a *app) selection() processor.Selection {
	// Tag text rewritten by "tags --numbered" already carries the numbers
	numbered := a.state.NumberedTags && !a.state.TagState.NumberingInitialized

	return processor.Selection{
		Deck:         a.state.Deck,
		NoteType:     a.state.NoteType,
		Delimiters:   a.state.DelimiterSet(),
		Mapping:      a.state.FieldMappings,
		NumberedTags: numbered,
	}
}

// msg prints a translated message line
func (a *app) msg(key string, args ...any) {
	fmt.Fprintln(a.out, fmt.Sprintf(a.tr.T(key), args...))
}

// progress reports bulk progress on stderr
func (a *app) progress(title string) processor.Progress {
	fmt.Fprintln(a.errw, a.tr.T(title))
	return func(done, total int) {
		fmt.Fprintf(a.errw, "\r%d/%d", done, total)
		if done == total {
			fmt.Fprintln(a.errw)
		}
	}
}

// writePage writes an HTML page and opens it in the browser if asked
func (a *app) writePage(path, html string, open bool) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(html), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if open {
		if err := browser.OpenFile(path); err != nil {
			a.log.Warn("Failed to open browser", zap.String("path", path), zap.Error(err))
		}
	}
	return nil
}
