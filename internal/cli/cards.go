package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"codeberg.org/snonux/delimit/internal"
	"codeberg.org/snonux/delimit/internal/anki"
	"codeberg.org/snonux/delimit/internal/batch"
	"codeberg.org/snonux/delimit/internal/processor"
	"codeberg.org/snonux/delimit/internal/tokenizer"
	"codeberg.org/snonux/delimit/internal/watch"
)

func newLoadCmd(flags *Flags) *cobra.Command {
	var (
		tagsFile   string
		appendRows bool
	)

	cmd := &cobra.Command{
		Use:   "load CARDS_FILE",
		Short: "Load card lines and optional tags into the session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			rows, err := batch.ReadRows(args[0], tagsFile)
			if err != nil {
				return err
			}
			if appendRows && strings.TrimSpace(a.state.Content) != "" {
				rows = append(a.state.Rows(), rows...)
			}
			a.state.SetRows(rows)
			a.state.JoinedOriginal = ""

			a.msg("Cards: %d", tokenizer.CountCards(a.state.Content, a.state.DelimiterSet()))
			return a.save()
		},
	}

	cmd.Flags().StringVar(&tagsFile, "tags", "", "Tag file, one comma-separated line per card line")
	cmd.Flags().BoolVar(&appendRows, "append", false, "Append to the session text instead of replacing it")
	return cmd
}

func newAddCmd(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "add",
		Short: "Create one note per card line in the selected deck",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			res, err := a.proc.AddCards(cmd.Context(), a.state.Rows(), a.selection(), a.progress("Adicionando cards..."))
			switch {
			case errors.Is(err, processor.ErrNoSelection):
				a.msg("Por favor, selecione um deck e um tipo de nota.")
				return err
			case errors.Is(err, processor.ErrNoContent):
				a.msg("Nenhum conteúdo para exibir.")
				return err
			}

			if res.Added > 0 {
				a.msg("%d cards adicionados com sucesso!", res.Added)
			}
			if res.Failed > 0 {
				a.msg("%d linhas falharam.", res.Failed)
				for _, e := range multierr.Errors(err) {
					fmt.Fprintln(a.errw, e)
				}
			}
			return nil
		},
	}
}

func newPreviewCmd(flags *Flags) *cobra.Command {
	var (
		line   int
		output string
	)

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Render one card line as a self-contained HTML page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			if cmd.Flags().Changed("line") {
				a.state.PreviewLine = line - 1
			}
			html := a.proc.RenderPreviewHTML(cmd.Context(), a.state.Rows(), a.state.PreviewLine, a.selection())
			a.state.LastPreviewHTML = html

			if output == "" {
				output = filepath.Join(a.stateDir(), "preview.html")
			}
			if err := a.writePage(output, html, flags.Open); err != nil {
				return err
			}
			a.msg("Pré-visualização atualizada: %s", output)
			return a.save()
		},
	}

	cmd.Flags().IntVarP(&line, "line", "l", 1, "Card line to preview (1-based)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Preview file (default: preview.html next to the session)")
	cmd.Flags().BoolVar(&flags.Open, "open", false, "Open the preview in the browser")
	return cmd
}

func newViewCmd(flags *Flags) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Render every card line as a compact page",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			pages := a.proc.PreviewAll(cmd.Context(), a.state.Rows(), a.selection(),
				a.progress("Renderizando pré-visualização dos cards..."))
			if len(pages) == 0 {
				a.msg("Nenhum card válido para visualizar!")
				return nil
			}

			if dir == "" {
				dir = filepath.Join(a.stateDir(), "view")
			}
			for i, page := range pages {
				path := filepath.Join(dir, fmt.Sprintf("card_%03d.html", i+1))
				if err := a.writePage(path, page, flags.Open && i == 0); err != nil {
					return err
				}
				fmt.Fprintln(a.out, path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", "Output directory (default: view/ next to the session)")
	cmd.Flags().BoolVar(&flags.Open, "open", false, "Open the first card in the browser")
	return cmd
}

func newExportCmd(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every card line as one printable HTML document",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			doc, err := a.proc.ExportAll(cmd.Context(), a.state.Rows(), a.selection(),
				a.progress("Renderizando e processando cards..."))
			switch {
			case errors.Is(err, processor.ErrNoContent):
				a.msg("Não há conteúdo para exportar.")
				return err
			case errors.Is(err, processor.ErrNoSelection):
				a.msg("Por favor, selecione um Tipo de Nota para exportar.")
				return err
			case doc == "" && err != nil:
				return err
			}
			for _, e := range multierr.Errors(err) {
				fmt.Fprintln(a.errw, e)
			}

			output := viper.GetString("export.output")
			if output == "" {
				output = internal.SanitizeFilename(a.state.Deck) + ".html"
			}
			if err := a.writePage(output, doc, flags.Open); err != nil {
				return err
			}

			// Media that could not be inlined is copied next to the document
			copied, err := a.proc.Media().CopyReferenced(doc, filepath.Dir(output))
			if err != nil {
				a.log.Warn("Failed to copy media", zap.Error(err))
			}
			a.log.Debug("Export written", zap.String("path", output), zap.Strings("media", copied))

			a.msg("Arquivo exportado para %s", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.OutputFile, "output", "o", "", "Output file (default: <deck>.html)")
	cmd.Flags().IntVar(&flags.CardsPerRow, "cards-per-row", flags.CardsPerRow, "Cards per row in the exported grid")
	cmd.Flags().BoolVar(&flags.Open, "open", false, "Open the document in the browser")

	viper.BindPFlag("export.output", cmd.Flags().Lookup("output"))
	viper.BindPFlag("export.cards_per_row", cmd.Flags().Lookup("cards-per-row"))
	return cmd
}

func newShowCmd(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "show DECK",
		Short: "Load every note of a deck back into the session text",
		Long: `show replaces the session text with one delimited line per note of
DECK. The previous session is kept and can be brought back with
"delimit restore".`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			deck := args[0]
			lines, err := a.proc.ShowAllCards(cmd.Context(), deck, a.state.DelimiterSet())
			if errors.Is(err, anki.ErrNotFound) {
				a.msg("Nenhum card encontrado no deck %q.", deck)
				return nil
			}
			if err != nil {
				return err
			}

			if err := a.store.SavePreShow(a.state); err != nil {
				return err
			}
			a.state.Content = strings.Join(lines, "\n")
			a.state.Tags = ""
			a.state.Deck = deck
			a.state.JoinedOriginal = ""

			a.msg("Cards: %d", len(lines))
			return a.save()
		},
	}
}

func newRestoreCmd(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "restore",
		Short: "Restore the session saved before the last show",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			st, ok, err := a.store.RestorePreShow()
			if err != nil {
				return err
			}
			if !ok {
				a.msg("Nenhum estado salvo para restaurar.")
				return nil
			}

			a.state = st
			if err := a.save(); err != nil {
				return err
			}
			a.msg("Estado restaurado.")
			return nil
		},
	}
}

func newWatchCmd(flags *Flags) *cobra.Command {
	var (
		tagsFile string
		line     int
		output   string
	)

	cmd := &cobra.Command{
		Use:   "watch CARDS_FILE",
		Short: "Re-render the preview whenever the cards file changes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			if output == "" {
				output = filepath.Join(a.stateDir(), "preview.html")
			}
			cardsFile := args[0]

			refresh := func(ctx context.Context) error {
				rows, err := batch.ReadRows(cardsFile, tagsFile)
				if err != nil {
					return err
				}
				a.state.SetRows(rows)
				a.state.PreviewLine = line - 1

				html := a.proc.RenderPreviewHTML(ctx, rows, a.state.PreviewLine, a.selection())
				a.state.LastPreviewHTML = html
				if err := a.writePage(output, html, false); err != nil {
					return err
				}
				a.msg("Pré-visualização atualizada: %s", output)
				return a.save()
			}

			if _, err := os.Stat(cardsFile); err == nil {
				if err := refresh(cmd.Context()); err != nil {
					return err
				}
			}
			if flags.Open {
				if err := a.writePage(output, a.state.LastPreviewHTML, true); err != nil {
					return err
				}
			}

			a.msg("Observando %s (Ctrl+C para sair)", cardsFile)
			return watch.New(cardsFile, refresh, a.log).Run(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&tagsFile, "tags", "", "Tag file, one comma-separated line per card line")
	cmd.Flags().IntVarP(&line, "line", "l", 1, "Card line to preview (1-based)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Preview file (default: preview.html next to the session)")
	cmd.Flags().BoolVar(&flags.Open, "open", false, "Open the preview in the browser")
	return cmd
}
