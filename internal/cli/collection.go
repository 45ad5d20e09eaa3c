package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/delimit/internal"
	"codeberg.org/snonux/delimit/internal/archive"
)

func newDecksCmd(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "decks",
		Short: "List the decks of the collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			for _, d := range a.col.Decks() {
				fmt.Fprintln(a.out, marker(d.Name == a.state.Deck)+d.Name)
			}
			return nil
		},
	}
}

func newDeckCmd(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deck",
		Short: "Create or select decks",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "create NAME",
		Short: "Create a deck and select it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			name := strings.TrimSpace(args[0])
			if _, err := a.col.CreateDeck(cmd.Context(), name); err != nil {
				return err
			}
			a.state.Deck = name
			a.msg("Deck %q criado.", name)
			return a.save()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "use NAME",
		Short: "Select the deck new cards go to",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			if _, err := a.col.DeckID(args[0]); err != nil {
				return err
			}
			a.state.Deck = args[0]
			return a.save()
		},
	})

	return cmd
}

func newNoteTypesCmd(flags *Flags) *cobra.Command {
	var use string

	cmd := &cobra.Command{
		Use:   "notetypes",
		Short: "List note types or select one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			if use == "" {
				for _, name := range a.col.NoteTypes() {
					fmt.Fprintln(a.out, marker(name == a.state.NoteType)+name)
				}
				return nil
			}

			nt, err := a.col.NoteType(use)
			if err != nil {
				return err
			}
			a.state.NoteType = use
			a.state.FieldMappings = a.state.FieldMappings.Prune(nt.FieldNames())
			for i, field := range nt.FieldNames() {
				fmt.Fprintf(a.out, "%d: %s\n", i, field)
			}
			return a.save()
		},
	}

	cmd.Flags().StringVar(&use, "use", "", "Select this note type and print its fields")
	return cmd
}

func newAPKGCmd(flags *Flags) *cobra.Command {
	var (
		deck   string
		output string
	)

	cmd := &cobra.Command{
		Use:   "apkg",
		Short: "Write a deck with its media as an Anki package",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			if deck == "" {
				deck = a.state.Deck
			}
			if deck == "" {
				a.msg("Por favor, selecione um deck e um tipo de nota.")
				return fmt.Errorf("no deck selected")
			}
			if output == "" {
				output = internal.SanitizeFilename(deck) + ".apkg"
			}

			n, err := a.col.ExportAPKG(cmd.Context(), deck, output)
			if err != nil {
				return err
			}
			a.msg("Cards: %d", n)
			a.msg("Arquivo exportado para %s", output)
			return nil
		},
	}

	cmd.Flags().StringVar(&deck, "deck", "", "Deck to package (default: selected deck)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Package file (default: <deck>.apkg)")
	return cmd
}

func newArchiveCmd(flags *Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "archive",
		Short: "Move the session directory to the archive and start fresh",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			path, err := archive.ArchiveState(a.stateDir(), a.log)
			if err != nil {
				return fmt.Errorf("failed to archive state: %w", err)
			}
			a.msg("Estado arquivado em %s", path)
			return nil
		},
	}
}

func marker(selected bool) string {
	if selected {
		return "* "
	}
	return "  "
}
