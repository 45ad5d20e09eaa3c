package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"codeberg.org/snonux/delimit/internal/batch"
	"codeberg.org/snonux/delimit/internal/grid"
	"codeberg.org/snonux/delimit/internal/mapper"
	"codeberg.org/snonux/delimit/internal/media"
	"codeberg.org/snonux/delimit/internal/textops"
	"codeberg.org/snonux/delimit/internal/tokenizer"
)

func newMapCmd(flags *Flags) *cobra.Command {
	var (
		clears []int
		reset  bool
	)

	cmd := &cobra.Command{
		Use:   "map [INDEX=FIELD...]",
		Short: "Map line parts (0-based) to note fields",
		Long: `map assigns line parts to fields of the selected note type. Without
any mapping part i goes to field i. Once a part is mapped only mapped
parts are written.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			m, err := mapper.Parse(args)
			if err != nil {
				return err
			}
			if reset {
				a.state.FieldMappings = mapper.FieldMapping{}
			}
			for _, i := range clears {
				a.state.FieldMappings.Clear(i)
			}
			for k, v := range m {
				a.state.FieldMappings[k] = v
			}

			if len(a.state.FieldMappings) == 0 {
				a.msg("Sem mapeamento (posicional).")
			} else {
				a.msg("Mapeamento de campos: %s", a.state.FieldMappings.String())
			}
			return a.save()
		},
	}

	cmd.Flags().IntSliceVar(&clears, "clear", nil, "Remove the mapping of these part indices")
	cmd.Flags().BoolVar(&reset, "reset", false, "Remove every mapping first")
	return cmd
}

func newDelimitersCmd(flags *Flags) *cobra.Command {
	var only bool

	cmd := &cobra.Command{
		Use:   "delimiters [DELIMITER...]",
		Short: "Toggle delimiters by name or symbol",
		Long: `delimiters toggles each named delimiter and prints the active set.
Delimiters are given by session name ("Ponto e Vírgula"), English alias
(semicolon, comma, tab, colon, question, slash, exclamation, pipe) or
symbol.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			set := a.state.DelimiterSet()
			if only {
				set = tokenizer.NewSet()
			}
			for _, key := range args {
				if only {
					err = set.Enable(key, true)
				} else {
					err = set.Toggle(key)
				}
				if err != nil {
					return err
				}
			}
			a.state.Delimiters = set.States()

			var names []string
			for _, sym := range set.Active() {
				d, _ := tokenizer.Lookup(string(sym))
				names = append(names, d.Name)
			}
			a.msg("Delimitadores ativos: %s", strings.Join(names, ", "))
			a.msg("Cards: %d", tokenizer.CountCards(a.state.Content, set))
			return a.save()
		},
	}

	cmd.Flags().BoolVar(&only, "only", false, "Enable exactly the given delimiters")
	return cmd
}

func newTagsCmd(flags *Flags) *cobra.Command {
	var (
		file     string
		numbered bool
		repeat   bool
	)

	cmd := &cobra.Command{
		Use:   "tags",
		Short: "Load, number or repeat the tag lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			if file != "" {
				text, err := batch.ReadBatchFile(file)
				if err != nil {
					return err
				}
				a.state.Tags = mapper.AlignTags(a.state.Content, text)
			}

			rows := a.state.Rows()
			if cmd.Flags().Changed("numbered") {
				a.state.NumberedTags = numbered
				rows, a.state.TagState = mapper.NumberTags(rows, a.state.TagState, numbered)
			}
			if cmd.Flags().Changed("repeat") {
				a.state.RepeatTags = repeat
				rows, a.state.TagState = mapper.RepeatTags(rows, a.state.TagState, repeat, a.state.NumberedTags)
			}
			a.state.SetRows(rows)

			for i, row := range rows {
				fmt.Fprintf(a.out, "%d: %s\n", i+1, row.Tags)
			}
			return a.save()
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Replace the tag lines with this file")
	cmd.Flags().BoolVar(&numbered, "numbered", false, "Append the line number to every tag")
	cmd.Flags().BoolVar(&repeat, "repeat", false, "Repeat the first tag line on every line")
	return cmd
}

func newMediaCmd(flags *Flags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "media",
		Short: "Add media to card lines or list referenced media",
	}

	var (
		line  int
		field string
	)
	add := &cobra.Command{
		Use:   "add FILE",
		Short: "Import a media file and append it to a field of one line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, true)
			if err != nil {
				return err
			}
			defer a.close()

			name, err := a.proc.Media().Import(args[0])
			if err != nil {
				return err
			}
			rows, err := a.proc.AddMediaToField(a.state.Rows(), line-1, field, name, a.selection())
			if err != nil {
				return err
			}
			a.state.SetRows(rows)
			a.state.RecordImage(field, line-1, name)

			a.msg("Mídia %s adicionada ao campo %s.", name, field)
			return a.save()
		},
	}
	add.Flags().IntVarP(&line, "line", "l", 1, "Card line (1-based)")
	add.Flags().StringVarP(&field, "field", "f", "", "Target field")
	add.MarkFlagRequired("field")

	list := &cobra.Command{
		Use:   "list",
		Short: "List media referenced by the session text",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			names := media.Referenced(a.state.Content)
			if len(names) == 0 {
				a.msg("Nenhuma mídia referenciada.")
			}
			for _, name := range names {
				fmt.Fprintln(a.out, name)
			}
			return nil
		},
	}

	cmd.AddCommand(add, list)
	return cmd
}

func newGridCmd(flags *Flags) *cobra.Command {
	var (
		importFile string
		output     string
		header     bool
	)

	cmd := &cobra.Command{
		Use:   "grid",
		Short: "Write the card text as CSV or replace it from CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			set := a.state.DelimiterSet()

			if importFile != "" {
				f, err := os.Open(importFile)
				if err != nil {
					return fmt.Errorf("failed to open CSV: %w", err)
				}
				defer f.Close()

				g, err := grid.ReadCSV(f, header)
				if err != nil {
					return err
				}
				a.state.Content = g.Text(set)
				a.state.Tags = mapper.AlignTags(a.state.Content, a.state.Tags)
				a.msg("Cards: %d", tokenizer.CountCards(a.state.Content, set))
				return a.save()
			}

			var w io.Writer = a.out
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create CSV: %w", err)
				}
				defer f.Close()
				w = f
			}
			return grid.FromText(a.state.Content, set).WriteCSV(w, header)
		},
	}

	cmd.Flags().StringVar(&importFile, "import", "", "Replace the card text with this CSV file")
	cmd.Flags().StringVarP(&output, "output", "o", "", "CSV file (default: stdout)")
	cmd.Flags().BoolVar(&header, "header", false, "Write or skip a header row")
	return cmd
}

func newCleanCmd(flags *Flags) *cobra.Command {
	var (
		spans      bool
		nbsp       bool
		noCloze    bool
		markdown   bool
		excel      bool
		find       string
		replace    string
		cloze      string
		clozeN     int
		bold       string
		join       bool
		concatFile string
	)

	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Apply text operations to the session card text",
		Long: `clean edits the card text in place. Operations run in the order of
the flags listed below.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := openApp(cmd, false)
			if err != nil {
				return err
			}
			defer a.close()

			text := a.state.Content
			if excel {
				text = textops.ExcelToDelimited(text)
			}
			if markdown {
				text = textops.MarkdownTablesToHTML(text)
			}
			if spans {
				text = textops.CleanSpanAttributes(text)
			}
			if nbsp {
				text = textops.ReplaceNBSP(text)
			}
			if noCloze {
				text = textops.RemoveCloze(text)
			}
			if find != "" {
				var n int
				text, n = textops.ReplaceAll(text, find, replace)
				fmt.Fprintf(a.errw, "%d\n", n)
			}
			if cloze != "" {
				if text, err = textops.WrapCloze(text, cloze, clozeN); err != nil {
					return err
				}
			}
			if bold != "" {
				if text, err = textops.WrapTag(text, bold, "b"); err != nil {
					return err
				}
			}
			if concatFile != "" {
				other, err := batch.ReadBatchFile(concatFile)
				if err != nil {
					return err
				}
				text = textops.ConcatenateLines(text, other)
			}
			if join {
				text, a.state.JoinedOriginal = textops.ToggleJoin(text, a.state.JoinedOriginal)
			}

			a.state.Content = text
			a.state.Tags = mapper.AlignTags(a.state.Content, a.state.Tags)
			a.msg("Cards: %d", tokenizer.CountCards(text, a.state.DelimiterSet()))
			return a.save()
		},
	}

	cmd.Flags().BoolVar(&excel, "excel", false, "Convert tab separated spreadsheet rows to ' ; ' lines")
	cmd.Flags().BoolVar(&markdown, "markdown", false, "Convert markdown tables to HTML tables")
	cmd.Flags().BoolVar(&spans, "spans", false, "Replace ';' inside span attributes")
	cmd.Flags().BoolVar(&nbsp, "nbsp", false, "Replace non-breaking spaces")
	cmd.Flags().BoolVar(&noCloze, "remove-cloze", false, "Strip cloze markup")
	cmd.Flags().StringVar(&find, "find", "", "Replace every case-insensitive occurrence of this text")
	cmd.Flags().StringVar(&replace, "replace", "", "Replacement for --find")
	cmd.Flags().StringVar(&cloze, "cloze", "", "Wrap the first occurrence of this text as a cloze")
	cmd.Flags().IntVar(&clozeN, "cloze-number", 1, "Cloze number for --cloze")
	cmd.Flags().StringVar(&bold, "bold", "", "Wrap the first occurrence of this text in <b>")
	cmd.Flags().StringVar(&concatFile, "concat", "", "Append line i of this file to line i")
	cmd.Flags().BoolVar(&join, "join", false, "Join all lines into one, or undo the last join")
	return cmd
}
