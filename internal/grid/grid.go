package grid

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"codeberg.org/snonux/delimit/internal/tokenizer"
)

// Grid is the card text viewed as cells: one row per line, one column per
// part
type Grid [][]string

// FromText splits every line of text into trimmed parts. Rows are padded
// with empty cells to the widest line.
func FromText(text string, set *tokenizer.Set) Grid {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	g := make(Grid, len(lines))
	width := 0
	for i, line := range lines {
		parts := tokenizer.SplitParts(line, set)
		for j := range parts {
			parts[j] = strings.TrimSpace(parts[j])
		}
		g[i] = parts
		width = max(width, len(parts))
	}

	for i := range g {
		for len(g[i]) < width {
			g[i] = append(g[i], "")
		}
	}
	return g
}

// Text joins every row with the primary delimiter. Trailing empty cells
// added by padding are dropped.
func (g Grid) Text(set *tokenizer.Set) string {
	lines := make([]string, len(g))
	for i, row := range g {
		end := len(row)
		for end > 1 && row[end-1] == "" {
			end--
		}
		lines[i] = tokenizer.Join(row[:end], set)
	}
	return strings.Join(lines, "\n")
}

// Width returns the number of columns
func (g Grid) Width() int {
	width := 0
	for _, row := range g {
		width = max(width, len(row))
	}
	return width
}

// Header returns the column labels
func (g Grid) Header() []string {
	header := make([]string, g.Width())
	for i := range header {
		header[i] = fmt.Sprintf("Campo %d", i+1)
	}
	return header
}

// WriteCSV writes the grid as CSV, optionally with a header row
func (g Grid) WriteCSV(w io.Writer, includeHeader bool) error {
	writer := csv.NewWriter(w)

	if includeHeader {
		if err := writer.Write(g.Header()); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, row := range g {
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadCSV reads a grid from CSV. Rows may have different lengths.
func ReadCSV(r io.Reader, hasHeader bool) (Grid, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV: %w", err)
	}
	if hasHeader && len(records) > 0 {
		records = records[1:]
	}
	return Grid(records), nil
}
