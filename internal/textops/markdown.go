package textops

import (
	"regexp"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/parser"
)

var tableSepRe = regexp.MustCompile(`^\|(?:\s*[-:]+\s*\|?)+$`)

// MarkdownTablesToHTML converts pipe tables to HTML tables. Every table is
// rendered onto one line so it stays inside a single card; the remaining
// lines are kept as they are.
func MarkdownTablesToHTML(text string) string {
	lines := strings.Split(text, "\n")
	out := make([]string, 0, len(lines))

	for i := 0; i < len(lines); i++ {
		if !isTableRow(lines[i]) || i+1 >= len(lines) || !tableSepRe.MatchString(strings.TrimSpace(lines[i+1])) {
			out = append(out, lines[i])
			continue
		}

		end := i + 2
		for end < len(lines) && isTableRow(lines[end]) {
			end++
		}
		if end == i+2 {
			// Header without body rows
			out = append(out, lines[i])
			continue
		}
		out = append(out, tableHTML(lines[i:end]))
		i = end - 1
	}
	return strings.Join(out, "\n")
}

func isTableRow(line string) bool {
	line = strings.TrimSpace(line)
	return len(line) > 2 && strings.HasPrefix(line, "|") && strings.HasSuffix(line, "|") &&
		strings.Contains(line[1:len(line)-1], "|")
}

func tableHTML(block []string) string {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.Tables)
	html := markdown.ToHTML([]byte(strings.Join(block, "\n")), p, nil)
	return strings.ReplaceAll(strings.TrimSpace(string(html)), "\n", "")
}
