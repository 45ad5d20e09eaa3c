package textops

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanSpanAttributes(t *testing.T) {
	in := `<span style="color:red;font-weight:bold">Paris</span>;France`
	want := `<span style="color:red font-weight:bold">Paris</span>;France`
	assert.Equal(t, want, CleanSpanAttributes(in))

	plain := "a;b;c"
	assert.Equal(t, plain, CleanSpanAttributes(plain))
}

func TestReplaceNBSP(t *testing.T) {
	assert.Equal(t, "a b;c", ReplaceNBSP("a\u00a0b;c"))
}

func TestRemoveCloze(t *testing.T) {
	tests := map[string]string{
		"{{c1::Paris}} is in {{c2::France}}": "Paris is in France",
		"{{c1::Paris::city}}":                "Paris",
		"no cloze":                           "no cloze",
	}
	for in, want := range tests {
		assert.Equal(t, want, RemoveCloze(in), in)
	}
}

func TestWrapCloze(t *testing.T) {
	got, err := WrapCloze("Paris is in France", "France", 2)
	require.NoError(t, err)
	assert.Equal(t, "Paris is in {{c2::France}}", got)

	_, err = WrapCloze("Paris", "  ", 1)
	assert.True(t, errors.Is(err, ErrEmptySelection))

	_, err = WrapCloze("Paris", "Rome", 1)
	assert.Error(t, err)

	_, err = WrapCloze("Paris", "Paris", 0)
	assert.Error(t, err)
}

func TestWrapTag(t *testing.T) {
	got, err := WrapTag("cat;gato", "cat", "b")
	require.NoError(t, err)
	assert.Equal(t, "<b>cat</b>;gato", got)
}

func TestToggleJoin(t *testing.T) {
	joined, saved := ToggleJoin("a;b\nc;d", "")
	assert.Equal(t, "a;b c;d", joined)
	assert.Equal(t, "a;b\nc;d", saved)

	restored, saved := ToggleJoin(joined, saved)
	assert.Equal(t, "a;b\nc;d", restored)
	assert.Empty(t, saved)

	same, saved := ToggleJoin("single", "")
	assert.Equal(t, "single", same)
	assert.Empty(t, saved)
}

func TestConcatenateLines(t *testing.T) {
	got := ConcatenateLines("a;\nb;\nc;", "1\n2")
	assert.Equal(t, "a;1\nb;2\nc;", got)

	got = ConcatenateLines("x", "1\n2")
	assert.Equal(t, "x1\n2", got)
}

func TestReplaceAll(t *testing.T) {
	got, n := ReplaceAll("Cat;cat;CAT.", "cat", "dog")
	assert.Equal(t, "dog;dog;dog.", got)
	assert.Equal(t, 3, n)

	got, n = ReplaceAll("a.b", ".", "")
	assert.Equal(t, "ab", got)
	assert.Equal(t, 1, n)

	got, n = ReplaceAll("unchanged", "", "x")
	assert.Equal(t, "unchanged", got)
	assert.Zero(t, n)
}

func TestExcelToDelimited(t *testing.T) {
	in := "Paris\tFrance\r\nBerlin \t Germany\n"
	assert.Equal(t, "Paris ; France\nBerlin ; Germany", ExcelToDelimited(in))
}

func TestMarkdownTablesToHTML(t *testing.T) {
	in := strings.Join([]string{
		"before;line",
		"| a | b |",
		"|---|---|",
		"| 1 | 2 |",
		"| 3 | 4 |",
		"after;line",
	}, "\n")

	got := MarkdownTablesToHTML(in)
	lines := strings.Split(got, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "before;line", lines[0])
	assert.Equal(t, "after;line", lines[2])

	table := lines[1]
	assert.True(t, strings.HasPrefix(table, "<table>"), table)
	assert.Contains(t, table, "<th>a</th>")
	assert.Contains(t, table, "<td>4</td>")
}

func TestMarkdownTablesWithoutTable(t *testing.T) {
	in := "| not | a table\nplain;line"
	assert.Equal(t, in, MarkdownTablesToHTML(in))
}
