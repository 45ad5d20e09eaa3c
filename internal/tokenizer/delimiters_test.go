package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActiveFallsBackToSemicolon(t *testing.T) {
	assert.Equal(t, []rune{';'}, NewSet().Active())
	assert.Equal(t, ';', NewSet().Primary())
}

func TestActiveKeepsDisplayOrder(t *testing.T) {
	set := NewSet('|', '\t', ':')
	assert.Equal(t, []rune{'\t', ':', '|'}, set.Active())
}

func TestStatesRoundTrip(t *testing.T) {
	set := NewSet(',', '/')
	states := set.States()

	require.Len(t, states, len(Known))
	assert.True(t, states["Vírgula"])
	assert.True(t, states["Barra"])
	assert.False(t, states["Ponto e Vírgula"])

	restored := FromStates(states)
	assert.Equal(t, set.Active(), restored.Active())
}

func TestFromStatesIgnoresUnknownNames(t *testing.T) {
	set := FromStates(map[string]bool{"Bogus": true, "Pipe": true})
	assert.Equal(t, []rune{'|'}, set.Active())
}

func TestToggleAndEnable(t *testing.T) {
	set := NewSet()

	require.NoError(t, set.Toggle("comma"))
	assert.True(t, set.Contains(','))

	require.NoError(t, set.Toggle(","))
	assert.False(t, set.Contains(','))

	require.NoError(t, set.Enable("Pipe", true))
	require.NoError(t, set.Enable("|", false))
	assert.Equal(t, []rune{';'}, set.Active())

	assert.Error(t, set.Toggle("#"))
}

func TestLookup(t *testing.T) {
	tests := []struct {
		key  string
		want rune
	}{
		{"Tab", '\t'},
		{`\t`, '\t'},
		{"semicolon", ';'},
		{"?", '?'},
		{"Exclamação", '!'},
	}
	for _, tt := range tests {
		d, err := Lookup(tt.key)
		require.NoError(t, err, tt.key)
		assert.Equal(t, tt.want, d.Symbol, tt.key)
	}
}
