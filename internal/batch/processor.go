package batch

import (
	"fmt"
	"os"
	"strings"

	"codeberg.org/snonux/delimit/internal/mapper"
)

const bom = "\ufeff"

// ReadBatchFile reads card text from a file. A UTF-8 byte order mark is
// dropped and CRLF line endings become LF. Only trailing blank lines are
// removed; leading and inner blank lines keep lines aligned with a tag
// file.
func ReadBatchFile(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		return "", fmt.Errorf("failed to read batch file: %w", err)
	}

	text := strings.TrimPrefix(string(content), bom)
	return mapper.TrimTrailing(text), nil
}

// ReadRows reads a card file and an optional tag file (empty name for
// none) into aligned rows
func ReadRows(cardsFile, tagsFile string) ([]mapper.Row, error) {
	cards, err := ReadBatchFile(cardsFile)
	if err != nil {
		return nil, err
	}

	var tags string
	if tagsFile != "" {
		if tags, err = ReadBatchFile(tagsFile); err != nil {
			return nil, fmt.Errorf("tags: %w", err)
		}
	}

	return mapper.Rows(cards, tags), nil
}
