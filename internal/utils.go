package internal

import (
	"strings"

	"github.com/gosimple/slug"
)

// SanitizeFilename creates a safe file name stem from a deck or note name.
// Accents are transliterated and separators become '-'. Deck paths
// ("Idiomas::Inglês") keep their levels as '_'.
func SanitizeFilename(s string) string {
	levels := strings.Split(s, "::")
	parts := make([]string, 0, len(levels))
	for _, level := range levels {
		if p := slug.Make(level); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "cards"
	}
	return strings.Join(parts, "_")
}
