package media

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	imgSrcRe  = regexp.MustCompile(`(<img\b[^>]*?\ssrc=)["']([^"']+)["']`)
	playRe    = regexp.MustCompile(`\[anki:play:(?:q|a):(\d+)\]`)
	soundRe   = regexp.MustCompile(`\[sound:(.*?)\]`)
	audioHTML = `<audio controls src="%s" style="max-width: 100%%; height: 30px;"></audio>`
)

// SoundNames collects the [sound:NAME] references of the field values in
// field order. The index of a name matches the index in the play tokens
// the template renderer emits.
func SoundNames(fieldValues []string) []string {
	var names []string
	for _, v := range fieldValues {
		for _, m := range soundRe.FindAllStringSubmatch(v, -1) {
			names = append(names, m[1])
		}
	}
	return names
}

// EmbedHTML inlines every resolvable image as a data URI and replaces play
// tokens with inline audio players. Images whose file is missing keep their
// reference. With no sound names the play tokens are left in place.
func (s *Store) EmbedHTML(html string, soundNames []string) string {
	html = imgSrcRe.ReplaceAllStringFunc(html, func(tag string) string {
		m := imgSrcRe.FindStringSubmatch(tag)
		data, ok := s.DataURL(m[2])
		if !ok {
			return tag
		}
		return m[1] + `"` + data + `"`
	})

	if len(soundNames) == 0 {
		return html
	}

	return playRe.ReplaceAllStringFunc(html, func(token string) string {
		idx, err := strconv.Atoi(playRe.FindStringSubmatch(token)[1])
		if err != nil || idx >= len(soundNames) {
			return ""
		}
		data, ok := s.DataURL(soundNames[idx])
		if !ok {
			return ""
		}
		return fmt.Sprintf(audioHTML, data)
	})
}

// Snippet returns the HTML that embeds a media file in a card field
func Snippet(name string) string {
	switch strings.SplitN(MimeType(name), "/", 2)[0] {
	case "audio":
		return fmt.Sprintf(`<audio controls=""><source src="%s" type="audio/mpeg"></audio>`, name)
	case "video":
		return fmt.Sprintf(`<video src="%s" controls width="320" height="240"></video>`, name)
	default:
		return fmt.Sprintf(`<img src="%s">`, name)
	}
}
