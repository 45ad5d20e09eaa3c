package render

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	idAttrRe     = regexp.MustCompile(`(^|\s)id\s*=\s*["']([^"']+)["']`)
	getElementRe = regexp.MustCompile(`getElementById\s*\(\s*["']([^"']+)["']\s*\)`)
)

// UniquifyIDs suffixes every element id of a card with "_<cardID>" so that
// several cards can share one document. The id attributes, getElementById
// calls in inline scripts and #id selectors of the card CSS are rewritten.
// A selector only matches when the id is not followed by another
// identifier character, so #x does not touch #xy.
func UniquifyIDs(html, css string, cardID int64) (string, string) {
	suffix := fmt.Sprintf("_%d", cardID)

	renamed := make(map[string]string)
	for _, m := range idAttrRe.FindAllStringSubmatch(html, -1) {
		renamed[m[2]] = m[2] + suffix
	}
	if len(renamed) == 0 {
		return html, css
	}

	html = idAttrRe.ReplaceAllStringFunc(html, func(attr string) string {
		m := idAttrRe.FindStringSubmatch(attr)
		return m[1] + `id="` + renamed[m[2]] + `"`
	})

	html = getElementRe.ReplaceAllStringFunc(html, func(call string) string {
		id := getElementRe.FindStringSubmatch(call)[1]
		if newID, ok := renamed[id]; ok {
			return `getElementById("` + newID + `")`
		}
		return call
	})

	return html, renameSelectors(css, renamed)
}

// renameSelectors rewrites #id selectors in a single pass. At each '#' the
// longest known id that is not followed by an identifier character wins.
func renameSelectors(css string, renamed map[string]string) string {
	if !strings.Contains(css, "#") {
		return css
	}

	var sb strings.Builder
	sb.Grow(len(css) + len(renamed)*8)

	for i := 0; i < len(css); {
		if css[i] == '#' {
			if id := longestID(css[i+1:], renamed); id != "" {
				sb.WriteByte('#')
				sb.WriteString(renamed[id])
				i += 1 + len(id)
				continue
			}
		}
		sb.WriteByte(css[i])
		i++
	}
	return sb.String()
}

func longestID(rest string, renamed map[string]string) string {
	best := ""
	for id := range renamed {
		if len(id) <= len(best) || !strings.HasPrefix(rest, id) {
			continue
		}
		if len(rest) > len(id) && isIdentByte(rest[len(id)]) {
			continue
		}
		best = id
	}
	return best
}

func isIdentByte(b byte) bool {
	return b == '-' || b == '_' ||
		(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
}
