package render

import (
	"regexp"
	"strings"
)

// DefaultLandmarks are searched for when the answer has no answer marker
var DefaultLandmarks = []string{"TRADUÇÃO"}

var answerMarkerRe = regexp.MustCompile(`<hr id=['"]?answer['"]?>`)

// PureBack extracts the back content from rendered answer HTML.
//
// Standard templates render the front again, followed by an answer marker;
// only what follows the first marker is returned. Without a marker the
// first landmark found (case-insensitive) cuts the answer at the nearest
// preceding tag open. If that fails too the whole answer is returned.
func PureBack(answerHTML string, landmarks []string) string {
	if loc := answerMarkerRe.FindStringIndex(answerHTML); loc != nil {
		return answerHTML[loc[1]:]
	}

	for _, mark := range landmarks {
		if mark == "" {
			continue
		}
		re, err := regexp.Compile("(?i)" + regexp.QuoteMeta(mark))
		if err != nil {
			continue
		}
		loc := re.FindStringIndex(answerHTML)
		if loc == nil {
			continue
		}
		if start := strings.LastIndex(answerHTML[:loc[0]], "<"); start >= 0 {
			return answerHTML[start:]
		}
	}

	return answerHTML
}
