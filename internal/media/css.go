package media

import (
	"errors"
	"io"
	"strings"

	parse "github.com/tdewolff/parse/v2"
	"github.com/tdewolff/parse/v2/css"
	"go.uber.org/zap"
)

// EmbedCSS removes @import statements and inlines local url(...) references
// as data URIs. Remote and data references are kept, as are references to
// files that do not exist.
func (s *Store) EmbedCSS(sheet string) string {
	if strings.TrimSpace(sheet) == "" {
		return sheet
	}

	lexer := css.NewLexer(parse.NewInputString(sheet))

	var sb strings.Builder
	sb.Grow(len(sheet))

	inImport := false
	for {
		tt, data := lexer.Next()
		if tt == css.ErrorToken {
			if err := lexer.Err(); err != nil && !errors.Is(err, io.EOF) {
				s.log.Warn("Failed to tokenize CSS, leaving it unchanged", zap.Error(err))
				return sheet
			}
			break
		}

		if inImport {
			if tt == css.SemicolonToken {
				inImport = false
			}
			continue
		}

		switch tt {
		case css.AtKeywordToken:
			if strings.EqualFold(string(data), "@import") {
				inImport = true
				continue
			}
		case css.URLToken:
			sb.WriteString(s.embedURL(string(data)))
			continue
		}
		sb.Write(data)
	}

	return sb.String()
}

// embedURL rewrites a single url(...) token
func (s *Store) embedURL(token string) string {
	open := strings.IndexByte(token, '(')
	if open < 0 || !strings.HasSuffix(token, ")") {
		return token
	}
	ref := strings.Trim(strings.TrimSpace(token[open+1:len(token)-1]), `"'`)
	if ref == "" || isExternal(ref) {
		return token
	}

	data, ok := s.DataURL(ref)
	if !ok {
		return token
	}
	return `url("` + data + `")`
}
