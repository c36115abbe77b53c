package resolve

import (
	"fmt"
	"strings"

	"github.com/conn-castle/grab/internal/messages"
)

// ParseErrorKind classifies why a value could not be extracted.
type ParseErrorKind int

// Parse error kinds.
const (
	KeyNotFound ParseErrorKind = iota + 1
	Truncated
	NotString
	UnknownEscape
)

// ParseError reports a failed value extraction.
type ParseError struct {
	Kind ParseErrorKind
	Key  string
	msg  string
}

func (e *ParseError) Error() string {
	return e.msg
}

// Value extracts the string value of a top-level-looking key from a JSON document.
//
// This is a targeted scanner, not a JSON parser: it finds the first occurrence of
// the quoted key followed by a colon and reads a string value. Only the escapes
// \\ \" \' \/ \n and \t are understood.
func Value(doc string, key string) (string, error) {
	quoted := `"` + strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(key) + `"`

	i := 0
	for {
		found := strings.Index(doc[i:], quoted)
		if found < 0 {
			return "", &ParseError{Kind: KeyNotFound, Key: key, msg: fmt.Sprintf(messages.ResolveKeyNotFoundFmt, key, doc)}
		}
		i += found + len(quoted)
		i = skipSpace(doc, i)
		if i < len(doc) && doc[i] == ':' {
			break
		}
	}

	i = skipSpace(doc, i+1)
	if i >= len(doc) {
		return "", truncated(doc, key)
	}
	if doc[i] != '"' {
		return "", &ParseError{Kind: NotString, Key: key, msg: fmt.Sprintf(messages.ResolveNotStringFmt, key, i, doc)}
	}

	var sb strings.Builder
	for i++; i < len(doc); i++ {
		c := doc[i]
		switch c {
		case '"':
			return sb.String(), nil
		case '\\':
			i++
			if i >= len(doc) {
				return "", truncated(doc, key)
			}
			switch doc[i] {
			case '\\', '"', '\'', '/':
				c = doc[i]
			case 'n':
				c = '\n'
			case 't':
				c = '\t'
			default:
				return "", &ParseError{Kind: UnknownEscape, Key: key, msg: fmt.Sprintf(messages.ResolveUnknownEscapeFmt, doc[i], i-1, doc)}
			}
		}
		sb.WriteByte(c)
	}
	return "", truncated(doc, key)
}

func truncated(doc, key string) error {
	return &ParseError{Kind: Truncated, Key: key, msg: fmt.Sprintf(messages.ResolveTruncatedFmt, key, doc)}
}

// skipSpace returns the index of the first non-whitespace byte at or after i.
func skipSpace(s string, i int) int {
	for i < len(s) {
		switch s[i] {
		case ' ', '\t', '\n', '\r', '\f', '\v':
			i++
		default:
			return i
		}
	}
	return i
}
