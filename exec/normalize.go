package exec

import (
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrInvalidUTF8 is returned when child output is not valid UTF-8
var ErrInvalidUTF8 = errors.New("output is not valid UTF-8")

// Normalize converts one chunk of child output into text.
//
// Byte chunks are decoded as UTF-8; string chunks pass through unchanged.
// Trailing whitespace is stripped unless preserveWhitespace is set.
func Normalize[T ~string | ~[]byte](chunk T, preserveWhitespace bool) (string, error) {
	var text string
	switch c := any(chunk).(type) {
	case string:
		text = c
	default:
		b := []byte(chunk)
		if !utf8.Valid(b) {
			return "", ErrInvalidUTF8
		}
		text = string(b)
	}

	if preserveWhitespace {
		return text, nil
	}
	return strings.TrimRightFunc(text, unicode.IsSpace), nil
}
