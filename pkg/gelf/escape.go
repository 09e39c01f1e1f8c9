package gelf

import (
	"strings"
	"unicode/utf8"
)

// String escaping applied to quoted values during rendering
type EscapeMode uint8

const (
	// Only double quotes are escaped (legacy wire behavior).
	// Backslashes and control characters pass through untouched.
	EscapeQuotes EscapeMode = iota
	// Full JSON string escaping
	EscapeJSON
)

const hexDigits = "0123456789abcdef"

var quoteReplacer = strings.NewReplacer(`"`, `\"`)

// Appends text to buf as a quoted JSON string using the given mode
func appendQuoted(buf []byte, text string, mode EscapeMode) []byte {
	buf = append(buf, '"')
	switch mode {
	case EscapeJSON:
		buf = appendJSONEscaped(buf, text)
	default:
		buf = append(buf, quoteReplacer.Replace(text)...)
	}
	buf = append(buf, '"')
	return buf
}

func appendJSONEscaped(buf []byte, text string) []byte {
	for index := 0; index < len(text); {
		char := text[index]
		if char >= utf8.RuneSelf {
			r, size := utf8.DecodeRuneInString(text[index:])
			if r == utf8.RuneError && size == 1 {
				buf = append(buf, `\ufffd`...)
			} else {
				buf = append(buf, text[index:index+size]...)
			}
			index += size
			continue
		}

		switch char {
		case '"':
			buf = append(buf, '\\', '"')
		case '\\':
			buf = append(buf, '\\', '\\')
		case '\n':
			buf = append(buf, '\\', 'n')
		case '\r':
			buf = append(buf, '\\', 'r')
		case '\t':
			buf = append(buf, '\\', 't')
		default:
			if char < 0x20 {
				buf = append(buf, '\\', 'u', '0', '0', hexDigits[char>>4], hexDigits[char&0xF])
			} else {
				buf = append(buf, char)
			}
		}
		index++
	}
	return buf
}
