package reader

import (
	"strconv"
	"strings"
)

type tokKind int

const (
	tokNumber tokKind = iota
	tokString
	tokName
	tokDelim
	tokOperator
)

type token struct {
	kind tokKind
	text string
}

// lexer splits a content stream into tokens. It is deliberately
// forgiving: unknown bytes become operator tokens that the interpreter
// ignores.
type lexer struct {
	data []byte
	pos  int
}

func newLexer(data []byte) *lexer {
	return &lexer{data: data}
}

func (l *lexer) next() (token, bool) {
	l.skipSpaceAndComments()
	if l.pos >= len(l.data) {
		return token{}, false
	}
	b := l.data[l.pos]
	switch {
	case b == '(':
		l.pos++
		return token{tokString, l.readLiteral()}, true
	case b == '<':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '<' {
			l.pos += 2
			return token{tokDelim, "<<"}, true
		}
		l.pos++
		return token{tokString, l.readHex()}, true
	case b == '>':
		if l.pos+1 < len(l.data) && l.data[l.pos+1] == '>' {
			l.pos += 2
			return token{tokDelim, ">>"}, true
		}
		l.pos++
		return token{tokDelim, ">"}, true
	case b == '[' || b == ']' || b == '{' || b == '}':
		l.pos++
		return token{tokDelim, string(b)}, true
	case b == '/':
		l.pos++
		return token{tokName, "/" + l.readBare()}, true
	default:
		word := l.readBare()
		if word == "" {
			l.pos++
			return token{tokDelim, string(b)}, true
		}
		if _, err := strconv.ParseFloat(word, 64); err == nil {
			return token{tokNumber, word}, true
		}
		return token{tokOperator, word}, true
	}
}

func (l *lexer) skipSpaceAndComments() {
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if isPDFSpace(b) {
			l.pos++
			continue
		}
		if b == '%' {
			for l.pos < len(l.data) && l.data[l.pos] != '\n' && l.data[l.pos] != '\r' {
				l.pos++
			}
			continue
		}
		return
	}
}

func (l *lexer) readBare() string {
	start := l.pos
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		if isPDFSpace(b) || isPDFDelim(b) {
			break
		}
		l.pos++
	}
	return string(l.data[start:l.pos])
}

// readLiteral consumes a (...) string, handling nesting and escapes.
func (l *lexer) readLiteral() string {
	var sb strings.Builder
	depth := 1
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		l.pos++
		switch b {
		case '\\':
			if l.pos >= len(l.data) {
				return sb.String()
			}
			e := l.data[l.pos]
			l.pos++
			switch e {
			case 'n':
				sb.WriteByte('\n')
			case 'r':
				sb.WriteByte('\r')
			case 't':
				sb.WriteByte('\t')
			case 'b':
				sb.WriteByte('\b')
			case 'f':
				sb.WriteByte('\f')
			case '(', ')', '\\':
				sb.WriteByte(e)
			case '\n':
			case '\r':
				if l.pos < len(l.data) && l.data[l.pos] == '\n' {
					l.pos++
				}
			default:
				if e >= '0' && e <= '7' {
					v := int(e - '0')
					for n := 0; n < 2 && l.pos < len(l.data); n++ {
						d := l.data[l.pos]
						if d < '0' || d > '7' {
							break
						}
						v = v*8 + int(d-'0')
						l.pos++
					}
					sb.WriteByte(byte(v))
				} else {
					sb.WriteByte(e)
				}
			}
		case '(':
			depth++
			sb.WriteByte(b)
		case ')':
			depth--
			if depth == 0 {
				return sb.String()
			}
			sb.WriteByte(b)
		default:
			sb.WriteByte(b)
		}
	}
	return sb.String()
}

// readHex consumes a <...> string and decodes the hex digits.
func (l *lexer) readHex() string {
	var digits []byte
	for l.pos < len(l.data) {
		b := l.data[l.pos]
		l.pos++
		if b == '>' {
			break
		}
		if isHexDigit(b) {
			digits = append(digits, b)
		}
	}
	if len(digits)%2 == 1 {
		digits = append(digits, '0')
	}
	var sb strings.Builder
	for i := 0; i+1 < len(digits); i += 2 {
		hi := hexVal(digits[i])
		lo := hexVal(digits[i+1])
		sb.WriteByte(byte(hi<<4 | lo))
	}
	return sb.String()
}

func isPDFSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\f' || b == 0
}

func isPDFDelim(b byte) bool {
	switch b {
	case '(', ')', '<', '>', '[', ']', '{', '}', '/', '%':
		return true
	}
	return false
}

func isHexDigit(b byte) bool {
	return (b >= '0' && b <= '9') || (b >= 'a' && b <= 'f') || (b >= 'A' && b <= 'F')
}

func hexVal(b byte) int {
	switch {
	case b >= '0' && b <= '9':
		return int(b - '0')
	case b >= 'a' && b <= 'f':
		return int(b-'a') + 10
	default:
		return int(b-'A') + 10
	}
}
