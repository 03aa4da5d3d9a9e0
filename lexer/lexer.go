package lexer

import (
	"unicode"
	"unicode/utf8"
	"unsafe"
)

// Lexer tokenizes DBML input one token at a time.
//
// The protocol mirrors an editor highlighting lexer: Start positions the
// lexer and produces the first token, Advance moves to the next one, and
// TokenType/TokenStart/TokenEnd describe the current token. TokenType
// returns EOF once the range is exhausted. No state survives a new Start.
type Lexer struct {
	src []byte
	end int
	pos int
	tok Token

	// scratch is reused to build lowercased keyword candidates.
	scratch [16]byte
}

// New creates a Lexer over the whole of src, positioned on the first token.
func New(src []byte) *Lexer {
	l := &Lexer{}
	l.Start(src, 0, len(src))
	return l
}

// NewString creates a Lexer for a string input, avoiding a copy via unsafe.
func NewString(src string) *Lexer {
	b := unsafe.Slice(unsafe.StringData(src), len(src))
	return New(b)
}

// Start resets the lexer to lex buf[start:end] and reads the first token.
// Out-of-range offsets are clamped to the buffer.
func (l *Lexer) Start(buf []byte, start, end int) {
	if end > len(buf) || end < 0 {
		end = len(buf)
	}
	if start < 0 {
		start = 0
	}
	if start > end {
		start = end
	}
	l.src = buf
	l.end = end
	l.pos = start
	l.tok = Token{Type: EOF, Pos: start, End: start}
	l.Advance()
}

// TokenType returns the type of the current token, or EOF.
func (l *Lexer) TokenType() TokenType { return l.tok.Type }

// TokenStart returns the byte offset where the current token begins.
func (l *Lexer) TokenStart() int { return l.tok.Pos }

// TokenEnd returns the byte offset just past the current token.
func (l *Lexer) TokenEnd() int { return l.tok.End }

// Token returns the current token.
func (l *Lexer) Token() Token { return l.tok }

// Next returns the current token and advances past it.
// At the end of input it keeps returning the EOF token.
func (l *Lexer) Next() Token {
	t := l.tok
	if t.Type != EOF {
		l.Advance()
	}
	return t
}

// Advance lexes the token starting at the current position.
func (l *Lexer) Advance() {
	if l.pos >= l.end {
		l.tok = Token{Type: EOF, Pos: l.end, End: l.end}
		return
	}

	start := l.pos
	b := l.src[l.pos]
	r, size := rune(b), 1
	if b >= utf8.RuneSelf {
		r, size = utf8.DecodeRune(l.src[l.pos:l.end])
	}

	var typ TokenType
	switch {
	case isSpace(b) || (b >= utf8.RuneSelf && r != utf8.RuneError && unicode.IsSpace(r)):
		typ = l.lexWhitespace()
	case b == '/' && l.peekIs(1, '/'):
		typ = l.lexLineComment()
	case b == '/' && l.peekIs(1, '*'):
		typ = l.lexBlockComment()
	case b == '\'':
		typ = l.lexSingleQuoted()
	case b == '"':
		typ = l.lexQuoted('"')
	case b == '`':
		typ = l.lexBacktick()
	case isDigit(b):
		typ = l.lexNumber()
	case isIdentStart(r):
		typ = l.lexIdent(start, size)
	default:
		typ = l.lexSymbol(b, size)
	}
	l.tok = Token{Type: typ, Raw: l.src[start:l.pos], Pos: start, End: l.pos}
}

func (l *Lexer) peekIs(off int, c byte) bool {
	return l.pos+off < l.end && l.src[l.pos+off] == c
}

func (l *Lexer) lexWhitespace() TokenType {
	for l.pos < l.end {
		b := l.src[l.pos]
		if b < utf8.RuneSelf {
			if !isSpace(b) {
				break
			}
			l.pos++
			continue
		}
		r, size := utf8.DecodeRune(l.src[l.pos:l.end])
		if r == utf8.RuneError || !unicode.IsSpace(r) {
			break
		}
		l.pos += size
	}
	return WHITESPACE
}

// lexLineComment stops before the line break so it stays in the whitespace
// token that follows.
func (l *Lexer) lexLineComment() TokenType {
	l.pos += 2
	for l.pos < l.end && l.src[l.pos] != '\n' && l.src[l.pos] != '\r' {
		l.pos++
	}
	return COMMENT
}

func (l *Lexer) lexBlockComment() TokenType {
	l.pos += 2
	for l.pos+1 < l.end {
		if l.src[l.pos] == '*' && l.src[l.pos+1] == '/' {
			l.pos += 2
			return COMMENT
		}
		l.pos++
	}
	// unterminated: the comment runs to the end of the range
	l.pos = l.end
	return COMMENT
}

// lexSingleQuoted handles both 'text' and the multi-line '''text''' form.
func (l *Lexer) lexSingleQuoted() TokenType {
	if l.pos+2 < l.end && l.src[l.pos+1] == '\'' && l.src[l.pos+2] == '\'' {
		l.pos += 3
		for l.pos < l.end {
			if l.pos+2 < l.end && l.src[l.pos] == '\'' && l.src[l.pos+1] == '\'' && l.src[l.pos+2] == '\'' {
				l.pos += 3
				return STRING
			}
			l.pos++
		}
		return STRING
	}
	return l.lexQuoted('\'')
}

// lexQuoted scans a string with backslash escapes. Delimiters and the
// backslash are ASCII, so walking bytes never splits a multi-byte rune
// in a way that matters.
func (l *Lexer) lexQuoted(delim byte) TokenType {
	l.pos++ // opening delimiter
	escaped := false
	for l.pos < l.end {
		c := l.src[l.pos]
		l.pos++
		switch {
		case escaped:
			escaped = false
		case c == '\\':
			escaped = true
		case c == delim:
			return STRING
		}
	}
	return STRING
}

func (l *Lexer) lexBacktick() TokenType {
	l.pos++
	for l.pos < l.end {
		c := l.src[l.pos]
		l.pos++
		if c == '`' {
			break
		}
	}
	return STRING
}

// lexNumber is deliberately permissive: digits, '_' and '.' in any order.
func (l *Lexer) lexNumber() TokenType {
	for l.pos < l.end {
		c := l.src[l.pos]
		if !isDigit(c) && c != '_' && c != '.' {
			break
		}
		l.pos++
	}
	return NUMBER
}

func (l *Lexer) lexIdent(start, size int) TokenType {
	l.pos += size
	for l.pos < l.end {
		b := l.src[l.pos]
		if b < utf8.RuneSelf {
			if !identContTable[b] {
				break
			}
			l.pos++
			continue
		}
		r, n := utf8.DecodeRune(l.src[l.pos:l.end])
		if !isIdentPart(r) {
			break
		}
		l.pos += n
	}
	if _, ok := matchKeyword(l.src[start:l.pos], l.scratch[:0]); ok {
		return KEYWORD
	}
	return IDENT
}

func (l *Lexer) lexSymbol(b byte, size int) TokenType {
	l.pos += size
	if size > 1 {
		return BAD_CHARACTER
	}
	switch b {
	case '{', '}':
		return BRACE
	case '(', ')':
		return PAREN
	case '[', ']':
		return BRACKET
	case ',':
		return COMMA
	case ';':
		return SEMICOLON
	case '.':
		return DOT
	case '=', '+', '-', '*', ':', '@', '#', '<', '>', '~':
		return OPERATOR
	default:
		return BAD_CHARACTER
	}
}

// ---- character classification ----

var isSpaceTab = [256]bool{' ': true, '\t': true, '\n': true, '\v': true, '\f': true, '\r': true}

// isSpace only answers for ASCII bytes; wider whitespace is decoded first.
func isSpace(c byte) bool { return c < utf8.RuneSelf && isSpaceTab[c] }

var identContTable [256]bool

func init() {
	for c := 'a'; c <= 'z'; c++ {
		identContTable[c] = true
	}
	for c := 'A'; c <= 'Z'; c++ {
		identContTable[c] = true
	}
	for c := '0'; c <= '9'; c++ {
		identContTable[c] = true
	}
	identContTable['_'] = true
	identContTable['$'] = true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isIdentStart(r rune) bool {
	return r == '_' || r == '$' || (r != utf8.RuneError && unicode.IsLetter(r))
}

func isIdentPart(r rune) bool {
	return r == '_' || r == '$' || (r != utf8.RuneError && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}

// Tokenize is a convenience function that lexes all tokens from src into
// buf, reusing its backing array. The final element is always EOF.
func Tokenize(src []byte, buf []Token) []Token {
	buf = buf[:0]
	l := New(src)
	for {
		t := l.Next()
		buf = append(buf, t)
		if t.Type == EOF {
			break
		}
	}
	return buf
}
