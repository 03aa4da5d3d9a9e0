// Package lexer provides the DBML lexer.
// It is a hand-rolled state machine over UTF-8 bytes that never fails:
// every byte of the input belongs to exactly one token, and bytes that start
// no known lexeme come out as BAD_CHARACTER.
package lexer

// TokenType identifies the type of a DBML token.
type TokenType uint8

const (
	// EOF is the end-of-stream sentinel; it never covers any input.
	EOF TokenType = iota

	// Trivia
	WHITESPACE
	COMMENT

	// Words and literals
	KEYWORD
	IDENT
	STRING
	NUMBER

	// Punctuation
	BRACE     // { }
	BRACKET   // [ ]
	PAREN     // ( )
	COMMA     // ,
	DOT       // .
	SEMICOLON // ;
	OPERATOR  // = + - * : @ # < > ~

	BAD_CHARACTER
)

// String returns a human-readable representation of the token type.
func (t TokenType) String() string {
	if int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return "UNKNOWN"
}

var tokenNames = [...]string{
	EOF:           "EOF",
	WHITESPACE:    "WHITESPACE",
	COMMENT:       "COMMENT",
	KEYWORD:       "KEYWORD",
	IDENT:         "IDENTIFIER",
	STRING:        "STRING",
	NUMBER:        "NUMBER",
	BRACE:         "BRACE",
	BRACKET:       "BRACKET",
	PAREN:         "PAREN",
	COMMA:         "COMMA",
	DOT:           "DOT",
	SEMICOLON:     "SEMICOLON",
	OPERATOR:      "OPERATOR",
	BAD_CHARACTER: "BAD_CHARACTER",
}

// IsTrivia reports whether tokens of this type are skipped when the parser
// or the scope scanner looks for structural tokens.
func (t TokenType) IsTrivia() bool {
	return t == WHITESPACE || t == COMMENT
}

// Token is a single lexeme. Raw borrows from the source buffer.
type Token struct {
	Raw  []byte
	Type TokenType
	// Pos and End are byte offsets; the token covers src[Pos:End].
	Pos int
	End int
}

// Len returns the number of bytes covered by the token.
func (t Token) Len() int { return t.End - t.Pos }

// Is reports whether the token has the given type and exact text.
// It is the usual way to tell '{' from '}' since both are BRACE tokens.
func (t Token) Is(typ TokenType, text string) bool {
	return t.Type == typ && string(t.Raw) == text
}

// HasNewline reports whether a WHITESPACE token spans a line break.
func (t Token) HasNewline() bool {
	if t.Type != WHITESPACE {
		return false
	}
	for _, c := range t.Raw {
		if c == '\n' {
			return true
		}
	}
	return false
}

// Keyword returns the lower-cased keyword text, or "" for non-keywords.
func (t Token) Keyword() string {
	if t.Type != KEYWORD {
		return ""
	}
	return lowerWord(t.Raw)
}
