package lexer_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/dbml/lexer"
)

type tok struct {
	typ  lexer.TokenType
	text string
}

func lex(src string) []tok {
	var out []tok
	for _, t := range lexer.Tokenize([]byte(src), nil) {
		if t.Type == lexer.EOF {
			break
		}
		out = append(out, tok{t.Type, string(t.Raw)})
	}
	return out
}

func significant(src string) []tok {
	var out []tok
	for _, t := range lex(src) {
		if t.typ != lexer.WHITESPACE {
			out = append(out, t)
		}
	}
	return out
}

func TestLexTableDeclaration(t *testing.T) {
	src := "table users {\n  id int [pk]\n  created_at datetime [default: now()]\n  note: 'example'\n}"
	expected := []tok{
		{lexer.KEYWORD, "table"},
		{lexer.IDENT, "users"},
		{lexer.BRACE, "{"},
		{lexer.IDENT, "id"},
		{lexer.IDENT, "int"},
		{lexer.BRACKET, "["},
		{lexer.KEYWORD, "pk"},
		{lexer.BRACKET, "]"},
		{lexer.IDENT, "created_at"},
		{lexer.IDENT, "datetime"},
		{lexer.BRACKET, "["},
		{lexer.KEYWORD, "default"},
		{lexer.OPERATOR, ":"},
		{lexer.KEYWORD, "now"},
		{lexer.PAREN, "("},
		{lexer.PAREN, ")"},
		{lexer.BRACKET, "]"},
		{lexer.KEYWORD, "note"},
		{lexer.OPERATOR, ":"},
		{lexer.STRING, "'example'"},
		{lexer.BRACE, "}"},
	}
	assert.Equal(t, expected, significant(src))
}

func TestLexRules(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected []tok
	}{
		{
			name:     "line comment keeps newline out",
			src:      "// comment\nref",
			expected: []tok{{lexer.COMMENT, "// comment"}, {lexer.WHITESPACE, "\n"}, {lexer.KEYWORD, "ref"}},
		},
		{
			name:     "block comment",
			src:      "/* block */ 42",
			expected: []tok{{lexer.COMMENT, "/* block */"}, {lexer.WHITESPACE, " "}, {lexer.NUMBER, "42"}},
		},
		{
			name:     "unterminated block comment runs to end",
			src:      "a /* never closed",
			expected: []tok{{lexer.IDENT, "a"}, {lexer.WHITESPACE, " "}, {lexer.COMMENT, "/* never closed"}},
		},
		{
			name:     "block comment opener alone",
			src:      "/*",
			expected: []tok{{lexer.COMMENT, "/*"}},
		},
		{
			name:     "escaped single quote",
			src:      `'don\'t'`,
			expected: []tok{{lexer.STRING, `'don\'t'`}},
		},
		{
			name:     "escaped double quote",
			src:      `"a \" b" x`,
			expected: []tok{{lexer.STRING, `"a \" b"`}, {lexer.WHITESPACE, " "}, {lexer.IDENT, "x"}},
		},
		{
			name:     "unterminated string consumes the rest",
			src:      "'abc\ndef",
			expected: []tok{{lexer.STRING, "'abc\ndef"}},
		},
		{
			name:     "triple quoted string spans lines",
			src:      "'''\nmulti 'line'\n''' x",
			expected: []tok{{lexer.STRING, "'''\nmulti 'line'\n'''"}, {lexer.WHITESPACE, " "}, {lexer.IDENT, "x"}},
		},
		{
			name:     "empty string is not a triple quote",
			src:      "''x",
			expected: []tok{{lexer.STRING, "''"}, {lexer.IDENT, "x"}},
		},
		{
			name:     "quote followed by text is not a triple quote",
			src:      "'a''b'",
			expected: []tok{{lexer.STRING, "'a'"}, {lexer.STRING, "'b'"}},
		},
		{
			name:     "backtick has no escapes",
			src:      "`now()\\` x",
			expected: []tok{{lexer.STRING, "`now()\\`"}, {lexer.WHITESPACE, " "}, {lexer.IDENT, "x"}},
		},
		{
			name:     "permissive number",
			src:      "1_000.5. 2",
			expected: []tok{{lexer.NUMBER, "1_000.5."}, {lexer.WHITESPACE, " "}, {lexer.NUMBER, "2"}},
		},
		{
			name:     "number then identifier",
			src:      "1abc",
			expected: []tok{{lexer.NUMBER, "1"}, {lexer.IDENT, "abc"}},
		},
		{
			name:     "identifier with dollar and underscore",
			src:      "$a_1 _b",
			expected: []tok{{lexer.IDENT, "$a_1"}, {lexer.WHITESPACE, " "}, {lexer.IDENT, "_b"}},
		},
		{
			name:     "unicode identifier",
			src:      "설명 café",
			expected: []tok{{lexer.IDENT, "설명"}, {lexer.WHITESPACE, " "}, {lexer.IDENT, "café"}},
		},
		{
			name: "symbols",
			src:  "{}()[],;.=+-*:@#<>~",
			expected: []tok{
				{lexer.BRACE, "{"}, {lexer.BRACE, "}"},
				{lexer.PAREN, "("}, {lexer.PAREN, ")"},
				{lexer.BRACKET, "["}, {lexer.BRACKET, "]"},
				{lexer.COMMA, ","}, {lexer.SEMICOLON, ";"}, {lexer.DOT, "."},
				{lexer.OPERATOR, "="}, {lexer.OPERATOR, "+"}, {lexer.OPERATOR, "-"},
				{lexer.OPERATOR, "*"}, {lexer.OPERATOR, ":"}, {lexer.OPERATOR, "@"},
				{lexer.OPERATOR, "#"}, {lexer.OPERATOR, "<"}, {lexer.OPERATOR, ">"},
				{lexer.OPERATOR, "~"},
			},
		},
		{
			name:     "bad characters",
			src:      "?!€",
			expected: []tok{{lexer.BAD_CHARACTER, "?"}, {lexer.BAD_CHARACTER, "!"}, {lexer.BAD_CHARACTER, "€"}},
		},
		{
			name:     "lone slash",
			src:      "/x",
			expected: []tok{{lexer.BAD_CHARACTER, "/"}, {lexer.IDENT, "x"}},
		},
		{
			name:     "unicode whitespace",
			src:      "a\u00a0\u2003b",
			expected: []tok{{lexer.IDENT, "a"}, {lexer.WHITESPACE, "\u00a0\u2003"}, {lexer.IDENT, "b"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, lex(tt.src))
		})
	}
}

func TestLexKeywordsIgnoreCase(t *testing.T) {
	for _, word := range []string{"Table", "TABLE", "table", "TableGroup", "Project", "database_type", "Note"} {
		toks := lex(word)
		require.Len(t, toks, 1, word)
		assert.Equal(t, lexer.KEYWORD, toks[0].typ, word)
	}
	assert.Equal(t, lexer.IDENT, lex("tables")[0].typ)
	assert.Equal(t, lexer.IDENT, lex("users")[0].typ)
}

func TestKeywordHelpers(t *testing.T) {
	assert.True(t, lexer.IsKeyword("TablePartial"))
	assert.False(t, lexer.IsKeyword("varchar"))

	kws := lexer.Keywords()
	assert.Len(t, kws, 36)
	assert.True(t, strings.Compare(kws[0], kws[1]) < 0)

	toks := lexer.Tokenize([]byte("INDEXES"), nil)
	assert.Equal(t, "indexes", toks[0].Keyword())
	assert.Equal(t, "", toks[1].Keyword())
}

func TestLexerStreamingProtocol(t *testing.T) {
	src := []byte("xx table users {}")
	var l lexer.Lexer
	l.Start(src, 3, 14)

	var types []lexer.TokenType
	prevEnd := 3
	for l.TokenType() != lexer.EOF {
		assert.Equal(t, prevEnd, l.TokenStart())
		types = append(types, l.TokenType())
		prevEnd = l.TokenEnd()
		l.Advance()
	}
	assert.Equal(t, 14, prevEnd)
	assert.Equal(t, []lexer.TokenType{lexer.KEYWORD, lexer.WHITESPACE, lexer.IDENT}, types)

	// restarting leaves no state behind
	l.Start(src, 0, len(src))
	assert.Equal(t, lexer.IDENT, l.TokenType())
	assert.Equal(t, 0, l.TokenStart())
	assert.Equal(t, 2, l.TokenEnd())
}

func TestLexerNextAtEOF(t *testing.T) {
	l := lexer.NewString("a")
	assert.Equal(t, lexer.IDENT, l.Next().Type)
	assert.Equal(t, lexer.EOF, l.Next().Type)
	assert.Equal(t, lexer.EOF, l.Next().Type)
}

func TestTokenHelpers(t *testing.T) {
	toks := lexer.Tokenize([]byte("{ \n}"), nil)
	assert.True(t, toks[0].Is(lexer.BRACE, "{"))
	assert.False(t, toks[0].Is(lexer.BRACE, "}"))
	assert.True(t, toks[1].HasNewline())
	assert.True(t, toks[1].Type.IsTrivia())
	assert.Equal(t, "BRACE", toks[2].Type.String())
}

var coverageInputs = []string{
	"",
	"{",
	"}}}",
	"table users { id int [pk] }",
	"'''unterminated",
	"\"also unterminated\\",
	"`tick",
	"/* open",
	"//",
	"\xff\xfe table \x80",
	"Table 사용자 { 이름 varchar }",
	"note: '''a''' ''' b",
	"1.2.3_4 abc$ $ _ . ; ,",
}

func TestTokensCoverInputExactly(t *testing.T) {
	for _, src := range coverageInputs {
		toks := lexer.Tokenize([]byte(src), nil)
		require.NotEmpty(t, toks)
		pos := 0
		for _, tk := range toks[:len(toks)-1] {
			require.Equal(t, pos, tk.Pos, "gap before token in %q", src)
			require.Greater(t, tk.End, tk.Pos, "empty token in %q", src)
			require.Equal(t, src[tk.Pos:tk.End], string(tk.Raw))
			pos = tk.End
		}
		assert.Equal(t, len(src), pos, "tokens must cover %q", src)
		assert.Equal(t, lexer.EOF, toks[len(toks)-1].Type)
	}
}

func TestTokenizeIdempotent(t *testing.T) {
	for _, src := range coverageInputs {
		a := lexer.Tokenize([]byte(src), nil)
		b := lexer.Tokenize([]byte(src), make([]lexer.Token, 0, 4))
		assert.Equal(t, a, b)
	}
}

func FuzzTokenize(f *testing.F) {
	for _, src := range coverageInputs {
		f.Add(src)
	}
	f.Fuzz(func(t *testing.T, src string) {
		toks := lexer.Tokenize([]byte(src), nil)
		pos := 0
		for _, tk := range toks[:len(toks)-1] {
			if tk.Pos != pos || tk.End <= tk.Pos {
				t.Fatalf("bad span %d-%d at %d", tk.Pos, tk.End, pos)
			}
			pos = tk.End
		}
		if pos != len(src) {
			t.Fatalf("covered %d of %d bytes", pos, len(src))
		}
	})
}
