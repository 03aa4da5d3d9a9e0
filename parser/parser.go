// Package parser builds the DBML concrete syntax tree.
// It is a hand-rolled recursive descent parser that never fails: anything the
// grammar does not recognise becomes an UnknownStatement and parsing resumes
// at the next statement boundary (';', a line break, or a closing '}').
// Every token of the input ends up as a leaf in the tree.
package parser

import (
	"unsafe"

	"github.com/oarkflow/dbml/ast"
	"github.com/oarkflow/dbml/lexer"
)

// Parser converts a token stream into a syntax tree.
//
// Nodes are built with a stack of open frames: open starts a node, advance
// appends the current token as a leaf of the innermost frame, and close
// turns the frame into a node owned by its parent. Trailing trivia of a
// closed node is handed to the parent so composite nodes end on a
// significant token.
type Parser struct {
	src   []byte
	toks  []lexer.Token
	i     int
	stack []frame

	// arena owns all node memory. Reusing a Parser after Reset recycles it.
	arena nodeArena
}

type frame struct {
	kind ast.Kind
	kids []*ast.Node
}

// New creates a Parser for the given DBML bytes.
func New(src []byte) *Parser {
	p := &Parser{}
	p.Reset(src)
	return p
}

// NewString creates a Parser for a DBML string without copying it.
func NewString(src string) *Parser {
	return New(unsafe.Slice(unsafe.StringData(src), len(src)))
}

// Reset reuses the parser with new input, reusing internal memory.
// Trees returned before Reset must not be used afterwards.
func (p *Parser) Reset(src []byte) {
	p.src = src
	p.toks = lexer.Tokenize(src, p.toks)
	p.i = 0
	p.stack = p.stack[:0]
	p.arena.reset()
}

// Parse parses src into a File node spanning the whole input.
func Parse(src []byte) *ast.Node {
	return New(src).ParseFile()
}

// ParseString is Parse for string input.
func ParseString(src string) *ast.Node {
	return NewString(src).ParseFile()
}

// ParseTokens builds the tree from tokens already lexed from src. A missing
// EOF sentinel is supplied; toks itself is not modified.
func ParseTokens(src []byte, toks []lexer.Token) *ast.Node {
	if len(toks) == 0 || toks[len(toks)-1].Type != lexer.EOF {
		toks = append(toks[:len(toks):len(toks)], lexer.Token{Type: lexer.EOF, Pos: len(src), End: len(src)})
	}
	p := &Parser{src: src, toks: toks}
	return p.ParseFile()
}

// ParseFile parses every statement and returns the File node. The root
// always spans [0, len(src)), whatever the input looks like.
func (p *Parser) ParseFile() *ast.Node {
	p.i = 0
	p.stack = p.stack[:0]
	p.open(ast.File)
	for {
		p.skipTrivia()
		if p.eof() {
			break
		}
		p.parseStatement()
	}
	kids := p.stack[0].kids
	p.stack = p.stack[:0]

	root := p.arena.node()
	root.Kind = ast.File
	root.Children = p.arena.children(kids)
	root.End = len(p.src)
	return root
}

// ---- statements ----

func (p *Parser) parseStatement() {
	switch p.keyword() {
	case "table", "tablepartial":
		p.parseTableDecl()
	case "enum":
		p.parseBlockLike(ast.EnumDecl)
	case "project":
		p.parseBlockLike(ast.ProjectDecl)
	case "tablegroup":
		p.parseBlockLike(ast.TableGroupDecl)
	case "ref":
		p.parseBlockOrInline(ast.RefDecl)
	case "note", "notes":
		p.parseBlockOrInline(ast.NoteDecl)
	default:
		p.parseUnknown()
	}
}

// parseTableDecl reads the inline prefix up to '{' and then the body. With
// no '{' before a hard terminator the declaration closes without a body.
func (p *Parser) parseTableDecl() {
	p.open(ast.TableDecl)
	p.advance() // table keyword
	for !p.eof() {
		if p.atOpenBrace() {
			p.parseTableBody()
			p.close()
			return
		}
		if p.atHardTerminator() {
			break
		}
		p.advance()
	}
	p.consumeStatementTail()
	p.close()
}

// parseBlockLike handles enum, project and tablegroup: the first '{' before
// a hard terminator opens the body; otherwise the statement tail ends it.
func (p *Parser) parseBlockLike(kind ast.Kind) {
	p.open(kind)
	p.advance() // keyword
	parsedBlock := false
	for !p.eof() {
		if p.atOpenBrace() {
			p.consumeBlock()
			parsedBlock = true
			break
		}
		if p.atHardTerminator() {
			break
		}
		p.advance()
	}
	if !parsedBlock {
		p.consumeStatementTail()
	}
	p.close()
}

// parseBlockOrInline handles ref and note: a block right after the keyword,
// or an inline form that may still open a block part way through.
func (p *Parser) parseBlockOrInline(kind ast.Kind) {
	p.open(kind)
	p.advance() // keyword
	if !p.tryBlock() {
		p.consumeInline()
	}
	p.close()
}

func (p *Parser) parseUnknown() {
	p.open(ast.UnknownStatement)
	p.advance()
	p.consumeStatementTail()
	p.close()
}

// ---- table body ----

func (p *Parser) parseTableBody() {
	p.open(ast.TableBody)
	p.advance() // {
	for {
		p.skipTrivia()
		if p.eof() {
			break
		}
		if p.atCloseBrace() {
			p.advance()
			break
		}
		p.parseTableItem()
	}
	p.close()
}

func (p *Parser) parseTableItem() {
	switch kw := p.keyword(); {
	case kw == "indexes":
		p.parseIndexesBlock()
	case kw == "note" || kw == "notes":
		p.parseNoteBlock()
	case kw == "primary" && p.peekKeyword() == "key":
		p.parsePrimaryKeyBlock()
	case kw == "index":
		p.parseIndexDef()
	default:
		p.parseColumnDef()
	}
}

// parseColumnDef reads a name token, the type span up to '[' or the end of
// the line, and an optional bracketed attribute list.
func (p *Parser) parseColumnDef() {
	p.open(ast.ColumnDef)

	p.open(ast.ColumnName)
	p.advance()
	p.close()

	p.skipInlineTrivia()
	p.open(ast.ColumnType)
	for !p.eof() && !p.atOpenBracket() && !p.atTerminator() && !p.atOpenBrace() {
		p.advance()
	}
	p.close() // an empty type leaves no node

	p.skipInlineTrivia()
	if p.atOpenBracket() {
		p.open(ast.ColumnAttrList)
		p.consumeBracketList()
		p.close()
	}

	p.consumeStatementTail()
	p.close()
}

func (p *Parser) parseIndexesBlock() {
	p.open(ast.IndexesBlock)
	p.advance() // indexes
	if p.skipToBlock() {
		p.advance() // {
		for {
			p.skipTrivia()
			if p.eof() {
				break
			}
			if p.atCloseBrace() {
				p.advance()
				break
			}
			p.parseIndexDef()
		}
	} else {
		p.consumeStatementTail()
	}
	p.close()
}

func (p *Parser) parseIndexDef() {
	p.open(ast.IndexDef)
	p.advance()
	p.consumeStatementTail()
	p.close()
}

func (p *Parser) parsePrimaryKeyBlock() {
	p.open(ast.PrimaryKeyBlock)
	p.advance() // primary
	if p.peekKeyword() == "key" {
		p.skipTrivia()
		p.advance()
	}
	if !p.tryBlock() {
		p.consumeStatementTail()
	}
	p.close()
}

func (p *Parser) parseNoteBlock() {
	p.open(ast.NoteBlock)
	p.advance() // note
	if !p.tryBlock() {
		p.consumeInline()
	}
	p.close()
}

// ---- consumption rules ----

// consumeStatementTail advances to the end of the statement: a ';' or a
// line break is consumed, a '}' is left for the enclosing block.
func (p *Parser) consumeStatementTail() {
	for !p.eof() {
		t := p.tok()
		if t.Type == lexer.SEMICOLON || t.HasNewline() {
			p.advance()
			return
		}
		if p.atCloseBrace() {
			return
		}
		p.advance()
	}
}

// consumeInline advances until a block opens or the statement ends.
func (p *Parser) consumeInline() {
	for !p.eof() {
		if p.atOpenBrace() {
			p.consumeBlock()
			return
		}
		if p.atTerminator() {
			p.consumeStatementTail()
			return
		}
		p.advance()
	}
}

// tryBlock consumes a block if the next significant token is '{'.
// Nothing is consumed otherwise.
func (p *Parser) tryBlock() bool {
	if !p.skipToBlock() {
		return false
	}
	p.consumeBlock()
	return true
}

// skipToBlock reports whether the next significant token is '{' and, if so,
// consumes the trivia in front of it.
func (p *Parser) skipToBlock() bool {
	j := p.i
	for p.toks[j].Type.IsTrivia() {
		j++
	}
	if !p.toks[j].Is(lexer.BRACE, "{") {
		return false
	}
	for p.i < j {
		p.advance()
	}
	return true
}

// consumeBlock consumes '{' through its matching '}' as flat leaves.
func (p *Parser) consumeBlock() {
	p.advance() // {
	depth := 1
	for !p.eof() && depth > 0 {
		if p.tok().Type == lexer.BRACE {
			switch p.tok().Raw[0] {
			case '{':
				depth++
			case '}':
				depth--
			}
		}
		p.advance()
	}
}

func (p *Parser) consumeBracketList() {
	p.advance() // [
	depth := 1
	for !p.eof() && depth > 0 {
		if p.tok().Type == lexer.BRACKET {
			switch p.tok().Raw[0] {
			case '[':
				depth++
			case ']':
				depth--
			}
		}
		p.advance()
	}
}

func (p *Parser) skipTrivia() {
	for p.tok().Type.IsTrivia() {
		p.advance()
	}
}

// skipInlineTrivia skips trivia that does not end the current line.
func (p *Parser) skipInlineTrivia() {
	for t := p.tok(); t.Type.IsTrivia() && !t.HasNewline(); t = p.tok() {
		p.advance()
	}
}

// ---- token helpers ----

func (p *Parser) tok() lexer.Token { return p.toks[p.i] }

func (p *Parser) eof() bool { return p.toks[p.i].Type == lexer.EOF }

func (p *Parser) keyword() string { return p.toks[p.i].Keyword() }

// peekKeyword returns the keyword of the next significant token after the
// current one.
func (p *Parser) peekKeyword() string {
	j := p.i + 1
	if j >= len(p.toks) {
		return ""
	}
	for p.toks[j].Type.IsTrivia() {
		j++
	}
	return p.toks[j].Keyword()
}

func (p *Parser) atOpenBrace() bool   { return p.tok().Is(lexer.BRACE, "{") }
func (p *Parser) atCloseBrace() bool  { return p.tok().Is(lexer.BRACE, "}") }
func (p *Parser) atOpenBracket() bool { return p.tok().Is(lexer.BRACKET, "[") }

// atTerminator matches ';', a line break, or '}'.
func (p *Parser) atTerminator() bool {
	t := p.tok()
	return t.Type == lexer.SEMICOLON || t.HasNewline() || p.atCloseBrace()
}

// atHardTerminator matches ';' or '}'.
func (p *Parser) atHardTerminator() bool {
	return p.tok().Type == lexer.SEMICOLON || p.atCloseBrace()
}

// ---- tree building ----

func (p *Parser) open(kind ast.Kind) {
	if n := len(p.stack); n < cap(p.stack) {
		p.stack = p.stack[:n+1]
		p.stack[n].kind = kind
		p.stack[n].kids = p.stack[n].kids[:0]
		return
	}
	p.stack = append(p.stack, frame{kind: kind})
}

// advance appends the current token as a leaf and moves on. It is a no-op
// at EOF.
func (p *Parser) advance() {
	t := p.toks[p.i]
	if t.Type == lexer.EOF {
		return
	}
	leaf := p.arena.node()
	leaf.Kind = ast.Leaf
	leaf.Tok = t
	leaf.Pos = t.Pos
	leaf.End = t.End
	top := &p.stack[len(p.stack)-1]
	top.kids = append(top.kids, leaf)
	p.i++
}

// close pops the innermost frame into a node of the parent. A frame that
// holds nothing but trivia produces no node; its leaves go to the parent.
func (p *Parser) close() {
	n := len(p.stack) - 1
	f := p.stack[n]
	p.stack = p.stack[:n]
	parent := &p.stack[n-1]

	kids := f.kids
	cut := len(kids)
	for cut > 0 && kids[cut-1].IsTrivia() {
		cut--
	}
	if cut == 0 {
		parent.kids = append(parent.kids, kids...)
		return
	}

	node := p.arena.node()
	node.Kind = f.kind
	node.Children = p.arena.children(kids[:cut])
	node.Pos = kids[0].Pos
	node.End = kids[cut-1].End
	parent.kids = append(parent.kids, node)
	parent.kids = append(parent.kids, kids[cut:]...)
}
