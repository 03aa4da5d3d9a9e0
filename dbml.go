// Package dbml is a resilient front-end for DBML (Database Markup Language)
// schema files.
//
// Design goals:
//   - Never fail: every byte of the input ends up in exactly one token and
//     every token ends up as a leaf of the syntax tree
//   - Length-bucketed, case-insensitive keyword recognition
//   - Slab allocator for syntax nodes, recycled by Parser.Reset
//   - Context classification that keeps working on half-typed documents
//
// Usage:
//
//	root := dbml.ParseString("table users { id int [pk] }")
//	diags := dbml.Check(src)
//	report := dbml.Analyze(src)
//	p := dbml.New(src)
//	root = p.Parse()
package dbml

import (
	"github.com/oarkflow/dbml/ast"
	"github.com/oarkflow/dbml/inspect"
	"github.com/oarkflow/dbml/lexer"
	"github.com/oarkflow/dbml/parser"
	"github.com/oarkflow/dbml/scope"
)

// Re-export core types so callers only import this package.
type (
	Node         = ast.Node
	Kind         = ast.Kind
	Edit         = ast.Edit
	Token        = lexer.Token
	TokenType    = lexer.TokenType
	Context      = scope.Context
	Document     = scope.Document
	Classifier   = scope.Classifier
	Diagnostic   = inspect.Diagnostic
	CheckOptions = inspect.Options
)

// Parse parses a DBML document. It never fails; malformed input shows up as
// UnknownStatement nodes.
func Parse(src []byte) *Node {
	return parser.Parse(src)
}

// ParseString parses a DBML document held in a string.
func ParseString(src string) *Node {
	return parser.ParseString(src)
}

// Parser is a reusable DBML parser.
// Reuse a Parser across calls to amortise node allocations.
type Parser struct {
	p *parser.Parser
}

// New creates a Parser backed by the given DBML bytes.
func New(src []byte) *Parser {
	return &Parser{p: parser.New(src)}
}

// NewString creates a Parser backed by the given DBML string.
func NewString(src string) *Parser {
	return &Parser{p: parser.NewString(src)}
}

// Reset reuses the Parser with new input. Trees from earlier calls become
// invalid.
func (p *Parser) Reset(src []byte) {
	p.p.Reset(src)
}

// Parse returns the tree of the current input.
func (p *Parser) Parse() *Node {
	return p.p.ParseFile()
}

// Tokenize breaks a DBML document into tokens, ending with EOF.
// The returned tokens borrow from src. Provide a pre-allocated buffer to
// avoid heap allocation:
//
//	buf := make([]dbml.Token, 0, 128)
//	tokens := dbml.Tokenize(src, buf)
func Tokenize(src []byte, buf []Token) []Token {
	return lexer.Tokenize(src, buf)
}

// Check runs every structural rule over src.
func Check(src []byte) []Diagnostic {
	return inspect.Check(src, inspect.DefaultOptions())
}

// Classify returns the region of src holding offset. Callers answering
// many queries over one document should keep a Classifier instead.
func Classify(src []byte, offset int) Context {
	var c scope.Classifier
	return c.Classify(scope.Document{Text: src, Tree: parser.Parse(src)}, offset)
}

// Rename replaces the name of a table, enum or column node.
func Rename(src []byte, n *Node, newName string) ([]byte, Edit, error) {
	return ast.Rename(src, n, newName)
}
