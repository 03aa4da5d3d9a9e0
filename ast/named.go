package ast

import (
	"errors"
	"fmt"

	"github.com/oarkflow/dbml/lexer"
)

var (
	// ErrNotNamed is returned when renaming a node that carries no name.
	ErrNotNamed = errors.New("node has no name")
	// ErrInvalidName is returned when a replacement name is not a single
	// identifier.
	ErrInvalidName = errors.New("invalid identifier")
)

// IsNamed reports whether nodes of kind k follow the named-entity
// convention.
func IsNamed(k Kind) bool {
	return k == TableDecl || k == EnumDecl || k == ColumnDef
}

// Describe returns the user-facing word for a kind, as shown by
// find-usages style listings.
func Describe(k Kind) string {
	switch k {
	case TableDecl:
		return "table"
	case ColumnDef:
		return "column"
	case EnumDecl:
		return "enum"
	default:
		return "element"
	}
}

// NameToken returns the token holding the name of a table, enum or column.
//
// Tables and enums are named by the first identifier that follows their
// leading keyword among the direct children. A column is named by the token
// inside its ColumnName child.
func (n *Node) NameToken() (lexer.Token, bool) {
	switch n.Kind {
	case TableDecl, EnumDecl:
		seenKeyword := false
		for _, c := range n.Children {
			if c.Kind != Leaf {
				continue
			}
			if !seenKeyword {
				seenKeyword = c.Tok.Type == lexer.KEYWORD
				continue
			}
			if c.Tok.Type == lexer.IDENT {
				return c.Tok, true
			}
		}
	case ColumnDef:
		if name := n.FirstChild(ColumnName); name != nil {
			return name.FirstToken()
		}
	}
	return lexer.Token{}, false
}

// Name returns the entity name, or "" and false for unnamed nodes.
func (n *Node) Name() (string, bool) {
	tok, ok := n.NameToken()
	if !ok {
		return "", false
	}
	return string(tok.Raw), true
}

// NamedAt returns the innermost table, enum or column whose name token
// holds off. Both ends of the name count, so a caret right after the name
// still selects it.
func NamedAt(root *Node, off int) (*Node, bool) {
	var found *Node
	Walk(root, func(n *Node) bool {
		if n.Kind == Leaf || off < n.Pos || off > n.End {
			return false
		}
		if IsNamed(n.Kind) {
			if tok, ok := n.NameToken(); ok && off >= tok.Pos && off <= tok.End {
				found = n
			}
		}
		return true
	})
	return found, found != nil
}

// Edit replaces src[Pos:End] with Text.
type Edit struct {
	Pos  int
	End  int
	Text string
}

// Apply returns a copy of src with the edit applied.
func (e Edit) Apply(src []byte) []byte {
	out := make([]byte, 0, len(src)-(e.End-e.Pos)+len(e.Text))
	out = append(out, src[:e.Pos]...)
	out = append(out, e.Text...)
	out = append(out, src[e.End:]...)
	return out
}

// Rename substitutes newName for the name token of n and returns the
// resulting source together with the edit. Only the name token span
// changes; references elsewhere are left alone.
func Rename(src []byte, n *Node, newName string) ([]byte, Edit, error) {
	tok, ok := n.NameToken()
	if !ok {
		return nil, Edit{}, fmt.Errorf("rename %s: %w", n.Kind, ErrNotNamed)
	}
	if !validName(newName) {
		return nil, Edit{}, fmt.Errorf("rename %s to %q: %w", n.Kind, newName, ErrInvalidName)
	}
	if tok.End > len(src) {
		return nil, Edit{}, fmt.Errorf("rename %s: name at %d-%d is outside the source", n.Kind, tok.Pos, tok.End)
	}
	e := Edit{Pos: tok.Pos, End: tok.End, Text: newName}
	return e.Apply(src), e, nil
}

func validName(name string) bool {
	toks := lexer.Tokenize([]byte(name), nil)
	return len(toks) == 2 && toks[0].Type == lexer.IDENT && toks[0].End == len(name)
}
