// Package ast defines the DBML concrete syntax tree.
// The tree is a tagged union: every node carries a Kind and a flat list of
// children, and consumers switch on the kind. Leaves wrap exactly one token,
// trivia included, so the leaves of any node spell out its source text.
package ast

import (
	"github.com/serenize/snaker"

	"github.com/oarkflow/dbml/lexer"
)

// Kind tags a syntax node.
type Kind uint8

const (
	// Leaf wraps a single token.
	Leaf Kind = iota
	File
	Statement

	// Top-level statements
	TableDecl
	EnumDecl
	RefDecl
	ProjectDecl
	TableGroupDecl
	NoteDecl
	UnknownStatement

	// Table body items
	TableBody
	ColumnDef
	ColumnName
	ColumnType
	ColumnAttrList
	NoteBlock
	IndexesBlock
	IndexDef
	PrimaryKeyBlock
)

var kindNames = [...]string{
	Leaf:             "Leaf",
	File:             "File",
	Statement:        "Statement",
	TableDecl:        "TableDecl",
	EnumDecl:         "EnumDecl",
	RefDecl:          "RefDecl",
	ProjectDecl:      "ProjectDecl",
	TableGroupDecl:   "TableGroupDecl",
	NoteDecl:         "NoteDecl",
	UnknownStatement: "UnknownStatement",
	TableBody:        "TableBody",
	ColumnDef:        "ColumnDef",
	ColumnName:       "ColumnName",
	ColumnType:       "ColumnType",
	ColumnAttrList:   "ColumnAttrList",
	NoteBlock:        "NoteBlock",
	IndexesBlock:     "IndexesBlock",
	IndexDef:         "IndexDef",
	PrimaryKeyBlock:  "PrimaryKeyBlock",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "Unknown"
}

// MarshalText renders the kind in snake_case, e.g. "column_attr_list".
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(snaker.CamelToSnake(k.String())), nil
}

// Node is a syntax tree node. Pos and End are byte offsets into the parsed
// source; a node covers src[Pos:End] and every child lies inside that span.
// Nodes hold no parent pointers.
type Node struct {
	Kind Kind
	// Tok is only set on leaves.
	Tok      lexer.Token
	Pos      int
	End      int
	Children []*Node
}

// IsLeaf reports whether n wraps a token.
func (n *Node) IsLeaf() bool { return n.Kind == Leaf }

// IsTrivia reports whether n is a whitespace or comment leaf.
func (n *Node) IsTrivia() bool { return n.Kind == Leaf && n.Tok.Type.IsTrivia() }

// Len returns the number of bytes covered by n.
func (n *Node) Len() int { return n.End - n.Pos }

// Text returns the source text covered by n.
func (n *Node) Text(src []byte) []byte {
	if n.Pos < 0 || n.End > len(src) || n.Pos > n.End {
		return nil
	}
	return src[n.Pos:n.End]
}

// Contains reports whether off lies within [Pos, End).
func (n *Node) Contains(off int) bool { return off >= n.Pos && off < n.End }

// Walk visits n and its descendants depth-first in source order.
// Returning false from fn skips the children of the visited node.
func Walk(n *Node, fn func(*Node) bool) {
	if n == nil || !fn(n) {
		return
	}
	for _, c := range n.Children {
		Walk(c, fn)
	}
}

// FindAll returns every descendant of n (n excluded) of the given kind, in
// source order.
func (n *Node) FindAll(k Kind) []*Node {
	var out []*Node
	for _, c := range n.Children {
		Walk(c, func(x *Node) bool {
			if x.Kind == k {
				out = append(out, x)
			}
			return true
		})
	}
	return out
}

// FirstChild returns the first direct child of the given kind, or nil.
func (n *Node) FirstChild(k Kind) *Node {
	for _, c := range n.Children {
		if c.Kind == k {
			return c
		}
	}
	return nil
}

// FirstToken returns the first non-trivia leaf token under n.
func (n *Node) FirstToken() (lexer.Token, bool) {
	var (
		tok   lexer.Token
		found bool
	)
	Walk(n, func(x *Node) bool {
		if found {
			return false
		}
		if x.Kind == Leaf && !x.Tok.Type.IsTrivia() {
			tok, found = x.Tok, true
			return false
		}
		return true
	})
	return tok, found
}

// Keyword returns the lower-cased leading keyword of n, or "".
func (n *Node) Keyword() string {
	tok, ok := n.FirstToken()
	if !ok {
		return ""
	}
	return tok.Keyword()
}

// Tokens returns the tokens of every leaf under n, trivia included.
func (n *Node) Tokens() []lexer.Token {
	var out []lexer.Token
	Walk(n, func(x *Node) bool {
		if x.Kind == Leaf {
			out = append(out, x.Tok)
		}
		return true
	})
	return out
}

// Path returns the chain of nodes from n down to the innermost node whose
// span contains off. Leaves are included. An offset equal to n.End selects
// the last node that ends there, so a caret at the end of the text still
// lands in the trailing construct.
func (n *Node) Path(off int) []*Node {
	if n == nil || off < n.Pos || off > n.End {
		return nil
	}
	path := []*Node{n}
	cur := n
	for {
		next := childAt(cur, off)
		if next == nil {
			return path
		}
		path = append(path, next)
		cur = next
	}
}

func childAt(n *Node, off int) *Node {
	for _, c := range n.Children {
		if c.Contains(off) {
			return c
		}
	}
	if off == n.End && len(n.Children) > 0 {
		if last := n.Children[len(n.Children)-1]; last.End == off && last.Len() > 0 {
			return last
		}
	}
	return nil
}

// NodeAt returns the innermost node containing off.
func (n *Node) NodeAt(off int) *Node {
	path := n.Path(off)
	if len(path) == 0 {
		return nil
	}
	return path[len(path)-1]
}

// Enclosing returns the innermost node on the path to off whose kind is one
// of kinds.
func (n *Node) Enclosing(off int, kinds ...Kind) *Node {
	path := n.Path(off)
	for i := len(path) - 1; i >= 0; i-- {
		for _, k := range kinds {
			if path[i].Kind == k {
				return path[i]
			}
		}
	}
	return nil
}
