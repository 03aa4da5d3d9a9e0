// Package resolve links table references in DBML relationships to the
// tables they name.
//
// A reference is the first word of a dotted chain such as users.id or
// public.users.id. Chains are collected from Ref declarations and from
// column attribute lists that carry a ref setting. Resolution is by exact
// name against every TableDecl in the file, so a name declared twice
// resolves to both tables.
package resolve

import (
	"errors"
	"fmt"

	"github.com/oarkflow/dbml/ast"
	"github.com/oarkflow/dbml/lexer"
)

// ErrNoReference is returned when an offset is not on a table reference.
var ErrNoReference = errors.New("no table reference at offset")

// Reference is a table name used inside a relationship.
type Reference struct {
	Table string
	// Pos and End delimit the table name in the source.
	Pos int
	End int
	// Owner is the RefDecl or ColumnAttrList holding the reference.
	Owner *ast.Node
}

// Index holds the tables and references of one parsed file.
type Index struct {
	tables map[string][]*ast.Node
	names  []string
	refs   []Reference
}

// New indexes the tree rooted at root.
func New(root *ast.Node) *Index {
	idx := &Index{tables: make(map[string][]*ast.Node)}
	for _, t := range root.FindAll(ast.TableDecl) {
		name, ok := t.Name()
		if !ok {
			continue
		}
		if _, seen := idx.tables[name]; !seen {
			idx.names = append(idx.names, name)
		}
		idx.tables[name] = append(idx.tables[name], t)
	}
	ast.Walk(root, func(n *ast.Node) bool {
		switch n.Kind {
		case ast.RefDecl:
			idx.refs = appendChains(idx.refs, n)
			return false
		case ast.ColumnAttrList:
			if hasRefSetting(n) {
				idx.refs = appendChains(idx.refs, n)
			}
			return false
		}
		return true
	})
	return idx
}

// References returns every reference in source order.
func (idx *Index) References() []Reference { return idx.refs }

// Resolve returns the tables named by ref, in declaration order.
func (idx *Index) Resolve(ref Reference) []*ast.Node {
	return idx.tables[ref.Table]
}

// ResolveOne returns the table named by ref when exactly one matches.
func (idx *Index) ResolveOne(ref Reference) (*ast.Node, bool) {
	if t := idx.tables[ref.Table]; len(t) == 1 {
		return t[0], true
	}
	return nil, false
}

// Variants returns the distinct table names, in declaration order, that a
// reference may name.
func (idx *Index) Variants() []string { return idx.names }

// Table returns the declarations of the named table.
func (idx *Index) Table(name string) []*ast.Node { return idx.tables[name] }

// At returns the reference whose name span holds offset. Both ends of the
// span count, so a caret right after a name still finds it.
func (idx *Index) At(offset int) (Reference, error) {
	for _, r := range idx.refs {
		if offset >= r.Pos && offset <= r.End {
			return r, nil
		}
	}
	return Reference{}, fmt.Errorf("offset %d: %w", offset, ErrNoReference)
}

// Unresolved returns the references that name no declared table.
func (idx *Index) Unresolved() []Reference {
	var out []Reference
	for _, r := range idx.refs {
		if len(idx.tables[r.Table]) == 0 {
			out = append(out, r)
		}
	}
	return out
}

// ReferencesTo returns the references naming table.
func (idx *Index) ReferencesTo(table string) []Reference {
	var out []Reference
	for _, r := range idx.refs {
		if r.Table == table {
			out = append(out, r)
		}
	}
	return out
}

func hasRefSetting(n *ast.Node) bool {
	for _, c := range n.Children {
		if c.Kind == ast.Leaf && c.Tok.Keyword() == "ref" {
			return true
		}
	}
	return false
}

// appendChains adds a reference for every word directly followed by a dot
// and another word or a parenthesised column list. The rest of a chain is
// skipped, so a.b.c names table a only.
func appendChains(refs []Reference, owner *ast.Node) []Reference {
	toks := owner.Tokens()
	for i := 0; i+2 < len(toks); i++ {
		if !isWord(toks[i]) || toks[i+1].Type != lexer.DOT {
			continue
		}
		next := toks[i+2]
		if !isWord(next) && !next.Is(lexer.PAREN, "(") {
			continue
		}
		if i > 0 && toks[i-1].Type == lexer.DOT {
			continue
		}
		refs = append(refs, Reference{
			Table: string(toks[i].Raw),
			Pos:   toks[i].Pos,
			End:   toks[i].End,
			Owner: owner,
		})
		i += 2
		for i+2 < len(toks) && toks[i+1].Type == lexer.DOT && isWord(toks[i+2]) {
			i += 2
		}
	}
	return refs
}

func isWord(tok lexer.Token) bool {
	return tok.Type == lexer.IDENT || tok.Type == lexer.KEYWORD
}

// Usages returns the identifier tokens of src spelled exactly as name.
// Comments, strings and numbers never count.
func Usages(src []byte, name string) []lexer.Token {
	if name == "" {
		return nil
	}
	var (
		l   lexer.Lexer
		out []lexer.Token
	)
	for l.Start(src, 0, len(src)); l.TokenType() != lexer.EOF; l.Advance() {
		if tok := l.Token(); tok.Type == lexer.IDENT && string(tok.Raw) == name {
			out = append(out, tok)
		}
	}
	return out
}

// UsagesOf returns the usages of the name of a table, enum or column.
func UsagesOf(src []byte, n *ast.Node) ([]lexer.Token, error) {
	name, ok := n.Name()
	if !ok {
		return nil, fmt.Errorf("usages of %s: %w", n.Kind, ast.ErrNotNamed)
	}
	return Usages(src, name), nil
}
