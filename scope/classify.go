package scope

import (
	"sort"
	"sync/atomic"

	"github.com/sirupsen/logrus"

	"github.com/oarkflow/dbml/ast"
	"github.com/oarkflow/dbml/lexer"
)

// Segment marks the offset from which Context applies, up to the next
// segment.
type Segment struct {
	Offset  int
	Context Context
}

// Segments scans src once and records a segment at the end of every token
// after which the context changes. The first segment always starts at 0.
func Segments(src []byte) []Segment {
	segs := []Segment{{Offset: 0, Context: Global}}
	var (
		l lexer.Lexer
		m Machine
	)
	last := Global
	for l.Start(src, 0, len(src)); l.TokenType() != lexer.EOF; l.Advance() {
		tok := l.Token()
		m.Step(tok)
		if ctx := m.Context(); ctx != last {
			segs = append(segs, Segment{Offset: tok.End, Context: ctx})
			last = ctx
		}
	}
	return segs
}

// ContextAt returns the context of the last segment starting at or before
// offset.
func ContextAt(segs []Segment, offset int) Context {
	i := sort.Search(len(segs), func(i int) bool { return segs[i].Offset > offset })
	if i == 0 {
		return Global
	}
	return segs[i-1].Context
}

// Document is a snapshot of the text being classified.
type Document struct {
	Text []byte
	// Version must increase whenever Text changes.
	Version int64
	// Tree is the parse of Text, if the caller has one.
	Tree *ast.Node
}

// Classifier answers region queries for one document, caching the segment
// list between edits. It is safe for concurrent use.
type Classifier struct {
	// Logger, if set, traces rescans at debug level.
	Logger logrus.FieldLogger

	memo    Memo[[]Segment]
	rescans atomic.Int64
}

// Classify returns the region containing offset. The offset is clamped to
// the document. When a tree is available and the offset sits inside a
// well-formed section, the tree answers; the token scan covers the rest.
func (c *Classifier) Classify(doc Document, offset int) Context {
	if len(doc.Text) == 0 {
		return Global
	}
	offset = min(max(offset, 0), len(doc.Text))
	if doc.Tree != nil {
		if ctx, ok := FromTree(doc.Tree, offset); ok {
			return ctx
		}
	}
	segs, cached := c.memo.Get(doc.Version, func() []Segment {
		c.rescans.Add(1)
		return Segments(doc.Text)
	})
	if !cached && c.Logger != nil {
		c.Logger.WithFields(logrus.Fields{
			"version":  doc.Version,
			"segments": len(segs),
		}).Debug("Rescanned document for context segments")
	}
	return ContextAt(segs, offset)
}

// Rescans returns how many times the segment list was rebuilt.
func (c *Classifier) Rescans() int64 { return c.rescans.Load() }

// Invalidate forces the next query to rescan.
func (c *Classifier) Invalidate() { c.memo.Invalidate() }

// FromTree classifies offset by the innermost section node whose interior
// holds it. The interior runs from the end of the opening brace or bracket
// to the start of the matching closer, or to the node end when unclosed.
func FromTree(root *ast.Node, offset int) (Context, bool) {
	var (
		ctx   Context
		found bool
	)
	ast.Walk(root, func(n *ast.Node) bool {
		if n.Kind == ast.Leaf || offset < n.Pos || offset > n.End {
			return false
		}
		if c, ok := nodeContext(n, offset); ok {
			ctx, found = c, true
		}
		return true
	})
	return ctx, found
}

func nodeContext(n *ast.Node, offset int) (Context, bool) {
	switch n.Kind {
	case ast.ColumnAttrList:
		if inInterior(n, offset, lexer.BRACKET, '[', ']') {
			return BracketAttribute, true
		}
	case ast.IndexesBlock:
		if inInterior(n, offset, lexer.BRACE, '{', '}') {
			if bracketsOpenAt(n, offset) {
				return IndexesAttribute, true
			}
			return IndexesBody, true
		}
	case ast.PrimaryKeyBlock:
		if inInterior(n, offset, lexer.BRACE, '{', '}') {
			return PrimaryKeyBody, true
		}
	case ast.NoteBlock:
		if inInterior(n, offset, lexer.BRACE, '{', '}') {
			return NoteBody, true
		}
	case ast.TableBody:
		if inInterior(n, offset, lexer.BRACE, '{', '}') {
			return TableBody, true
		}
	}
	return Global, false
}

// inInterior checks offset against the first delimited group among the
// direct leaves of n.
func inInterior(n *ast.Node, offset int, typ lexer.TokenType, open, close byte) bool {
	start, depth := -1, 0
	for _, c := range n.Children {
		if c.Kind != ast.Leaf || c.Tok.Type != typ {
			continue
		}
		switch c.Tok.Raw[0] {
		case open:
			if start < 0 {
				start = c.End
			}
			depth++
		case close:
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 {
				return offset >= start && offset <= c.Pos
			}
		}
	}
	return start >= 0 && offset >= start && offset <= n.End
}

// bracketsOpenAt reports whether a '[' under n is still open at offset.
func bracketsOpenAt(n *ast.Node, offset int) bool {
	depth := 0
	for _, tok := range n.Tokens() {
		if tok.End > offset {
			break
		}
		if tok.Type == lexer.BRACKET {
			if tok.Raw[0] == '[' {
				depth++
			} else if depth > 0 {
				depth--
			}
		}
	}
	return depth > 0
}
