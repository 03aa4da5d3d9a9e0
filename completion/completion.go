// Package completion computes caret suggestions for DBML documents.
//
// Suggestions come from a fixed list per region of the document (see
// scope.Context) followed by every keyword in lexicographic order. Items are
// filtered by the identifier fragment typed before the caret, ignoring case.
package completion

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/oarkflow/dbml/ast"
	"github.com/oarkflow/dbml/lexer"
	"github.com/oarkflow/dbml/scope"
)

// InsertStyle describes what accepting an item adds around its label.
type InsertStyle uint8

const (
	// InsertPlain replaces the typed fragment with the label.
	InsertPlain InsertStyle = iota
	// InsertTrailingSpace adds a space after the label unless one follows
	// already, leaving the caret after it.
	InsertTrailingSpace
	// InsertBracedBlock adds " {}" and puts the caret between the braces,
	// or moves past an existing '{' on the same line.
	InsertBracedBlock
)

// Item is one suggestion.
type Item struct {
	// Label is the inserted text and the string matched against the prefix.
	Label string
	// Display is the text shown in a list, when it differs from Label.
	Display string
	// Detail names the suggestion group, e.g. "column type".
	Detail string
	Insert InsertStyle
}

// Text returns the presentable text.
func (it Item) Text() string {
	if it.Display != "" {
		return it.Display
	}
	return it.Label
}

// Result is the outcome of a completion query.
type Result struct {
	Context scope.Context
	// Prefix is src[PrefixStart:Offset], the fragment being completed.
	Prefix      string
	PrefixStart int
	Offset      int
	Items       []Item
}

// Complete classifies offset and returns the matching suggestions. A nil
// classifier classifies without caching.
func Complete(c *scope.Classifier, doc scope.Document, offset int) Result {
	if c == nil {
		c = new(scope.Classifier)
	}
	offset = min(max(offset, 0), len(doc.Text))
	ctx := c.Classify(doc, offset)
	start := PrefixStart(doc.Text, offset)
	prefix := string(doc.Text[start:offset])
	return Result{
		Context:     ctx,
		Prefix:      prefix,
		PrefixStart: start,
		Offset:      offset,
		Items:       Filter(Suggest(ctx), prefix),
	}
}

// Suggest returns the unfiltered suggestions for a context: the context
// list first, then all keywords.
func Suggest(ctx scope.Context) []Item {
	var items []Item
	switch ctx {
	case scope.TableBody:
		items = append(items, group(columnTypes, "column type")...)
		for _, kw := range tableSectionKeywords {
			it := Item{Label: kw, Detail: "table keyword"}
			if kw != "ref" {
				it.Insert = InsertBracedBlock
			}
			items = append(items, it)
		}
	case scope.BracketAttribute:
		for _, a := range attributes {
			items = append(items, Item{Label: a.label, Display: a.display, Detail: "attribute"})
		}
	case scope.IndexesBody:
		items = append(items, group(indexBody, "index")...)
	case scope.IndexesAttribute:
		items = append(items, group(indexAttributes, "index attribute")...)
	case scope.PrimaryKeyBody:
		items = append(items, group(primaryKeyBody, "primary key")...)
	case scope.NoteBody:
		items = append(items, group(noteBody, "note")...)
	case scope.TableGroupBody:
		items = append(items, group(tableGroupBody, "table group")...)
	}
	for _, kw := range lexer.Keywords() {
		it := Item{Label: kw, Detail: "keyword"}
		if kw == "table" {
			it.Insert = InsertTrailingSpace
		}
		items = append(items, it)
	}
	return items
}

func group(labels []string, detail string) []Item {
	items := make([]Item, len(labels))
	for i, l := range labels {
		items[i] = Item{Label: l, Detail: detail}
	}
	return items
}

// Filter keeps the items whose label starts with prefix, ignoring case.
func Filter(items []Item, prefix string) []Item {
	if prefix == "" {
		return items
	}
	prefix = strings.ToLower(prefix)
	out := items[:0:0]
	for _, it := range items {
		if strings.HasPrefix(strings.ToLower(it.Label), prefix) {
			out = append(out, it)
		}
	}
	return out
}

// PrefixStart returns the start of the identifier fragment ending at
// offset.
func PrefixStart(src []byte, offset int) int {
	offset = min(max(offset, 0), len(src))
	start := offset
	for start > 0 {
		r, size := utf8.DecodeLastRune(src[:start])
		if r == utf8.RuneError && size <= 1 {
			break
		}
		if r != '_' && r != '$' && !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			break
		}
		start -= size
	}
	return start
}

// Accept returns the edit that inserts it in place of the prefix of res,
// and the caret offset in the edited text.
func Accept(src []byte, res Result, it Item) (ast.Edit, int) {
	e := ast.Edit{Pos: res.PrefixStart, End: res.Offset, Text: it.Label}
	tail := res.PrefixStart + len(it.Label)
	switch it.Insert {
	case InsertTrailingSpace:
		if res.Offset >= len(src) || src[res.Offset] != ' ' {
			e.Text += " "
		}
		return e, tail + 1
	case InsertBracedBlock:
		i := skipInlineSpace(src, res.Offset)
		if i >= len(src) || src[i] != '{' {
			e.Text += " {}"
			return e, tail + 2
		}
		return e, tail + (i - res.Offset) + 1
	}
	return e, tail
}

func skipInlineSpace(src []byte, i int) int {
	for i < len(src) {
		r, size := utf8.DecodeRune(src[i:])
		if r == '\n' || !unicode.IsSpace(r) {
			break
		}
		i += size
	}
	return i
}
