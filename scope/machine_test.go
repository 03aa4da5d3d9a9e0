package scope_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/dbml/lexer"
	"github.com/oarkflow/dbml/scope"
)

func feed(m *scope.Machine, src string) {
	for _, tok := range lexer.Tokenize([]byte(src), nil) {
		if tok.Type == lexer.EOF {
			return
		}
		m.Step(tok)
	}
}

func TestMachinePendingTransitions(t *testing.T) {
	tests := []struct {
		name     string
		src      string
		expected scope.State
	}{
		{"table arms", "table users", scope.Table},
		{"table keyword ignores case", "TABLE users", scope.Table},
		{"tablepartial arms", "TablePartial base", scope.Table},
		{"tablegroup arms", "tablegroup g", scope.TableGroup},
		{"indexes outside table", "indexes", scope.None},
		{"indexes inside table", "table t { indexes", scope.TableIndexes},
		{"primary inside table", "table t { primary", scope.PrimaryKeyPending},
		{"primary outside table", "primary", scope.None},
		{"primary key", "table t { primary key", scope.TablePrimaryKey},
		{"primary key across lines", "table t { primary\n  key", scope.TablePrimaryKey},
		{"key alone", "table t { key", scope.None},
		{"other keyword cancels primary", "table t { primary ref", scope.None},
		{"note inside table", "table t { note", scope.NoteBlock},
		{"notes inside table", "table t { Notes", scope.NoteBlock},
		{"note at top level", "note", scope.None},
		{"settings keep pending", "table users as U [headercolor: #3498DB] // c", scope.Table},
		{"qualified names keep pending", "table public.users", scope.Table},
		{"strings and numbers keep pending", "table \"users\" 1", scope.Table},
		{"paren clears", "table users (", scope.None},
		{"semicolon clears", "table users;", scope.None},
		{"bad character clears", "table users ?", scope.None},
		{"open brace clears", "table users {", scope.None},
		{"close brace clears", "table users }", scope.None},
		{"keywords in brackets do not arm", "[table", scope.None},
		{"later keyword rearms", "table t { indexes note", scope.NoteBlock},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m scope.Machine
			feed(&m, tt.src)
			assert.Equal(t, tt.expected, m.Pending())
		})
	}
}

func TestMachineOpenScopes(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		top     scope.State
		depth   int
		context scope.Context
	}{
		{"table body", "table t {", scope.Table, 1, scope.TableBody},
		{"plain block", "{", scope.Other, 1, scope.Global},
		{"enum block", "enum e {", scope.Other, 1, scope.Global},
		{"indexes block", "table t { indexes {", scope.TableIndexes, 2, scope.IndexesBody},
		{"primary key block", "table t { primary key {", scope.TablePrimaryKey, 2, scope.PrimaryKeyBody},
		{"primary without key", "table t { primary {", scope.Other, 2, scope.TableBody},
		{"note block", "table t { note {", scope.NoteBlock, 2, scope.NoteBody},
		{"top-level note", "note {", scope.Other, 1, scope.Global},
		{"table group", "tablegroup g {", scope.TableGroup, 1, scope.TableGroupBody},
		{"closed table", "table t { }", scope.None, 0, scope.Global},
		{"closed section", "table t { indexes { }", scope.Table, 1, scope.TableBody},
		{"stray closers clamp", "} } table t {", scope.Table, 1, scope.TableBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m scope.Machine
			feed(&m, tt.src)
			assert.Equal(t, tt.top, m.Top())
			assert.Equal(t, tt.depth, m.Depth())
			assert.Equal(t, tt.context, m.Context())
		})
	}
}

func TestMachineBrackets(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		context scope.Context
		depth   int
	}{
		{"column attribute", "table t { id int [", scope.BracketAttribute, 1},
		{"closed column attribute", "table t { id int [pk]", scope.TableBody, 0},
		{"index attribute", "table t { indexes { id [", scope.IndexesAttribute, 1},
		{"nested attribute", "table t { id int [ref: [", scope.BracketAttribute, 2},
		{"bracket outside table", "[", scope.Global, 1},
		{"stray closers clamp", "]]] table t { [", scope.BracketAttribute, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m scope.Machine
			feed(&m, tt.src)
			assert.Equal(t, tt.context, m.Context())
			assert.Equal(t, tt.depth, m.BracketDepth())
		})
	}
}

func TestMachineClosingScopeDropsOpenBrackets(t *testing.T) {
	tests := []struct {
		name    string
		src     string
		context scope.Context
	}{
		{"indexes block", "table t { indexes { id [ } ", scope.TableBody},
		{"indexes block then table", "table t { indexes { id [ } }", scope.Global},
		{"column attribute", "table t { id int [ }", scope.Global},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var m scope.Machine
			feed(&m, tt.src)
			assert.Equal(t, tt.context, m.Context())
			assert.Zero(t, m.BracketDepth())

			// keywords count again once the brackets are gone
			feed(&m, " table u {")
			assert.Equal(t, scope.TableBody, m.Context())
		})
	}
}

func TestMachineContextPrecedence(t *testing.T) {
	var m scope.Machine
	feed(&m, "tablegroup g { table t {")
	assert.Equal(t, scope.TableBody, m.Context())

	feed(&m, " note {")
	assert.Equal(t, scope.NoteBody, m.Context(), "note wins over everything")

	m.Reset()
	feed(&m, "table t { primary key { [")
	assert.Equal(t, scope.PrimaryKeyBody, m.Context(), "primary key wins over table attributes")
}

type event struct {
	kind  string
	table int
	sec   scope.Section
	text  string
	pos   int
}

type recorder struct{ events []event }

func (r *recorder) SectionOpened(table int, sec scope.Section, at lexer.Token) {
	r.events = append(r.events, event{kind: "section", table: table, sec: sec, text: string(at.Raw), pos: at.Pos})
}

func (r *recorder) BareIndex(at lexer.Token) {
	r.events = append(r.events, event{kind: "bare", text: string(at.Raw), pos: at.Pos})
}

func TestMachineObserver(t *testing.T) {
	src := `table a {
  index x
  indexes { index y }
  primary key { id }
  note { 'n' }
}
table b { Notes { } index z }
index top`
	r := &recorder{}
	m := scope.Machine{Observer: r}
	feed(&m, src)

	require.Len(t, r.events, 6)
	assert.Equal(t, event{kind: "bare", text: "index", pos: 12}, r.events[0])
	assert.Equal(t, "section", r.events[1].kind)
	assert.Equal(t, scope.Indexes, r.events[1].sec)
	assert.Equal(t, "indexes", r.events[1].text)
	assert.Equal(t, scope.PrimaryKey, r.events[2].sec)
	assert.Equal(t, "primary", r.events[2].text, "primary key sections are anchored at 'primary'")
	assert.Equal(t, scope.Note, r.events[3].sec)
	assert.Equal(t, 0, r.events[3].table)
	assert.Equal(t, 1, r.events[4].table)
	assert.Equal(t, "Notes", r.events[4].text)
	assert.Equal(t, "bare", r.events[5].kind)
}

func TestMachineNestedTableIndexesDoNotLeak(t *testing.T) {
	// an indexes scope of an outer table does not cover an inner table
	r := &recorder{}
	m := scope.Machine{Observer: r}
	feed(&m, "table outer { indexes { table inner { index x } } }")
	require.Len(t, r.events, 2)
	assert.Equal(t, "section", r.events[0].kind)
	assert.Equal(t, "bare", r.events[1].kind)
}

func TestMachineResetKeepsObserver(t *testing.T) {
	r := &recorder{}
	m := scope.Machine{Observer: r}
	feed(&m, "table t { indexes")
	m.Reset()
	assert.Equal(t, scope.None, m.Pending())
	assert.Equal(t, 0, m.Depth())
	feed(&m, "table t { index")
	assert.Len(t, r.events, 1)
}

func TestNames(t *testing.T) {
	assert.Equal(t, "IndexesAttribute", scope.IndexesAttribute.String())
	assert.Equal(t, "PrimaryKeyPending", scope.PrimaryKeyPending.String())
	assert.Equal(t, "primary key", scope.PrimaryKey.String())
}
