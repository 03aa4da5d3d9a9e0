// Package scope tracks which region of a DBML document a position falls in.
//
// Machine is a small scanner state machine fed one token at a time. It arms
// a pending scope when a section keyword is seen, pushes that scope when the
// next '{' arrives, and keeps depth counters from which the current Context
// is derived. The classifier and the structural inspection both fold the
// same machine over the token stream.
package scope

import "github.com/oarkflow/dbml/lexer"

// Context is the semantic region of a position.
type Context uint8

const (
	Global Context = iota
	TableBody
	BracketAttribute
	IndexesBody
	IndexesAttribute
	PrimaryKeyBody
	NoteBody
	TableGroupBody
)

var contextNames = [...]string{
	Global:           "Global",
	TableBody:        "TableBody",
	BracketAttribute: "BracketAttribute",
	IndexesBody:      "IndexesBody",
	IndexesAttribute: "IndexesAttribute",
	PrimaryKeyBody:   "PrimaryKeyBody",
	NoteBody:         "NoteBody",
	TableGroupBody:   "TableGroupBody",
}

func (c Context) String() string {
	if int(c) < len(contextNames) {
		return contextNames[c]
	}
	return "Unknown"
}

// State is the kind of a pending or open scope.
type State uint8

const (
	// None means no scope is pending.
	None State = iota
	Table
	TableIndexes
	PrimaryKeyPending
	TablePrimaryKey
	NoteBlock
	TableGroup
	// Other is any block not opened by a section keyword.
	Other
)

var stateNames = [...]string{
	None:              "None",
	Table:             "Table",
	TableIndexes:      "TableIndexes",
	PrimaryKeyPending: "PrimaryKeyPending",
	TablePrimaryKey:   "TablePrimaryKey",
	NoteBlock:         "NoteBlock",
	TableGroup:        "TableGroup",
	Other:             "Other",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// Section is a part of a table body. Sections are expected in this order.
type Section uint8

const (
	Columns Section = iota
	Indexes
	PrimaryKey
	Note
)

var sectionNames = [...]string{
	Columns:    "columns",
	Indexes:    "indexes",
	PrimaryKey: "primary key",
	Note:       "note",
}

func (s Section) String() string {
	if int(s) < len(sectionNames) {
		return sectionNames[s]
	}
	return "unknown"
}

// Observer receives structural events from a Machine.
type Observer interface {
	// SectionOpened is called when '{' opens an indexes, primary key or note
	// section. table numbers the enclosing table in order of appearance and
	// at is the keyword that armed the section.
	SectionOpened(table int, sec Section, at lexer.Token)
	// BareIndex is called for an 'index' keyword inside a table but outside
	// any indexes block of that table.
	BareIndex(at lexer.Token)
}

type frame struct {
	state State
	// table is the number of the enclosing table, -1 outside tables.
	table int
}

// Machine is the scope scanner. The zero value is ready to use.
type Machine struct {
	// Observer, if set, is notified of sections and bare indexes.
	Observer Observer

	pending State
	armedBy lexer.Token

	stack     []frame
	tables    []int
	nextTable int

	bracket   int
	table     int
	indexes   int
	pk        int
	note      int
	group     int
	indexAttr int
	tableAttr int
}

// Reset returns the machine to its initial state, keeping the Observer.
func (m *Machine) Reset() {
	*m = Machine{Observer: m.Observer, stack: m.stack[:0], tables: m.tables[:0]}
}

// Pending returns the scope that the next '{' would open.
func (m *Machine) Pending() State { return m.pending }

// Depth returns the number of open braces.
func (m *Machine) Depth() int { return len(m.stack) }

// BracketDepth returns the number of open brackets.
func (m *Machine) BracketDepth() int { return m.bracket }

// Top returns the innermost open scope, or None.
func (m *Machine) Top() State {
	if len(m.stack) == 0 {
		return None
	}
	return m.stack[len(m.stack)-1].state
}

// Context derives the current region from the depth counters, most specific
// first.
func (m *Machine) Context() Context {
	switch {
	case m.note > 0:
		return NoteBody
	case m.indexAttr > 0:
		return IndexesAttribute
	case m.indexes > 0:
		return IndexesBody
	case m.pk > 0:
		return PrimaryKeyBody
	case m.tableAttr > 0:
		return BracketAttribute
	case m.table > 0:
		return TableBody
	case m.group > 0:
		return TableGroupBody
	default:
		return Global
	}
}

// Step applies one token.
func (m *Machine) Step(tok lexer.Token) {
	switch tok.Type {
	case lexer.KEYWORD:
		kw := tok.Keyword()
		if m.pending == PrimaryKeyPending && kw != "key" {
			m.clearPending()
		}
		if m.bracket == 0 {
			m.keyword(kw, tok)
		}
	case lexer.BRACE:
		if tok.Raw[0] == '{' {
			m.open()
		} else {
			m.close()
		}
		m.clearPending()
	case lexer.BRACKET:
		if tok.Raw[0] == '[' {
			m.bracket++
			if m.indexes > 0 {
				m.indexAttr++
			} else if m.table > 0 {
				m.tableAttr++
			}
		} else {
			m.bracket = dec(m.bracket)
			if m.indexAttr > 0 {
				m.indexAttr--
			} else {
				m.tableAttr = dec(m.tableAttr)
			}
		}
	case lexer.WHITESPACE, lexer.COMMENT:
	default:
		if !allowedBeforeBrace(tok.Type) {
			m.clearPending()
		}
	}
}

func (m *Machine) keyword(kw string, tok lexer.Token) {
	switch kw {
	case "table", "tablepartial":
		m.arm(Table, tok)
	case "tablegroup":
		m.arm(TableGroup, tok)
	case "indexes":
		if m.table > 0 {
			m.arm(TableIndexes, tok)
		}
	case "primary":
		if m.table > 0 {
			m.arm(PrimaryKeyPending, tok)
		}
	case "key":
		if m.pending == PrimaryKeyPending {
			m.pending = TablePrimaryKey
		}
	case "note", "notes":
		if m.table > 0 {
			m.arm(NoteBlock, tok)
		}
	case "index":
		if m.table > 0 && !m.inIndexes() && m.Observer != nil {
			m.Observer.BareIndex(tok)
		}
	}
}

// inIndexes reports whether an indexes scope is open inside the innermost
// table.
func (m *Machine) inIndexes() bool {
	for i := len(m.stack) - 1; i >= 0; i-- {
		switch m.stack[i].state {
		case TableIndexes:
			return true
		case Table:
			return false
		}
	}
	return false
}

func (m *Machine) arm(s State, tok lexer.Token) {
	m.pending = s
	m.armedBy = tok
}

func (m *Machine) clearPending() {
	m.pending = None
	m.armedBy = lexer.Token{}
}

func (m *Machine) activeTable() int {
	if len(m.tables) == 0 {
		return -1
	}
	return m.tables[len(m.tables)-1]
}

func (m *Machine) open() {
	s := m.pending
	if s == None || s == PrimaryKeyPending {
		s = Other
	}
	f := frame{state: s, table: m.activeTable()}
	switch s {
	case Table:
		f.table = m.nextTable
		m.nextTable++
		m.tables = append(m.tables, f.table)
		m.table++
	case TableIndexes:
		m.indexes++
		m.sectionOpened(f.table, Indexes)
	case TablePrimaryKey:
		m.pk++
		m.sectionOpened(f.table, PrimaryKey)
	case NoteBlock:
		m.note++
		m.sectionOpened(f.table, Note)
	case TableGroup:
		m.group++
	}
	m.stack = append(m.stack, f)
}

func (m *Machine) sectionOpened(table int, sec Section) {
	if m.Observer != nil && table >= 0 {
		m.Observer.SectionOpened(table, sec, m.armedBy)
	}
}

// close pops the innermost scope. A stray '}' changes nothing.
func (m *Machine) close() {
	n := len(m.stack)
	if n == 0 {
		return
	}
	f := m.stack[n-1]
	m.stack = m.stack[:n-1]
	switch f.state {
	case Table:
		m.table = dec(m.table)
		if len(m.tables) > 0 {
			m.tables = m.tables[:len(m.tables)-1]
		}
		if m.table == 0 {
			m.dropBrackets(&m.tableAttr)
		}
	case TableIndexes:
		m.indexes = dec(m.indexes)
		if m.indexes == 0 {
			m.dropBrackets(&m.indexAttr)
		}
	case TablePrimaryKey:
		m.pk = dec(m.pk)
	case NoteBlock:
		m.note = dec(m.note)
	case TableGroup:
		m.group = dec(m.group)
	}
}

// dropBrackets forgets brackets left open inside a scope that just closed.
func (m *Machine) dropBrackets(attr *int) {
	m.bracket = max(m.bracket-*attr, 0)
	*attr = 0
}

// allowedBeforeBrace lists the tokens that may sit between a section
// keyword and its '{' without disarming it.
func allowedBeforeBrace(t lexer.TokenType) bool {
	switch t {
	case lexer.WHITESPACE, lexer.IDENT, lexer.STRING, lexer.DOT, lexer.COMMA,
		lexer.OPERATOR, lexer.BRACKET, lexer.NUMBER, lexer.COMMENT:
		return true
	}
	return false
}

func dec(n int) int {
	if n > 0 {
		return n - 1
	}
	return 0
}
