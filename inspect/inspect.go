// Package inspect reports structural violations inside DBML table bodies.
// It folds the scope machine over the token stream, so it works on
// documents that do not parse cleanly.
package inspect

import (
	"fmt"

	"github.com/oarkflow/dbml/lexer"
	"github.com/oarkflow/dbml/scope"
)

type Severity string

const (
	SeverityInfo    Severity = "info"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Diagnostic codes.
const (
	CodeBareIndex    = "BARE_INDEX"
	CodeSectionOrder = "SECTION_ORDER"
)

const bareIndexMessage = "Wrap index declarations inside an indexes { } block"

// Diagnostic is one violation anchored at src[Pos:End].
type Diagnostic struct {
	Pos      int
	End      int
	Code     string
	Message  string
	Severity Severity
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d-%d %s: %s [%s]", d.Pos, d.End, d.Severity, d.Message, d.Code)
}

// Options selects the rules to run.
type Options struct {
	BareIndex    bool
	SectionOrder bool
}

// DefaultOptions enables every rule.
func DefaultOptions() Options {
	return Options{BareIndex: true, SectionOrder: true}
}

// Check lexes src and returns its diagnostics in source order.
func Check(src []byte, opts Options) []Diagnostic {
	if len(src) == 0 {
		return nil
	}
	return CheckTokens(lexer.Tokenize(src, nil), opts)
}

// CheckTokens runs the rules over an already lexed token stream.
func CheckTokens(toks []lexer.Token, opts Options) []Diagnostic {
	c := &checker{opts: opts}
	m := scope.Machine{Observer: c}
	for _, tok := range toks {
		if tok.Type == lexer.EOF {
			break
		}
		m.Step(tok)
	}
	return c.diags
}

// checker keeps, per table, the latest section seen. The marker only moves
// forward, so each out-of-order section is compared with the furthest
// section reached so far.
type checker struct {
	opts  Options
	last  []scope.Section
	diags []Diagnostic
}

func (c *checker) SectionOpened(table int, sec scope.Section, at lexer.Token) {
	for len(c.last) <= table {
		c.last = append(c.last, scope.Columns)
	}
	last := c.last[table]
	if sec >= last {
		c.last[table] = sec
		return
	}
	if !c.opts.SectionOrder {
		return
	}
	c.diags = append(c.diags, Diagnostic{
		Pos:      at.Pos,
		End:      at.End,
		Code:     CodeSectionOrder,
		Message:  fmt.Sprintf("'%s' section must appear before '%s' section.", sec, last),
		Severity: SeverityWarning,
	})
}

func (c *checker) BareIndex(at lexer.Token) {
	if !c.opts.BareIndex {
		return
	}
	c.diags = append(c.diags, Diagnostic{
		Pos:      at.Pos,
		End:      at.End,
		Code:     CodeBareIndex,
		Message:  bareIndexMessage,
		Severity: SeverityWarning,
	})
}
