package dbml

import (
	"fmt"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/oarkflow/dbml/ast"
	"github.com/oarkflow/dbml/inspect"
	"github.com/oarkflow/dbml/lexer"
	"github.com/oarkflow/dbml/parser"
	"github.com/oarkflow/dbml/source"
)

type FindingSeverity string

const (
	SeverityInfo     FindingSeverity = "info"
	SeverityWarning  FindingSeverity = "warning"
	SeverityCritical FindingSeverity = "critical"
)

type AnalysisFinding struct {
	Severity       FindingSeverity `json:"severity"`
	Code           string          `json:"code"`
	Message        string          `json:"message"`
	Problem        string          `json:"problem"`
	Recommendation string          `json:"recommendation,omitempty"`
	Pos            int             `json:"pos"`
	End            int             `json:"end"`
	Line           int             `json:"line"`
	Col            int             `json:"col"`
}

type AnalysisReport struct {
	File           string            `json:"file,omitempty"`
	Valid          bool              `json:"valid"`
	StatementCount int               `json:"statements"`
	TableCount     int               `json:"tables"`
	Findings       []AnalysisFinding `json:"findings"`
}

type AnalysisOptions struct {
	// File names the document in positions; it may be empty.
	File  string
	Rules inspect.Options
	// Logger, if set, receives a debug entry per analysed document.
	Logger logrus.FieldLogger
}

// DefaultAnalysisOptions enables every structural rule.
func DefaultAnalysisOptions() AnalysisOptions {
	return AnalysisOptions{Rules: inspect.DefaultOptions()}
}

func Analyze(src []byte) AnalysisReport {
	return AnalyzeWithOptions(src, DefaultAnalysisOptions())
}

// AnalyzeWithOptions parses src and reports syntax anomalies and structural
// rule violations, sorted by position. A report is valid when no statement
// was left unrecognised and no character was rejected by the lexer.
func AnalyzeWithOptions(src []byte, opts AnalysisOptions) AnalysisReport {
	report := AnalysisReport{File: opts.File, Valid: true}
	file := source.New(opts.File, src)
	toks := lexer.Tokenize(src, nil)
	root := parser.ParseTokens(src, toks)

	report.TableCount = len(root.FindAll(ast.TableDecl))
	for _, stmt := range root.Children {
		if stmt.IsLeaf() {
			continue
		}
		report.StatementCount++
		if stmt.Kind == ast.UnknownStatement {
			report.Valid = false
			addFinding(&report, file, SeverityCritical, "UNKNOWN_STATEMENT",
				fmt.Sprintf("Statement %q is not a DBML declaration.", firstLine(stmt.Text(src))),
				"Start top-level statements with Table, Enum, Ref, Project, TableGroup or Note.",
				stmt.Pos, stmt.End)
		}
	}

	for _, tok := range toks {
		if tok.Type != lexer.BAD_CHARACTER {
			continue
		}
		report.Valid = false
		addFinding(&report, file, SeverityCritical, "BAD_CHARACTER",
			fmt.Sprintf("Unexpected character %q.", tok.Raw),
			"Remove the character or quote the name it belongs to.",
			tok.Pos, tok.End)
	}

	for _, d := range inspect.CheckTokens(toks, opts.Rules) {
		addFinding(&report, file, SeverityWarning, d.Code, d.Message, recommendations[d.Code], d.Pos, d.End)
	}

	slices.SortStableFunc(report.Findings, func(a, b AnalysisFinding) int { return a.Pos - b.Pos })

	if opts.Logger != nil {
		opts.Logger.WithFields(logrus.Fields{
			"file":       opts.File,
			"statements": report.StatementCount,
			"findings":   len(report.Findings),
		}).Debug("Analyzed document")
	}
	return report
}

var recommendations = map[string]string{
	inspect.CodeBareIndex:    "Move the index into the table's indexes { } block.",
	inspect.CodeSectionOrder: "Order table sections as columns, indexes, primary key, note.",
}

func firstLine(b []byte) []byte {
	for i, c := range b {
		if c == '\n' || c == '\r' {
			return b[:i]
		}
	}
	return b
}

func addFinding(report *AnalysisReport, file *source.File, sev FindingSeverity, code, problem, recommendation string, pos, end int) {
	msg := problem
	if recommendation != "" {
		msg += " Recommendation: " + recommendation
	}
	line, col := file.LineCol(pos)
	report.Findings = append(report.Findings, AnalysisFinding{
		Severity:       sev,
		Code:           code,
		Message:        msg,
		Problem:        problem,
		Recommendation: recommendation,
		Pos:            pos,
		End:            end,
		Line:           line,
		Col:            col,
	})
}

// Position formats the finding location as file:line:col.
func (f AnalysisFinding) Position(file string) string {
	return source.Position{File: file, Offset: f.Pos, Line: f.Line, Col: f.Col}.String()
}

func (r AnalysisReport) String() string {
	if !r.Valid {
		return fmt.Sprintf("invalid DBML: %s", r.firstCritical())
	}
	if len(r.Findings) == 0 {
		return fmt.Sprintf("valid DBML (%d statements), no findings", r.StatementCount)
	}
	return fmt.Sprintf("valid DBML (%d statements), %d finding(s)", r.StatementCount, len(r.Findings))
}

func (r AnalysisReport) firstCritical() string {
	for _, f := range r.Findings {
		if f.Severity == SeverityCritical {
			return f.Problem
		}
	}
	return "unknown error"
}
