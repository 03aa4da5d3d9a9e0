package inspect_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/dbml/inspect"
)

func check(src string) []inspect.Diagnostic {
	return inspect.Check([]byte(src), inspect.DefaultOptions())
}

func TestBareIndex(t *testing.T) {
	src := "table users { index email }"
	diags := check(src)
	require.Len(t, diags, 1)

	d := diags[0]
	assert.Equal(t, inspect.CodeBareIndex, d.Code)
	assert.Equal(t, "Wrap index declarations inside an indexes { } block", d.Message)
	assert.Equal(t, inspect.SeverityWarning, d.Severity)
	assert.Equal(t, "index", src[d.Pos:d.End])
	assert.Equal(t, strings.Index(src, "index"), d.Pos)
}

func TestBareIndexNotReported(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"inside indexes", "table users { indexes { index email } }"},
		{"outside tables", "index email"},
		{"inside brackets", "table users { id int [index] }"},
		{"after the table closed", "table users { id int }\nindex x"},
		{"empty document", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Empty(t, check(tt.src))
		})
	}
}

func TestBareIndexInNestedTable(t *testing.T) {
	// an indexes block of an outer table does not cover an inner table
	diags := check("table outer { indexes { table inner { index x } } }")
	require.Len(t, diags, 1)
	assert.Equal(t, inspect.CodeBareIndex, diags[0].Code)
}

func TestSectionOrder(t *testing.T) {
	src := "table users { primary key { columns: [id] } indexes { index email } }"
	diags := check(src)
	require.Len(t, diags, 1)

	d := diags[0]
	assert.Equal(t, inspect.CodeSectionOrder, d.Code)
	assert.Equal(t, "'indexes' section must appear before 'primary key' section.", d.Message)
	assert.Equal(t, "indexes", src[d.Pos:d.End])
}

func TestSectionOrderValid(t *testing.T) {
	tests := []string{
		"table users { id int indexes { (id) } primary key { columns: [id] } note { 'x' } }",
		"table users { indexes { } indexes { } }",
		"table users { note { } }",
		"table a { note { } }\ntable b { indexes { } }",
		"table users { Note: 'inline' indexes { } }",
	}
	for _, src := range tests {
		assert.Empty(t, check(src), src)
	}
}

func TestSectionOrderTracksFurthestSection(t *testing.T) {
	src := "table t {\n  note { }\n  indexes { }\n  primary key { }\n}"
	diags := check(src)
	require.Len(t, diags, 2)
	assert.Equal(t, "'indexes' section must appear before 'note' section.", diags[0].Message)
	assert.Equal(t, "'primary key' section must appear before 'note' section.", diags[1].Message)
	assert.Equal(t, "primary", src[diags[1].Pos:diags[1].End])
}

func TestSectionOrderNotesKeyword(t *testing.T) {
	diags := check("table t { Notes { } Indexes { } }")
	require.Len(t, diags, 1)
	assert.Equal(t, "'indexes' section must appear before 'note' section.", diags[0].Message)
}

func TestOptionsDisableRules(t *testing.T) {
	src := "table t { index x note { } indexes { } }"
	assert.Len(t, check(src), 2)

	diags := inspect.Check([]byte(src), inspect.Options{SectionOrder: true})
	require.Len(t, diags, 1)
	assert.Equal(t, inspect.CodeSectionOrder, diags[0].Code)

	diags = inspect.Check([]byte(src), inspect.Options{BareIndex: true})
	require.Len(t, diags, 1)
	assert.Equal(t, inspect.CodeBareIndex, diags[0].Code)

	assert.Empty(t, inspect.Check([]byte(src), inspect.Options{}))
}

func TestDiagnosticsInSourceOrder(t *testing.T) {
	src := "table a { index x }\ntable b { note { } indexes { } index y }"
	diags := check(src)
	require.Len(t, diags, 3)
	for i := 1; i < len(diags); i++ {
		assert.Less(t, diags[i-1].Pos, diags[i].Pos)
	}
	assert.Equal(t, "10-15 warning: Wrap index declarations inside an indexes { } block [BARE_INDEX]", diags[0].String())
}

func TestCheckSurvivesMalformedInput(t *testing.T) {
	for _, src := range []string{"}}}", "table {", "[[[ index", "table t { indexes { index", "table t { primary key"} {
		assert.NotPanics(t, func() { check(src) }, src)
	}
}
