package dbml_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarkflow/dbml"
	"github.com/oarkflow/dbml/ast"
	"github.com/oarkflow/dbml/lexer"
	"github.com/oarkflow/dbml/scope"
)

func TestParseFacade(t *testing.T) {
	root := dbml.ParseString("table users { id int [pk] }")
	require.NotNil(t, root)
	assert.Equal(t, ast.File, root.Kind)
	tables := root.FindAll(ast.TableDecl)
	require.Len(t, tables, 1)
	name, ok := tables[0].Name()
	assert.True(t, ok)
	assert.Equal(t, "users", name)
}

func TestParserReuse(t *testing.T) {
	p := dbml.NewString("enum e { a }")
	assert.Len(t, p.Parse().FindAll(ast.EnumDecl), 1)

	p.Reset([]byte("table a { }\ntable b { }"))
	assert.Len(t, p.Parse().FindAll(ast.TableDecl), 2)

	p = dbml.New([]byte("ref: a.b > c.d"))
	assert.Len(t, p.Parse().FindAll(ast.RefDecl), 1)
}

func TestTokenizeFacade(t *testing.T) {
	buf := make([]dbml.Token, 0, 8)
	toks := dbml.Tokenize([]byte("table t"), buf)
	require.Len(t, toks, 4)
	assert.Equal(t, lexer.KEYWORD, toks[0].Type)
	assert.Equal(t, lexer.EOF, toks[3].Type)
}

func TestCheckFacade(t *testing.T) {
	diags := dbml.Check([]byte("table users { index email }"))
	require.Len(t, diags, 1)
	assert.Equal(t, "BARE_INDEX", diags[0].Code)
}

func TestClassifyFacade(t *testing.T) {
	assert.Equal(t, scope.IndexesBody, dbml.Classify([]byte("table t { indexes {  } }"), 20))
	assert.Equal(t, scope.Global, dbml.Classify(nil, 0))
}

func TestRenameFacade(t *testing.T) {
	src := []byte("table users { id int }")
	table := dbml.Parse(src).FindAll(ast.TableDecl)[0]
	out, edit, err := dbml.Rename(src, table, "accounts")
	require.NoError(t, err)
	assert.Equal(t, "table accounts { id int }", string(out))
	assert.Equal(t, dbml.Edit{Pos: 6, End: 11, Text: "accounts"}, edit)
}
