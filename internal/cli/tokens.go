package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oarkflow/dbml/ast"
	"github.com/oarkflow/dbml/lexer"
)

func getCmdTokens(root *rootCommand) *cobra.Command {
	var trivia bool
	cmd := &cobra.Command{
		Use:   "tokens file",
		Short: "Print the token stream of a DBML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			doc, err := root.readDocument(args[0])
			if err != nil {
				return err
			}
			return root.printTokens(lexer.Tokenize(doc.src, nil), trivia)
		},
	}
	cmd.Flags().BoolVar(&trivia, "trivia", false, "include whitespace and comment tokens")
	return cmd
}

type jsonToken struct {
	Type string `json:"type"`
	Text string `json:"text"`
	Pos  int    `json:"pos"`
	End  int    `json:"end"`
}

func (c *rootCommand) printTokens(toks []lexer.Token, trivia bool) error {
	out := c.gs.stdout
	var list []jsonToken
	for _, tok := range toks {
		if tok.Type == lexer.EOF || (!trivia && tok.Type.IsTrivia()) {
			continue
		}
		if c.jsonOutput() {
			list = append(list, jsonToken{Type: tok.Type.String(), Text: string(tok.Raw), Pos: tok.Pos, End: tok.End})
			continue
		}
		fmt.Fprintf(out, "%s %d-%d %q\n", tok.Type, tok.Pos, tok.End, tok.Raw)
	}
	if c.jsonOutput() {
		if list == nil {
			list = []jsonToken{}
		}
		return c.encodeJSON(list)
	}
	return nil
}

func getCmdTree(root *rootCommand) *cobra.Command {
	var trivia, asJSON bool
	cmd := &cobra.Command{
		Use:   "tree file",
		Short: "Print the syntax tree of a DBML file",
		Long: `Print the concrete syntax tree of a DBML file. The text form shows one
node per line, indented by depth; --format json prints the same tree as
nested objects, as does --json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			doc, err := root.readDocument(args[0])
			if err != nil {
				return err
			}
			if asJSON || root.jsonOutput() {
				return ast.EncodeJSON(root.gs.stdout, doc.root, trivia)
			}
			return ast.Dump(root.gs.stdout, doc.root, trivia)
		},
	}
	cmd.Flags().BoolVar(&trivia, "trivia", false, "include whitespace and comment leaves")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the tree as JSON, same as --format json")
	return cmd
}
