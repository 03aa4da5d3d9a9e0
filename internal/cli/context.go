package cli

import (
	"encoding/json"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oarkflow/dbml/completion"
	"github.com/oarkflow/dbml/scope"
)

func (d *document) scopeDocument() scope.Document {
	return scope.Document{Text: d.src, Version: 1, Tree: d.root}
}

func (c *rootCommand) classifier() *scope.Classifier {
	return &scope.Classifier{Logger: c.gs.logger}
}

func (c *rootCommand) encodeJSON(v any) error {
	enc := json.NewEncoder(c.gs.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func getCmdContext(root *rootCommand) *cobra.Command {
	var at caret
	cmd := &cobra.Command{
		Use:   "context file",
		Short: "Classify the region of a DBML file at a caret position",
		Long: `Print which region of the document holds the caret: Global, TableBody,
BracketAttribute, IndexesBody, IndexesAttribute, PrimaryKeyBody, NoteBody or
TableGroupBody.`,
		Example: `  dbml context schema.dbml --offset 42
  dbml context schema.dbml --line 3 --col 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			doc, err := root.readDocument(args[0])
			if err != nil {
				return err
			}
			off, err := at.resolve(doc)
			if err != nil {
				return err
			}
			ctx := root.classifier().Classify(doc.scopeDocument(), off)
			if root.jsonOutput() {
				pos := doc.file.Position(off)
				return root.encodeJSON(map[string]any{
					"offset":  off,
					"line":    pos.Line,
					"col":     pos.Col,
					"context": ctx.String(),
				})
			}
			_, err = fmt.Fprintln(root.gs.stdout, ctx)
			return err
		},
	}
	cmd.Flags().AddFlagSet(at.flagSet())
	return cmd
}

type jsonItem struct {
	Label   string `json:"label"`
	Display string `json:"display,omitempty"`
	Detail  string `json:"detail"`
}

func getCmdComplete(root *rootCommand) *cobra.Command {
	var at caret
	cmd := &cobra.Command{
		Use:   "complete file",
		Short: "List completion suggestions at a caret position",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			doc, err := root.readDocument(args[0])
			if err != nil {
				return err
			}
			off, err := at.resolve(doc)
			if err != nil {
				return err
			}
			res := completion.Complete(root.classifier(), doc.scopeDocument(), off)
			if root.jsonOutput() {
				items := make([]jsonItem, len(res.Items))
				for i, it := range res.Items {
					items[i] = jsonItem{Label: it.Label, Display: it.Display, Detail: it.Detail}
				}
				return root.encodeJSON(map[string]any{
					"context": res.Context.String(),
					"prefix":  res.Prefix,
					"items":   items,
				})
			}
			detail := root.paint(color.Faint)
			for _, it := range res.Items {
				fmt.Fprintf(root.gs.stdout, "%-16s %s\n", it.Text(), detail.Sprint(it.Detail))
			}
			return nil
		},
	}
	cmd.Flags().AddFlagSet(at.flagSet())
	return cmd
}
