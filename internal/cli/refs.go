package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/oarkflow/dbml/resolve"
	"github.com/oarkflow/dbml/source"
)

type jsonRef struct {
	Table      string   `json:"table"`
	Pos        int      `json:"pos"`
	End        int      `json:"end"`
	Position   string   `json:"position"`
	ResolvedTo []string `json:"resolved_to"`
}

type refsCmd struct {
	root       *rootCommand
	table      string
	unresolved bool
}

func getCmdRefs(root *rootCommand) *cobra.Command {
	c := &refsCmd{root: root}
	cmd := &cobra.Command{
		Use:   "refs file",
		Short: "List table references and the declarations they resolve to",
		Long: `List the tables named by Ref declarations and inline [ref: ...] settings,
each with the position of the table declaration it resolves to.`,
		Example: `  dbml refs schema.dbml
  dbml refs schema.dbml --table users
  dbml refs schema.dbml --unresolved`,
		Args: cobra.ExactArgs(1),
		RunE: c.run,
	}
	cmd.Flags().StringVar(&c.table, "table", "", "only list references to this `table`")
	cmd.Flags().BoolVar(&c.unresolved, "unresolved", false, "only list references to undeclared tables")
	return cmd
}

func (c *refsCmd) run(_ *cobra.Command, args []string) error {
	doc, err := c.root.readDocument(args[0])
	if err != nil {
		return err
	}
	idx := resolve.New(doc.root)

	var refs []resolve.Reference
	switch {
	case c.unresolved:
		refs = idx.Unresolved()
	case c.table != "":
		refs = idx.ReferencesTo(c.table)
	default:
		refs = idx.References()
	}

	if c.root.jsonOutput() {
		out := make([]jsonRef, 0, len(refs))
		for _, r := range refs {
			jr := jsonRef{
				Table:      r.Table,
				Pos:        r.Pos,
				End:        r.End,
				Position:   doc.file.Position(r.Pos).String(),
				ResolvedTo: []string{},
			}
			for _, t := range idx.Resolve(r) {
				jr.ResolvedTo = append(jr.ResolvedTo, doc.file.Position(t.Pos).String())
			}
			out = append(out, jr)
		}
		return c.root.encodeJSON(out)
	}

	missing := c.root.paint(color.FgRed)
	for _, r := range refs {
		targets := idx.Resolve(r)
		if len(targets) == 0 {
			fmt.Fprintf(c.root.gs.stdout, "%s %s -> %s\n", doc.file.Position(r.Pos), r.Table, missing.Sprint("unresolved"))
			continue
		}
		for _, t := range targets {
			fmt.Fprintf(c.root.gs.stdout, "%s %s -> %s\n", doc.file.Position(r.Pos), r.Table, lineCol(doc.file, t.Pos))
		}
	}
	return nil
}

func lineCol(f *source.File, pos int) string {
	line, col := f.LineCol(pos)
	return fmt.Sprintf("%d:%d", line, col)
}
