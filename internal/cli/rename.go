package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/oarkflow/dbml/ast"
)

var errNoNamedEntity = errors.New("no table, enum or column name at the caret")

type renameCmd struct {
	root  *rootCommand
	at    caret
	to    string
	write bool
}

func getCmdRename(root *rootCommand) *cobra.Command {
	c := &renameCmd{root: root}
	cmd := &cobra.Command{
		Use:   "rename file",
		Short: "Rename the table, enum or column named at a caret position",
		Long: `Rename the table, enum or column whose name holds the caret. Only the
declaration's name changes; references elsewhere keep the old name.

The renamed document is printed unless --write is given.`,
		Example: `  dbml rename schema.dbml --line 1 --col 8 --to accounts --write`,
		Args:    cobra.ExactArgs(1),
		RunE:    c.run,
	}
	cmd.Flags().AddFlagSet(c.at.flagSet())
	cmd.Flags().StringVar(&c.to, "to", "", "new `name`")
	cmd.Flags().BoolVarP(&c.write, "write", "w", false, "write the result back to the file")
	if err := cmd.MarkFlagRequired("to"); err != nil {
		panic(err)
	}
	return cmd
}

func (c *renameCmd) run(_ *cobra.Command, args []string) error {
	doc, err := c.root.readDocument(args[0])
	if err != nil {
		return err
	}
	off, err := c.at.resolve(doc)
	if err != nil {
		return err
	}
	n, ok := ast.NamedAt(doc.root, off)
	if !ok {
		return withHint(fmt.Errorf("%s:%s: %w", doc.path, lineCol(doc.file, off), errNoNamedEntity),
			exitInvalidUsage, "place the caret on the name of a declaration")
	}
	out, edit, err := ast.Rename(doc.src, n, c.to)
	if err != nil {
		return withExitCode(err, exitInvalidUsage)
	}
	old, _ := n.Name()
	c.root.gs.logger.WithFields(logrus.Fields{
		"kind": ast.Describe(n.Kind),
		"from": old,
		"to":   edit.Text,
		"pos":  edit.Pos,
	}).Debug("Renamed declaration")

	if !c.write {
		_, err = c.root.gs.stdout.Write(out)
		return err
	}
	mode := os.FileMode(0o644)
	if fi, err := c.root.gs.fs.Stat(doc.path); err == nil {
		mode = fi.Mode().Perm()
	}
	if err := afero.WriteFile(c.root.gs.fs, doc.path, out, mode); err != nil {
		return withExitCode(fmt.Errorf("couldn't write %q: %w", doc.path, err), exitIOError)
	}
	fmt.Fprintf(c.root.gs.stdout, "renamed %s %q to %q in %s\n", ast.Describe(n.Kind), old, edit.Text, doc.path)
	return nil
}
