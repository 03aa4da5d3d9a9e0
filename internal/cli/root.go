// Package cli implements the dbml command.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/oarkflow/dbml/ast"
	"github.com/oarkflow/dbml/internal/config"
	"github.com/oarkflow/dbml/parser"
	"github.com/oarkflow/dbml/source"
)

// rootCommand keeps the state shared by all subcommands.
type rootCommand struct {
	gs         *globalState
	cmd        *cobra.Command
	configPath string
	verbose    bool

	// conf is consolidated before any subcommand runs.
	conf config.Config
}

func newRootCommand(gs *globalState) *rootCommand {
	c := &rootCommand{gs: gs}
	c.cmd = &cobra.Command{
		Use:               "dbml",
		Short:             "inspect DBML schema files",
		Long:              "dbml lexes, parses and checks DBML (Database Markup Language) schema files.",
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.persistentPreRunE,
	}
	c.cmd.SetOut(gs.stdout)
	c.cmd.SetErr(gs.stderr)
	c.cmd.PersistentFlags().AddFlagSet(c.rootCmdPersistentFlagSet())

	c.cmd.AddCommand(
		getCmdLint(c),
		getCmdTokens(c),
		getCmdTree(c),
		getCmdContext(c),
		getCmdComplete(c),
		getCmdRefs(c),
		getCmdRename(c),
		getCmdVersion(c),
	)
	return c
}

func (c *rootCommand) rootCmdPersistentFlagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")
	flags.StringVarP(&c.configPath, "config", "c", "", "YAML config `file` (default "+config.DefaultFileName+")")
	flags.AddFlagSet(config.FlagSet())
	return flags
}

func (c *rootCommand) persistentPreRunE(cmd *cobra.Command, _ []string) error {
	if c.verbose {
		c.gs.logger.SetLevel(logrus.DebugLevel)
	}
	conf, err := config.Load(c.gs.fs, c.configPath, c.gs.env, cmd.Flags())
	if err != nil {
		return withExitCode(err, exitInvalidUsage)
	}
	c.conf = conf
	if conf.NoColor.Bool {
		c.gs.stdoutTTY = false
		if f, ok := c.gs.logger.Formatter.(*logrus.TextFormatter); ok {
			f.ForceColors, f.DisableColors = false, true
		}
	}
	c.gs.logger.WithFields(logrus.Fields{
		"format":        conf.Format.String,
		"bare_index":    conf.Rules.BareIndex.Bool,
		"section_order": conf.Rules.SectionOrder.Bool,
	}).Debug("Consolidated config")
	return nil
}

// paint returns a color that is a no-op unless stdout is a colored TTY.
func (c *rootCommand) paint(attrs ...color.Attribute) *color.Color {
	col := color.New(attrs...)
	if c.gs.stdoutTTY {
		col.EnableColor()
	} else {
		col.DisableColor()
	}
	return col
}

func (c *rootCommand) jsonOutput() bool {
	return c.conf.Format.String == config.FormatJSON
}

// document is a file read and parsed for a single command.
type document struct {
	path string
	src  []byte
	file *source.File
	root *ast.Node
}

func (c *rootCommand) readDocument(path string) (*document, error) {
	src, err := afero.ReadFile(c.gs.fs, path)
	if err != nil {
		return nil, withExitCode(fmt.Errorf("couldn't read %q: %w", path, err), exitIOError)
	}
	c.gs.logger.WithFields(logrus.Fields{"file": path, "bytes": len(src)}).Debug("Read document")
	return &document{
		path: path,
		src:  src,
		file: source.New(path, src),
		root: parser.Parse(src),
	}, nil
}

// caret resolves the --offset or --line/--col flags of a command.
type caret struct {
	offset int
	line   int
	col    int
}

func (p *caret) flagSet() *pflag.FlagSet {
	flags := pflag.NewFlagSet("", pflag.ContinueOnError)
	flags.IntVar(&p.offset, "offset", -1, "byte `offset` of the caret")
	flags.IntVar(&p.line, "line", 0, "1-based `line` of the caret, used with --col")
	flags.IntVar(&p.col, "col", 0, "1-based `column` of the caret, used with --line")
	return flags
}

func (p *caret) resolve(doc *document) (int, error) {
	switch {
	case p.line > 0 && p.col > 0:
		return doc.file.Offset(p.line, p.col), nil
	case p.offset >= 0:
		if p.offset > len(doc.src) {
			return 0, withExitCode(fmt.Errorf("offset %d is past the end of %q (%d bytes)", p.offset, doc.path, len(doc.src)), exitInvalidUsage)
		}
		return p.offset, nil
	}
	return 0, withHint(errors.New("no caret position given"), exitInvalidUsage, "pass --offset, or --line and --col")
}

// Execute runs the dbml command with the process arguments and exits.
func Execute() {
	os.Exit(run(newGlobalState(), os.Args[1:]))
}

func run(gs *globalState, args []string) int {
	c := newRootCommand(gs)
	c.cmd.SetArgs(args)
	if err := c.cmd.ExecuteContext(context.Background()); err != nil {
		code, fields := format(err)
		gs.logger.WithFields(fields).Error(err)
		return int(code)
	}
	return 0
}
