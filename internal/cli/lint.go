package cli

import (
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/oarkflow/dbml"
)

type lintCmd struct {
	root        *rootCommand
	concurrency int
}

func getCmdLint(root *rootCommand) *cobra.Command {
	c := &lintCmd{root: root}
	cmd := &cobra.Command{
		Use:   "lint file...",
		Short: "Check DBML files for structural problems",
		Long: `Check DBML files for unrecognised statements, rejected characters,
index declarations outside an indexes block and table sections out of order.

The command exits with code 1 when any problem is found.`,
		Example: `  dbml lint schema.dbml
  dbml lint --format json models/*.dbml`,
		Args: cobra.MinimumNArgs(1),
		RunE: c.run,
	}
	cmd.Flags().IntVar(&c.concurrency, "concurrency", runtime.GOMAXPROCS(0), "number of files checked at once")
	return cmd
}

func (c *lintCmd) run(cmd *cobra.Command, args []string) error {
	reports, err := c.analyze(cmd, args)
	if err != nil {
		return err
	}

	problems, files := 0, 0
	for _, r := range reports {
		if len(r.Findings) > 0 {
			problems += len(r.Findings)
			files++
		}
	}

	if c.root.jsonOutput() {
		for i := range reports {
			if reports[i].Findings == nil {
				reports[i].Findings = []dbml.AnalysisFinding{}
			}
		}
		if err := c.root.encodeJSON(reports); err != nil {
			return withExitCode(err, exitIOError)
		}
	} else {
		c.printText(reports)
	}

	if problems > 0 {
		return withExitCode(fmt.Errorf("%d problem(s) found in %d file(s)", problems, files), exitViolations)
	}
	return nil
}

// analyze checks every file concurrently; reports keep the argument order.
func (c *lintCmd) analyze(cmd *cobra.Command, paths []string) ([]dbml.AnalysisReport, error) {
	reports := make([]dbml.AnalysisReport, len(paths))
	opts := dbml.AnalysisOptions{Rules: c.root.conf.InspectOptions(), Logger: c.root.gs.logger}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(max(c.concurrency, 1))
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			src, err := afero.ReadFile(c.root.gs.fs, path)
			if err != nil {
				return withExitCode(fmt.Errorf("couldn't read %q: %w", path, err), exitIOError)
			}
			fileOpts := opts
			fileOpts.File = path
			reports[i] = dbml.AnalyzeWithOptions(src, fileOpts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}

func (c *lintCmd) printText(reports []dbml.AnalysisReport) {
	out := c.root.gs.stdout
	severity := map[dbml.FindingSeverity]*color.Color{
		dbml.SeverityInfo:     c.root.paint(color.FgCyan),
		dbml.SeverityWarning:  c.root.paint(color.FgYellow),
		dbml.SeverityCritical: c.root.paint(color.FgRed, color.Bold),
	}
	faint := c.root.paint(color.Faint)
	for _, r := range reports {
		for _, f := range r.Findings {
			fmt.Fprintf(out, "%s: %s: %s %s\n",
				f.Position(r.File),
				severity[f.Severity].Sprint(f.Severity),
				f.Problem,
				faint.Sprintf("[%s]", f.Code))
		}
	}
}
