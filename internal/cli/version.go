package cli

import (
	"fmt"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
)

// Version is the dbml release, overridden at build time with
// -ldflags "-X github.com/oarkflow/dbml/internal/cli.Version=...".
var Version = "0.1.0"

func versionDetails() map[string]string {
	details := map[string]string{
		"version":    "v" + Version,
		"go_version": runtime.Version(),
		"go_os":      runtime.GOOS,
		"go_arch":    runtime.GOARCH,
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, s := range info.Settings {
			if s.Key == "vcs.revision" && s.Value != "" {
				details["commit"] = s.Value
			}
		}
	}
	return details
}

func versionString() string {
	d := versionDetails()
	v := fmt.Sprintf("dbml %s (%s, %s/%s)", d["version"], d["go_version"], d["go_os"], d["go_arch"])
	if commit, ok := d["commit"]; ok {
		v += " commit/" + commit
	}
	return v
}

type versionCmd struct {
	root   *rootCommand
	isJSON bool
}

func (c *versionCmd) run(_ *cobra.Command, _ []string) error {
	if !c.isJSON && !c.root.jsonOutput() {
		_, err := fmt.Fprintln(c.root.gs.stdout, versionString())
		return err
	}
	if err := c.root.encodeJSON(versionDetails()); err != nil {
		return fmt.Errorf("failed to produce JSON version details: %w", err)
	}
	return nil
}

func getCmdVersion(root *rootCommand) *cobra.Command {
	c := &versionCmd{root: root}
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show application version",
		Long:  `Show the application version and exit.`,
		Args:  cobra.NoArgs,
		RunE:  c.run,
	}
	cmd.Flags().BoolVar(&c.isJSON, "json", false, "if set, output version information will be in JSON format")
	return cmd
}
