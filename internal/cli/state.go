package cli

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"
)

// globalState holds everything a command touches outside its own flags, so
// tests can swap the filesystem, environment and output streams.
type globalState struct {
	fs        afero.Fs
	env       map[string]string
	stdout    io.Writer
	stderr    io.Writer
	stdoutTTY bool
	logger    *logrus.Logger
}

func newGlobalState() *globalState {
	stdoutTTY := isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	stderrTTY := isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
	stderr := colorable.NewColorableStderr()
	return &globalState{
		fs:        afero.NewOsFs(),
		env:       buildEnvMap(os.Environ()),
		stdout:    colorable.NewColorableStdout(),
		stderr:    stderr,
		stdoutTTY: stdoutTTY,
		logger: &logrus.Logger{
			Out:       stderr,
			Formatter: &logrus.TextFormatter{ForceColors: stderrTTY, DisableColors: !stderrTTY},
			Hooks:     make(logrus.LevelHooks),
			Level:     logrus.InfoLevel,
		},
	}
}

func buildEnvMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		k, v, _ := strings.Cut(kv, "=")
		env[k] = v
	}
	return env
}
