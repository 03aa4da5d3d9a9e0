package cli

import (
	"errors"

	"github.com/sirupsen/logrus"
)

type exitCode int

const (
	exitViolations   exitCode = 1
	exitInvalidUsage exitCode = 2
	exitIOError      exitCode = 3
)

// exitError attaches a process exit code and an optional hint to an error.
type exitError struct {
	error
	code exitCode
	hint string
}

func (e exitError) Unwrap() error { return e.error }

func withExitCode(err error, code exitCode) error {
	if err == nil {
		return nil
	}
	var ee exitError
	if errors.As(err, &ee) {
		return err
	}
	return exitError{error: err, code: code}
}

func withHint(err error, code exitCode, hint string) error {
	if err == nil {
		return nil
	}
	return exitError{error: err, code: code, hint: hint}
}

// format splits err into the code to exit with and the log fields to report
// it with. Errors without a code are usage errors.
func format(err error) (exitCode, logrus.Fields) {
	fields := logrus.Fields{}
	var ee exitError
	if !errors.As(err, &ee) {
		return exitInvalidUsage, fields
	}
	if ee.hint != "" {
		fields["hint"] = ee.hint
	}
	return ee.code, fields
}
