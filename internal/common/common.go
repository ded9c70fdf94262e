// Package common defines data structures and functions that are used by multiple
// application commands, e.g., line, size, report, verify, serve.
package common

// Copyright (C) 2021-2025 Intel Corporation
// SPDX-License-Identifier: BSD-3-Clause

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"cachespect/internal/cache"
)

var AppName = filepath.Base(os.Args[0])

// AppContext represents the application context that can be accessed from all commands.
type AppContext struct {
	OutputDir string // OutputDir is the directory where the application will write output files.
	Version   string // Version is the version of the application.
}

// GetAppContext returns the application context stored on the root command, or the zero
// value when the command runs outside the root command, e.g., in tests.
func GetAppContext(cmd *cobra.Command) AppContext {
	ctx := cmd.Root().Context()
	if ctx == nil {
		return AppContext{}
	}
	if appContext, ok := ctx.Value(AppContext{}).(AppContext); ok {
		return appContext
	}
	return AppContext{}
}

type Flag struct {
	Name string
	Help string
}
type FlagGroup struct {
	GroupName string
	Flags     []Flag
}

// Process exit codes. Each cache query error kind has its own code so that scripts can
// tell an unsupported platform from a missing cache.
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitUnsupported  = 3
	ExitNotPresent   = 4
	ExitInvalidValue = 5
	ExitMismatch     = 6
)

// ExitError carries the process exit code for an error returned from a command.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	var infoErr cache.InfoError
	if errors.As(err, &infoErr) {
		switch infoErr {
		case cache.ErrUnsupported:
			return ExitUnsupported
		case cache.ErrNotPresent:
			return ExitNotPresent
		case cache.ErrInvalidValue:
			return ExitInvalidValue
		}
	}
	return ExitFailure
}

// QueryError names the cache a failed query asked for, keeping the error kind reachable
// through errors.Is and the exit code through ExitCode.
func QueryError(q cache.Query, err error) error {
	wrapped := errors.Wrapf(err, "%s cache", q)
	return &ExitError{Code: ExitCode(err), Err: wrapped}
}

// FlagValidationError is used to report an error with a flag
func FlagValidationError(cmd *cobra.Command, msg string) error {
	err := errors.New(msg)
	fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	fmt.Fprintf(cmd.ErrOrStderr(), "See '%s --help' for usage details.\n", cmd.CommandPath())
	cmd.SilenceUsage = true
	return err
}

// CreateOutputDir creates the output directory if it does not exist
func CreateOutputDir(outputDir string) error {
	err := os.MkdirAll(outputDir, 0755) // #nosec G301
	if err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}
	return nil
}

// WriteOutputFile writes the bytes to the specified path.
func WriteOutputFile(data []byte, path string) error {
	err := os.WriteFile(path, data, 0644) // #nosec G306
	if err != nil {
		err = errors.Wrap(err, "failed to write output file")
		slog.Error(err.Error())
		return err
	}
	return nil
}
