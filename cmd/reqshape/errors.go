package main

import (
	"errors"
	"fmt"
)

// Exit codes.
const (
	ExitSuccess     = 0
	ExitRejected    = 1
	ExitUsage       = 2
	ExitConfigError = 3
	ExitSchemaError = 4
)

type exitCoder interface {
	ExitCode() int
}

// cliError attaches an exit code to a failed operation.
type cliError struct {
	Op   string
	Code int
	Err  error
}

func (e *cliError) Error() string { return e.Op + ": " + e.Err.Error() }

func (e *cliError) Unwrap() error { return e.Err }

func (e *cliError) ExitCode() int { return e.Code }

// rejectedError is returned by validate after the report has been printed.
type rejectedError struct {
	Fields int
}

func (e *rejectedError) Error() string { return fmt.Sprintf("rejected: %d field(s)", e.Fields) }

func (e *rejectedError) ExitCode() int { return ExitRejected }

func exitCodeFromError(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var coder exitCoder
	if errors.As(err, &coder) {
		return coder.ExitCode()
	}
	return ExitUsage
}
