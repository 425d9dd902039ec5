// Package harness runs a zero argument native entry routine and prints its
// result. It holds the launcher policy (argument validation and exit codes)
// and the reporter; the foreign call itself lives in package entry.
//
// The command never attaches a logger, since it takes no flags and reads no
// environment. WithLogger exists for embedding the Launcher and for tests.
package harness

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Process exit statuses.
const (
	ExitOK    = 0
	ExitUsage = 1
)

// ErrUsage is matched by every invocation error.
var ErrUsage = errors.New("unexpected arguments")

// UsageError reports that the harness was given arguments. The entry routine
// takes none, so there is nothing a caller could pass through.
type UsageError struct {
	Program string
	Args    []string
}

func (e *UsageError) Error() string {
	return "usage: " + e.Program
}

func (e *UsageError) Unwrap() error {
	return ErrUsage
}

// CheckArgs validates a process argument list. args[0], when present, is the
// program name; anything after it is rejected.
func CheckArgs(args []string) error {
	if len(args) <= 1 {
		return nil
	}
	return &UsageError{Program: args[0], Args: append([]string(nil), args[1:]...)}
}

// Launcher validates the invocation, calls the entry routine once and reports
// the result.
type Launcher struct {
	entry  func() int64
	symbol string
	stdout io.Writer
	stderr io.Writer
	logger *slog.Logger
}

type Option func(*Launcher)

// WithOutput replaces the process standard streams.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(l *Launcher) {
		l.stdout = stdout
		l.stderr = stderr
	}
}

// WithLogger attaches a logger for debug records. The default discards
// everything so the only output stays the result line or the usage line.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Launcher) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// WithSymbol names the entry routine in log records.
func WithSymbol(symbol string) Option {
	return func(l *Launcher) {
		l.symbol = symbol
	}
}

// New returns a Launcher for entry. entry must not be nil.
func New(entry func() int64, opts ...Option) *Launcher {
	if entry == nil {
		panic("harness: nil entry routine")
	}
	l := &Launcher{
		entry:  entry,
		stdout: os.Stdout,
		stderr: os.Stderr,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run executes one invocation with the given process arguments and returns
// the exit status. The entry routine is not called when args are rejected.
func (l *Launcher) Run(args []string) int {
	if err := CheckArgs(args); err != nil {
		var usage *UsageError
		if errors.As(err, &usage) {
			l.logger.Debug("rejecting invocation", "program", usage.Program, "args", usage.Args)
		}
		fmt.Fprintln(l.stderr, err)
		return ExitUsage
	}

	l.logger.Debug("calling entry", "symbol", l.symbol)
	result := l.entry()
	l.logger.Debug("entry returned", "symbol", l.symbol, "result", result)

	// An unwritable stdout is left to the platform; the routine already ran.
	if err := Report(l.stdout, result); err != nil {
		l.logger.Debug("report failed", "error", err)
	}
	return ExitOK
}
