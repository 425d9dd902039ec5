package clitest

import (
	"fmt"
	"regexp"
	"strings"
)

// AssertionError represents a failed assertion.
type AssertionError struct {
	Field    string
	Expected any
	Actual   any
	Message  string
}

func (e *AssertionError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("%s: expected %v, got %v", e.Field, e.Expected, e.Actual)
}

// Output is what one invocation produced.
type Output struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// AssertCLIOutput checks command output against expectations.
func AssertCLIOutput(out Output, expect Expectation) []error {
	var errors []error

	if out.ExitCode != expect.ExitCode {
		errors = append(errors, &AssertionError{
			Field:    "exit_code",
			Expected: expect.ExitCode,
			Actual:   out.ExitCode,
		})
	}

	if expect.StdoutEquals != "" && out.Stdout != expect.StdoutEquals {
		errors = append(errors, &AssertionError{
			Field:    "stdout",
			Expected: fmt.Sprintf("%q", truncate(expect.StdoutEquals, 200)),
			Actual:   fmt.Sprintf("%q", truncate(out.Stdout, 200)),
		})
	}

	if expect.StdoutMatches != "" {
		re, err := regexp.Compile(expect.StdoutMatches)
		if err != nil {
			errors = append(errors, &AssertionError{
				Message: fmt.Sprintf("stdout_matches: invalid pattern %q: %v", expect.StdoutMatches, err),
			})
		} else if !re.MatchString(out.Stdout) {
			errors = append(errors, &AssertionError{
				Field:    "stdout",
				Expected: fmt.Sprintf("matches %s", expect.StdoutMatches),
				Actual:   fmt.Sprintf("%q", truncate(out.Stdout, 200)),
			})
		}
	}

	if expect.StdoutEmpty && out.Stdout != "" {
		errors = append(errors, &AssertionError{
			Field:    "stdout",
			Expected: "empty",
			Actual:   fmt.Sprintf("%q", truncate(out.Stdout, 200)),
		})
	}

	if expect.StderrEquals != "" && out.Stderr != expect.StderrEquals {
		errors = append(errors, &AssertionError{
			Field:    "stderr",
			Expected: fmt.Sprintf("%q", truncate(expect.StderrEquals, 200)),
			Actual:   fmt.Sprintf("%q", truncate(out.Stderr, 200)),
		})
	}

	if expect.StderrPrefix != "" && !strings.HasPrefix(out.Stderr, expect.StderrPrefix) {
		errors = append(errors, &AssertionError{
			Field:    "stderr",
			Expected: fmt.Sprintf("prefix %q", expect.StderrPrefix),
			Actual:   fmt.Sprintf("%q", truncate(out.Stderr, 200)),
		})
	}

	if expect.StderrEmpty && out.Stderr != "" {
		errors = append(errors, &AssertionError{
			Field:    "stderr",
			Expected: "empty",
			Actual:   fmt.Sprintf("%q", truncate(out.Stderr, 200)),
		})
	}

	return errors
}

// FormatErrors formats multiple errors into a single string.
func FormatErrors(errors []error) string {
	if len(errors) == 0 {
		return ""
	}
	var msgs []string
	for _, err := range errors {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
