package clitest

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

const sampleSpec = `
name: sample
build:
  package: ./cmd/sample
  timeout: 90s
timeout: 5s
cases:
  - name: max
    result: 9223372036854775807
    expect:
      stdout_equals: "9223372036854775807\n"
  - name: min
    result: -9223372036854775808
    expect:
      stdout_matches: '^-?[0-9]+\n$'
  - name: usage
    argv0: program
    args: [extra-arg]
    expect:
      exit_code: 1
      stderr_equals: "usage: program\n"
      stdout_empty: true
  - name: max again
    result: 9223372036854775807
`

func TestParseSpec(t *testing.T) {
	spec, err := ParseSpec([]byte(sampleSpec))
	if err != nil {
		t.Fatalf("ParseSpec failed: %v", err)
	}
	if got, want := spec.Build.Timeout.Duration(), 90*time.Second; got != want {
		t.Fatalf("build timeout=%v, want %v", got, want)
	}
	if got, want := spec.Timeout.Duration(), 5*time.Second; got != want {
		t.Fatalf("timeout=%v, want %v", got, want)
	}
	want := Case{
		Name:  "usage",
		Argv0: "program",
		Args:  []string{"extra-arg"},
		Expect: Expectation{
			ExitCode:     1,
			StderrEquals: "usage: program\n",
			StdoutEmpty:  true,
		},
	}
	if diff := cmp.Diff(want, spec.Cases[2]); diff != "" {
		t.Fatalf("case mismatch (-want +got):\n%s", diff)
	}
	if got := spec.Cases[1].Expect.StdoutMatches; got != `^-?[0-9]+\n$` {
		t.Fatalf("stdout_matches=%q, want literal backslash-n pattern", got)
	}
}

func TestSpecResults(t *testing.T) {
	spec, err := ParseSpec([]byte(sampleSpec))
	if err != nil {
		t.Fatalf("ParseSpec failed: %v", err)
	}
	want := []int64{math.MaxInt64, math.MinInt64, 0}
	if diff := cmp.Diff(want, spec.Results()); diff != "" {
		t.Fatalf("results mismatch (-want +got):\n%s", diff)
	}
}

func TestParseSpecRejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
		want string
	}{
		{"no cases", "name: empty\n", "no cases"},
		{"unnamed case", "cases:\n  - result: 1\n", "no name"},
		{"duplicate", "cases:\n  - name: a\n  - name: a\n", "duplicate"},
		{"bad duration", "timeout: soon\ncases:\n  - name: a\n", "invalid duration"},
		{"conflicting stdout", "cases:\n  - name: a\n    expect:\n      stdout_equals: x\n      stdout_empty: true\n", "conflicts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseSpec([]byte(tt.doc))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestLoadSpec(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cli.yaml")
	if err := os.WriteFile(path, []byte(sampleSpec), 0o644); err != nil {
		t.Fatal(err)
	}
	spec, err := LoadSpec(path)
	if err != nil {
		t.Fatalf("LoadSpec failed: %v", err)
	}
	if spec.Name != "sample" || len(spec.Cases) != 4 {
		t.Fatalf("loaded %q with %d cases", spec.Name, len(spec.Cases))
	}

	if _, err := LoadSpec(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}
