// Package clitest runs a built command against scenario tables described in
// YAML and checks its exit status and output streams.
package clitest

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Spec is a scenario file for one command.
type Spec struct {
	Name        string      `yaml:"name"`
	Description string      `yaml:"description"`
	Build       BuildConfig `yaml:"build"`
	Timeout     Duration    `yaml:"timeout"`
	Cases       []Case      `yaml:"cases"`
}

// BuildConfig configures how to build the command binary.
type BuildConfig struct {
	Package string   `yaml:"package"`
	Timeout Duration `yaml:"timeout"`
}

// Case is a single invocation of the command.
type Case struct {
	Name string `yaml:"name"`
	// Argv0 replaces the program name slot. Empty keeps the binary path.
	Argv0 string   `yaml:"argv0"`
	Args  []string `yaml:"args"`
	// Result is the value the linked entry routine returns.
	Result int64       `yaml:"result"`
	Expect Expectation `yaml:"expect"`
}

// Expectation describes the observable outcome of a Case.
type Expectation struct {
	ExitCode      int    `yaml:"exit_code"`
	StdoutEquals  string `yaml:"stdout_equals"`
	StdoutMatches string `yaml:"stdout_matches"`
	StdoutEmpty   bool   `yaml:"stdout_empty"`
	StderrEquals  string `yaml:"stderr_equals"`
	StderrPrefix  string `yaml:"stderr_prefix"`
	StderrEmpty   bool   `yaml:"stderr_empty"`
}

// Duration wraps time.Duration for YAML unmarshaling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Results returns the distinct entry results the cases need, in first-use
// order. Each one requires its own linked binary.
func (s *Spec) Results() []int64 {
	seen := make(map[int64]bool)
	var out []int64
	for _, c := range s.Cases {
		if seen[c.Result] {
			continue
		}
		seen[c.Result] = true
		out = append(out, c.Result)
	}
	return out
}

// LoadSpec loads a scenario file.
func LoadSpec(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading spec file: %w", err)
	}
	spec, err := ParseSpec(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return spec, nil
}

// ParseSpec decodes and validates a scenario document.
func ParseSpec(data []byte) (*Spec, error) {
	var spec Spec
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("parsing spec: %w", err)
	}
	if err := spec.validate(); err != nil {
		return nil, err
	}
	return &spec, nil
}

func (s *Spec) validate() error {
	if len(s.Cases) == 0 {
		return fmt.Errorf("spec %q has no cases", s.Name)
	}
	names := make(map[string]bool, len(s.Cases))
	for idx, c := range s.Cases {
		if c.Name == "" {
			return fmt.Errorf("case %d has no name", idx)
		}
		if names[c.Name] {
			return fmt.Errorf("duplicate case name %q", c.Name)
		}
		names[c.Name] = true
		if c.Expect.StdoutEquals != "" && c.Expect.StdoutEmpty {
			return fmt.Errorf("case %q: stdout_equals conflicts with stdout_empty", c.Name)
		}
		if c.Expect.StderrEquals != "" && c.Expect.StderrEmpty {
			return fmt.Errorf("case %q: stderr_equals conflicts with stderr_empty", c.Name)
		}
	}
	return nil
}
