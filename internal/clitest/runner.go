package clitest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

const (
	defaultBuildTimeout = 2 * time.Minute
	defaultRunTimeout   = 10 * time.Second
)

// Build compiles cfg.Package into output with cgo enabled, linking object so
// it provides the command's external entry routine. dir is the working
// directory of the build; empty means the current one.
func Build(ctx context.Context, cfg BuildConfig, dir, object, output string) error {
	timeout := cfg.Timeout.Duration()
	if timeout == 0 {
		timeout = defaultBuildTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args, err := buildArgs(cfg.Package, object, output)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "go", args...)
	cmd.Dir = dir
	cmd.Env = buildEnv(os.Environ())

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("go build %s failed: %w: %s", args[len(args)-1], err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// buildArgs returns the go command arguments that link object into pkg.
//
// The object goes to the external linker through -extldflags so it appears on
// the link line exactly once. CGO_LDFLAGS cannot carry it: the go command
// applies those flags to every cgo package, runtime/cgo included, and the
// routine would then be defined twice.
func buildArgs(pkg, object, output string) ([]string, error) {
	if pkg == "" {
		pkg = "."
	}
	if object == "" {
		return nil, fmt.Errorf("no entry object")
	}
	if strings.ContainsAny(object, " \t\n'\"") {
		return nil, fmt.Errorf("entry object path %q contains whitespace or quotes", object)
	}

	ldflags := []string{"-linkmode=external", "-extldflags=" + object}
	return []string{"build", "-o", output, "-ldflags=" + strings.Join(ldflags, " "), pkg}, nil
}

// buildEnv enables cgo. GOFLAGS is cleared so neither stub build tags nor
// conflicting -ldflags reach the build.
func buildEnv(environ []string) []string {
	env := make([]string, 0, len(environ)+2)
	for _, kv := range environ {
		if strings.HasPrefix(kv, "CGO_ENABLED=") || strings.HasPrefix(kv, "GOFLAGS=") {
			continue
		}
		env = append(env, kv)
	}
	return append(env, "CGO_ENABLED=1", "GOFLAGS=")
}

// Run executes binary for one case and captures its output.
func Run(ctx context.Context, binary string, c Case, timeout time.Duration) (Output, error) {
	if timeout == 0 {
		timeout = defaultRunTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, binary, c.Args...)
	if c.Argv0 != "" {
		cmd.Args[0] = c.Argv0
	}
	cmd.Env = []string{}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	out := Output{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() == context.DeadlineExceeded:
			return out, fmt.Errorf("case %q timed out after %s", c.Name, timeout)
		case errors.As(err, &exitErr):
			out.ExitCode = exitErr.ExitCode()
		default:
			return out, fmt.Errorf("run case %q: %w", c.Name, err)
		}
	}
	return out, nil
}
