package clitest

import (
	"context"
	"os/exec"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestBuildArgs(t *testing.T) {
	got, err := buildArgs("./cmd/schemert", "/tmp/entry.o", "/tmp/out")
	if err != nil {
		t.Fatalf("buildArgs failed: %v", err)
	}
	want := []string{
		"build",
		"-o", "/tmp/out",
		"-ldflags=-linkmode=external -extldflags=/tmp/entry.o",
		"./cmd/schemert",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("args mismatch (-want +got):\n%s", diff)
	}

	got, err = buildArgs("", "/tmp/entry.o", "/tmp/out")
	if err != nil {
		t.Fatalf("buildArgs failed: %v", err)
	}
	if pkg := got[len(got)-1]; pkg != "." {
		t.Fatalf("package=%q, want .", pkg)
	}
}

func TestBuildArgsRejectsObject(t *testing.T) {
	for _, object := range []string{"", "/tmp/my entry.o", "/tmp/'entry'.o"} {
		if _, err := buildArgs(".", object, "/tmp/out"); err == nil {
			t.Fatalf("buildArgs(%q) succeeded, want error", object)
		}
	}
}

func TestBuildEnv(t *testing.T) {
	environ := []string{
		"PATH=/usr/bin",
		"CGO_ENABLED=0",
		"CGO_LDFLAGS=-L/opt/lib",
		"GOFLAGS=-tags=entrystub",
		"HOME=/root",
	}
	want := []string{
		"PATH=/usr/bin",
		"CGO_LDFLAGS=-L/opt/lib",
		"HOME=/root",
		"CGO_ENABLED=1",
		"GOFLAGS=",
	}
	if diff := cmp.Diff(want, buildEnv(environ)); diff != "" {
		t.Fatalf("env mismatch (-want +got):\n%s", diff)
	}
}

func TestRunCapturesOutput(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	sh, err := exec.LookPath("sh")
	if err != nil {
		t.Skipf("sh not available: %v", err)
	}

	c := Case{
		Name:  "shell",
		Argv0: "custom-name",
		Args:  []string{"-c", `printf '%s\n' "$0"; printf 'oops\n' >&2; exit 3`},
	}
	out, err := Run(context.Background(), sh, c, 0)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	want := Output{Stdout: "custom-name\n", Stderr: "oops\n", ExitCode: 3}
	if diff := cmp.Diff(want, out); diff != "" {
		t.Fatalf("output mismatch (-want +got):\n%s", diff)
	}
}
