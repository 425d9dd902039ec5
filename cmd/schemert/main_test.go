//go:build entrystub && cgo && linux && (amd64 || arm64)

package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/tinyrange/schemert/internal/asm/host"
	"github.com/tinyrange/schemert/internal/clitest"
	"github.com/tinyrange/schemert/internal/entry/symbol"
)

// TestCLIScenarios links the command against generated objects, one per entry
// result, and runs every scenario in testdata/cli.yaml against the binaries.
func TestCLIScenarios(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the command with the go tool")
	}

	spec, err := clitest.LoadSpec(filepath.Join("testdata", "cli.yaml"))
	if err != nil {
		t.Fatalf("load scenarios: %v", err)
	}

	ctx := context.Background()
	dir := t.TempDir()
	binaries := make(map[int64]string)
	for idx, result := range spec.Results() {
		object := filepath.Join(dir, fmt.Sprintf("entry%d.o", idx))
		if err := writeEntryObject(object, result); err != nil {
			t.Fatalf("write object for %d: %v", result, err)
		}
		binary := filepath.Join(dir, fmt.Sprintf("schemert%d", idx))
		if err := clitest.Build(ctx, spec.Build, "", object, binary); err != nil {
			t.Fatalf("build for %d: %v", result, err)
		}
		binaries[result] = binary
	}

	for _, tc := range spec.Cases {
		t.Run(tc.Name, func(t *testing.T) {
			out, err := clitest.Run(ctx, binaries[tc.Result], tc, spec.Timeout.Duration())
			if err != nil {
				t.Fatalf("run: %v", err)
			}
			if errs := clitest.AssertCLIOutput(out, tc.Expect); len(errs) > 0 {
				t.Fatalf("%s", clitest.FormatErrors(errs))
			}
		})
	}
}

// TestCLIRepeatable checks that the same binary prints the same value on every
// invocation.
func TestCLIRepeatable(t *testing.T) {
	if testing.Short() {
		t.Skip("builds the command with the go tool")
	}

	ctx := context.Background()
	dir := t.TempDir()
	object := filepath.Join(dir, "entry.o")
	if err := writeEntryObject(object, -7); err != nil {
		t.Fatalf("write object: %v", err)
	}
	binary := filepath.Join(dir, "schemert")
	if err := clitest.Build(ctx, clitest.BuildConfig{Package: "."}, "", object, binary); err != nil {
		t.Fatalf("build: %v", err)
	}

	tc := clitest.Case{Name: "repeat"}
	for i := 0; i < 3; i++ {
		out, err := clitest.Run(ctx, binary, tc, 0)
		if err != nil {
			t.Fatalf("run %d: %v", i, err)
		}
		if errs := clitest.AssertCLIOutput(out, clitest.Expectation{StdoutEquals: "-7\n", StderrEmpty: true}); len(errs) > 0 {
			t.Fatalf("run %d: %s", i, clitest.FormatErrors(errs))
		}
	}
}

func writeEntryObject(path string, result int64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := host.WriteReturnObject(f, symbol.Object, result); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
