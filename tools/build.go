///usr/bin/true; exec /usr/bin/env go run "$0" "$@"

// build links cmd/schemert against an entry object and optionally runs it.
//
//	go run ./tools/build.go -object program.o
//	go run ./tools/build.go -result -42 -run
package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/tinyrange/schemert/internal/asm/host"
	"github.com/tinyrange/schemert/internal/clitest"
	"github.com/tinyrange/schemert/internal/entry/symbol"
)

const harnessPackage = "./cmd/schemert"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "build: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	object := flag.String("object", "", "Object file defining the entry routine")
	result := flag.Int64("result", 0, "Generate an object returning this value when -object is empty")
	output := flag.String("o", filepath.Join("build", "schemert"), "Output binary")
	runAfter := flag.Bool("run", false, "Run the binary after building it")
	debug := flag.Bool("debug", false, "Enable debug logging")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Link %s against an entry object (symbol %s).\n\n", harnessPackage, symbol.Object)
		fmt.Fprintf(os.Stderr, "Flags:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 0 {
		flag.Usage()
		return fmt.Errorf("unexpected arguments: %v", flag.Args())
	}

	if *debug {
		slog.SetLogLoggerLevel(slog.LevelDebug)
	}

	if err := os.MkdirAll(filepath.Dir(*output), 0755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	objPath := *object
	if objPath == "" {
		if runtime.GOOS != "linux" {
			return fmt.Errorf("generated entry objects are ELF; pass -object on %s", runtime.GOOS)
		}
		objPath = *output + ".entry.o"
		if err := writeObject(objPath, *result); err != nil {
			return err
		}
		slog.Info("Generated entry object", "path", objPath, "result", *result, "arch", runtime.GOARCH)
	}

	absObj, err := filepath.Abs(objPath)
	if err != nil {
		return fmt.Errorf("resolve object path: %w", err)
	}

	ctx := context.Background()
	slog.Debug("Linking harness", "package", harnessPackage, "object", absObj, "output", *output)
	if err := clitest.Build(ctx, clitest.BuildConfig{Package: harnessPackage}, "", absObj, *output); err != nil {
		return err
	}
	slog.Info("Built harness", "output", *output)

	if !*runAfter {
		return nil
	}

	// The harness owns the exit status and both streams.
	cmd := exec.CommandContext(ctx, *output)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("run %s: %w", *output, err)
	}
	return nil
}

func writeObject(path string, result int64) error {
	var buf bytes.Buffer
	if err := host.WriteReturnObject(&buf, symbol.Object, result); err != nil {
		return fmt.Errorf("generate entry object: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("write entry object: %w", err)
	}
	return nil
}

