// Command schemert runs the generated entry routine linked into it and prints
// the returned value in decimal on standard output.
//
// It accepts no arguments:
//
//	usage: schemert
//
// The routine is supplied as an object file at build time, for example
//
//	go build -ldflags='-linkmode=external -extldflags=program.o' ./cmd/schemert
package main

import (
	"os"

	"github.com/tinyrange/schemert/internal/entry"
	"github.com/tinyrange/schemert/internal/harness"
)

func main() {
	os.Exit(harness.New(entry.Call, harness.WithSymbol(entry.Symbol)).Run(os.Args))
}
