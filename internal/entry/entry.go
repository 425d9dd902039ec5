// Package entry is the foreign-function boundary of the harness. It is the
// only package that imports "C".
//
// The entry routine is produced by an external code generator and linked in
// as an object file handed to the external linker, for example:
//
//	go build -ldflags='-linkmode=external -extldflags=/path/to/program.o' ./cmd/schemert
//
// CGO_LDFLAGS does not work for this: the go command passes it to every cgo
// package, runtime/cgo included, and the routine ends up defined twice.
//
// The routine must take no arguments and return a signed C long in the
// platform's integer return register. That contract cannot be checked by the
// compiler or at run time. A routine that never returns, traps, clobbers
// callee-saved registers or returns a narrower value hangs, kills or silently
// corrupts the harness. An object without the symbol fails at link time.
//
// The C name of the routine differs per target and is fixed by build
// constraints rather than looked up at run time:
//
//	darwin:  scheme_entry   (the Mach-O toolchain prefixes "_" itself)
//	others:  _scheme_entry  (the generator's label is used verbatim)
//
// Building with -tags entrystub links an in-package C definition of both
// spellings instead of an external object. It exists for tests only.
package entry

// Call must keep the zero argument, single result shape of the routine.
var _ func() int64 = Call
