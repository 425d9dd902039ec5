// Package host selects the instruction encoder matching the architecture the
// process runs on, so callers can build native entry routines without
// switching on GOARCH themselves.
package host

import (
	"debug/elf"
	"errors"
	"fmt"
	"io"
	"runtime"

	"github.com/tinyrange/schemert/internal/asm"
	"github.com/tinyrange/schemert/internal/asm/amd64"
	"github.com/tinyrange/schemert/internal/asm/arm64"
)

// ErrUnsupported is returned for architectures without an encoder.
var ErrUnsupported = errors.New("host architecture not supported")

// Machine returns the ELF machine for the running architecture.
func Machine() (elf.Machine, error) {
	return machineFor(runtime.GOARCH)
}

func machineFor(goarch string) (elf.Machine, error) {
	switch goarch {
	case "amd64":
		return elf.EM_X86_64, nil
	case "arm64":
		return elf.EM_AARCH64, nil
	default:
		return elf.EM_NONE, fmt.Errorf("%w: %s", ErrUnsupported, goarch)
	}
}

// ReturnProgram emits a zero argument routine that returns value in the
// host's integer return register.
func ReturnProgram(value int64) (asm.Program, error) {
	return returnProgramFor(runtime.GOARCH, value)
}

func returnProgramFor(goarch string, value int64) (asm.Program, error) {
	switch goarch {
	case "amd64":
		return amd64.EmitProgram(amd64.Return(value))
	case "arm64":
		return arm64.EmitProgram(arm64.Return(value))
	default:
		return asm.Program{}, fmt.Errorf("%w: %s", ErrUnsupported, goarch)
	}
}

// WriteReturnObject writes a relocatable object defining symbol as a routine
// that returns value.
func WriteReturnObject(w io.Writer, symbol string, value int64) error {
	machine, err := Machine()
	if err != nil {
		return err
	}
	prog, err := ReturnProgram(value)
	if err != nil {
		return fmt.Errorf("emit return program: %w", err)
	}
	return asm.WriteObject(w, asm.ObjectConfig{Machine: machine, Symbol: symbol}, prog)
}
