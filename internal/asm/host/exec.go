//go:build linux && (amd64 || arm64)

package host

import (
	"fmt"

	"github.com/tinyrange/schemert/internal/asm"
)

// CompileReturn maps a routine returning value into executable memory.
func CompileReturn(value int64) (asm.Func, func(), error) {
	prog, err := ReturnProgram(value)
	if err != nil {
		return asm.Func{}, nil, fmt.Errorf("emit return program: %w", err)
	}
	return asm.Compile(prog)
}
