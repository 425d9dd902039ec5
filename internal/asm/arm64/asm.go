package arm64

import (
	"encoding/binary"
	"fmt"

	"github.com/tinyrange/schemert/internal/asm"
)

// Register identifiers. X0 carries the integer return value under AAPCS64.
const (
	X0 asm.Variable = iota
	X1
	X2
	X3
	X4
	X5
	X6
	X7
	X8
	X9
	X10
	X11
	X12
	X13
	X14
	X15
	X16
	X17
	X18
	X19
	X20
	X21
	X22
	X23
	X24
	X25
	X26
	X27
	X28
	X29
	X30
)

type fragmentFunc func(ctx asm.Context) error

func (f fragmentFunc) Emit(ctx asm.Context) error { return f(ctx) }

type Context struct {
	text []byte
}

func newContext() *Context {
	return &Context{}
}

func (c *Context) EmitBytes(code []byte) {
	c.text = append(c.text, code...)
}

func (c *Context) emit32(word uint32) {
	c.text = binary.LittleEndian.AppendUint32(c.text, word)
}

func requireContext(ctx asm.Context) (*Context, error) {
	if c, ok := ctx.(*Context); ok {
		return c, nil
	}
	return nil, fmt.Errorf("arm64 asm: unsupported context %T", ctx)
}

func validateReg(reg asm.Variable) error {
	if reg < X0 || reg > X30 {
		return fmt.Errorf("arm64 asm: unsupported register %d", reg)
	}
	return nil
}

// MovImmediate loads value into the 64-bit register dst with a MOVZ followed
// by a MOVK for every non-zero 16-bit chunk.
func MovImmediate(dst asm.Variable, value int64) asm.Fragment {
	return fragmentFunc(func(ctx asm.Context) error {
		if err := validateReg(dst); err != nil {
			return err
		}
		c, err := requireContext(ctx)
		if err != nil {
			return err
		}
		return emitMovImmediate(c, dst, uint64(value))
	})
}

func emitMovImmediate(c *Context, dst asm.Variable, value uint64) error {
	first := true
	for shift := uint32(0); shift < 64; shift += 16 {
		chunk := uint16((value >> shift) & 0xFFFF)
		if first {
			word, err := encodeMovz(dst, chunk, shift)
			if err != nil {
				return err
			}
			c.emit32(word)
			first = false
			continue
		}
		if chunk == 0 {
			continue
		}
		word, err := encodeMovk(dst, chunk, shift)
		if err != nil {
			return err
		}
		c.emit32(word)
	}
	return nil
}

func Ret() asm.Fragment {
	return fragmentFunc(func(ctx asm.Context) error {
		c, err := requireContext(ctx)
		if err != nil {
			return err
		}
		c.emit32(0xD65F03C0)
		return nil
	})
}

// Return builds a complete zero argument routine that returns value.
func Return(value int64) asm.Fragment {
	return asm.Group{
		MovImmediate(X0, value),
		Ret(),
	}
}

// EmitProgram lowers a fragment into machine code for AArch64.
func EmitProgram(fragment asm.Fragment) (asm.Program, error) {
	if fragment == nil {
		return asm.Program{}, fmt.Errorf("arm64 asm: fragment is nil")
	}

	ctx := newContext()
	if err := fragment.Emit(ctx); err != nil {
		return asm.Program{}, err
	}
	return asm.NewProgram(ctx.text), nil
}

// EmitBytes is a convenience helper returning the raw instruction stream for a fragment.
func EmitBytes(fragment asm.Fragment) ([]byte, error) {
	prog, err := EmitProgram(fragment)
	if err != nil {
		return nil, err
	}
	return prog.Bytes(), nil
}

func encodeMovz(dst asm.Variable, imm uint16, shift uint32) (uint32, error) {
	if shift%16 != 0 || shift > 48 {
		return 0, fmt.Errorf("arm64 asm: invalid MOVZ shift %d", shift)
	}
	hw := shift / 16
	return 0xD2800000 | (hw << 21) | (uint32(imm) << 5) | uint32(dst), nil
}

func encodeMovk(dst asm.Variable, imm uint16, shift uint32) (uint32, error) {
	if shift%16 != 0 || shift > 48 {
		return 0, fmt.Errorf("arm64 asm: invalid MOVK shift %d", shift)
	}
	hw := shift / 16
	return 0xF2800000 | (hw << 21) | (uint32(imm) << 5) | uint32(dst), nil
}
