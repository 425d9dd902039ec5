package amd64

import (
	"encoding/binary"
	"fmt"

	"github.com/tinyrange/schemert/internal/asm"
)

// General purpose registers. RAX carries the integer return value in the
// System V AMD64 calling convention.
const (
	RAX asm.Variable = iota
	RBX
	RCX
	RDX
	RSI
	RDI
	RSP
	RBP
	R8
	R9
	R10
	R11
	R12
	R13
	R14
	R15
)

type fragmentFunc func(ctx asm.Context) error

func (f fragmentFunc) Emit(ctx asm.Context) error { return f(ctx) }

// MovImmediate loads value into the 64-bit register dst using the shortest
// encoding that preserves the full signed value.
func MovImmediate(dst asm.Variable, value int64) asm.Fragment {
	return fragmentFunc(func(ctx asm.Context) error {
		bytes, err := encodeMovImmediate(dst, value)
		if err != nil {
			return err
		}
		ctx.EmitBytes(bytes)
		return nil
	})
}

func Ret() asm.Fragment {
	return fragmentFunc(func(ctx asm.Context) error {
		ctx.EmitBytes(encodeRet())
		return nil
	})
}

// Return builds a complete zero argument routine that returns value.
func Return(value int64) asm.Fragment {
	return asm.Group{
		MovImmediate(RAX, value),
		Ret(),
	}
}

type Context struct {
	text []byte
}

func newContext() *Context {
	return &Context{}
}

func (c *Context) EmitBytes(code []byte) {
	c.text = append(c.text, code...)
}

func EmitProgram(fragment asm.Fragment) (asm.Program, error) {
	if fragment == nil {
		return asm.Program{}, fmt.Errorf("amd64 asm: fragment is nil")
	}
	ctx := newContext()
	if err := fragment.Emit(ctx); err != nil {
		return asm.Program{}, err
	}
	return asm.NewProgram(ctx.text), nil
}

func EmitBytes(fragment asm.Fragment) ([]byte, error) {
	prog, err := EmitProgram(fragment)
	if err != nil {
		return nil, err
	}
	return prog.Bytes(), nil
}

type registerCode struct {
	code byte
	high bool
}

func regInfo(v asm.Variable) (registerCode, error) {
	switch v {
	case RAX:
		return registerCode{code: 0}, nil
	case RBX:
		return registerCode{code: 3}, nil
	case RCX:
		return registerCode{code: 1}, nil
	case RDX:
		return registerCode{code: 2}, nil
	case RSI:
		return registerCode{code: 6}, nil
	case RDI:
		return registerCode{code: 7}, nil
	case RSP:
		return registerCode{code: 4}, nil
	case RBP:
		return registerCode{code: 5}, nil
	case R8:
		return registerCode{code: 0, high: true}, nil
	case R9:
		return registerCode{code: 1, high: true}, nil
	case R10:
		return registerCode{code: 2, high: true}, nil
	case R11:
		return registerCode{code: 3, high: true}, nil
	case R12:
		return registerCode{code: 4, high: true}, nil
	case R13:
		return registerCode{code: 5, high: true}, nil
	case R14:
		return registerCode{code: 6, high: true}, nil
	case R15:
		return registerCode{code: 7, high: true}, nil
	default:
		return registerCode{}, fmt.Errorf("unsupported register %d", v)
	}
}

func encodeMovImmediate(reg asm.Variable, value int64) ([]byte, error) {
	const (
		maxUint32 = (1 << 32) - 1
		minInt32  = -1 << 31
	)
	switch {
	case value >= 0 && value <= maxUint32:
		// 32-bit moves zero the upper half of the register.
		return encodeMovRegImm32(reg, uint32(value))
	case value >= minInt32 && value < 0:
		return encodeMovRegImm32Sign(reg, uint32(value))
	}
	return encodeMovRegImm64(reg, uint64(value))
}

func encodeMovRegImm32(reg asm.Variable, value uint32) ([]byte, error) {
	info, err := regInfo(reg)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 6)
	if prefix := rexPrefix(false, false, false, info.high); prefix != 0 {
		out = append(out, prefix)
	}
	out = append(out, 0xB8+info.code)
	out = binary.LittleEndian.AppendUint32(out, value)
	return out, nil
}

func encodeMovRegImm32Sign(reg asm.Variable, value uint32) ([]byte, error) {
	info, err := regInfo(reg)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 7)
	out = append(out, rexPrefix(true, false, false, info.high))
	out = append(out, 0xC7, 0xC0|info.code)
	out = binary.LittleEndian.AppendUint32(out, value)
	return out, nil
}

func encodeMovRegImm64(reg asm.Variable, value uint64) ([]byte, error) {
	info, err := regInfo(reg)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 10)
	out = append(out, rexPrefix(true, false, false, info.high))
	out = append(out, 0xB8+info.code)
	out = binary.LittleEndian.AppendUint64(out, value)
	return out, nil
}

func encodeRet() []byte {
	return []byte{0xC3}
}

func rexPrefix(w, r, x, b bool) byte {
	if !w && !r && !x && !b {
		return 0
	}
	prefix := byte(0x40)
	if w {
		prefix |= 0x08
	}
	if r {
		prefix |= 0x04
	}
	if x {
		prefix |= 0x02
	}
	if b {
		prefix |= 0x01
	}
	return prefix
}
