package asm

import "fmt"

// Variable identifies an architecture register. Each backend defines its own
// register constants on top of it.
type Variable int

type Context interface {
	EmitBytes(data []byte)
}

type Fragment interface {
	Emit(ctx Context) error
}

type Group []Fragment

var (
	_ Fragment = Group{}
)

func (g Group) Emit(ctx Context) error {
	for _, frag := range g {
		if frag == nil {
			return fmt.Errorf("nil fragment in group")
		}
		if err := frag.Emit(ctx); err != nil {
			return err
		}
	}
	return nil
}

// Program is a position independent block of machine code whose first byte is
// the routine entry point.
type Program struct {
	code []byte
}

func (p Program) Bytes() []byte {
	return append([]byte(nil), p.code...)
}

func (p Program) Len() int {
	return len(p.code)
}

func NewProgram(code []byte) Program {
	return Program{code: append([]byte(nil), code...)}
}
