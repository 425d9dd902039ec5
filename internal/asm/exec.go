//go:build linux && (amd64 || arm64)

package asm

import (
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
	"golang.org/x/sys/unix"
)

// Func is a program mapped into executable memory. It is called with the
// platform C calling convention: no arguments, one signed long result in the
// integer return register.
type Func struct {
	entry uintptr
}

// Call executes the routine and returns the value left in the return
// register. A routine that does not honour the convention corrupts the
// caller; nothing here can detect that.
func (fn Func) Call() int64 {
	if fn.entry == 0 {
		panic("asm.Func: call on zero value")
	}
	r1, _, _ := purego.SyscallN(fn.entry)
	return int64(r1)
}

// Compile maps prog into fresh anonymous memory, seals it read+execute and
// returns a callable Func along with a release function that unmaps it.
// A fresh mapping is used for every call so arm64 hosts get their instruction
// cache synchronised by the kernel when the pages first become executable.
func Compile(prog Program) (Func, func(), error) {
	size := prog.Len()
	if size == 0 {
		return Func{}, nil, fmt.Errorf("empty code")
	}

	pageSize := unix.Getpagesize()
	allocSize := ((size + pageSize - 1) / pageSize) * pageSize

	mem, err := unix.Mmap(-1, 0, allocSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return Func{}, nil, fmt.Errorf("mmap code region: %w", err)
	}
	release := true
	defer func() {
		if release {
			_ = unix.Munmap(mem)
		}
	}()

	copy(mem, prog.code)

	if err := unix.Mprotect(mem, unix.PROT_READ|unix.PROT_EXEC); err != nil {
		return Func{}, nil, fmt.Errorf("mprotect code region: %w", err)
	}

	release = false

	fn := Func{entry: uintptr(unsafe.Pointer(&mem[0]))}
	return fn, func() {
		_ = unix.Munmap(mem)
	}, nil
}

// MustCompile is like Compile but panics on error. The mapping is never
// released.
func MustCompile(prog Program) Func {
	fn, _, err := Compile(prog)
	if err != nil {
		panic(err)
	}
	return fn
}
