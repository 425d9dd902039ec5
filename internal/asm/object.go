package asm

import (
	"bytes"
	"debug/elf"
	"encoding/binary"
	"fmt"
	"io"
	"strings"
)

const (
	elfHeaderSize  = 64
	elfSectionSize = 64
	elfSymbolSize  = 24
	textAlignment  = 16
)

// ObjectConfig controls how WriteObject emits a relocatable object.
type ObjectConfig struct {
	// Machine is the ELF machine the code was emitted for.
	Machine elf.Machine
	// Symbol is the global function symbol bound to the first byte of the
	// program. It is written verbatim, no prefix is added.
	Symbol string
}

func (cfg ObjectConfig) validate() error {
	switch cfg.Machine {
	case elf.EM_X86_64, elf.EM_AARCH64:
	default:
		return fmt.Errorf("unsupported object machine %v", cfg.Machine)
	}
	if cfg.Symbol == "" {
		return fmt.Errorf("object symbol name is empty")
	}
	if strings.IndexByte(cfg.Symbol, 0) >= 0 {
		return fmt.Errorf("object symbol %q contains NUL", cfg.Symbol)
	}
	return nil
}

// Section indexes in the emitted object.
const (
	sectionNull = iota
	sectionText
	sectionNote
	sectionSymtab
	sectionStrtab
	sectionShstrtab
	sectionCount
)

// WriteObject writes prog as an ELF64 little-endian relocatable object that
// defines cfg.Symbol as a global function covering the whole program. The
// object can be handed to a system linker like any compiler output.
func WriteObject(w io.Writer, cfg ObjectConfig, prog Program) error {
	if err := cfg.validate(); err != nil {
		return err
	}
	if prog.Len() == 0 {
		return fmt.Errorf("empty program")
	}

	var shstrtab stringTable
	names := [sectionCount]uint32{
		sectionText:     shstrtab.add(".text"),
		sectionNote:     shstrtab.add(".note.GNU-stack"),
		sectionSymtab:   shstrtab.add(".symtab"),
		sectionStrtab:   shstrtab.add(".strtab"),
		sectionShstrtab: shstrtab.add(".shstrtab"),
	}

	var strtab stringTable
	symName := strtab.add(cfg.Symbol)

	var body bytes.Buffer
	body.Write(make([]byte, elfHeaderSize))

	pad(&body, textAlignment)
	textOff := body.Len()
	body.Write(prog.code)
	textSize := prog.Len()

	pad(&body, 8)
	symtabOff := body.Len()
	syms := []elf.Sym64{
		{},
		{
			Name:  symName,
			Info:  elf.ST_INFO(elf.STB_GLOBAL, elf.STT_FUNC),
			Other: uint8(elf.STV_DEFAULT),
			Shndx: sectionText,
			Value: 0,
			Size:  uint64(textSize),
		},
	}
	if err := binary.Write(&body, binary.LittleEndian, syms); err != nil {
		return fmt.Errorf("encode symbol table: %w", err)
	}

	strtabOff := body.Len()
	body.Write(strtab.bytes())

	shstrtabOff := body.Len()
	body.Write(shstrtab.bytes())

	pad(&body, 8)
	shOff := body.Len()
	sections := [sectionCount]elf.Section64{
		sectionText: {
			Name:      names[sectionText],
			Type:      uint32(elf.SHT_PROGBITS),
			Flags:     uint64(elf.SHF_ALLOC | elf.SHF_EXECINSTR),
			Off:       uint64(textOff),
			Size:      uint64(textSize),
			Addralign: textAlignment,
		},
		sectionNote: {
			Name:      names[sectionNote],
			Type:      uint32(elf.SHT_PROGBITS),
			Off:       uint64(textOff + textSize),
			Addralign: 1,
		},
		sectionSymtab: {
			Name:      names[sectionSymtab],
			Type:      uint32(elf.SHT_SYMTAB),
			Off:       uint64(symtabOff),
			Size:      uint64(len(syms) * elfSymbolSize),
			Link:      sectionStrtab,
			Info:      1, // index of the first non-local symbol
			Addralign: 8,
			Entsize:   elfSymbolSize,
		},
		sectionStrtab: {
			Name:      names[sectionStrtab],
			Type:      uint32(elf.SHT_STRTAB),
			Off:       uint64(strtabOff),
			Size:      uint64(strtab.len()),
			Addralign: 1,
		},
		sectionShstrtab: {
			Name:      names[sectionShstrtab],
			Type:      uint32(elf.SHT_STRTAB),
			Off:       uint64(shstrtabOff),
			Size:      uint64(shstrtab.len()),
			Addralign: 1,
		},
	}
	if err := binary.Write(&body, binary.LittleEndian, sections); err != nil {
		return fmt.Errorf("encode section headers: %w", err)
	}

	out := body.Bytes()
	var header bytes.Buffer
	if err := binary.Write(&header, binary.LittleEndian, objectHeader(cfg.Machine, uint64(shOff))); err != nil {
		return fmt.Errorf("encode ELF header: %w", err)
	}
	copy(out, header.Bytes())

	if _, err := w.Write(out); err != nil {
		return fmt.Errorf("write object: %w", err)
	}
	return nil
}

func objectHeader(machine elf.Machine, shOff uint64) elf.Header64 {
	var ident [elf.EI_NIDENT]byte
	copy(ident[:], elf.ELFMAG)
	ident[elf.EI_CLASS] = byte(elf.ELFCLASS64)
	ident[elf.EI_DATA] = byte(elf.ELFDATA2LSB)
	ident[elf.EI_VERSION] = byte(elf.EV_CURRENT)
	ident[elf.EI_OSABI] = byte(elf.ELFOSABI_NONE)

	return elf.Header64{
		Ident:     ident,
		Type:      uint16(elf.ET_REL),
		Machine:   uint16(machine),
		Version:   uint32(elf.EV_CURRENT),
		Shoff:     shOff,
		Ehsize:    elfHeaderSize,
		Shentsize: elfSectionSize,
		Shnum:     sectionCount,
		Shstrndx:  sectionShstrtab,
	}
}

func pad(buf *bytes.Buffer, align int) {
	if rem := buf.Len() % align; rem != 0 {
		buf.Write(make([]byte, align-rem))
	}
}

// stringTable accumulates NUL terminated names. Offset 0 is the empty name.
type stringTable struct {
	data []byte
}

func (t *stringTable) add(name string) uint32 {
	if len(t.data) == 0 {
		t.data = []byte{0}
	}
	off := uint32(len(t.data))
	t.data = append(t.data, name...)
	t.data = append(t.data, 0)
	return off
}

func (t *stringTable) bytes() []byte {
	if len(t.data) == 0 {
		return []byte{0}
	}
	return t.data
}

func (t *stringTable) len() int {
	return len(t.bytes())
}
