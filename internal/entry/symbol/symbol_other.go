//go:build !darwin

package symbol

// CName is the C identifier of the entry routine. ELF and PE toolchains use
// it unchanged as the object symbol.
const CName = Object
