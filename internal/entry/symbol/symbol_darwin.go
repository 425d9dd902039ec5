package symbol

// CName is the C identifier of the entry routine. The Mach-O toolchain adds
// the leading underscore of Object itself.
const CName = "scheme_entry"
