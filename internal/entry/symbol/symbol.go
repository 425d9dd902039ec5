// Package symbol names the entry routine. It has no cgo dependency so tools
// and fixtures can refer to the names without linking the routine.
package symbol

// Object is the symbol the generated object file must define. It is the same
// on every supported target; only the C spelling used to reach it differs.
const Object = "_scheme_entry"
