//go:build !darwin && cgo

package entry

/*
extern long _scheme_entry(void);

static long entry_call(void) { return _scheme_entry(); }
*/
import "C"

import "github.com/tinyrange/schemert/internal/entry/symbol"

// Symbol is the C name the entry routine is declared under on this target.
const Symbol = symbol.CName

// Call invokes the entry routine once and returns its result widened to
// int64.
func Call() int64 {
	return int64(C.entry_call())
}
