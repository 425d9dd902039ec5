//go:build entrystub && cgo

package entry

/*
long entry_stub_result;
long entry_stub_calls;

long scheme_entry(void) {
	entry_stub_calls++;
	return entry_stub_result;
}

long _scheme_entry(void) {
	entry_stub_calls++;
	return entry_stub_result;
}
*/
import "C"

import "unsafe"

// setStubResult sets the value the linked stub routine returns.
func setStubResult(v int64) {
	C.entry_stub_result = C.long(v)
}

// stubCalls reports how many times the stub routine has run.
func stubCalls() int64 {
	return int64(C.entry_stub_calls)
}

// longBits is the width of C long on this target.
func longBits() int {
	return int(unsafe.Sizeof(C.long(0))) * 8
}
