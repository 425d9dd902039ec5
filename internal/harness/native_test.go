//go:build linux && (amd64 || arm64)

package harness

import (
	"bytes"
	"math"
	"strconv"
	"testing"

	"github.com/tinyrange/schemert/internal/asm/host"
)

// Runs the launcher against real machine code so the zero argument, long
// return convention is exercised end to end in process.
func TestRunNativeEntry(t *testing.T) {
	for _, value := range []int64{0, -42, math.MaxInt64, math.MinInt64} {
		t.Run(strconv.FormatInt(value, 10), func(t *testing.T) {
			fn, release, err := host.CompileReturn(value)
			if err != nil {
				t.Fatalf("CompileReturn failed: %v", err)
			}
			defer release()

			var stdout, stderr bytes.Buffer
			status := New(fn.Call, WithOutput(&stdout, &stderr)).Run([]string{"program"})
			if status != ExitOK {
				t.Fatalf("status=%d, want %d", status, ExitOK)
			}
			if got, want := stdout.String(), strconv.FormatInt(value, 10)+"\n"; got != want {
				t.Fatalf("stdout=%q, want %q", got, want)
			}
			if stderr.Len() != 0 {
				t.Fatalf("stderr=%q, want empty", stderr.String())
			}
		})
	}
}
