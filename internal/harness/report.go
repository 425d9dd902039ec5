package harness

import (
	"fmt"
	"io"
	"strconv"
)

// maxResultLen fits "-9223372036854775808\n".
const maxResultLen = 21

// Report writes v in base 10 followed by a newline, in a single write and with
// nothing else around it.
func Report(w io.Writer, v int64) error {
	buf := make([]byte, 0, maxResultLen)
	buf = strconv.AppendInt(buf, v, 10)
	buf = append(buf, '\n')
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("write result: %w", err)
	}
	return nil
}
