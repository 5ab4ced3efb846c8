package wat

import (
	stderrors "errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/multierr"

	"github.com/wippyai/wat-syntax/errors"
)

// LineCol converts a byte offset into src to a 1-based line and column.
// Columns count runes. Offsets past the end clamp to the end of src.
func LineCol(src string, offset int) (line, col int) {
	offset = max(0, min(offset, len(src)))
	before := src[:offset]
	line = strings.Count(before, "\n") + 1
	lineStart := strings.LastIndexByte(before, '\n') + 1
	col = utf8.RuneCountInString(before[lineStart:]) + 1
	return line, col
}

// Describe renders err with line:column positions for each structured error
// it contains, one per line.
func Describe(src string, err error) string {
	if err == nil {
		return ""
	}
	var b strings.Builder
	for i, e := range multierr.Errors(err) {
		if i > 0 {
			b.WriteByte('\n')
		}
		var werr *errors.Error
		if !stderrors.As(e, &werr) {
			b.WriteString(e.Error())
			continue
		}
		line, col := LineCol(src, werr.Span.Start)
		fmt.Fprintf(&b, "%d:%d: %s", line, col, werr.Error())
	}
	return b.String()
}
