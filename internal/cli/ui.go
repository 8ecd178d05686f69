package cli

import (
	"fmt"
	"io"

	"github.com/cockroachdb/errors"
	"github.com/fatih/color"
)

var (
	heading = color.New(color.FgHiCyan, color.Bold)
	subtle  = color.New(color.FgHiBlack)
	bad     = color.New(color.FgRed, color.Bold)
)

// PrintError writes err and any hints attached to it.
func PrintError(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", bad.Sprint("error:"), err)
	if hint := errors.FlattenHints(err); hint != "" {
		fmt.Fprintf(w, "%s %s\n", subtle.Sprint("hint:"), hint)
	}
}
