// curricula maps the four-level curriculum taxonomy of a workbook and builds
// cross-reference reports for selections of codes.
package main

import (
	"fmt"
	"os"

	"github.com/corey/curricula/cmd/curricula/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		code, print := cmd.ExitCode(err)
		if print {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(code)
	}
}
