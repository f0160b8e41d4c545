// Command arrsh is an interactive array shell: see cmd/arrsh/cmd for
// the CLI surface.
package main

import (
	"fmt"
	"os"

	"github.com/arrshell/arrsh/cmd/arrsh/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
