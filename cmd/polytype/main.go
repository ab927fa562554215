// Command polytype compiles type variable definitions into a type set table.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/polytype/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
