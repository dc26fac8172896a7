// Command qom compiles, validates and evaluates dynamic operands.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/qom/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(cli.GetExitCode(err))
	}
}
