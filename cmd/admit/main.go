package main

import (
	"fmt"
	"os"

	"github.com/roach88/admit/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "admit:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
