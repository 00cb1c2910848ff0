package main

import (
	"os"

	"github.com/jasonWong-serviceDirect/automaker-ralph/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		// Exit errors were already reported by the command that produced
		// them; anything else still needs printing.
		if !cli.IsExitError(err) {
			os.Stderr.WriteString("Error: " + err.Error() + "\n")
		}
		os.Exit(cli.ExitCode(err))
	}
}
