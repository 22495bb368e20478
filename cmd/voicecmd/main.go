// Command voicecmd matches spoken transcripts against voice commands.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/voicecmd/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "voicecmd:", err)
	}
	os.Exit(cli.GetExitCode(err))
}
