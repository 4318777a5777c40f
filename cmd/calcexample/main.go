// Command calcexample is a sample calculation provider binary built on
// pkg/provider, demonstrating how an embedding application registers
// computations and starts the runtime.
package main

import (
	"fmt"
	"os"

	"github.com/thinknode/thinknode-provider-ipc-net/cmd/calcexample/commands"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	commands.Version = version
	commands.Commit = commit
	commands.Date = date

	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
