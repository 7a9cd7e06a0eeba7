// cmd/nesslaunch/main.go
package main

import (
	"fmt"
	"os"

	"github.com/nesslaunch/nesslaunch/cmd/nesslaunch/commands"
)

func main() {
	cmd := commands.NewCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(commands.ExitCode(err))
	}
}
