package main

import (
	"fmt"
	"os"

	"github.com/docscan/form-renamer/cmd/form-renamer/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
