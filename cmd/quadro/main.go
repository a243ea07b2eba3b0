package main

import (
	"fmt"
	"os"

	"github.com/pablasso/quadro/internal/cli"
)

func main() {
	// With no args the root command opens the board.
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
