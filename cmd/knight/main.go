// Package main provides the knight binary, which derives creature statistics
// from YAML records and evaluates roll formulas against them.
package main

import (
	"fmt"
	"os"

	"github.com/cory-johannsen/knight/internal/game/dice"
)

func main() {
	c := newCLI(os.Stdout, dice.NewCryptoSource())
	err := c.rootCmd().Execute()
	c.close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
