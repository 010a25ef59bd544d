package main

import (
	"os"

	"github.com/mpz/devops/tools/value-distribution/cmd/distcalc/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
