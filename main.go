package main

import (
	"os"

	"github.com/lmeyrat/transopt/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
