package main

import (
	"os"

	"github.com/mpons/battarb/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
