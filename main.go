package main

import (
	"os"

	"github.com/lernwerk/vokabel/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
