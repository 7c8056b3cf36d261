package main

import (
	"os"

	"apnode/cmd/apnode/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
