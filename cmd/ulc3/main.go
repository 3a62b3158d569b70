package main

import (
	"os"

	"utools/cmd/ulc3/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
