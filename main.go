package main

import (
	"os"

	"github.com/lumenlearn/pacer/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
