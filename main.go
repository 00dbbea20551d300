package main

import (
	"os"

	"github.com/ucook/accessflow/cmd"
)

func main() {
	if err := cmd.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
