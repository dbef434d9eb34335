package main

import (
	"os"

	"github.com/subhasish12345/SHOPSAGE/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
