package main

import (
	"os"

	"github.com/iliyamo/parking-registry/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
