package main

import (
	"os"

	"github.com/almada-laundry/almada/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
