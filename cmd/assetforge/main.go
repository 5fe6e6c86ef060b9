package main

import (
	"os"

	"assetforge/internal/cli"
)

func main() {
	os.Exit(cli.Main(os.Args[1:]))
}
