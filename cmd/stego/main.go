package main

import (
	"os"

	"github.com/yyyoichi/stego_zero/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
)

func main() {
	os.Exit(cli.Execute(version, commit))
}
