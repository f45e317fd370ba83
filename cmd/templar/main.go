package main

import (
	"os"

	"github.com/solvfell/templar/cmd/templar/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
