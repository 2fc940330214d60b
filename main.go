// ABOUTME: Entry point for the opusrec recorder
// ABOUTME: Hands the command line to the cobra command tree
package main

import (
	"os"

	"github.com/oply/opusrec/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
