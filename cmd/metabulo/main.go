// Command metabulo serves the metabolomics table API and processes tables
// from the command line.
package main

import (
	"context"
	"os"

	"metabulo/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
