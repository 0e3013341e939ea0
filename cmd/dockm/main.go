// Command dockm edits the macOS Dock property list.
package main

import (
	"os"

	"github.com/mesh-intelligence/dockm/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
