// Command campusfinder is the Campus Lost & Found client. The same binary is
// built from cmd/campusfinder.
package main

import (
	"os"

	"github.com/idilsaglam/campusfinder/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:], cli.Options{}))
}
