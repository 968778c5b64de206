// Command tscale converts and counts between the TAI and UTC time scales.
package main

import (
	"os"

	"github.com/roach88/tscale/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
