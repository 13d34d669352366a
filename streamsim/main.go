// Streamsim runs randomized traffic through a simulated streaming fabric.
package main

import (
	"github.com/sarchlab/streamsim/streamsim/cmd"
	"github.com/tebeka/atexit"
)

func main() {
	cmd.Execute()
	atexit.Exit(0)
}
